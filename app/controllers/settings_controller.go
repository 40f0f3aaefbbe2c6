package controllers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/constants"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/security"
)

// HandleUserSettings renders the settings page with preferences, providers and API key
func HandleUserSettings(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your settings"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	providers, err := repos.Provider.GetProviders(userID)
	if err != nil || len(providers) == 0 {
		// lazily seed the catalog for accounts created before seeding existed
		if err := repos.Provider.SeedProviders(userID); err != nil {
			log.Printf("seeding providers for user %d failed: %v", userID, err)
		}
		providers, _ = repos.Provider.GetProviders(userID)
	}

	credentials := map[string]*models.ProviderCredential{}
	for _, slug := range []string{models.PROVIDER_VERCEL, models.PROVIDER_CLOUDFLARE, models.PROVIDER_GITHUB} {
		if cred, err := repos.Provider.GetCredential(userID, slug); err == nil {
			credentials[slug] = cred
		}
	}

	environments, _ := repos.Provider.GetEnvironments()

	return render(c, "settings/index", fiber.Map{
		"Title":        "Settings",
		"Settings":     settings,
		"Providers":    providers,
		"Credentials":  credentials,
		"Environments": environments,
	})
}

// HandleUserSettingsUpdate saves the basic preferences
func HandleUserSettingsUpdate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your settings"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	settings.DefaultEnvironment = c.FormValue("default_environment", settings.DefaultEnvironment)
	settings.SyncOnPageLoad = c.FormValue("sync_on_page_load") == "on"

	if err := db.Save(settings).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	fm := fiber.Map{"type": "success", "message": "Settings saved"}
	return flash.WithSuccess(c, fm).Redirect(constants.SettingsRoute)
}

// HandleProviderCredentialSave seals and stores an API token for one provider
func HandleProviderCredentialSave(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	slug := c.FormValue("provider")
	switch slug {
	case models.PROVIDER_VERCEL, models.PROVIDER_CLOUDFLARE, models.PROVIDER_GITHUB:
	default:
		fm := fiber.Map{"type": "error", "message": "Unknown provider"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	token := c.FormValue("token")
	if token == "" {
		fm := fiber.Map{"type": "error", "message": "Token is required"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	accountID := c.FormValue("cloudflare_account_id")
	if slug == models.PROVIDER_CLOUDFLARE && accountID != "" && !models.ValidCloudflareAccountID(accountID) {
		fm := fiber.Map{"type": "error", "message": "Cloudflare account ID must be 32 hex characters"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	sealed, err := security.SealToken(token, env.GetEnv("APP_SECRET", ""))
	if err != nil {
		log.Printf("sealing %s token for user %d failed: %v", slug, userID, err)
		fm := fiber.Map{"type": "error", "message": "Could not store the token"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	cred := &models.ProviderCredential{
		UserID:       userID,
		ProviderSlug: slug,
		SealedToken:  sealed,
	}
	if slug == models.PROVIDER_CLOUDFLARE {
		cred.CloudflareAccountID = accountID
	}

	if err := repos.Provider.SaveCredential(cred); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	fm := fiber.Map{"type": "success", "message": "Provider token saved"}
	return flash.WithSuccess(c, fm).Redirect(constants.SettingsRoute)
}

// HandleProviderCredentialDelete removes the stored token for one provider
func HandleProviderCredentialDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	slug := c.Params("slug")
	if err := repository.GetGlobalRepositories().Provider.DeleteCredential(userID, slug); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	fm := fiber.Map{"type": "success", "message": "Provider token removed"}
	return flash.WithSuccess(c, fm).Redirect(constants.SettingsRoute)
}

// HandleAPIKeyGenerate issues a new API key; the raw key is shown exactly once
func HandleAPIKeyGenerate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your settings"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	if err := db.Save(settings).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("New API key (copy it now, it is shown only once): %s", rawKey),
	}
	return flash.WithSuccess(c, fm).Redirect(constants.SettingsRoute)
}

// HandleAPIKeyRevoke deactivates the current API key
func HandleAPIKeyRevoke(c *fiber.Ctx) error {
	userID := currentUserID(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your settings"}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.SettingsRoute)
	}

	fm := fiber.Map{"type": "success", "message": "API key revoked"}
	return flash.WithSuccess(c, fm).Redirect(constants.SettingsRoute)
}
