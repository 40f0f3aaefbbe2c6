package controllers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/deploysync"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/session"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/statistics"
)

func syncEngine() *deploysync.Engine {
	return deploysync.NewEngine(database.GetDB(), env.GetEnv("APP_SECRET", ""))
}

// appBackRoute resolves the redirect target for a sync action
func appBackRoute(c *fiber.Ctx) string {
	if uuid := c.Params("uuid"); uuid != "" {
		return "/applications/" + uuid
	}
	return "/applications"
}

// maybeSyncOnPageLoad triggers the provider syncs for one application when
// the user's preference asks for it, once per session per application. The
// session flag debounces repeat visits.
func maybeSyncOnPageLoad(c *fiber.Ctx, userID uint, app *models.Application) {
	if !app.HasLinkage() {
		return
	}

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userID)
	if err != nil || !settings.SyncOnPageLoad {
		return
	}

	guard := "page_synced:" + app.UUID
	if session.GetSessionValue(c, guard) != "" {
		return
	}

	if _, err := syncEngine().SyncApplicationDeployments(c.Context(), userID, app.ID); err != nil {
		log.Printf("page-load sync for application %d failed: %v", app.ID, err)
		return
	}
	if err := session.SetSessionValue(c, guard, "1"); err != nil {
		log.Printf("storing page-load sync flag for application %d failed: %v", app.ID, err)
	}
}

// HandleSyncVercel pulls Vercel deployments for one application
func HandleSyncVercel(c *fiber.Ctx) error {
	return handleProviderSync(c, "Vercel", func(userID, appID uint) (*deploysync.SyncResult, error) {
		return syncEngine().SyncVercelDeployments(c.Context(), userID, appID)
	})
}

// HandleSyncCloudflare pulls Cloudflare Pages deployments for one application
func HandleSyncCloudflare(c *fiber.Ctx) error {
	return handleProviderSync(c, "Cloudflare", func(userID, appID uint) (*deploysync.SyncResult, error) {
		return syncEngine().SyncCloudflareDeployments(c.Context(), userID, appID)
	})
}

// HandleSyncGithub pulls GitHub deployments for one application
func HandleSyncGithub(c *fiber.Ctx) error {
	return handleProviderSync(c, "GitHub", func(userID, appID uint) (*deploysync.SyncResult, error) {
		return syncEngine().SyncGithubDeployments(c.Context(), userID, appID)
	})
}

func handleProviderSync(c *fiber.Ctx, providerName string, run func(userID, appID uint) (*deploysync.SyncResult, error)) error {
	userID := currentUserID(c)
	back := appBackRoute(c)

	app, err := repository.GetGlobalRepositories().Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect("/applications")
	}

	result, err := run(userID, app.ID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": syncErrorMessage(err)}
		return flash.WithError(c, fm).Redirect(back)
	}

	go statistics.UpdateStatisticsCache(userID)

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("%s sync finished: %d fetched, %d new, %d updated", providerName, result.Synced, result.Created, result.Updated),
	}
	return flash.WithSuccess(c, fm).Redirect(back)
}

// HandleSyncAll runs every applicable provider sync for all linked applications
func HandleSyncAll(c *fiber.Ctx) error {
	userID := currentUserID(c)

	result, err := syncEngine().SyncAllDeployments(c.Context(), userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": syncErrorMessage(err)}
		return flash.WithError(c, fm).Redirect("/applications")
	}

	go statistics.UpdateStatisticsCache(userID)

	fm := fiber.Map{
		"type": "success",
		"message": fmt.Sprintf("Synced %d applications: %d fetched, %d new, %d updated",
			result.Applications, result.Synced, result.Created, result.Updated),
	}
	return flash.WithSuccess(c, fm).Redirect("/applications")
}

// HandleAutoConnect links applications to provider projects by repository name
func HandleAutoConnect(c *fiber.Ctx) error {
	userID := currentUserID(c)

	result, err := syncEngine().AutoConnectProviders(c.Context(), userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": syncErrorMessage(err)}
		return flash.WithError(c, fm).Redirect("/applications")
	}

	var parts []string
	if n := len(result.Vercel); n > 0 {
		parts = append(parts, fmt.Sprintf("%d Vercel", n))
	}
	if n := len(result.Cloudflare); n > 0 {
		parts = append(parts, fmt.Sprintf("%d Cloudflare Pages", n))
	}
	if n := len(result.Workers); n > 0 {
		parts = append(parts, fmt.Sprintf("%d Workers", n))
	}
	if n := len(result.GitHub); n > 0 {
		parts = append(parts, fmt.Sprintf("%d GitHub", n))
	}

	message := "Auto-connect finished: nothing new to link"
	if len(parts) > 0 {
		message = "Auto-connect linked " + strings.Join(parts, ", ")
	}
	if result.AlreadyConnected > 0 {
		message += fmt.Sprintf(" (%d already connected)", result.AlreadyConnected)
	}
	if result.NoRepoURL > 0 {
		message += fmt.Sprintf(" (%d without repository URL)", result.NoRepoURL)
	}

	fm := fiber.Map{"type": "success", "message": message}
	return flash.WithSuccess(c, fm).Redirect("/applications")
}

// syncErrorMessage maps engine errors to user-facing toasts
func syncErrorMessage(err error) string {
	switch {
	case errors.Is(err, deploysync.ErrNotAuthenticated),
		errors.Is(err, deploysync.ErrApplicationNotFound),
		errors.Is(err, deploysync.ErrNoVercelProject),
		errors.Is(err, deploysync.ErrNoCloudflareProject),
		errors.Is(err, deploysync.ErrNoGithubRepo),
		errors.Is(err, deploysync.ErrProviderNotConfigured):
		return err.Error()
	default:
		return "Sync failed, please try again later"
	}
}
