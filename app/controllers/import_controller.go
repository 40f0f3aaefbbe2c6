package controllers

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/constants"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/github"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/security"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/statistics"
)

// HandleGithubImport renders the import page, optionally listing repositories
// for the submitted username
func HandleGithubImport(c *fiber.Ctx) error {
	userID := currentUserID(c)

	username := strings.TrimSpace(c.Query("username"))
	var repos []github.Repo
	if username != "" {
		if !models.ValidGithubUsername(username) {
			fm := fiber.Map{"type": "error", "message": "That does not look like a GitHub username"}
			return flash.WithError(c, fm).Redirect("/import/github")
		}
		client := github.NewClient(githubToken(userID))
		repos = client.ListUserRepos(c.Context(), username)
	}

	tracked := map[string]bool{}
	if apps, err := repository.GetGlobalRepositories().Application.GetByUserID(userID); err == nil {
		for _, app := range apps {
			tracked[app.Name] = true
		}
	}

	return render(c, "import/github", fiber.Map{
		"Title":        "Import from GitHub",
		"GithubUser":   username,
		"Repos":        repos,
		"TrackedNames": tracked,
	})
}

// HandleGithubImportCreate creates applications from the selected repositories
func HandleGithubImportCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	appRepo := repository.GetGlobalRepositories().Application

	username := strings.TrimSpace(c.FormValue("username"))
	if !models.ValidGithubUsername(username) {
		fm := fiber.Map{"type": "error", "message": "That does not look like a GitHub username"}
		return flash.WithError(c, fm).Redirect("/import/github")
	}

	// checkboxes submit one value each, API clients may send a comma list
	selected := map[string]bool{}
	for _, raw := range c.Request().PostArgs().PeekMulti("repos") {
		for _, name := range strings.Split(string(raw), ",") {
			if name = strings.TrimSpace(name); name != "" {
				selected[name] = true
			}
		}
	}
	if len(selected) == 0 {
		fm := fiber.Map{"type": "error", "message": "Select at least one repository"}
		return flash.WithError(c, fm).Redirect("/import/github?username=" + username)
	}

	client := github.NewClient(githubToken(userID))
	imported, skipped := 0, 0
	for _, repo := range client.ListUserRepos(c.Context(), username) {
		if !selected[repo.Name] {
			continue
		}

		exists, err := appRepo.ExistsByName(userID, repo.Name)
		if err != nil || exists {
			skipped++
			continue
		}

		app := models.Application{
			UserID:         userID,
			Name:           repo.Name,
			Description:    repo.Description,
			RepositoryURL:  repo.HTMLURL,
			LiveURL:        repo.Homepage,
			GithubRepoName: repo.Name,
		}
		if err := appRepo.Create(&app); err != nil {
			log.Printf("importing repo %s for user %d failed: %v", repo.FullName, userID, err)
			skipped++
			continue
		}
		imported++
	}

	go statistics.UpdateStatisticsCache(userID)

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Imported %d repositories (%d skipped)", imported, skipped),
	}
	return flash.WithSuccess(c, fm).Redirect(constants.ApplicationsRoute)
}

// githubToken opens the user's stored GitHub token, "" when absent
func githubToken(userID uint) string {
	cred, err := models.FindProviderCredential(database.GetDB(), userID, models.PROVIDER_GITHUB)
	if err != nil {
		return ""
	}
	token, err := security.OpenToken(cred.SealedToken, env.GetEnv("APP_SECRET", ""))
	if err != nil {
		log.Printf("opening github token for user %d failed: %v", userID, err)
		return ""
	}
	return token
}
