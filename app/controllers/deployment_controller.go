package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
)

// HandleDeploymentCreate records a manual deployment for one application.
// Manual records carry no external_id and are never touched by sync.
func HandleDeploymentCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect("/applications")
	}

	status := c.FormValue("status", models.DEPLOY_STATUS_DEPLOYED)
	if !models.ValidDeploymentStatus(status) {
		fm := fiber.Map{"type": "error", "message": "Unknown deployment status"}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	deployment := models.Deployment{
		ApplicationID: app.ID,
		URL:           c.FormValue("url"),
		Branch:        c.FormValue("branch"),
		CommitSHA:     c.FormValue("commit_sha"),
		Status:        status,
	}

	if envSlug := c.FormValue("environment"); envSlug != "" {
		if environment, err := repos.Provider.GetEnvironmentBySlug(envSlug); err == nil {
			deployment.EnvironmentID = environment.ID
		}
	}

	if raw := c.FormValue("deployed_at"); raw != "" {
		if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
			deployment.DeployedAt = &t
		}
	}
	if deployment.DeployedAt == nil {
		now := time.Now()
		deployment.DeployedAt = &now
	}

	if err := deployment.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	if err := repos.Deployment.Create(&deployment); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	fm := fiber.Map{"type": "success", "message": "Deployment recorded"}
	return flash.WithSuccess(c, fm).Redirect("/applications/" + app.UUID)
}

// HandleDeploymentDelete removes one deployment record
func HandleDeploymentDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect("/applications")
	}

	deploymentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/applications/"+app.UUID, fiber.StatusSeeOther)
	}

	deployment, err := repos.Deployment.GetByID(uint(deploymentID))
	if err != nil || deployment.ApplicationID != app.ID {
		fm := fiber.Map{"type": "error", "message": "Deployment not found"}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	if err := repos.Deployment.Delete(deployment.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	fm := fiber.Map{"type": "success", "message": "Deployment removed"}
	return flash.WithSuccess(c, fm).Redirect("/applications/" + app.UUID)
}
