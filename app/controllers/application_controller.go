package controllers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/constants"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/describe"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/metrics/counter"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/statistics"
)

const deploymentsPerPage = 20

// HandleApplicationList renders all applications of the logged-in user
func HandleApplicationList(c *fiber.Ctx) error {
	userID := currentUserID(c)

	apps, err := repository.GetGlobalRepositories().Application.GetByUserID(userID)
	if err != nil {
		log.Printf("loading applications for user %d failed: %v", userID, err)
		fm := fiber.Map{"type": "error", "message": "Could not load your applications"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	tags, err := repository.GetGlobalRepositories().Tag.GetByUserID(userID)
	if err != nil {
		log.Printf("loading tags for user %d failed: %v", userID, err)
	}

	return render(c, "applications/index", fiber.Map{
		"Title":        "Applications",
		"Applications": apps,
		"Tags":         tags,
	})
}

// HandleApplicationNew renders the creation form
func HandleApplicationNew(c *fiber.Ctx) error {
	return render(c, "applications/new", fiber.Map{
		"Title": "New Application",
	})
}

// HandleApplicationCreate creates an application from the submitted form
func HandleApplicationCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app := models.Application{
		UserID:        userID,
		Name:          c.FormValue("name"),
		Description:   c.FormValue("description"),
		RepositoryURL: c.FormValue("repository_url"),
		LiveURL:       c.FormValue("live_url"),
	}

	if err := app.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/new")
	}

	exists, err := repos.Application.ExistsByName(userID, app.Name)
	if err == nil && exists {
		fm := fiber.Map{"type": "error", "message": "You already track an application with that name"}
		return flash.WithError(c, fm).Redirect("/applications/new")
	}

	if app.Description == "" {
		// best-effort AI suggestion, the form field stays authoritative
		app.Description = describe.New().Suggest(c.Context(), app.Name, app.RepositoryURL)
	}

	if err := repos.Application.Create(&app); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/new")
	}

	go statistics.UpdateStatisticsCache(userID)

	fm := fiber.Map{"type": "success", "message": "Application created"}
	return flash.WithSuccess(c, fm).Redirect("/applications/" + app.UUID)
}

// HandleApplicationShow renders the detail page with deployments and linked items
func HandleApplicationShow(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	if err := counter.AddApplicationView(app.ID); err != nil {
		log.Printf("counting view for application %d failed: %v", app.ID, err)
	}

	maybeSyncOnPageLoad(c, userID, app)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * deploymentsPerPage

	deployments, err := repos.Deployment.GetByApplicationID(app.ID, offset, deploymentsPerPage)
	if err != nil {
		log.Printf("loading deployments for application %d failed: %v", app.ID, err)
	}
	deploymentCount, _ := repos.Deployment.CountByApplicationID(app.ID)

	todos, _ := repos.Todo.GetByApplicationID(app.ID)
	notes, _ := repos.Note.GetByApplicationID(app.ID)
	tasks, _ := repos.Maintenance.GetByApplicationID(app.ID)
	sessions, _ := repos.CodingSession.GetByApplicationID(app.ID)
	tags, _ := repos.Tag.GetByUserID(userID)

	return render(c, "applications/show", fiber.Map{
		"Title":            app.Name,
		"Application":      app,
		"Deployments":      deployments,
		"DeploymentCount":  deploymentCount,
		"Page":             page,
		"NextPage":         page + 1,
		"HasMore":          int64(offset+len(deployments)) < deploymentCount,
		"Todos":            todos,
		"Notes":            notes,
		"MaintenanceTasks": tasks,
		"Sessions":         sessions,
		"AllTags":          tags,
	})
}

// HandleApplicationEdit renders the edit form
func HandleApplicationEdit(c *fiber.Ctx) error {
	userID := currentUserID(c)

	app, err := repository.GetGlobalRepositories().Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	return render(c, "applications/edit", fiber.Map{
		"Title":       "Edit " + app.Name,
		"Application": app,
	})
}

// HandleApplicationUpdate applies the submitted edit form
func HandleApplicationUpdate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	app.Name = c.FormValue("name")
	app.Description = c.FormValue("description")
	app.RepositoryURL = c.FormValue("repository_url")
	app.LiveURL = c.FormValue("live_url")

	// linkage fields are user-editable here, auto-connect never overwrites them
	app.VercelProjectID = c.FormValue("vercel_project_id")
	app.CloudflareProjectName = c.FormValue("cloudflare_project_name")
	app.CloudflareWorkerName = c.FormValue("cloudflare_worker_name")
	app.GithubRepoName = c.FormValue("github_repo_name")

	if err := app.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID + "/edit")
	}

	if err := repos.Application.Update(app); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID + "/edit")
	}

	fm := fiber.Map{"type": "success", "message": "Application updated"}
	return flash.WithSuccess(c, fm).Redirect("/applications/" + app.UUID)
}

// HandleApplicationDelete removes the application
func HandleApplicationDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	if err := repos.Application.Delete(app.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	go statistics.UpdateStatisticsCache(userID)

	fm := fiber.Map{"type": "success", "message": "Application deleted"}
	return flash.WithSuccess(c, fm).Redirect(constants.ApplicationsRoute)
}

// HandleApplicationAddTag attaches a tag, creating it on first use
func HandleApplicationAddTag(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	name := c.FormValue("tag")
	if name == "" {
		fm := fiber.Map{"type": "error", "message": "Tag name is required"}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	tag, err := repos.Tag.FindOrCreate(userID, name)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/applications/" + app.UUID)
	}

	if err := repos.Application.AddTag(app.ID, tag.ID); err != nil {
		log.Printf("attaching tag %d to application %d failed: %v", tag.ID, app.ID, err)
	}

	return c.Redirect("/applications/"+app.UUID, fiber.StatusSeeOther)
}

// HandleApplicationRemoveTag detaches a tag from the application
func HandleApplicationRemoveTag(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect(constants.ApplicationsRoute)
	}

	tagID, err := strconv.ParseUint(c.Params("tagid"), 10, 32)
	if err != nil {
		return c.Redirect("/applications/"+app.UUID, fiber.StatusSeeOther)
	}

	if err := repos.Application.RemoveTag(app.ID, uint(tagID)); err != nil {
		log.Printf("detaching tag %d from application %d failed: %v", tagID, app.ID, err)
	}

	return c.Redirect("/applications/"+app.UUID, fiber.StatusSeeOther)
}
