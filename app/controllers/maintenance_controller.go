package controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
)

// HandleMaintenanceList renders all maintenance routines of the logged-in user
func HandleMaintenanceList(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	tasks, err := repos.Maintenance.GetByUserID(userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your maintenance tasks"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	apps, _ := repos.Application.GetByUserID(userID)

	return render(c, "maintenance/index", fiber.Map{
		"Title":        "Maintenance",
		"Tasks":        tasks,
		"Applications": apps,
	})
}

// HandleMaintenanceCreate creates a recurring routine from the submitted form
func HandleMaintenanceCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	appID, err := strconv.ParseUint(c.FormValue("application_id"), 10, 32)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Maintenance tasks need an application"}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}
	if _, err := repos.Application.GetOwned(userID, uint(appID)); err != nil {
		fm := fiber.Map{"type": "error", "message": "Application not found"}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	task := models.MaintenanceTask{
		UserID:        userID,
		ApplicationID: uint(appID),
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		Cadence:       c.FormValue("cadence", models.MAINTENANCE_MONTHLY),
	}

	if raw := c.FormValue("next_due_at"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			task.NextDueAt = &t
		}
	}
	if task.NextDueAt == nil {
		// first due date is one cadence from now
		next := task.NextDueAfter(time.Now())
		task.NextDueAt = &next
	}

	if err := task.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	if err := repos.Maintenance.Create(&task); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	fm := fiber.Map{"type": "success", "message": "Maintenance task created"}
	return flash.WithSuccess(c, fm).Redirect("/maintenance")
}

// HandleMaintenanceComplete records a completion and advances the due date
func HandleMaintenanceComplete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	task, err := ownedMaintenanceTask(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Maintenance task not found"}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	if err := task.Complete(database.GetDB(), time.Now()); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Done! Next due %s", task.NextDueAt.Format("2006-01-02")),
	}
	return flash.WithSuccess(c, fm).Redirect(backTo(c, "/maintenance"))
}

// HandleMaintenanceUpdate applies edits to one routine
func HandleMaintenanceUpdate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	task, err := ownedMaintenanceTask(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Maintenance task not found"}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	task.Title = c.FormValue("title", task.Title)
	task.Description = c.FormValue("description", task.Description)
	task.Cadence = c.FormValue("cadence", task.Cadence)

	if raw := c.FormValue("next_due_at"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			task.NextDueAt = &t
		}
	}

	if err := task.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	if err := repos.Maintenance.Update(task); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	fm := fiber.Map{"type": "success", "message": "Maintenance task updated"}
	return flash.WithSuccess(c, fm).Redirect("/maintenance")
}

// HandleMaintenanceDelete removes one routine
func HandleMaintenanceDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	task, err := ownedMaintenanceTask(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Maintenance task not found"}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	if err := repository.GetGlobalRepositories().Maintenance.Delete(task.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/maintenance")
	}

	fm := fiber.Map{"type": "success", "message": "Maintenance task deleted"}
	return flash.WithSuccess(c, fm).Redirect("/maintenance")
}

func ownedMaintenanceTask(c *fiber.Ctx, userID uint) (*models.MaintenanceTask, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, err
	}
	return repository.GetGlobalRepositories().Maintenance.GetOwned(userID, uint(id))
}
