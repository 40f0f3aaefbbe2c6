package controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
)

// HandleNoteList renders all notes of the logged-in user
func HandleNoteList(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	notes, err := repos.Note.GetByUserID(userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your notes"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	apps, _ := repos.Application.GetByUserID(userID)

	return render(c, "notes/index", fiber.Map{
		"Title":        "Notes",
		"Notes":        notes,
		"Applications": apps,
	})
}

// HandleNoteCreate creates a note from the submitted form
func HandleNoteCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	note := models.Note{
		UserID: userID,
		Title:  c.FormValue("title"),
		Body:   c.FormValue("body"),
	}

	if appID := formApplicationID(c, userID); appID != nil {
		note.ApplicationID = appID
	}

	if err := note.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	if err := repository.GetGlobalRepositories().Note.Create(&note); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	fm := fiber.Map{"type": "success", "message": "Note created"}
	return flash.WithSuccess(c, fm).Redirect("/notes")
}

// HandleNoteUpdate applies edits to one note
func HandleNoteUpdate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	note, err := ownedNote(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Note not found"}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	note.Title = c.FormValue("title", note.Title)
	note.Body = c.FormValue("body", note.Body)

	if err := note.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	if err := repository.GetGlobalRepositories().Note.Update(note); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	fm := fiber.Map{"type": "success", "message": "Note updated"}
	return flash.WithSuccess(c, fm).Redirect("/notes")
}

// HandleNotePin toggles the pinned flag
func HandleNotePin(c *fiber.Ctx) error {
	userID := currentUserID(c)

	note, err := ownedNote(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Note not found"}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	if err := note.TogglePinned(database.GetDB()); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	return c.Redirect(backTo(c, "/notes"), fiber.StatusSeeOther)
}

// HandleNoteDelete removes one note
func HandleNoteDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	note, err := ownedNote(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Note not found"}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	if err := repository.GetGlobalRepositories().Note.Delete(note.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/notes")
	}

	fm := fiber.Map{"type": "success", "message": "Note deleted"}
	return flash.WithSuccess(c, fm).Redirect("/notes")
}

func ownedNote(c *fiber.Ctx, userID uint) (*models.Note, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, err
	}
	return repository.GetGlobalRepositories().Note.GetOwned(userID, uint(id))
}
