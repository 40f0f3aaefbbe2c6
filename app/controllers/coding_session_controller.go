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

const sessionsPerPage = 25

// HandleSessionList renders the coding session log
func HandleSessionList(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	sessions, err := repos.CodingSession.GetByUserID(userID, (page-1)*sessionsPerPage, sessionsPerPage)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your coding sessions"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	minutes, _ := repos.CodingSession.TotalMinutesByUserID(userID)
	apps, _ := repos.Application.GetByUserID(userID)

	return render(c, "sessions/index", fiber.Map{
		"Title":        "Coding Sessions",
		"Sessions":     sessions,
		"TotalMinutes": minutes,
		"Page":         page,
		"PrevPage":     page - 1,
		"NextPage":     page + 1,
		"Applications": apps,
	})
}

// HandleSessionCreate logs a coding session from the submitted form
func HandleSessionCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	duration, _ := strconv.Atoi(c.FormValue("duration_minutes", "0"))

	session := models.CodingSession{
		UserID:          userID,
		Title:           c.FormValue("title"),
		Summary:         c.FormValue("summary"),
		Tool:            c.FormValue("tool"),
		DurationMinutes: duration,
		HappenedAt:      time.Now(),
	}

	if appID := formApplicationID(c, userID); appID != nil {
		session.ApplicationID = appID
	}

	if raw := c.FormValue("happened_at"); raw != "" {
		if t, err := time.Parse("2006-01-02T15:04", raw); err == nil {
			session.HappenedAt = t
		}
	}

	if err := session.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	if err := repository.GetGlobalRepositories().CodingSession.Create(&session); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	fm := fiber.Map{"type": "success", "message": "Session logged"}
	return flash.WithSuccess(c, fm).Redirect("/sessions")
}

// HandleSessionUpdate applies edits to one logged session
func HandleSessionUpdate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	session, err := ownedSession(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Session not found"}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	session.Title = c.FormValue("title", session.Title)
	session.Summary = c.FormValue("summary", session.Summary)
	session.Tool = c.FormValue("tool", session.Tool)
	if raw := c.FormValue("duration_minutes"); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			session.DurationMinutes = d
		}
	}

	if err := session.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	if err := repos.CodingSession.Update(session); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	fm := fiber.Map{"type": "success", "message": "Session updated"}
	return flash.WithSuccess(c, fm).Redirect("/sessions")
}

// HandleSessionDelete removes one logged session
func HandleSessionDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	session, err := ownedSession(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Session not found"}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	if err := repository.GetGlobalRepositories().CodingSession.Delete(session.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/sessions")
	}

	fm := fiber.Map{"type": "success", "message": "Session deleted"}
	return flash.WithSuccess(c, fm).Redirect("/sessions")
}

func ownedSession(c *fiber.Ctx, userID uint) (*models.CodingSession, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, err
	}
	return repository.GetGlobalRepositories().CodingSession.GetOwned(userID, uint(id))
}
