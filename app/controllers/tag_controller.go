package controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/cloudtrackerhq/cloudtracker/app/repository"
)

// HandleTagList renders the tag management page
func HandleTagList(c *fiber.Ctx) error {
	userID := currentUserID(c)

	tags, err := repository.GetGlobalRepositories().Tag.GetByUserID(userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your tags"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	return render(c, "tags/index", fiber.Map{
		"Title": "Tags",
		"Tags":  tags,
	})
}

// HandleTagCreate creates a tag from the submitted form
func HandleTagCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	name := c.FormValue("name")
	if name == "" {
		fm := fiber.Map{"type": "error", "message": "Tag name is required"}
		return flash.WithError(c, fm).Redirect("/tags")
	}

	tag, err := repository.GetGlobalRepositories().Tag.FindOrCreate(userID, name)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/tags")
	}

	if color := c.FormValue("color"); color != "" && color != tag.Color {
		tag.Color = color
		if err := repository.GetGlobalRepositories().Tag.Update(tag); err != nil {
			fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
			return flash.WithError(c, fm).Redirect("/tags")
		}
	}

	fm := fiber.Map{"type": "success", "message": "Tag saved"}
	return flash.WithSuccess(c, fm).Redirect("/tags")
}

// HandleTagDelete removes one tag including its application links
func HandleTagDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/tags", fiber.StatusSeeOther)
	}

	tag, err := repository.GetGlobalRepositories().Tag.GetOwned(userID, uint(id))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Tag not found"}
		return flash.WithError(c, fm).Redirect("/tags")
	}

	if err := repository.GetGlobalRepositories().Tag.Delete(tag.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/tags")
	}

	fm := fiber.Map{"type": "success", "message": "Tag deleted"}
	return flash.WithSuccess(c, fm).Redirect("/tags")
}
