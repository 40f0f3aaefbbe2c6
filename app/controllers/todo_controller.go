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

// HandleTodoList renders all todos of the logged-in user
func HandleTodoList(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	todos, err := repos.Todo.GetByUserID(userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Could not load your todos"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	apps, _ := repos.Application.GetByUserID(userID)

	return render(c, "todos/index", fiber.Map{
		"Title":        "Todos",
		"Todos":        todos,
		"Applications": apps,
	})
}

// HandleTodoCreate creates a todo from the submitted form
func HandleTodoCreate(c *fiber.Ctx) error {
	userID := currentUserID(c)

	todo := models.Todo{
		UserID:      userID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Status:      c.FormValue("status", models.TODO_STATUS_OPEN),
		Priority:    c.FormValue("priority", models.TODO_PRIORITY_MEDIUM),
	}

	if appID := formApplicationID(c, userID); appID != nil {
		todo.ApplicationID = appID
	}

	if raw := c.FormValue("due_at"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			todo.DueAt = &t
		}
	}

	if err := todo.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	if err := repository.GetGlobalRepositories().Todo.Create(&todo); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	fm := fiber.Map{"type": "success", "message": "Todo created"}
	return flash.WithSuccess(c, fm).Redirect("/todos")
}

// HandleTodoUpdate applies edits to one todo
func HandleTodoUpdate(c *fiber.Ctx) error {
	userID := currentUserID(c)
	repos := repository.GetGlobalRepositories()

	todo, err := ownedTodo(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Todo not found"}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	todo.Title = c.FormValue("title", todo.Title)
	todo.Description = c.FormValue("description", todo.Description)
	todo.Status = c.FormValue("status", todo.Status)
	todo.Priority = c.FormValue("priority", todo.Priority)

	if raw := c.FormValue("due_at"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			todo.DueAt = &t
		}
	}

	if err := todo.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("invalid input: %s", err)}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	if err := repos.Todo.Update(todo); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	fm := fiber.Map{"type": "success", "message": "Todo updated"}
	return flash.WithSuccess(c, fm).Redirect("/todos")
}

// HandleTodoDone marks one todo as completed
func HandleTodoDone(c *fiber.Ctx) error {
	userID := currentUserID(c)

	todo, err := ownedTodo(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Todo not found"}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	if err := todo.MarkDone(database.GetDB()); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	return c.Redirect(backTo(c, "/todos"), fiber.StatusSeeOther)
}

// HandleTodoDelete removes one todo
func HandleTodoDelete(c *fiber.Ctx) error {
	userID := currentUserID(c)

	todo, err := ownedTodo(c, userID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Todo not found"}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	if err := repository.GetGlobalRepositories().Todo.Delete(todo.ID); err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/todos")
	}

	fm := fiber.Map{"type": "success", "message": "Todo deleted"}
	return flash.WithSuccess(c, fm).Redirect("/todos")
}

func ownedTodo(c *fiber.Ctx, userID uint) (*models.Todo, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return nil, err
	}
	return repository.GetGlobalRepositories().Todo.GetOwned(userID, uint(id))
}

// formApplicationID resolves the optional application_id form field, rejecting
// applications the user does not own
func formApplicationID(c *fiber.Ctx, userID uint) *uint {
	raw := c.FormValue("application_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	app, err := repository.GetGlobalRepositories().Application.GetOwned(userID, uint(id))
	if err != nil {
		return nil
	}
	return &app.ID
}

// backTo returns the "back" query parameter when it is a local path
func backTo(c *fiber.Ctx, fallback string) string {
	back := c.Query("back")
	if back == "" || back[0] != '/' {
		return fallback
	}
	return back
}
