package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/cloudtrackerhq/cloudtracker/app/controllers"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/middleware"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.HandleStart)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)

	group.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)

	// Applications
	group.Get("/applications", middleware.RequireAuth, controllers.HandleApplicationList)
	group.Get("/applications/new", middleware.RequireAuth, controllers.HandleApplicationNew)
	group.Post("/applications", middleware.RequireAuth, controllers.HandleApplicationCreate)
	group.Get("/applications/:uuid", middleware.RequireAuth, controllers.HandleApplicationShow)
	group.Get("/applications/:uuid/edit", middleware.RequireAuth, controllers.HandleApplicationEdit)
	group.Post("/applications/:uuid", middleware.RequireAuth, controllers.HandleApplicationUpdate)
	group.Post("/applications/:uuid/delete", middleware.RequireAuth, controllers.HandleApplicationDelete)
	group.Post("/applications/:uuid/tags", middleware.RequireAuth, controllers.HandleApplicationAddTag)
	group.Post("/applications/:uuid/tags/:tagid/remove", middleware.RequireAuth, controllers.HandleApplicationRemoveTag)

	// Manual deployments
	group.Post("/applications/:uuid/deployments", middleware.RequireAuth, controllers.HandleDeploymentCreate)
	group.Post("/applications/:uuid/deployments/:id/delete", middleware.RequireAuth, controllers.HandleDeploymentDelete)

	// Provider sync + auto-connect
	group.Post("/applications/:uuid/sync/vercel", middleware.RequireAuth, controllers.HandleSyncVercel)
	group.Post("/applications/:uuid/sync/cloudflare", middleware.RequireAuth, controllers.HandleSyncCloudflare)
	group.Post("/applications/:uuid/sync/github", middleware.RequireAuth, controllers.HandleSyncGithub)
	group.Post("/sync/all", middleware.RequireAuth, controllers.HandleSyncAll)
	group.Post("/auto-connect", middleware.RequireAuth, controllers.HandleAutoConnect)

	// GitHub import
	group.Get("/import/github", middleware.RequireAuth, controllers.HandleGithubImport)
	group.Post("/import/github", middleware.RequireAuth, controllers.HandleGithubImportCreate)

	// Todos
	group.Get("/todos", middleware.RequireAuth, controllers.HandleTodoList)
	group.Post("/todos", middleware.RequireAuth, controllers.HandleTodoCreate)
	group.Post("/todos/:id", middleware.RequireAuth, controllers.HandleTodoUpdate)
	group.Post("/todos/:id/done", middleware.RequireAuth, controllers.HandleTodoDone)
	group.Post("/todos/:id/delete", middleware.RequireAuth, controllers.HandleTodoDelete)

	// Notes
	group.Get("/notes", middleware.RequireAuth, controllers.HandleNoteList)
	group.Post("/notes", middleware.RequireAuth, controllers.HandleNoteCreate)
	group.Post("/notes/:id", middleware.RequireAuth, controllers.HandleNoteUpdate)
	group.Post("/notes/:id/pin", middleware.RequireAuth, controllers.HandleNotePin)
	group.Post("/notes/:id/delete", middleware.RequireAuth, controllers.HandleNoteDelete)

	// Maintenance routines
	group.Get("/maintenance", middleware.RequireAuth, controllers.HandleMaintenanceList)
	group.Post("/maintenance", middleware.RequireAuth, controllers.HandleMaintenanceCreate)
	group.Post("/maintenance/:id", middleware.RequireAuth, controllers.HandleMaintenanceUpdate)
	group.Post("/maintenance/:id/complete", middleware.RequireAuth, controllers.HandleMaintenanceComplete)
	group.Post("/maintenance/:id/delete", middleware.RequireAuth, controllers.HandleMaintenanceDelete)

	// Coding sessions
	group.Get("/sessions", middleware.RequireAuth, controllers.HandleSessionList)
	group.Post("/sessions", middleware.RequireAuth, controllers.HandleSessionCreate)
	group.Post("/sessions/:id", middleware.RequireAuth, controllers.HandleSessionUpdate)
	group.Post("/sessions/:id/delete", middleware.RequireAuth, controllers.HandleSessionDelete)

	// Tags
	group.Get("/tags", middleware.RequireAuth, controllers.HandleTagList)
	group.Post("/tags", middleware.RequireAuth, controllers.HandleTagCreate)
	group.Post("/tags/:id/delete", middleware.RequireAuth, controllers.HandleTagDelete)

	// Settings
	group.Get("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings", middleware.RequireAuth, controllers.HandleUserSettingsUpdate)
	group.Post("/user/settings/providers", middleware.RequireAuth, controllers.HandleProviderCredentialSave)
	group.Post("/user/settings/providers/:slug/delete", middleware.RequireAuth, controllers.HandleProviderCredentialDelete)
	group.Post("/user/settings/api-key", middleware.RequireAuth, controllers.HandleAPIKeyGenerate)
	group.Post("/user/settings/api-key/revoke", middleware.RequireAuth, controllers.HandleAPIKeyRevoke)
}
