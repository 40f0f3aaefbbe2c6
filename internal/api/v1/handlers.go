package apiv1

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/deploysync"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/middleware"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/usercontext"
)

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer holds the v1 handler set
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers mounts the v1 routes. Everything except ping requires an
// API key.
func RegisterHandlers(v1 fiber.Router, s *APIServer) {
	v1.Get("/ping", s.GetPing)

	protected := v1.Group("", middleware.APIKeyAuthMiddleware())
	protected.Get("/applications", s.ListApplications)
	protected.Get("/applications/:uuid", s.GetApplication)
	protected.Get("/applications/:uuid/deployments", s.ListDeployments)
	protected.Post("/applications/:uuid/sync/:provider", s.SyncApplication)
	protected.Post("/sync", s.SyncAll)
	protected.Post("/auto-connect", s.AutoConnect)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(Pong{Ping: "pong"})
}

// ListApplications returns all applications of the key's owner
func (s *APIServer) ListApplications(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	apps, err := repository.GetGlobalRepositories().Application.GetByUserID(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{"applications": apps})
}

// GetApplication returns one application by UUID
func (s *APIServer) GetApplication(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	app, err := repository.GetGlobalRepositories().Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(app)
}

// ListDeployments returns the deployments of one application, newest first
func (s *APIServer) ListDeployments(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	repos := repository.GetGlobalRepositories()

	app, err := repos.Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	deployments, err := repos.Deployment.GetByApplicationID(app.ID, offset, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.JSON(fiber.Map{"deployments": deployments})
}

// SyncApplication runs one provider sync for one application
func (s *APIServer) SyncApplication(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	app, err := repository.GetGlobalRepositories().Application.GetOwnedByUUID(userID, c.Params("uuid"))
	if err != nil {
		return syncErrorJSON(c, deploysync.ErrApplicationNotFound)
	}

	engine := deploysync.NewEngine(database.GetDB(), env.GetEnv("APP_SECRET", ""))

	var result *deploysync.SyncResult
	switch c.Params("provider") {
	case "vercel":
		result, err = engine.SyncVercelDeployments(c.Context(), userID, app.ID)
	case "cloudflare":
		result, err = engine.SyncCloudflareDeployments(c.Context(), userID, app.ID)
	case "github":
		result, err = engine.SyncGithubDeployments(c.Context(), userID, app.ID)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "unknown provider"})
	}
	if err != nil {
		return syncErrorJSON(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// SyncAll runs every applicable provider sync for all linked applications
func (s *APIServer) SyncAll(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	engine := deploysync.NewEngine(database.GetDB(), env.GetEnv("APP_SECRET", ""))
	result, err := engine.SyncAllDeployments(c.Context(), userID)
	if err != nil {
		return syncErrorJSON(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// AutoConnect links applications to provider projects by repository name
func (s *APIServer) AutoConnect(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)

	engine := deploysync.NewEngine(database.GetDB(), env.GetEnv("APP_SECRET", ""))
	result, err := engine.AutoConnectProviders(c.Context(), userID)
	if err != nil {
		return syncErrorJSON(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// syncErrorJSON renders the failure half of the sync response envelope.
func syncErrorJSON(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, deploysync.ErrApplicationNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, deploysync.ErrNotAuthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, deploysync.ErrNoVercelProject),
		errors.Is(err, deploysync.ErrNoCloudflareProject),
		errors.Is(err, deploysync.ErrNoGithubRepo),
		errors.Is(err, deploysync.ErrProviderNotConfigured):
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
}
