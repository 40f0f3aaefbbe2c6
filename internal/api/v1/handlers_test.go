package apiv1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/app/repository"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/database"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/deploysync"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/usercontext"
)

var apiTestOnce sync.Once

// setupAPITest wires one in-memory database into the package globals the
// handlers read. The repository factory only initializes once per process, so
// every test shares the same database and uses its own user ID.
func setupAPITest(t *testing.T) *gorm.DB {
	t.Helper()

	apiTestOnce.Do(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			t.Fatalf("opening test database: %v", err)
		}

		// a single connection keeps every query on the same in-memory database
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)

		require.NoError(t, db.AutoMigrate(
			&models.CloudProvider{},
			&models.Environment{},
			&models.ProviderCredential{},
			&models.Application{},
			&models.Deployment{},
		))
		require.NoError(t, models.SeedEnvironments(db))

		database.DB = db
		repository.InitializeFactory(db)
	})

	return database.DB
}

// newTestAPI builds a fiber app with the sync routes mounted behind a stub
// auth layer that injects the given user.
func newTestAPI(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{UserID: userID, IsLoggedIn: true})
		return c.Next()
	})

	s := NewAPIServer()
	app.Post("/applications/:uuid/sync/:provider", s.SyncApplication)
	app.Post("/sync", s.SyncAll)
	app.Post("/auto-connect", s.AutoConnect)
	return app
}

type syncEnvelope struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error"`
	Data    deploysync.SyncResult `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSyncApplicationRespondsWithEnvelope(t *testing.T) {
	db := setupAPITest(t)
	require.NoError(t, models.SeedDefaultProviders(db, 1))

	app := models.Application{UserID: 1, Name: "widget", VercelProjectID: "prj_1"}
	require.NoError(t, db.Create(&app).Error)

	api := newTestAPI(1)
	resp, err := api.Test(httptest.NewRequest(http.MethodPost, "/applications/"+app.UUID+"/sync/vercel", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body syncEnvelope
	decodeEnvelope(t, resp, &body)
	assert.True(t, body.Success)
	assert.Empty(t, body.Error)
	// no stored credential: the provider client returns nothing
	assert.Equal(t, deploysync.SyncResult{}, body.Data)
}

func TestSyncApplicationFailureEnvelope(t *testing.T) {
	db := setupAPITest(t)
	require.NoError(t, models.SeedDefaultProviders(db, 2))

	app := models.Application{UserID: 2, Name: "bare"}
	require.NoError(t, db.Create(&app).Error)

	api := newTestAPI(2)
	resp, err := api.Test(httptest.NewRequest(http.MethodPost, "/applications/"+app.UUID+"/sync/vercel", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body syncEnvelope
	decodeEnvelope(t, resp, &body)
	assert.False(t, body.Success)
	assert.Equal(t, deploysync.ErrNoVercelProject.Error(), body.Error)
}

func TestSyncApplicationRejectsUnknownProvider(t *testing.T) {
	db := setupAPITest(t)

	app := models.Application{UserID: 3, Name: "widget", VercelProjectID: "prj_1"}
	require.NoError(t, db.Create(&app).Error)

	api := newTestAPI(3)
	resp, err := api.Test(httptest.NewRequest(http.MethodPost, "/applications/"+app.UUID+"/sync/netlify", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body syncEnvelope
	decodeEnvelope(t, resp, &body)
	assert.False(t, body.Success)
	assert.Equal(t, "unknown provider", body.Error)
}

func TestSyncAllRespondsWithEnvelope(t *testing.T) {
	db := setupAPITest(t)
	require.NoError(t, models.SeedDefaultProviders(db, 4))

	app := models.Application{UserID: 4, Name: "widget", VercelProjectID: "prj_1"}
	require.NoError(t, db.Create(&app).Error)

	api := newTestAPI(4)
	resp, err := api.Test(httptest.NewRequest(http.MethodPost, "/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                     `json:"success"`
		Data    deploysync.SyncAllResult `json:"data"`
	}
	decodeEnvelope(t, resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.Applications)
}

func TestAutoConnectRespondsWithEnvelope(t *testing.T) {
	db := setupAPITest(t)

	app := models.Application{UserID: 5, Name: "widget"}
	require.NoError(t, db.Create(&app).Error)

	api := newTestAPI(5)
	resp, err := api.Test(httptest.NewRequest(http.MethodPost, "/auto-connect", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                         `json:"success"`
		Data    deploysync.AutoConnectResult `json:"data"`
	}
	decodeEnvelope(t, resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.NoRepoURL)
}
