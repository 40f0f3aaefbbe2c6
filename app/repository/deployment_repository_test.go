package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
)

func setupDeploymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Application{}, &models.Deployment{}))
	return db
}

func seedDeployment(t *testing.T, db *gorm.DB, appID uint, externalID, status string, deployedAt time.Time) *models.Deployment {
	t.Helper()
	d := &models.Deployment{
		ApplicationID: appID,
		ExternalID:    externalID,
		Status:        status,
		DeployedAt:    &deployedAt,
	}
	require.NoError(t, db.Create(d).Error)
	return d
}

func TestDeploymentRepositoryGetByExternalID(t *testing.T) {
	db := setupDeploymentTestDB(t)
	repo := NewDeploymentRepository(db)

	app := &models.Application{UserID: 1, Name: "widget"}
	require.NoError(t, db.Create(app).Error)
	other := &models.Application{UserID: 1, Name: "docs"}
	require.NoError(t, db.Create(other).Error)

	seedDeployment(t, db, app.ID, "vercel:dpl_abc", models.DEPLOY_STATUS_DEPLOYED, time.Now())
	// the same external id under another application is a distinct record
	seedDeployment(t, db, other.ID, "vercel:dpl_abc", models.DEPLOY_STATUS_BUILDING, time.Now())

	found, err := repo.GetByExternalID(app.ID, "vercel:dpl_abc")
	require.NoError(t, err)
	assert.Equal(t, app.ID, found.ApplicationID)
	assert.Equal(t, models.DEPLOY_STATUS_DEPLOYED, found.Status)

	_, err = repo.GetByExternalID(app.ID, "vercel:dpl_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeploymentRepositoryGetByApplicationIDOrdersNewestFirst(t *testing.T) {
	db := setupDeploymentTestDB(t)
	repo := NewDeploymentRepository(db)

	app := &models.Application{UserID: 1, Name: "widget"}
	require.NoError(t, db.Create(app).Error)

	now := time.Now()
	seedDeployment(t, db, app.ID, "d1", models.DEPLOY_STATUS_DEPLOYED, now.Add(-2*time.Hour))
	seedDeployment(t, db, app.ID, "d2", models.DEPLOY_STATUS_DEPLOYED, now)
	seedDeployment(t, db, app.ID, "d3", models.DEPLOY_STATUS_FAILED, now.Add(-time.Hour))

	deployments, err := repo.GetByApplicationID(app.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, deployments, 3)
	assert.Equal(t, "d2", deployments[0].ExternalID)
	assert.Equal(t, "d3", deployments[1].ExternalID)
	assert.Equal(t, "d1", deployments[2].ExternalID)

	page, err := repo.GetByApplicationID(app.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "d3", page[0].ExternalID)
}

func TestDeploymentRepositoryGetRecentByUserID(t *testing.T) {
	db := setupDeploymentTestDB(t)
	repo := NewDeploymentRepository(db)

	mine := &models.Application{UserID: 1, Name: "widget"}
	require.NoError(t, db.Create(mine).Error)
	theirs := &models.Application{UserID: 2, Name: "other"}
	require.NoError(t, db.Create(theirs).Error)

	now := time.Now()
	seedDeployment(t, db, mine.ID, "mine-1", models.DEPLOY_STATUS_DEPLOYED, now)
	seedDeployment(t, db, theirs.ID, "theirs-1", models.DEPLOY_STATUS_DEPLOYED, now)

	recent, err := repo.GetRecentByUserID(1, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "mine-1", recent[0].ExternalID)
	assert.Equal(t, "widget", recent[0].Application.Name)
}

func TestDeploymentRepositoryCountByStatus(t *testing.T) {
	db := setupDeploymentTestDB(t)
	repo := NewDeploymentRepository(db)

	app := &models.Application{UserID: 1, Name: "widget"}
	require.NoError(t, db.Create(app).Error)

	now := time.Now()
	seedDeployment(t, db, app.ID, "d1", models.DEPLOY_STATUS_DEPLOYED, now)
	seedDeployment(t, db, app.ID, "d2", models.DEPLOY_STATUS_DEPLOYED, now)
	seedDeployment(t, db, app.ID, "d3", models.DEPLOY_STATUS_FAILED, now)

	counts, err := repo.CountByStatus(1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[models.DEPLOY_STATUS_DEPLOYED])
	assert.EqualValues(t, 1, counts[models.DEPLOY_STATUS_FAILED])
	assert.NotContains(t, counts, models.DEPLOY_STATUS_BUILDING)

	total, err := repo.CountByApplicationID(app.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}
