package deploysync

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/cloudflare"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/github"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/vercel"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/security"
)

const testAppSecret = "test-app-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

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
	return db
}

func seedProviderCatalog(t *testing.T, db *gorm.DB, userID uint) {
	t.Helper()
	require.NoError(t, models.SeedDefaultProviders(db, userID))
}

func seedCredential(t *testing.T, db *gorm.DB, userID uint, slug string) {
	t.Helper()

	sealed, err := security.SealToken("token-"+slug, testAppSecret)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.ProviderCredential{
		UserID:       userID,
		ProviderSlug: slug,
		SealedToken:  sealed,
	}).Error)
}

type fakeVercel struct {
	projects    []vercel.Project
	deployments map[string][]vercel.Deployment
}

func (f *fakeVercel) ListProjects(ctx context.Context) []vercel.Project {
	return f.projects
}

func (f *fakeVercel) ListDeployments(ctx context.Context, projectID string) []vercel.Deployment {
	return f.deployments[projectID]
}

type fakeCloudflare struct {
	pagesProjects    []cloudflare.PagesProject
	pagesDeployments map[string][]cloudflare.PagesDeployment
	workers          []cloudflare.WorkerScript
}

func (f *fakeCloudflare) ListPagesProjects(ctx context.Context) []cloudflare.PagesProject {
	return f.pagesProjects
}

func (f *fakeCloudflare) ListPagesDeployments(ctx context.Context, projectName string) []cloudflare.PagesDeployment {
	return f.pagesDeployments[projectName]
}

func (f *fakeCloudflare) ListWorkerScripts(ctx context.Context) []cloudflare.WorkerScript {
	return f.workers
}

type fakeGithub struct {
	repos       []github.Repo
	deployments map[string][]github.Deployment
	statuses    map[int64]*github.DeploymentStatus
}

func (f *fakeGithub) ListUserRepos(ctx context.Context, username string) []github.Repo {
	return f.repos
}

func (f *fakeGithub) ListDeployments(ctx context.Context, owner, repo string) []github.Deployment {
	return f.deployments[owner+"/"+repo]
}

func (f *fakeGithub) LatestDeploymentStatus(ctx context.Context, owner, repo string, deploymentID int64) *github.DeploymentStatus {
	return f.statuses[deploymentID]
}

func newTestEngine(db *gorm.DB, fv *fakeVercel, fc *fakeCloudflare, fg *fakeGithub) *Engine {
	if fv == nil {
		fv = &fakeVercel{}
	}
	if fc == nil {
		fc = &fakeCloudflare{}
	}
	if fg == nil {
		fg = &fakeGithub{}
	}
	return NewEngineWithClients(db, testAppSecret,
		func(token string) VercelAPI { return fv },
		func(token, accountID string) CloudflareAPI { return fc },
		func(token string) GithubAPI { return fg },
	)
}

func createApp(t *testing.T, db *gorm.DB, app *models.Application) *models.Application {
	t.Helper()
	require.NoError(t, db.Create(app).Error)
	return app
}
