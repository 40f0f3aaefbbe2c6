package deploysync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/cloudflare"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/github"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/vercel"
)

func TestSyncVercelDeploymentsCreatesOnceAndStaysIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		VercelProjectID: "prj_1",
	})

	fv := &fakeVercel{
		deployments: map[string][]vercel.Deployment{
			"prj_1": {{
				UID:       "dpl_abc",
				URL:       "widget.vercel.app",
				State:     "READY",
				Target:    "production",
				CreatedAt: time.Now().Add(-time.Hour).UnixMilli(),
				Meta: map[string]string{
					"githubCommitRef": "main",
					"githubCommitSha": "0c0ffee",
				},
			}},
		},
	}
	engine := newTestEngine(db, fv, nil, nil)

	result, err := engine.SyncVercelDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)

	var deployment models.Deployment
	require.NoError(t, db.Where("application_id = ?", app.ID).First(&deployment).Error)
	assert.Equal(t, "vercel:dpl_abc", deployment.ExternalID)
	assert.Equal(t, models.DEPLOY_STATUS_DEPLOYED, deployment.Status)
	assert.Equal(t, "https://widget.vercel.app", deployment.URL)
	assert.Equal(t, "main", deployment.Branch)
	assert.Equal(t, "0c0ffee", deployment.CommitSHA)

	production, err := models.FindEnvironmentBySlug(db, models.ENV_PRODUCTION)
	require.NoError(t, err)
	assert.Equal(t, production.ID, deployment.EnvironmentID)

	// a second run over identical provider state writes nothing
	result, err = engine.SyncVercelDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Updated)

	var count int64
	require.NoError(t, db.Model(&models.Deployment{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSyncVercelDeploymentsUpdatesOnStatusChange(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		VercelProjectID: "prj_1",
	})

	fv := &fakeVercel{
		deployments: map[string][]vercel.Deployment{
			"prj_1": {{UID: "dpl_abc", State: "BUILDING", Target: "preview", URL: "widget-git-fix.vercel.app"}},
		},
	}
	engine := newTestEngine(db, fv, nil, nil)

	_, err := engine.SyncVercelDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)

	fv.deployments["prj_1"][0].State = "READY"
	result, err := engine.SyncVercelDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)

	var deployment models.Deployment
	require.NoError(t, db.Where("application_id = ?", app.ID).First(&deployment).Error)
	assert.Equal(t, models.DEPLOY_STATUS_DEPLOYED, deployment.Status)

	staging, err := models.FindEnvironmentBySlug(db, models.ENV_STAGING)
	require.NoError(t, err)
	assert.Equal(t, staging.ID, deployment.EnvironmentID)
}

func TestSyncVercelDeploymentsBumpsSyncBookkeeping(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		VercelProjectID: "prj_1",
	})

	engine := newTestEngine(db, &fakeVercel{}, nil, nil)
	_, err := engine.SyncVercelDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)

	var reloaded models.Application
	require.NoError(t, db.First(&reloaded, app.ID).Error)
	assert.EqualValues(t, 1, reloaded.SyncCount)
	require.NotNil(t, reloaded.LastSyncedAt)
	assert.WithinDuration(t, time.Now(), *reloaded.LastSyncedAt, time.Minute)
}

func TestSyncPreconditionErrors(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	linked := createApp(t, db, &models.Application{
		UserID:                1,
		Name:                  "widget",
		VercelProjectID:       "prj_1",
		CloudflareProjectName: "widget",
		GithubRepoName:        "widget",
		RepositoryURL:         "https://github.com/acme/widget",
	})
	unlinked := createApp(t, db, &models.Application{UserID: 1, Name: "bare"})

	engine := newTestEngine(db, nil, nil, nil)
	ctx := context.Background()

	_, err := engine.SyncVercelDeployments(ctx, 0, linked.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = engine.SyncVercelDeployments(ctx, 1, 9999)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	// ownership is part of the application lookup
	_, err = engine.SyncVercelDeployments(ctx, 2, linked.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)

	_, err = engine.SyncVercelDeployments(ctx, 1, unlinked.ID)
	assert.ErrorIs(t, err, ErrNoVercelProject)
	_, err = engine.SyncCloudflareDeployments(ctx, 1, unlinked.ID)
	assert.ErrorIs(t, err, ErrNoCloudflareProject)
	_, err = engine.SyncGithubDeployments(ctx, 1, unlinked.ID)
	assert.ErrorIs(t, err, ErrNoGithubRepo)

	// user 3 never got a provider catalog
	orphan := createApp(t, db, &models.Application{UserID: 3, Name: "orphan", VercelProjectID: "prj_9"})
	_, err = engine.SyncVercelDeployments(ctx, 3, orphan.ID)
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	// no deployment rows appeared from any of the failed runs
	var count int64
	require.NoError(t, db.Model(&models.Deployment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSyncFailsWhenEnvironmentCatalogMissing(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		VercelProjectID: "prj_1",
	})
	require.NoError(t, db.Exec("DELETE FROM environments").Error)

	fv := &fakeVercel{
		deployments: map[string][]vercel.Deployment{
			"prj_1": {{UID: "dpl_abc", State: "READY", Target: "production", URL: "widget.vercel.app"}},
		},
	}
	engine := newTestEngine(db, fv, nil, nil)

	_, err := engine.SyncVercelDeployments(context.Background(), 1, app.ID)
	assert.ErrorIs(t, err, ErrEnvironmentsMissing)

	// the run aborted before touching the provider or the deployment table
	var count int64
	require.NoError(t, db.Model(&models.Deployment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var reloaded models.Application
	require.NoError(t, db.First(&reloaded, app.ID).Error)
	assert.EqualValues(t, 0, reloaded.SyncCount)
}

func TestSyncCloudflareDeployments(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:                1,
		Name:                  "widget",
		CloudflareProjectName: "widget",
	})

	deployment := cloudflare.PagesDeployment{
		ID:          "cf-123",
		URL:         "https://widget.pages.dev",
		Environment: "production",
		CreatedOn:   time.Now().Add(-2 * time.Hour),
	}
	deployment.LatestStage.Name = "deploy"
	deployment.LatestStage.Status = "success"
	deployment.DeploymentTrigger.Metadata.Branch = "main"
	deployment.DeploymentTrigger.Metadata.CommitHash = "abcdef1"

	fc := &fakeCloudflare{
		pagesDeployments: map[string][]cloudflare.PagesDeployment{
			"widget": {deployment},
		},
	}
	engine := newTestEngine(db, nil, fc, nil)

	result, err := engine.SyncCloudflareDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	var stored models.Deployment
	require.NoError(t, db.Where("application_id = ?", app.ID).First(&stored).Error)
	assert.Equal(t, "cloudflare:cf-123", stored.ExternalID)
	assert.Equal(t, models.DEPLOY_STATUS_DEPLOYED, stored.Status)
	assert.Equal(t, "https://widget.pages.dev", stored.URL)
	assert.Equal(t, "main", stored.Branch)
	assert.Equal(t, "abcdef1", stored.CommitSHA)
}

func TestSyncGithubDeploymentsResolvesLatestStatus(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:         1,
		Name:           "widget",
		RepositoryURL:  "https://github.com/acme/widget",
		GithubRepoName: "widget",
	})

	fg := &fakeGithub{
		deployments: map[string][]github.Deployment{
			"acme/widget": {
				{ID: 7, Ref: "main", SHA: "deadbee", Environment: "production", CreatedAt: time.Now()},
				{ID: 8, Ref: "fix/typo", SHA: "cafe123", Environment: "preview", CreatedAt: time.Now()},
			},
		},
		statuses: map[int64]*github.DeploymentStatus{
			7: {State: "success", EnvironmentURL: "https://widget.example.com"},
			// deployment 8 has no statuses yet
		},
	}
	engine := newTestEngine(db, nil, nil, fg)

	result, err := engine.SyncGithubDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 2, result.Created)

	var done models.Deployment
	require.NoError(t, db.Where("external_id = ?", "github:7").First(&done).Error)
	assert.Equal(t, models.DEPLOY_STATUS_DEPLOYED, done.Status)
	assert.Equal(t, "https://widget.example.com", done.URL)
	assert.Equal(t, "main", done.Branch)

	var pending models.Deployment
	require.NoError(t, db.Where("external_id = ?", "github:8").First(&pending).Error)
	assert.Equal(t, models.DEPLOY_STATUS_PENDING, pending.Status)
	assert.Empty(t, pending.URL)
}

func TestSyncAllDeployments(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)

	createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		VercelProjectID: "prj_1",
	})
	createApp(t, db, &models.Application{
		UserID:         1,
		Name:           "docs",
		RepositoryURL:  "https://github.com/acme/docs",
		GithubRepoName: "docs",
	})
	createApp(t, db, &models.Application{UserID: 1, Name: "scratchpad"})

	fv := &fakeVercel{
		deployments: map[string][]vercel.Deployment{
			"prj_1": {{UID: "dpl_1", State: "READY", Target: "production"}},
		},
	}
	fg := &fakeGithub{
		deployments: map[string][]github.Deployment{
			"acme/docs": {{ID: 11, Ref: "main", Environment: "production", CreatedAt: time.Now()}},
		},
		statuses: map[int64]*github.DeploymentStatus{
			11: {State: "success"},
		},
	}
	engine := newTestEngine(db, fv, nil, fg)

	result, err := engine.SyncAllDeployments(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applications)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)

	_, err = engine.SyncAllDeployments(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSyncApplicationDeploymentsCoversLinkedProviders(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	app := createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		RepositoryURL:   "https://github.com/acme/widget",
		VercelProjectID: "prj_1",
		GithubRepoName:  "widget",
	})

	fv := &fakeVercel{
		deployments: map[string][]vercel.Deployment{
			"prj_1": {{UID: "dpl_1", State: "READY", Target: "production", URL: "widget.vercel.app"}},
		},
	}
	fg := &fakeGithub{
		deployments: map[string][]github.Deployment{
			"acme/widget": {{ID: 11, Ref: "main", Environment: "production", CreatedAt: time.Now()}},
		},
		statuses: map[int64]*github.DeploymentStatus{
			11: {State: "success"},
		},
	}
	engine := newTestEngine(db, fv, nil, fg)

	result, err := engine.SyncApplicationDeployments(context.Background(), 1, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)

	var count int64
	require.NoError(t, db.Model(&models.Deployment{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// an application without linkage yields an empty result, not an error
	bare := createApp(t, db, &models.Application{UserID: 1, Name: "bare"})
	result, err = engine.SyncApplicationDeployments(context.Background(), 1, bare.ID)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{}, result)

	_, err = engine.SyncApplicationDeployments(context.Background(), 0, app.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = engine.SyncApplicationDeployments(context.Background(), 2, app.ID)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
}
