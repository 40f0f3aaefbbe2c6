package deploysync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/cloudflare"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/vercel"
)

func TestAutoConnectLinksByRepositoryName(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	seedCredential(t, db, 1, models.PROVIDER_VERCEL)
	seedCredential(t, db, 1, models.PROVIDER_CLOUDFLARE)

	widget := createApp(t, db, &models.Application{
		UserID:        1,
		Name:          "widget",
		RepositoryURL: "https://github.com/acme/widget",
	})
	edge := createApp(t, db, &models.Application{
		UserID:        1,
		Name:          "edge-fn",
		RepositoryURL: "https://gitlab.com/acme/edge-fn",
	})

	fv := &fakeVercel{
		projects: []vercel.Project{
			{ID: "prj_1", Name: "widget", Link: &vercel.ProjectLink{Type: "github", Repo: "widget"}},
			{ID: "prj_2", Name: "unrelated"},
		},
	}
	pages := cloudflare.PagesProject{Name: "widget-pages", Subdomain: "widget-pages.pages.dev"}
	pages.Source = &cloudflare.PagesSource{}
	pages.Source.Config.RepoName = "widget"
	fc := &fakeCloudflare{
		pagesProjects: []cloudflare.PagesProject{pages},
		workers:       []cloudflare.WorkerScript{{ID: "edge-fn"}},
	}
	engine := newTestEngine(db, fv, fc, nil)

	result, err := engine.AutoConnectProviders(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"widget"}, result.Vercel)
	assert.Equal(t, []string{"widget"}, result.Cloudflare)
	assert.Equal(t, []string{"edge-fn"}, result.Workers)
	assert.Equal(t, []string{"widget"}, result.GitHub)
	assert.Equal(t, 0, result.AlreadyConnected)
	assert.Equal(t, 0, result.NoRepoURL)

	var reloaded models.Application
	require.NoError(t, db.First(&reloaded, widget.ID).Error)
	assert.Equal(t, "prj_1", reloaded.VercelProjectID)
	assert.Equal(t, "widget-pages", reloaded.CloudflareProjectName)
	assert.Equal(t, "widget", reloaded.GithubRepoName)
	// the first matching provider fills live_url
	assert.Equal(t, "https://widget.vercel.app", reloaded.LiveURL)

	require.NoError(t, db.First(&reloaded, edge.ID).Error)
	assert.Equal(t, "edge-fn", reloaded.CloudflareWorkerName)
	assert.Empty(t, reloaded.GithubRepoName)
}

func TestAutoConnectNeverOverwritesLinkage(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	seedCredential(t, db, 1, models.PROVIDER_VERCEL)

	app := createApp(t, db, &models.Application{
		UserID:          1,
		Name:            "widget",
		RepositoryURL:   "https://gitlab.com/acme/widget",
		VercelProjectID: "prj_existing",
		LiveURL:         "https://widget.example.com",
	})

	fv := &fakeVercel{
		projects: []vercel.Project{
			{ID: "prj_other", Name: "widget", Link: &vercel.ProjectLink{Type: "github", Repo: "widget"}},
		},
	}
	engine := newTestEngine(db, fv, nil, nil)

	result, err := engine.AutoConnectProviders(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, result.Vercel)
	assert.Equal(t, 1, result.AlreadyConnected)

	var reloaded models.Application
	require.NoError(t, db.First(&reloaded, app.ID).Error)
	assert.Equal(t, "prj_existing", reloaded.VercelProjectID)
	assert.Equal(t, "https://widget.example.com", reloaded.LiveURL)
}

func TestAutoConnectKeepsExistingLiveURL(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)
	seedCredential(t, db, 1, models.PROVIDER_VERCEL)

	app := createApp(t, db, &models.Application{
		UserID:        1,
		Name:          "widget",
		RepositoryURL: "https://gitlab.com/acme/widget",
		LiveURL:       "https://widget.example.com",
	})

	fv := &fakeVercel{
		projects: []vercel.Project{
			{ID: "prj_1", Name: "widget", Link: &vercel.ProjectLink{Type: "github", Repo: "widget"}},
		},
	}
	engine := newTestEngine(db, fv, nil, nil)

	result, err := engine.AutoConnectProviders(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"widget"}, result.Vercel)

	var reloaded models.Application
	require.NoError(t, db.First(&reloaded, app.ID).Error)
	assert.Equal(t, "prj_1", reloaded.VercelProjectID)
	assert.Equal(t, "https://widget.example.com", reloaded.LiveURL)
}

func TestAutoConnectCountsApplicationsWithoutRepoURL(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)

	createApp(t, db, &models.Application{UserID: 1, Name: "scratchpad"})
	createApp(t, db, &models.Application{UserID: 1, Name: "notes", RepositoryURL: "   "})

	engine := newTestEngine(db, nil, nil, nil)
	result, err := engine.AutoConnectProviders(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NoRepoURL)
	assert.Empty(t, result.Vercel)
	assert.Empty(t, result.GitHub)
}

func TestAutoConnectSkipsProvidersWithoutCredential(t *testing.T) {
	db := setupTestDB(t)
	seedProviderCatalog(t, db, 1)

	app := createApp(t, db, &models.Application{
		UserID:        1,
		Name:          "widget",
		RepositoryURL: "https://gitlab.com/acme/widget",
	})

	// matching projects exist upstream but no credential is stored, so the
	// lookup tables are never built
	fv := &fakeVercel{
		projects: []vercel.Project{
			{ID: "prj_1", Name: "widget", Link: &vercel.ProjectLink{Type: "github", Repo: "widget"}},
		},
	}
	engine := newTestEngine(db, fv, nil, nil)

	result, err := engine.AutoConnectProviders(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, result.Vercel)

	var reloaded models.Application
	require.NoError(t, db.First(&reloaded, app.ID).Error)
	assert.Empty(t, reloaded.VercelProjectID)
}

func TestAutoConnectRequiresAuthentication(t *testing.T) {
	db := setupTestDB(t)
	engine := newTestEngine(db, nil, nil, nil)

	_, err := engine.AutoConnectProviders(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
