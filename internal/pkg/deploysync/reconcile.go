package deploysync

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
)

// SyncVercelDeployments reconciles the local deployment table of one
// application with the Vercel deployment list of its linked project.
func (e *Engine) SyncVercelDeployments(ctx context.Context, userID, applicationID uint) (*SyncResult, error) {
	sc, err := e.checkPreconditions(userID, applicationID, models.PROVIDER_VERCEL,
		func(a *models.Application) bool { return a.VercelProjectID != "" },
		ErrNoVercelProject)
	if err != nil {
		return nil, err
	}

	client := e.newVercel(e.providerToken(userID, models.PROVIDER_VERCEL))
	deployments := client.ListDeployments(ctx, sc.app.VercelProjectID)

	result := &SyncResult{}
	for _, d := range deployments {
		deployedAt := d.CreatedTime()
		e.upsert(sc, record{
			ExternalID:    fmt.Sprintf("%s:%s", models.PROVIDER_VERCEL, d.UID),
			EnvironmentID: sc.environmentID(d.Target),
			Status:        MapVercelStatus(d.State),
			URL:           normalizeURL(d.URL),
			Branch:        d.Branch(),
			CommitSHA:     d.CommitSHA(),
			DeployedAt:    &deployedAt,
		}, result)
	}

	e.markSynced(sc.app)
	return result, nil
}

// SyncCloudflareDeployments reconciles one application against the deployment
// list of its linked Cloudflare Pages project.
func (e *Engine) SyncCloudflareDeployments(ctx context.Context, userID, applicationID uint) (*SyncResult, error) {
	sc, err := e.checkPreconditions(userID, applicationID, models.PROVIDER_CLOUDFLARE,
		func(a *models.Application) bool { return a.CloudflareProjectName != "" },
		ErrNoCloudflareProject)
	if err != nil {
		return nil, err
	}

	client := e.newCloudflare(
		e.providerToken(userID, models.PROVIDER_CLOUDFLARE),
		e.cloudflareAccountID(userID),
	)
	deployments := client.ListPagesDeployments(ctx, sc.app.CloudflareProjectName)

	result := &SyncResult{}
	for _, d := range deployments {
		deployedAt := d.CreatedOn
		e.upsert(sc, record{
			ExternalID:    fmt.Sprintf("%s:%s", models.PROVIDER_CLOUDFLARE, d.ID),
			EnvironmentID: sc.environmentID(d.Environment),
			Status:        MapCloudflareStatus(d.LatestStage.Status),
			URL:           normalizeURL(d.URL),
			Branch:        d.DeploymentTrigger.Metadata.Branch,
			CommitSHA:     d.DeploymentTrigger.Metadata.CommitHash,
			DeployedAt:    &deployedAt,
		}, result)
	}

	e.markSynced(sc.app)
	return result, nil
}

// SyncGithubDeployments reconciles one application against the GitHub
// deployments of its linked repository, resolving each deployment's newest
// status for the unified state.
func (e *Engine) SyncGithubDeployments(ctx context.Context, userID, applicationID uint) (*SyncResult, error) {
	sc, err := e.checkPreconditions(userID, applicationID, models.PROVIDER_GITHUB,
		func(a *models.Application) bool { return a.GithubRepoName != "" },
		ErrNoGithubRepo)
	if err != nil {
		return nil, err
	}

	owner := repoOwner(sc.app.RepositoryURL)
	repo := sc.app.GithubRepoName
	client := e.newGithub(e.providerToken(userID, models.PROVIDER_GITHUB))
	deployments := client.ListDeployments(ctx, owner, repo)

	result := &SyncResult{}
	for _, d := range deployments {
		status := models.DEPLOY_STATUS_PENDING
		url := ""
		if latest := client.LatestDeploymentStatus(ctx, owner, repo, d.ID); latest != nil {
			status = MapGithubStatus(latest.State)
			url = normalizeURL(latest.URL())
		}
		deployedAt := d.CreatedAt
		e.upsert(sc, record{
			ExternalID:    fmt.Sprintf("%s:%d", models.PROVIDER_GITHUB, d.ID),
			EnvironmentID: sc.environmentID(d.Environment),
			Status:        status,
			URL:           url,
			Branch:        d.Ref,
			CommitSHA:     d.SHA,
			DeployedAt:    &deployedAt,
		}, result)
	}

	e.markSynced(sc.app)
	return result, nil
}

// SyncApplicationDeployments runs every provider sync the application is
// linked for and aggregates the counts. A failing provider run never blocks
// the remaining ones; an application without any linkage yields an empty
// result.
func (e *Engine) SyncApplicationDeployments(ctx context.Context, userID, applicationID uint) (*SyncResult, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var app models.Application
	if err := e.db.Where("id = ? AND user_id = ?", applicationID, userID).First(&app).Error; err != nil {
		return nil, ErrApplicationNotFound
	}

	total := &SyncResult{}
	collect := func(res *SyncResult, err error) {
		if err != nil || res == nil {
			return
		}
		total.Synced += res.Synced
		total.Created += res.Created
		total.Updated += res.Updated
	}

	if app.VercelProjectID != "" {
		collect(e.SyncVercelDeployments(ctx, userID, app.ID))
	}
	if app.CloudflareProjectName != "" {
		collect(e.SyncCloudflareDeployments(ctx, userID, app.ID))
	}
	if app.GithubRepoName != "" {
		collect(e.SyncGithubDeployments(ctx, userID, app.ID))
	}

	return total, nil
}

// SyncAllResult aggregates a bulk sync over every linked application.
type SyncAllResult struct {
	Applications int `json:"applications"`
	Synced       int `json:"synced"`
	Created      int `json:"created"`
	Updated      int `json:"updated"`
}

// SyncAllDeployments runs every applicable provider sync for each of the
// user's applications. Provider runs for one application are fanned out
// concurrently; a failing run is logged and never blocks the others.
func (e *Engine) SyncAllDeployments(ctx context.Context, userID uint) (*SyncAllResult, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var apps []models.Application
	if err := e.db.Where("user_id = ?", userID).Find(&apps).Error; err != nil {
		return nil, err
	}

	total := &SyncAllResult{}
	var mu sync.Mutex

	collect := func(res *SyncResult, err error) {
		if err != nil || res == nil {
			return
		}
		mu.Lock()
		total.Synced += res.Synced
		total.Created += res.Created
		total.Updated += res.Updated
		mu.Unlock()
	}

	for i := range apps {
		app := apps[i]
		if !app.HasLinkage() {
			continue
		}
		total.Applications++

		var wg sync.WaitGroup
		if app.VercelProjectID != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				collect(e.SyncVercelDeployments(ctx, userID, app.ID))
			}()
		}
		if app.CloudflareProjectName != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				collect(e.SyncCloudflareDeployments(ctx, userID, app.ID))
			}()
		}
		if app.GithubRepoName != "" {
			wg.Add(1)
			go func() {
				defer wg.Done()
				collect(e.SyncGithubDeployments(ctx, userID, app.ID))
			}()
		}
		wg.Wait()
	}

	return total, nil
}
