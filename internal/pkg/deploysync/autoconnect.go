package deploysync

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
)

// AutoConnectResult lists the names of applications newly linked per provider,
// plus counters for applications that were already connected or carried no
// usable repository URL.
type AutoConnectResult struct {
	Vercel           []string `json:"vercel"`
	Cloudflare       []string `json:"cloudflare"`
	Workers          []string `json:"workers"`
	GitHub           []string `json:"github"`
	AlreadyConnected int      `json:"already_connected"`
	NoRepoURL        int      `json:"no_repo_url"`
}

// linkTarget is one entry of a provider lookup table keyed by repository name.
type linkTarget struct {
	ID      string
	LiveURL string
}

// AutoConnectProviders scans all of the user's applications and the user's
// provider projects/workers and establishes linkage by repository-name
// matching. Linkage fields are only ever filled in, never overwritten, and
// live_url is set only when the application has none.
func (e *Engine) AutoConnectProviders(ctx context.Context, userID uint) (*AutoConnectResult, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var apps []models.Application
	if err := e.db.Where("user_id = ?", userID).Find(&apps).Error; err != nil {
		return nil, err
	}

	vercelLookup, pagesLookup, workersLookup := e.buildLookups(ctx, userID)

	result := &AutoConnectResult{}
	type stagedUpdate struct {
		appID   uint
		appName string
		fields  map[string]interface{}
	}
	var staged []stagedUpdate

	for i := range apps {
		app := apps[i]
		repoName := app.RepoName()
		if repoName == "" {
			result.NoRepoURL++
			continue
		}

		fields := map[string]interface{}{}
		liveURLStaged := false
		stageLiveURL := func(u string) {
			if u == "" || app.LiveURL != "" || liveURLStaged {
				return
			}
			fields["live_url"] = u
			liveURLStaged = true
		}

		if app.VercelProjectID == "" {
			if target, ok := vercelLookup[repoName]; ok {
				fields["vercel_project_id"] = target.ID
				stageLiveURL(target.LiveURL)
				result.Vercel = append(result.Vercel, app.Name)
			}
		}
		if app.CloudflareProjectName == "" {
			if target, ok := pagesLookup[repoName]; ok {
				fields["cloudflare_project_name"] = target.ID
				stageLiveURL(target.LiveURL)
				result.Cloudflare = append(result.Cloudflare, app.Name)
			}
		}
		if app.CloudflareWorkerName == "" {
			if target, ok := workersLookup[repoName]; ok {
				fields["cloudflare_worker_name"] = target.ID
				result.Workers = append(result.Workers, app.Name)
			}
		}
		// GitHub linkage is derived purely from the URL shape; no credential
		// or API call is involved.
		if app.GithubRepoName == "" && app.IsGithubRepo() {
			fields["github_repo_name"] = repoName
			result.GitHub = append(result.GitHub, app.Name)
		}

		if len(fields) == 0 {
			if app.HasLinkage() {
				result.AlreadyConnected++
			}
			continue
		}
		staged = append(staged, stagedUpdate{appID: app.ID, appName: app.Name, fields: fields})
	}

	// Apply staged updates concurrently, best effort: one application's
	// failure never blocks the others.
	var wg sync.WaitGroup
	for _, s := range staged {
		wg.Add(1)
		go func(s stagedUpdate) {
			defer wg.Done()
			err := e.db.Model(&models.Application{}).
				Where("id = ?", s.appID).Updates(s.fields).Error
			if err != nil {
				log.Printf("deploysync: auto-connect update for %q failed: %v", s.appName, err)
			}
		}(s)
	}
	wg.Wait()

	return result, nil
}

// buildLookups fetches the user's provider inventories concurrently and keys
// them by repository name. A table is only built when the user stored a
// credential for that provider. Keys are first-match-wins: a key is never
// overwritten once set.
func (e *Engine) buildLookups(ctx context.Context, userID uint) (map[string]linkTarget, map[string]linkTarget, map[string]linkTarget) {
	vercelLookup := map[string]linkTarget{}
	pagesLookup := map[string]linkTarget{}
	workersLookup := map[string]linkTarget{}

	var wg sync.WaitGroup

	if models.HasProviderCredential(e.db, userID, models.PROVIDER_VERCEL) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := e.newVercel(e.providerToken(userID, models.PROVIDER_VERCEL))
			for _, p := range client.ListProjects(ctx) {
				key := p.LinkedRepoName()
				if key == "" {
					key = p.Name
				}
				if key == "" {
					continue
				}
				if _, exists := vercelLookup[key]; exists {
					continue
				}
				vercelLookup[key] = linkTarget{
					ID:      p.ID,
					LiveURL: fmt.Sprintf("https://%s.vercel.app", p.Name),
				}
			}
		}()
	}

	if models.HasProviderCredential(e.db, userID, models.PROVIDER_CLOUDFLARE) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := e.newCloudflare(
				e.providerToken(userID, models.PROVIDER_CLOUDFLARE),
				e.cloudflareAccountID(userID),
			)
			for _, p := range client.ListPagesProjects(ctx) {
				key := p.LinkedRepoName()
				if key == "" {
					key = p.Name
				}
				if key == "" {
					continue
				}
				if _, exists := pagesLookup[key]; exists {
					continue
				}
				pagesLookup[key] = linkTarget{ID: p.Name, LiveURL: p.LiveURL()}
			}
			for _, s := range client.ListWorkerScripts(ctx) {
				if s.ID == "" {
					continue
				}
				if _, exists := workersLookup[s.ID]; exists {
					continue
				}
				workersLookup[s.ID] = linkTarget{ID: s.ID}
			}
		}()
	}

	wg.Wait()
	return vercelLookup, pagesLookup, workersLookup
}
