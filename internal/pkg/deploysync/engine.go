package deploysync

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/cloudflare"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/github"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/providers/vercel"
	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/security"
)

// Precondition failures. Each aborts a sync with zero side effects.
var (
	ErrNotAuthenticated      = errors.New("you must be signed in")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrNoVercelProject       = errors.New("application has no Vercel project linked")
	ErrNoCloudflareProject   = errors.New("application has no Cloudflare project linked")
	ErrNoGithubRepo          = errors.New("application has no GitHub repository linked")
	ErrProviderNotConfigured = errors.New("provider is not configured for this account")
	ErrEnvironmentsMissing   = errors.New("environment catalog is incomplete")
)

// SyncResult reports one reconciliation run. Synced counts fetched provider
// records, not writes: synced>0 with created=updated=0 means nothing changed
// upstream, while synced=0 means the provider returned no deployments (or the
// call failed, which looks identical by design).
type SyncResult struct {
	Synced  int `json:"synced"`
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// VercelAPI is the slice of the Vercel client the engine consumes.
type VercelAPI interface {
	ListProjects(ctx context.Context) []vercel.Project
	ListDeployments(ctx context.Context, projectID string) []vercel.Deployment
}

// CloudflareAPI is the slice of the Cloudflare client the engine consumes.
type CloudflareAPI interface {
	ListPagesProjects(ctx context.Context) []cloudflare.PagesProject
	ListPagesDeployments(ctx context.Context, projectName string) []cloudflare.PagesDeployment
	ListWorkerScripts(ctx context.Context) []cloudflare.WorkerScript
}

// GithubAPI is the slice of the GitHub client the engine consumes.
type GithubAPI interface {
	ListUserRepos(ctx context.Context, username string) []github.Repo
	ListDeployments(ctx context.Context, owner, repo string) []github.Deployment
	LatestDeploymentStatus(ctx context.Context, owner, repo string, deploymentID int64) *github.DeploymentStatus
}

// Engine converges the local deployment table with the providers' state.
type Engine struct {
	db        *gorm.DB
	appSecret string

	newVercel     func(token string) VercelAPI
	newCloudflare func(token, accountID string) CloudflareAPI
	newGithub     func(token string) GithubAPI
}

// NewEngine builds an engine with the real provider clients.
func NewEngine(db *gorm.DB, appSecret string) *Engine {
	return &Engine{
		db:        db,
		appSecret: appSecret,
		newVercel: func(token string) VercelAPI {
			return vercel.NewClient(token)
		},
		newCloudflare: func(token, accountID string) CloudflareAPI {
			return cloudflare.NewClient(token, accountID)
		},
		newGithub: func(token string) GithubAPI {
			return github.NewClient(token)
		},
	}
}

// NewEngineWithClients builds an engine with injected client factories; used
// by tests and by callers that already hold configured clients.
func NewEngineWithClients(
	db *gorm.DB,
	appSecret string,
	newVercel func(token string) VercelAPI,
	newCloudflare func(token, accountID string) CloudflareAPI,
	newGithub func(token string) GithubAPI,
) *Engine {
	return &Engine{
		db:            db,
		appSecret:     appSecret,
		newVercel:     newVercel,
		newCloudflare: newCloudflare,
		newGithub:     newGithub,
	}
}

// syncContext carries everything one reconciliation run needs after the
// preconditions passed.
type syncContext struct {
	app        *models.Application
	provider   *models.CloudProvider
	production *models.Environment
	staging    *models.Environment
}

// checkPreconditions validates the common preconditions in order and loads
// the rows the run needs. missingLinkage is returned when the application's
// relevant linkage field is empty.
func (e *Engine) checkPreconditions(userID, applicationID uint, providerSlug string, linkageSet func(*models.Application) bool, missingLinkage error) (*syncContext, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var app models.Application
	if err := e.db.Where("id = ? AND user_id = ?", applicationID, userID).First(&app).Error; err != nil {
		return nil, ErrApplicationNotFound
	}

	if !linkageSet(&app) {
		return nil, missingLinkage
	}

	provider, err := models.FindProviderBySlug(e.db, userID, providerSlug)
	if err != nil {
		return nil, ErrProviderNotConfigured
	}

	production, err := models.FindEnvironmentBySlug(e.db, models.ENV_PRODUCTION)
	if err != nil {
		return nil, ErrEnvironmentsMissing
	}
	staging, err := models.FindEnvironmentBySlug(e.db, models.ENV_STAGING)
	if err != nil {
		return nil, ErrEnvironmentsMissing
	}

	return &syncContext{
		app:        &app,
		provider:   provider,
		production: production,
		staging:    staging,
	}, nil
}

// environmentID makes the binary production-vs-staging choice sync uses.
// Development only exists for manually entered deployments.
func (sc *syncContext) environmentID(signal string) uint {
	if ClassifyEnvironment(signal) == models.ENV_PRODUCTION {
		return sc.production.ID
	}
	return sc.staging.ID
}

// record is a provider-agnostic deployment either inserted or used to update
// an existing row.
type record struct {
	ExternalID    string
	EnvironmentID uint
	Status        string
	URL           string
	Branch        string
	CommitSHA     string
	DeployedAt    *time.Time
}

// upsert applies one record: insert when unseen, update the mutable fields
// when the status changed, skip otherwise. Each record commits on its own; a
// failure is logged and never affects sibling records.
func (e *Engine) upsert(sc *syncContext, rec record, result *SyncResult) {
	result.Synced++

	var existing models.Deployment
	err := e.db.Where("application_id = ? AND external_id = ?", sc.app.ID, rec.ExternalID).
		First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("deploysync: lookup for %s failed: %v", rec.ExternalID, err)
			return
		}
		deployment := models.Deployment{
			ApplicationID: sc.app.ID,
			ProviderID:    sc.provider.ID,
			EnvironmentID: rec.EnvironmentID,
			ExternalID:    rec.ExternalID,
			URL:           rec.URL,
			Branch:        rec.Branch,
			CommitSHA:     rec.CommitSHA,
			Status:        rec.Status,
			DeployedAt:    rec.DeployedAt,
		}
		if err := e.db.Create(&deployment).Error; err != nil {
			log.Printf("deploysync: insert for %s failed: %v", rec.ExternalID, err)
			return
		}
		result.Created++
		return
	}

	if existing.Status == rec.Status {
		return
	}
	updates := map[string]interface{}{
		"status":     rec.Status,
		"url":        rec.URL,
		"branch":     rec.Branch,
		"commit_sha": rec.CommitSHA,
	}
	if err := e.db.Model(&existing).Updates(updates).Error; err != nil {
		log.Printf("deploysync: update for %s failed: %v", rec.ExternalID, err)
		return
	}
	result.Updated++
}

// markSynced bumps the application's sync bookkeeping after a run.
func (e *Engine) markSynced(app *models.Application) {
	now := time.Now()
	if err := e.db.Model(app).Updates(map[string]interface{}{
		"sync_count":     gorm.Expr("sync_count + 1"),
		"last_synced_at": now,
	}).Error; err != nil {
		log.Printf("deploysync: bookkeeping update for application %d failed: %v", app.ID, err)
	}
}

// providerToken opens the user's sealed token for a provider. A missing or
// unreadable credential yields an empty token: the downstream client then
// fails soft to an empty listing, matching the provider failure contract.
func (e *Engine) providerToken(userID uint, slug string) string {
	cred, err := models.FindProviderCredential(e.db, userID, slug)
	if err != nil {
		return ""
	}
	token, err := security.OpenToken(cred.SealedToken, e.appSecret)
	if err != nil {
		log.Printf("deploysync: could not open %s credential for user %d: %v", slug, userID, err)
		return ""
	}
	return token
}

func (e *Engine) cloudflareAccountID(userID uint) string {
	cred, err := models.FindProviderCredential(e.db, userID, models.PROVIDER_CLOUDFLARE)
	if err != nil {
		return ""
	}
	return cred.CloudflareAccountID
}

// normalizeURL ensures stored deployment URLs carry a scheme.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// repoOwner extracts the owner segment of a github.com repository URL.
func repoOwner(repositoryURL string) string {
	raw := strings.TrimSuffix(strings.TrimSpace(repositoryURL), "/")
	raw = strings.TrimSuffix(raw, ".git")
	parts := strings.Split(raw, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
