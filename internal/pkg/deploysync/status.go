package deploysync

import (
	"strings"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
)

// Fixed lookup tables translating provider-native states into the unified
// deployment status vocabulary. Unknown or empty inputs map to pending;
// the mappers are total and never panic.

var vercelStatusTable = map[string]string{
	"READY":        models.DEPLOY_STATUS_DEPLOYED,
	"ERROR":        models.DEPLOY_STATUS_FAILED,
	"BUILDING":     models.DEPLOY_STATUS_BUILDING,
	"INITIALIZING": models.DEPLOY_STATUS_BUILDING,
	"QUEUED":       models.DEPLOY_STATUS_PENDING,
	"CANCELED":     models.DEPLOY_STATUS_ROLLED_BACK,
}

var cloudflareStatusTable = map[string]string{
	"success":  models.DEPLOY_STATUS_DEPLOYED,
	"failure":  models.DEPLOY_STATUS_FAILED,
	"failed":   models.DEPLOY_STATUS_FAILED,
	"active":   models.DEPLOY_STATUS_BUILDING,
	"building": models.DEPLOY_STATUS_BUILDING,
	"canceled": models.DEPLOY_STATUS_ROLLED_BACK,
	"queued":   models.DEPLOY_STATUS_PENDING,
	"idle":     models.DEPLOY_STATUS_PENDING,
}

var githubStatusTable = map[string]string{
	"success":     models.DEPLOY_STATUS_DEPLOYED,
	"error":       models.DEPLOY_STATUS_FAILED,
	"failure":     models.DEPLOY_STATUS_FAILED,
	"in_progress": models.DEPLOY_STATUS_BUILDING,
	"queued":      models.DEPLOY_STATUS_PENDING,
	"pending":     models.DEPLOY_STATUS_PENDING,
	"inactive":    models.DEPLOY_STATUS_ROLLED_BACK,
}

// MapVercelStatus maps a Vercel deployment state onto the unified vocabulary.
func MapVercelStatus(state string) string {
	if mapped, ok := vercelStatusTable[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return mapped
	}
	return models.DEPLOY_STATUS_PENDING
}

// MapCloudflareStatus maps a Pages latest-stage status onto the unified vocabulary.
func MapCloudflareStatus(status string) string {
	if mapped, ok := cloudflareStatusTable[strings.ToLower(strings.TrimSpace(status))]; ok {
		return mapped
	}
	return models.DEPLOY_STATUS_PENDING
}

// MapGithubStatus maps a GitHub deployment status state onto the unified vocabulary.
func MapGithubStatus(state string) string {
	if mapped, ok := githubStatusTable[strings.ToLower(strings.TrimSpace(state))]; ok {
		return mapped
	}
	return models.DEPLOY_STATUS_PENDING
}

// ClassifyEnvironment buckets a provider-native environment signal into one of
// the fixed environment slugs. Matching is substring based and case
// insensitive; anything that is neither production-like nor staging-like is
// treated as development.
func ClassifyEnvironment(signal string) string {
	s := strings.ToLower(strings.TrimSpace(signal))
	if strings.Contains(s, "prod") {
		return models.ENV_PRODUCTION
	}
	if strings.Contains(s, "stag") || strings.Contains(s, "preview") {
		return models.ENV_STAGING
	}
	return models.ENV_DEVELOPMENT
}
