package deploysync

import (
	"testing"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
)

func TestMapVercelStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"READY", models.DEPLOY_STATUS_DEPLOYED},
		{"ready", models.DEPLOY_STATUS_DEPLOYED},
		{" READY ", models.DEPLOY_STATUS_DEPLOYED},
		{"ERROR", models.DEPLOY_STATUS_FAILED},
		{"BUILDING", models.DEPLOY_STATUS_BUILDING},
		{"INITIALIZING", models.DEPLOY_STATUS_BUILDING},
		{"QUEUED", models.DEPLOY_STATUS_PENDING},
		{"CANCELED", models.DEPLOY_STATUS_ROLLED_BACK},
		{"", models.DEPLOY_STATUS_PENDING},
		{"SOMETHING_NEW", models.DEPLOY_STATUS_PENDING},
	}
	for _, c := range cases {
		if got := MapVercelStatus(c.in); got != c.want {
			t.Errorf("MapVercelStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMapCloudflareStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"success", models.DEPLOY_STATUS_DEPLOYED},
		{"SUCCESS", models.DEPLOY_STATUS_DEPLOYED},
		{"failure", models.DEPLOY_STATUS_FAILED},
		{"failed", models.DEPLOY_STATUS_FAILED},
		{"active", models.DEPLOY_STATUS_BUILDING},
		{"building", models.DEPLOY_STATUS_BUILDING},
		{"canceled", models.DEPLOY_STATUS_ROLLED_BACK},
		{"queued", models.DEPLOY_STATUS_PENDING},
		{"idle", models.DEPLOY_STATUS_PENDING},
		{"", models.DEPLOY_STATUS_PENDING},
		{"unheard-of", models.DEPLOY_STATUS_PENDING},
	}
	for _, c := range cases {
		if got := MapCloudflareStatus(c.in); got != c.want {
			t.Errorf("MapCloudflareStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMapGithubStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"success", models.DEPLOY_STATUS_DEPLOYED},
		{"error", models.DEPLOY_STATUS_FAILED},
		{"failure", models.DEPLOY_STATUS_FAILED},
		{"in_progress", models.DEPLOY_STATUS_BUILDING},
		{"queued", models.DEPLOY_STATUS_PENDING},
		{"pending", models.DEPLOY_STATUS_PENDING},
		{"inactive", models.DEPLOY_STATUS_ROLLED_BACK},
		{"", models.DEPLOY_STATUS_PENDING},
		{"mystery", models.DEPLOY_STATUS_PENDING},
	}
	for _, c := range cases {
		if got := MapGithubStatus(c.in); got != c.want {
			t.Errorf("MapGithubStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassifyEnvironment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"production", models.ENV_PRODUCTION},
		{"Production", models.ENV_PRODUCTION},
		{"prod", models.ENV_PRODUCTION},
		{"github-pages-production", models.ENV_PRODUCTION},
		{"staging", models.ENV_STAGING},
		{"preview", models.ENV_STAGING},
		{"Preview Deployment", models.ENV_STAGING},
		{"development", models.ENV_DEVELOPMENT},
		{"", models.ENV_DEVELOPMENT},
		{"qa", models.ENV_DEVELOPMENT},
	}
	for _, c := range cases {
		if got := ClassifyEnvironment(c.in); got != c.want {
			t.Errorf("ClassifyEnvironment(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
