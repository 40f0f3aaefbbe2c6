package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-token")
	client.APIBaseURL = server.URL
	return client
}

func TestListUserRepos(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":1,"name":"widget","full_name":"octocat/widget","html_url":"https://github.com/octocat/widget","language":"Go"},
			{"id":2,"name":"dotfiles","full_name":"octocat/dotfiles","fork":true}
		]`))
	})

	repos := client.ListUserRepos(context.Background(), "octocat")
	require.Len(t, repos, 2)
	assert.Equal(t, "widget", repos[0].Name)
	assert.Equal(t, "octocat/widget", repos[0].FullName)
	assert.True(t, repos[1].Fork)
}

func TestListUserReposRejectsMalformedUsernames(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	assert.Nil(t, client.ListUserRepos(context.Background(), ""))
	assert.Nil(t, client.ListUserRepos(context.Background(), "-bad"))
	assert.Nil(t, client.ListUserRepos(context.Background(), "has space"))
}

func TestListDeployments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widget/deployments", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":7,"ref":"main","sha":"deadbee","environment":"production","created_at":"2025-06-01T12:00:00Z"}]`))
	})

	deployments := client.ListDeployments(context.Background(), "acme", "widget")
	require.Len(t, deployments, 1)
	assert.EqualValues(t, 7, deployments[0].ID)
	assert.Equal(t, "main", deployments[0].Ref)
	assert.Equal(t, "production", deployments[0].Environment)
}

func TestListDeploymentsRequiresOwnerAndRepo(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	assert.Nil(t, client.ListDeployments(context.Background(), "", "widget"))
	assert.Nil(t, client.ListDeployments(context.Background(), "acme", ""))
}

func TestLatestDeploymentStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widget/deployments/7/statuses", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"state":"success","environment_url":"https://widget.example.com","target_url":"https://ci.example.com/run/1"}]`))
	})

	status := client.LatestDeploymentStatus(context.Background(), "acme", "widget", 7)
	require.NotNil(t, status)
	assert.Equal(t, "success", status.State)
	assert.Equal(t, "https://widget.example.com", status.URL())
}

func TestLatestDeploymentStatusWithoutEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})

	assert.Nil(t, client.LatestDeploymentStatus(context.Background(), "acme", "widget", 7))
}

func TestDeploymentStatusURLFallsBackToTargetURL(t *testing.T) {
	t.Parallel()

	s := DeploymentStatus{TargetURL: "https://ci.example.com/run/1"}
	assert.Equal(t, "https://ci.example.com/run/1", s.URL())

	s.EnvironmentURL = "https://widget.example.com"
	assert.Equal(t, "https://widget.example.com", s.URL())
}
