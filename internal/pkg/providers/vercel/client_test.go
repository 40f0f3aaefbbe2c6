package vercel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func TestListProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v9/projects", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"projects":[
			{"id":"prj_1","name":"widget","link":{"type":"github","repo":"widget","org":"acme"}},
			{"id":"prj_2","name":"standalone"}
		]}`))
	})

	projects := client.ListProjects(context.Background())
	require.Len(t, projects, 2)
	assert.Equal(t, "prj_1", projects[0].ID)
	assert.Equal(t, "widget", projects[0].LinkedRepoName())
	assert.Empty(t, projects[1].LinkedRepoName())
}

func TestListDeployments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v6/deployments", r.URL.Path)
		assert.Equal(t, "prj_1", r.URL.Query().Get("projectId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"deployments":[{
			"uid":"dpl_abc",
			"url":"widget.vercel.app",
			"state":"READY",
			"target":"production",
			"createdAt":1700000000000,
			"meta":{"githubCommitRef":"main","githubCommitSha":"0c0ffee"}
		}]}`))
	})

	deployments := client.ListDeployments(context.Background(), "prj_1")
	require.Len(t, deployments, 1)

	d := deployments[0]
	assert.Equal(t, "dpl_abc", d.UID)
	assert.Equal(t, "main", d.Branch())
	assert.Equal(t, "0c0ffee", d.CommitSHA())
	assert.Equal(t, time.UnixMilli(1700000000000), d.CreatedTime())
}

func TestListDeploymentsFailsSoft(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"forbidden"}}`))
	})

	assert.Nil(t, client.ListDeployments(context.Background(), "prj_1"))
	assert.Nil(t, client.ListProjects(context.Background()))
}

func TestRequestsRequireToken(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.Token = ""

	assert.Nil(t, client.ListProjects(context.Background()))
	assert.Nil(t, client.ListDeployments(context.Background(), "prj_1"))
	assert.False(t, called)
}

func TestListDeploymentsRequiresProjectID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	assert.Nil(t, client.ListDeployments(context.Background(), "  "))
}
