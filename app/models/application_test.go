package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationRepoName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widget", "widget"},
		{"https://github.com/acme/widget/", "widget"},
		{"https://github.com/acme/widget.git", "widget"},
		{"https://github.com/acme/widget.git/", "widget"},
		{"  https://gitlab.com/acme/api  ", "api"},
		{"git@github.com:acme/widget.git", "widget"},
		{"", ""},
		{"   ", ""},
		{"no-slashes-here", ""},
		{"https://github.com/acme/", "acme"},
	}
	for _, c := range cases {
		app := &Application{RepositoryURL: c.url}
		assert.Equal(t, c.want, app.RepoName(), "url %q", c.url)
	}
}

func TestApplicationIsGithubRepo(t *testing.T) {
	t.Parallel()

	assert.True(t, (&Application{RepositoryURL: "https://github.com/acme/widget"}).IsGithubRepo())
	assert.True(t, (&Application{RepositoryURL: "https://GITHUB.COM/acme/widget"}).IsGithubRepo())
	assert.False(t, (&Application{RepositoryURL: "https://gitlab.com/acme/widget"}).IsGithubRepo())
	assert.False(t, (&Application{}).IsGithubRepo())
}

func TestApplicationHasLinkage(t *testing.T) {
	t.Parallel()

	assert.False(t, (&Application{}).HasLinkage())
	assert.True(t, (&Application{VercelProjectID: "prj_1"}).HasLinkage())
	assert.True(t, (&Application{CloudflareProjectName: "widget"}).HasLinkage())
	assert.True(t, (&Application{CloudflareWorkerName: "edge-fn"}).HasLinkage())
	assert.True(t, (&Application{GithubRepoName: "widget"}).HasLinkage())
}

func TestApplicationValidate(t *testing.T) {
	t.Parallel()

	valid := &Application{Name: "widget", RepositoryURL: "https://github.com/acme/widget"}
	assert.NoError(t, valid.Validate())

	missingName := &Application{}
	assert.Error(t, missingName.Validate())

	badURL := &Application{Name: "widget", RepositoryURL: "not a url"}
	assert.Error(t, badURL.Validate())
}
