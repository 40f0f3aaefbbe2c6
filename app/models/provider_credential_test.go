package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCloudflareAccountID(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidCloudflareAccountID("0123456789abcdef0123456789abcdef"))
	assert.False(t, ValidCloudflareAccountID(""))
	assert.False(t, ValidCloudflareAccountID("0123456789abcdef"))
	assert.False(t, ValidCloudflareAccountID("0123456789ABCDEF0123456789ABCDEF"))
	assert.False(t, ValidCloudflareAccountID("0123456789abcdef0123456789abcdeg"))
	assert.False(t, ValidCloudflareAccountID("0123456789abcdef0123456789abcdef0"))
}

func TestValidGithubUsername(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidGithubUsername("octocat"))
	assert.True(t, ValidGithubUsername("a"))
	assert.True(t, ValidGithubUsername("my-org-1"))
	assert.True(t, ValidGithubUsername(strings.Repeat("a", 39)))

	assert.False(t, ValidGithubUsername(""))
	assert.False(t, ValidGithubUsername("-leading"))
	assert.False(t, ValidGithubUsername("trailing-"))
	assert.False(t, ValidGithubUsername("has space"))
	assert.False(t, ValidGithubUsername("dot.name"))
	assert.False(t, ValidGithubUsername(strings.Repeat("a", 40)))
}
