package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSettingsIssueAPIKey(t *testing.T) {
	us := &UserSettings{UserID: 1}

	key, err := us.IssueAPIKey()
	require.NoError(t, err)
	require.NotEmpty(t, key)
	assert.True(t, strings.HasPrefix(key, "clt_"))

	assert.NotEmpty(t, us.APIKeyHash)
	assert.NotEmpty(t, us.APIKeyPrefix)
	assert.True(t, strings.HasPrefix(key, us.APIKeyPrefix))
	assert.NotNil(t, us.APIKeyCreatedAt)
	assert.Nil(t, us.APIKeyLastUsedAt)
	assert.True(t, us.HasActiveAPIKey())
	assert.Equal(t, HashAPIKey(key), us.APIKeyHash)
}

func TestUserSettingsIssueAPIKeyRotates(t *testing.T) {
	us := &UserSettings{UserID: 1}

	first, err := us.IssueAPIKey()
	require.NoError(t, err)
	firstHash := us.APIKeyHash

	second, err := us.IssueAPIKey()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, firstHash, us.APIKeyHash)
	assert.True(t, us.HasActiveAPIKey())
}

func TestUserSettingsRevokeAPIKey(t *testing.T) {
	us := &UserSettings{UserID: 99}
	_, err := us.IssueAPIKey()
	require.NoError(t, err)

	us.RevokeAPIKey()

	assert.Empty(t, us.APIKeyHash)
	assert.Empty(t, us.APIKeyPrefix)
	assert.NotNil(t, us.APIKeyRevokedAt)
	assert.Nil(t, us.APIKeyLastUsedAt)
	assert.False(t, us.HasActiveAPIKey())
}

func TestUserSettingsTouchAPIKeyUsage(t *testing.T) {
	us := &UserSettings{UserID: 5}
	require.Nil(t, us.APIKeyLastUsedAt)

	us.TouchAPIKeyUsage()
	assert.NotNil(t, us.APIKeyLastUsedAt)
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIKey("clt_abc"), HashAPIKey("  clt_abc  "))
	assert.NotEqual(t, HashAPIKey("clt_abc"), HashAPIKey("clt_abd"))
}
