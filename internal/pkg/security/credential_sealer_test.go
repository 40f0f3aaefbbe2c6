package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealAndOpenToken(t *testing.T) {
	t.Parallel()

	sealed, err := SealToken("vercel-token-123", "app-secret")
	require.NoError(t, err)
	require.NotEmpty(t, sealed)
	assert.NotContains(t, sealed, "vercel-token-123")

	opened, err := OpenToken(sealed, "app-secret")
	require.NoError(t, err)
	assert.Equal(t, "vercel-token-123", opened)
}

func TestSealTokenProducesUniqueCiphertexts(t *testing.T) {
	t.Parallel()

	first, err := SealToken("same-token", "app-secret")
	require.NoError(t, err)
	second, err := SealToken("same-token", "app-secret")
	require.NoError(t, err)

	// random nonces make identical plaintexts seal differently
	assert.NotEqual(t, first, second)
}

func TestOpenTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	sealed, err := SealToken("token", "right-secret")
	require.NoError(t, err)

	_, err = OpenToken(sealed, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidSealedValue)
}

func TestOpenTokenRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	_, err := OpenToken("not base64 at all!!", "secret")
	assert.ErrorIs(t, err, ErrInvalidSealedValue)

	_, err = OpenToken("c2hvcnQ", "secret")
	assert.ErrorIs(t, err, ErrInvalidSealedValue)
}

func TestSealTokenRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := SealToken("token", "")
	assert.Error(t, err)
}
