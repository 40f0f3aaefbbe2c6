package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// Provider tokens are sealed with AES-GCM before they are written to the
// database. The sealing key is derived from the app secret, so rotating the
// secret invalidates all stored credentials.

var ErrInvalidSealedValue = errors.New("invalid sealed value")

func sealingKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret is required for credential sealing")
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

// SealToken encrypts a provider token for storage.
func SealToken(token, secret string) (string, error) {
	key, err := sealingKey(secret)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(token), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// OpenToken decrypts a sealed provider token.
func OpenToken(sealed, secret string) (string, error) {
	key, err := sealingKey(secret)
	if err != nil {
		return "", err
	}
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrInvalidSealedValue
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", ErrInvalidSealedValue
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidSealedValue
	}
	return string(plain), nil
}
