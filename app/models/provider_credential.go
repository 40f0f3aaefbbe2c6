package models

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

// Cloudflare account ids are 32 lowercase hex characters. Malformed ids are
// rejected before any network call is made.
var cloudflareAccountIDPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// GitHub usernames per the import feature validation rules.
var githubUsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,37}[a-zA-Z0-9])?$`)

// ProviderCredential stores one user's API token for a hosting provider.
// Tokens are sealed at rest by the security package before being stored.
type ProviderCredential struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	UserID              uint           `gorm:"index:user_cred_slug,unique" json:"user_id"`
	ProviderSlug        string         `gorm:"index:user_cred_slug,unique;type:varchar(50)" json:"provider_slug" validate:"required,oneof=vercel cloudflare github"`
	SealedToken         string         `gorm:"type:text" json:"-"`
	CloudflareAccountID string         `gorm:"type:varchar(64)" json:"cloudflare_account_id"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidCloudflareAccountID reports whether id is a well-formed account id.
func ValidCloudflareAccountID(id string) bool {
	return cloudflareAccountIDPattern.MatchString(id)
}

// ValidGithubUsername reports whether name is a well-formed GitHub username.
func ValidGithubUsername(name string) bool {
	return githubUsernamePattern.MatchString(name)
}

// FindProviderCredential resolves one user's stored credential for a provider.
func FindProviderCredential(db *gorm.DB, userID uint, slug string) (*ProviderCredential, error) {
	var cred ProviderCredential
	err := db.Where("user_id = ? AND provider_slug = ?", userID, slug).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// HasProviderCredential reports whether the user stored a credential for slug.
func HasProviderCredential(db *gorm.DB, userID uint, slug string) bool {
	var count int64
	if err := db.Model(&ProviderCredential{}).
		Where("user_id = ? AND provider_slug = ?", userID, slug).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
