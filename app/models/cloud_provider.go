package models

import (
	"time"

	"gorm.io/gorm"
)

// Provider slugs used across the catalog, stored credentials and synced deployments.
const (
	PROVIDER_VERCEL     = "vercel"
	PROVIDER_CLOUDFLARE = "cloudflare"
	PROVIDER_GITHUB     = "github"
)

// CloudProvider is a per-user catalog row identifying a hosting provider by slug.
// The reconciliation engine resolves this row by (user_id, slug) before it
// inserts deployments.
type CloudProvider struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index:user_provider_slug,unique" json:"user_id"`
	Slug       string         `gorm:"index:user_provider_slug,unique;type:varchar(50)" json:"slug" validate:"required,oneof=vercel cloudflare github"`
	Name       string         `gorm:"type:varchar(100)" json:"name" validate:"required,min=2,max=100"`
	WebsiteURL string         `gorm:"type:varchar(255)" json:"website_url" validate:"max=255"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// KnownProviderSlug reports whether slug names one of the supported providers.
func KnownProviderSlug(slug string) bool {
	switch slug {
	case PROVIDER_VERCEL, PROVIDER_CLOUDFLARE, PROVIDER_GITHUB:
		return true
	}
	return false
}

// FindProviderBySlug resolves the provider catalog row for one user.
func FindProviderBySlug(db *gorm.DB, userID uint, slug string) (*CloudProvider, error) {
	var provider CloudProvider
	err := db.Where("user_id = ? AND slug = ?", userID, slug).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// SeedDefaultProviders creates the three provider catalog rows for a new user
// when they do not exist yet.
func SeedDefaultProviders(db *gorm.DB, userID uint) error {
	defaults := []CloudProvider{
		{UserID: userID, Slug: PROVIDER_VERCEL, Name: "Vercel", WebsiteURL: "https://vercel.com"},
		{UserID: userID, Slug: PROVIDER_CLOUDFLARE, Name: "Cloudflare", WebsiteURL: "https://cloudflare.com"},
		{UserID: userID, Slug: PROVIDER_GITHUB, Name: "GitHub", WebsiteURL: "https://github.com"},
	}
	for _, p := range defaults {
		var count int64
		if err := db.Model(&CloudProvider{}).
			Where("user_id = ? AND slug = ?", userID, p.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
