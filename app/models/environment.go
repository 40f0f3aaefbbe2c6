package models

import (
	"time"

	"gorm.io/gorm"
)

// Environment slugs form a small fixed set with stable values.
const (
	ENV_DEVELOPMENT = "development"
	ENV_STAGING     = "staging"
	ENV_PRODUCTION  = "production"
)

// Environment is one of the fixed deployment targets an application can run in.
type Environment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;type:varchar(50)" json:"slug" validate:"required,oneof=development staging production"`
	Name      string         `gorm:"type:varchar(100)" json:"name" validate:"required"`
	SortOrder int            `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FindEnvironmentBySlug resolves one of the fixed environment rows.
func FindEnvironmentBySlug(db *gorm.DB, slug string) (*Environment, error) {
	var environment Environment
	err := db.Where("slug = ?", slug).First(&environment).Error
	if err != nil {
		return nil, err
	}
	return &environment, nil
}

// SeedEnvironments creates the fixed environment rows when missing.
func SeedEnvironments(db *gorm.DB) error {
	defaults := []Environment{
		{Slug: ENV_DEVELOPMENT, Name: "Development", SortOrder: 1},
		{Slug: ENV_STAGING, Name: "Staging", SortOrder: 2},
		{Slug: ENV_PRODUCTION, Name: "Production", SortOrder: 3},
	}
	for _, e := range defaults {
		var count int64
		if err := db.Model(&Environment{}).Where("slug = ?", e.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&e).Error; err != nil {
			return err
		}
	}
	return nil
}
