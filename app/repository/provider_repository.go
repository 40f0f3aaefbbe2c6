package repository

import (
	"errors"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// providerRepository implements the ProviderRepository interface
type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository instance
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

// GetProviderBySlug retrieves one provider of a user by slug
func (r *providerRepository) GetProviderBySlug(userID uint, slug string) (*models.CloudProvider, error) {
	var provider models.CloudProvider
	err := r.db.Where("user_id = ? AND slug = ?", userID, slug).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetProviders retrieves the provider catalog of one user
func (r *providerRepository) GetProviders(userID uint) ([]models.CloudProvider, error) {
	var providers []models.CloudProvider
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&providers).Error
	return providers, err
}

// SeedProviders creates the default provider catalog for a new user
func (r *providerRepository) SeedProviders(userID uint) error {
	return models.SeedDefaultProviders(r.db, userID)
}

// GetEnvironmentBySlug retrieves one environment by slug
func (r *providerRepository) GetEnvironmentBySlug(slug string) (*models.Environment, error) {
	var environment models.Environment
	err := r.db.Where("slug = ?", slug).First(&environment).Error
	if err != nil {
		return nil, err
	}
	return &environment, nil
}

// GetEnvironments retrieves all environments
func (r *providerRepository) GetEnvironments() ([]models.Environment, error) {
	var environments []models.Environment
	err := r.db.Order("id ASC").Find(&environments).Error
	return environments, err
}

// GetCredential retrieves the stored credential for one provider of a user
func (r *providerRepository) GetCredential(userID uint, slug string) (*models.ProviderCredential, error) {
	var cred models.ProviderCredential
	err := r.db.Where("user_id = ? AND provider_slug = ?", userID, slug).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// SaveCredential inserts or replaces a provider credential
func (r *providerRepository) SaveCredential(cred *models.ProviderCredential) error {
	var existing models.ProviderCredential
	err := r.db.Where("user_id = ? AND provider_slug = ?", cred.UserID, cred.ProviderSlug).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(cred).Error
	}
	if err != nil {
		return err
	}

	cred.ID = existing.ID
	cred.CreatedAt = existing.CreatedAt
	return r.db.Save(cred).Error
}

// DeleteCredential removes a stored credential
func (r *providerRepository) DeleteCredential(userID uint, slug string) error {
	return r.db.Where("user_id = ? AND provider_slug = ?", userID, slug).
		Delete(&models.ProviderCredential{}).Error
}
