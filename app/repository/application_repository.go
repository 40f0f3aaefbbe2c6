package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// applicationRepository implements the ApplicationRepository interface
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository instance
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new application in the database
func (r *applicationRepository) Create(app *models.Application) error {
	return r.db.Create(app).Error
}

// GetByID retrieves an application by ID
func (r *applicationRepository) GetByID(id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Tags").First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByUUID retrieves an application by its public identifier
func (r *applicationRepository) GetByUUID(uuid string) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Tags").Where("uuid = ?", uuid).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetOwned retrieves an application by ID scoped to its owner
func (r *applicationRepository) GetOwned(userID, id uint) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Tags").Where("id = ? AND user_id = ?", id, userID).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetOwnedByUUID retrieves an application by UUID scoped to its owner
func (r *applicationRepository) GetOwnedByUUID(userID uint, uuid string) (*models.Application, error) {
	var app models.Application
	err := r.db.Preload("Tags").Where("uuid = ? AND user_id = ?", uuid, userID).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByUserID retrieves all applications of one user
func (r *applicationRepository) GetByUserID(userID uint) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.Preload("Tags").Where("user_id = ?", userID).
		Order("name ASC").Find(&apps).Error
	return apps, err
}

// ExistsByName checks whether the user already tracks an application by name
func (r *applicationRepository) ExistsByName(userID uint, name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Application{}).
		Where("user_id = ? AND name = ?", userID, name).Count(&count).Error
	return count > 0, err
}

// Update updates an existing application in the database
func (r *applicationRepository) Update(app *models.Application) error {
	return r.db.Save(app).Error
}

// UpdateFields applies a partial update to one application
func (r *applicationRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Application{}).Where("id = ?", id).Updates(fields).Error
}

// Delete soft deletes an application by ID
func (r *applicationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Application{}, id).Error
}

// CountByUserID returns the number of applications a user tracks
func (r *applicationRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Application{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// AddTag attaches a tag to an application
func (r *applicationRepository) AddTag(appID, tagID uint) error {
	return r.db.Exec("INSERT INTO application_tags (application_id, tag_id) VALUES (?, ?)", appID, tagID).Error
}

// RemoveTag detaches a tag from an application
func (r *applicationRepository) RemoveTag(appID, tagID uint) error {
	return r.db.Exec("DELETE FROM application_tags WHERE application_id = ? AND tag_id = ?", appID, tagID).Error
}
