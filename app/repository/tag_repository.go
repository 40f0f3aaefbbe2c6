package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// tagRepository implements the TagRepository interface
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository instance
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create creates a new tag
func (r *tagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

// GetOwned retrieves a tag by ID scoped to its owner
func (r *tagRepository) GetOwned(userID, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetByUserID retrieves all tags of one user
func (r *tagRepository) GetByUserID(userID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	return tags, err
}

// FindOrCreate returns the existing tag with that name or creates it
func (r *tagRepository) FindOrCreate(userID uint, name string) (*models.Tag, error) {
	tag := &models.Tag{UserID: userID, Name: name}
	if err := tag.FindOrCreate(r.db); err != nil {
		return nil, err
	}
	return tag, nil
}

// Update updates an existing tag
func (r *tagRepository) Update(tag *models.Tag) error {
	return r.db.Save(tag).Error
}

// Delete removes a tag and its application links
func (r *tagRepository) Delete(id uint) error {
	if err := r.db.Exec("DELETE FROM application_tags WHERE tag_id = ?", id).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Tag{}, id).Error
}
