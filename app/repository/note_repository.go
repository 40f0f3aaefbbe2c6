package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// noteRepository implements the NoteRepository interface
type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new note repository instance
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Create creates a new note
func (r *noteRepository) Create(note *models.Note) error {
	return r.db.Create(note).Error
}

// GetOwned retrieves a note by ID scoped to its owner
func (r *noteRepository) GetOwned(userID, id uint) (*models.Note, error) {
	var note models.Note
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// GetByUserID retrieves all notes of one user, pinned first
func (r *noteRepository) GetByUserID(userID uint) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.Preload("Application").Where("user_id = ?", userID).
		Order("pinned DESC, updated_at DESC").Find(&notes).Error
	return notes, err
}

// GetByApplicationID retrieves all notes bound to one application
func (r *noteRepository) GetByApplicationID(applicationID uint) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.Where("application_id = ?", applicationID).
		Order("pinned DESC, updated_at DESC").Find(&notes).Error
	return notes, err
}

// Update updates an existing note
func (r *noteRepository) Update(note *models.Note) error {
	return r.db.Save(note).Error
}

// Delete removes a note
func (r *noteRepository) Delete(id uint) error {
	return r.db.Delete(&models.Note{}, id).Error
}
