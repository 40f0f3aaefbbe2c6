package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// codingSessionRepository implements the CodingSessionRepository interface
type codingSessionRepository struct {
	db *gorm.DB
}

// NewCodingSessionRepository creates a new coding session repository instance
func NewCodingSessionRepository(db *gorm.DB) CodingSessionRepository {
	return &codingSessionRepository{db: db}
}

// Create creates a new coding session entry
func (r *codingSessionRepository) Create(session *models.CodingSession) error {
	return r.db.Create(session).Error
}

// GetOwned retrieves a coding session by ID scoped to its owner
func (r *codingSessionRepository) GetOwned(userID, id uint) (*models.CodingSession, error) {
	var session models.CodingSession
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetByUserID retrieves coding sessions of one user, newest first
func (r *codingSessionRepository) GetByUserID(userID uint, offset, limit int) ([]models.CodingSession, error) {
	var sessions []models.CodingSession
	err := r.db.Preload("Application").Where("user_id = ?", userID).
		Order("happened_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, err
}

// GetByApplicationID retrieves all coding sessions bound to one application
func (r *codingSessionRepository) GetByApplicationID(applicationID uint) ([]models.CodingSession, error) {
	var sessions []models.CodingSession
	err := r.db.Where("application_id = ?", applicationID).
		Order("happened_at DESC").Find(&sessions).Error
	return sessions, err
}

// TotalMinutesByUserID sums the logged minutes of one user
func (r *codingSessionRepository) TotalMinutesByUserID(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.CodingSession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(duration_minutes), 0)").Scan(&total).Error
	return total, err
}

// Update updates an existing coding session entry
func (r *codingSessionRepository) Update(session *models.CodingSession) error {
	return r.db.Save(session).Error
}

// Delete removes a coding session entry
func (r *codingSessionRepository) Delete(id uint) error {
	return r.db.Delete(&models.CodingSession{}, id).Error
}
