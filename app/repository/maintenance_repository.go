package repository

import (
	"time"

	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// maintenanceRepository implements the MaintenanceRepository interface
type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository instance
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// Create creates a new maintenance task
func (r *maintenanceRepository) Create(task *models.MaintenanceTask) error {
	return r.db.Create(task).Error
}

// GetOwned retrieves a maintenance task by ID scoped to its owner
func (r *maintenanceRepository) GetOwned(userID, id uint) (*models.MaintenanceTask, error) {
	var task models.MaintenanceTask
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByUserID retrieves all maintenance tasks of one user, next due first
func (r *maintenanceRepository) GetByUserID(userID uint) ([]models.MaintenanceTask, error) {
	var tasks []models.MaintenanceTask
	err := r.db.Preload("Application").Where("user_id = ?", userID).
		Order("next_due_at IS NULL, next_due_at ASC").Find(&tasks).Error
	return tasks, err
}

// GetByApplicationID retrieves all maintenance tasks bound to one application
func (r *maintenanceRepository) GetByApplicationID(applicationID uint) ([]models.MaintenanceTask, error) {
	var tasks []models.MaintenanceTask
	err := r.db.Where("application_id = ?", applicationID).
		Order("next_due_at IS NULL, next_due_at ASC").Find(&tasks).Error
	return tasks, err
}

// GetOverdue retrieves maintenance tasks of one user whose due date has passed
func (r *maintenanceRepository) GetOverdue(userID uint) ([]models.MaintenanceTask, error) {
	var tasks []models.MaintenanceTask
	err := r.db.Preload("Application").
		Where("user_id = ? AND next_due_at IS NOT NULL AND next_due_at < ?", userID, time.Now()).
		Order("next_due_at ASC").Find(&tasks).Error
	return tasks, err
}

// Update updates an existing maintenance task
func (r *maintenanceRepository) Update(task *models.MaintenanceTask) error {
	return r.db.Save(task).Error
}

// Delete removes a maintenance task
func (r *maintenanceRepository) Delete(id uint) error {
	return r.db.Delete(&models.MaintenanceTask{}, id).Error
}
