package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// deploymentRepository implements the DeploymentRepository interface
type deploymentRepository struct {
	db *gorm.DB
}

// NewDeploymentRepository creates a new deployment repository instance
func NewDeploymentRepository(db *gorm.DB) DeploymentRepository {
	return &deploymentRepository{db: db}
}

// Create creates a new deployment record
func (r *deploymentRepository) Create(deployment *models.Deployment) error {
	return r.db.Create(deployment).Error
}

// GetByID retrieves a deployment by ID
func (r *deploymentRepository) GetByID(id uint) (*models.Deployment, error) {
	var deployment models.Deployment
	err := r.db.First(&deployment, id).Error
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

// GetByExternalID retrieves the deployment bound to a provider record
func (r *deploymentRepository) GetByExternalID(applicationID uint, externalID string) (*models.Deployment, error) {
	var deployment models.Deployment
	err := r.db.Where("application_id = ? AND external_id = ?", applicationID, externalID).
		First(&deployment).Error
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

// GetByApplicationID retrieves deployments of one application, newest first
func (r *deploymentRepository) GetByApplicationID(applicationID uint, offset, limit int) ([]models.Deployment, error) {
	var deployments []models.Deployment
	err := r.db.Where("application_id = ?", applicationID).
		Order("deployed_at DESC").Offset(offset).Limit(limit).Find(&deployments).Error
	return deployments, err
}

// GetRecentByUserID retrieves the latest deployments across all applications of a user
func (r *deploymentRepository) GetRecentByUserID(userID uint, limit int) ([]models.Deployment, error) {
	var deployments []models.Deployment
	err := r.db.Preload("Application").
		Joins("JOIN applications ON applications.id = deployments.application_id").
		Where("applications.user_id = ?", userID).
		Order("deployments.deployed_at DESC").Limit(limit).Find(&deployments).Error
	return deployments, err
}

// CountByStatus returns deployment counts per status for one user
func (r *deploymentRepository) CountByStatus(userID uint) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.Model(&models.Deployment{}).
		Select("deployments.status AS status, COUNT(*) AS count").
		Joins("JOIN applications ON applications.id = deployments.application_id").
		Where("applications.user_id = ?", userID).
		Group("deployments.status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Update updates an existing deployment record
func (r *deploymentRepository) Update(deployment *models.Deployment) error {
	return r.db.Save(deployment).Error
}

// Delete removes a deployment record
func (r *deploymentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Deployment{}, id).Error
}

// CountByApplicationID returns the number of deployments of one application
func (r *deploymentRepository) CountByApplicationID(applicationID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Deployment{}).
		Where("application_id = ?", applicationID).Count(&count).Error
	return count, err
}
