package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Unified deployment status vocabulary. Provider-native states are mapped
// onto these five values by the deploysync status mappers.
const (
	DEPLOY_STATUS_DEPLOYED    = "deployed"
	DEPLOY_STATUS_PENDING     = "pending"
	DEPLOY_STATUS_BUILDING    = "building"
	DEPLOY_STATUS_FAILED      = "failed"
	DEPLOY_STATUS_ROLLED_BACK = "rolled_back"
)

// Deployment is one synced (or manually recorded) deployment of an application.
// (application_id, external_id) is unique and serves as the idempotence key
// for reconciliation: a row is created once per external record and afterwards
// only its mutable fields (status, url, branch, commit_sha) are updated. Sync
// never deletes rows.
type Deployment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ApplicationID uint           `gorm:"index:app_external_id,unique" json:"application_id"`
	Application   Application    `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	ProviderID    uint           `gorm:"index" json:"provider_id"`
	Provider      CloudProvider  `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	EnvironmentID uint           `gorm:"index" json:"environment_id"`
	Environment   Environment    `gorm:"foreignKey:EnvironmentID" json:"environment,omitempty"`
	ExternalID    string         `gorm:"index:app_external_id,unique;type:varchar(191)" json:"external_id"`
	URL           string         `gorm:"type:varchar(500)" json:"url" validate:"omitempty,max=500"`
	Branch        string         `gorm:"type:varchar(255)" json:"branch" validate:"max=255"`
	CommitSHA     string         `gorm:"type:varchar(64)" json:"commit_sha" validate:"max=64"`
	Status        string         `gorm:"type:varchar(50);default:'pending'" json:"status" validate:"oneof=deployed pending building failed rolled_back"`
	DeployedAt    *time.Time     `gorm:"type:timestamp;default:null" json:"deployed_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Deployment) Validate() error {
	v := validator.New()

	return v.Struct(d)
}

// ValidDeploymentStatus reports whether s is one of the five unified values.
func ValidDeploymentStatus(s string) bool {
	switch s {
	case DEPLOY_STATUS_DEPLOYED, DEPLOY_STATUS_PENDING, DEPLOY_STATUS_BUILDING,
		DEPLOY_STATUS_FAILED, DEPLOY_STATUS_ROLLED_BACK:
		return true
	}
	return false
}
