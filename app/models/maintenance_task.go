package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	MAINTENANCE_WEEKLY    = "weekly"
	MAINTENANCE_MONTHLY   = "monthly"
	MAINTENANCE_QUARTERLY = "quarterly"
	MAINTENANCE_YEARLY    = "yearly"
)

// MaintenanceTask is a recurring routine for one application (dependency
// updates, certificate rotation, backup checks). Completing a task advances
// next_due_at by its cadence.
type MaintenanceTask struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index" json:"user_id"`
	ApplicationID   uint           `gorm:"index" json:"application_id"`
	Application     Application    `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description     string         `gorm:"type:text" json:"description"`
	Cadence         string         `gorm:"type:varchar(50);default:'monthly'" json:"cadence" validate:"oneof=weekly monthly quarterly yearly"`
	LastCompletedAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_completed_at"`
	NextDueAt       *time.Time     `gorm:"type:timestamp;default:null" json:"next_due_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *MaintenanceTask) Validate() error {
	v := validator.New()

	return v.Struct(m)
}

// cadenceAdd advances a point in time by one cadence interval using calendar
// arithmetic. Unknown cadence values fall back to monthly.
func cadenceAdd(from time.Time, cadence string) time.Time {
	switch cadence {
	case MAINTENANCE_WEEKLY:
		return from.AddDate(0, 0, 7)
	case MAINTENANCE_MONTHLY:
		return from.AddDate(0, 1, 0)
	case MAINTENANCE_QUARTERLY:
		return from.AddDate(0, 3, 0)
	case MAINTENANCE_YEARLY:
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

// NextDueAfter computes the next due date following a completion at the given time.
func (m *MaintenanceTask) NextDueAfter(completedAt time.Time) time.Time {
	return cadenceAdd(completedAt, m.Cadence)
}

// Complete records a completion and advances the next due date by the cadence.
func (m *MaintenanceTask) Complete(db *gorm.DB, completedAt time.Time) error {
	next := m.NextDueAfter(completedAt)
	m.LastCompletedAt = &completedAt
	m.NextDueAt = &next
	return db.Model(m).Updates(map[string]interface{}{
		"last_completed_at": m.LastCompletedAt,
		"next_due_at":       m.NextDueAt,
	}).Error
}

// IsOverdue reports whether the task's next due date has passed.
func (m *MaintenanceTask) IsOverdue() bool {
	return m.NextDueAt != nil && m.NextDueAt.Before(time.Now())
}
