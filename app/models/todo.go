package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	TODO_STATUS_OPEN        = "open"
	TODO_STATUS_IN_PROGRESS = "in_progress"
	TODO_STATUS_DONE        = "done"

	TODO_PRIORITY_LOW    = "low"
	TODO_PRIORITY_MEDIUM = "medium"
	TODO_PRIORITY_HIGH   = "high"
)

// Todo is a task, either scoped to one application or global for the user.
type Todo struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index" json:"user_id"`
	ApplicationID *uint          `gorm:"index" json:"application_id"`
	Application   *Application   `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Description   string         `gorm:"type:text" json:"description"`
	Status        string         `gorm:"type:varchar(50);default:'open'" json:"status" validate:"oneof=open in_progress done"`
	Priority      string         `gorm:"type:varchar(50);default:'medium'" json:"priority" validate:"oneof=low medium high"`
	DueAt         *time.Time     `gorm:"type:timestamp;default:null" json:"due_at"`
	CompletedAt   *time.Time     `gorm:"type:timestamp;default:null" json:"completed_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Todo) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// MarkDone sets the status to done and records the completion time.
func (t *Todo) MarkDone(db *gorm.DB) error {
	now := time.Now()
	t.Status = TODO_STATUS_DONE
	t.CompletedAt = &now
	return db.Model(t).Updates(map[string]interface{}{
		"status":       t.Status,
		"completed_at": t.CompletedAt,
	}).Error
}

// IsOverdue reports whether the todo has a due date in the past and is not done.
func (t *Todo) IsOverdue() bool {
	return t.DueAt != nil && t.Status != TODO_STATUS_DONE && t.DueAt.Before(time.Now())
}
