package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CodingSession logs one AI-assisted coding session, optionally tied to an
// application.
type CodingSession struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index" json:"user_id"`
	ApplicationID   *uint          `gorm:"index" json:"application_id"`
	Application     *Application   `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Summary         string         `gorm:"type:text" json:"summary"`
	Tool            string         `gorm:"type:varchar(100)" json:"tool" validate:"max=100"`
	DurationMinutes int            `gorm:"default:0" json:"duration_minutes" validate:"gte=0"`
	HappenedAt      time.Time      `gorm:"type:timestamp" json:"happened_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *CodingSession) Validate() error {
	v := validator.New()

	return v.Struct(s)
}
