package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Note is a free-form markdown note, application-scoped or global.
type Note struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index" json:"user_id"`
	ApplicationID *uint          `gorm:"index" json:"application_id"`
	Application   *Application   `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Body          string         `gorm:"type:text" json:"body"`
	Pinned        bool           `gorm:"default:false" json:"pinned"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (n *Note) Validate() error {
	v := validator.New()

	return v.Struct(n)
}

// TogglePinned flips the pinned flag and persists it.
func (n *Note) TogglePinned(db *gorm.DB) error {
	n.Pinned = !n.Pinned
	return db.Model(n).Update("pinned", n.Pinned).Error
}
