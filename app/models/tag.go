package models

import (
	"time"

	"gorm.io/gorm"
)

type Tag struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index:user_tag_name,unique" json:"user_id"`
	Name         string         `gorm:"index:user_tag_name,unique;type:varchar(100) CHARACTER SET utf8 COLLATE utf8_bin" json:"name" validate:"required,min=1,max=100"`
	Color        string         `gorm:"type:varchar(20);default:'#6b7280'" json:"color"`
	Applications []Application  `gorm:"many2many:application_tags;" json:"applications,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// FindOrCreate finds a tag by name for one user or creates it.
func (t *Tag) FindOrCreate(db *gorm.DB) error {
	result := db.Where("user_id = ? AND name = ?", t.UserID, t.Name).First(t)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return db.Create(t).Error
		}
		return result.Error
	}
	return nil
}
