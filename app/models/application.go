package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application is a tracked project with optional provider linkage. Linkage
// fields are set at most once by auto-connect (never overwritten if already
// present) and otherwise only by explicit user edit.
type Application struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	UUID                  string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID                uint           `gorm:"index" json:"user_id"`
	User                  User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Name                  string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	Description           string         `gorm:"type:text" json:"description"`
	RepositoryURL         string         `gorm:"type:varchar(500)" json:"repository_url" validate:"omitempty,url,max=500"`
	LiveURL               string         `gorm:"type:varchar(500)" json:"live_url" validate:"omitempty,url,max=500"`
	VercelProjectID       string         `gorm:"type:varchar(191)" json:"vercel_project_id"`
	CloudflareProjectName string         `gorm:"type:varchar(191)" json:"cloudflare_project_name"`
	CloudflareWorkerName  string         `gorm:"type:varchar(191)" json:"cloudflare_worker_name"`
	GithubRepoName        string         `gorm:"type:varchar(191)" json:"github_repo_name"`
	SyncCount             int64          `gorm:"default:0" json:"sync_count"`
	ViewCount             int64          `gorm:"default:0" json:"view_count"`
	LastSyncedAt          *time.Time     `gorm:"type:timestamp;default:null" json:"last_synced_at"`
	Tags                  []Tag          `gorm:"many2many:application_tags;" json:"tags,omitempty"`
	Deployments           []Deployment   `gorm:"foreignKey:ApplicationID" json:"deployments,omitempty"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Application) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

// BeforeCreate assigns the public identifier.
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.New().String()
	}
	return nil
}

// HasLinkage reports whether any provider linkage field is set.
func (a *Application) HasLinkage() bool {
	return a.VercelProjectID != "" || a.CloudflareProjectName != "" ||
		a.CloudflareWorkerName != "" || a.GithubRepoName != ""
}

// RepoName extracts the trailing path segment of the repository URL as the
// candidate repository name used by auto-connect. Empty or unparseable URLs
// yield "".
func (a *Application) RepoName() string {
	raw := strings.TrimSpace(a.RepositoryURL)
	raw = strings.TrimSuffix(raw, "/")
	raw = strings.TrimSuffix(raw, ".git")
	if raw == "" {
		return ""
	}
	idx := strings.LastIndex(raw, "/")
	if idx < 0 || idx == len(raw)-1 {
		return ""
	}
	return raw[idx+1:]
}

// IsGithubRepo reports whether the repository URL points at github.com.
func (a *Application) IsGithubRepo() bool {
	return strings.Contains(strings.ToLower(a.RepositoryURL), "github.com")
}
