package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	Delete(id uint) error
	Count() (int64, error)
}

// ApplicationRepository defines the interface for application operations
type ApplicationRepository interface {
	Create(app *models.Application) error
	GetByID(id uint) (*models.Application, error)
	GetByUUID(uuid string) (*models.Application, error)
	GetOwned(userID, id uint) (*models.Application, error)
	GetOwnedByUUID(userID uint, uuid string) (*models.Application, error)
	GetByUserID(userID uint) ([]models.Application, error)
	ExistsByName(userID uint, name string) (bool, error)
	Update(app *models.Application) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
	AddTag(appID, tagID uint) error
	RemoveTag(appID, tagID uint) error
}

// DeploymentRepository defines the interface for deployment operations
type DeploymentRepository interface {
	Create(deployment *models.Deployment) error
	GetByID(id uint) (*models.Deployment, error)
	GetByExternalID(applicationID uint, externalID string) (*models.Deployment, error)
	GetByApplicationID(applicationID uint, offset, limit int) ([]models.Deployment, error)
	GetRecentByUserID(userID uint, limit int) ([]models.Deployment, error)
	CountByStatus(userID uint) (map[string]int64, error)
	Update(deployment *models.Deployment) error
	Delete(id uint) error
	CountByApplicationID(applicationID uint) (int64, error)
}

// ProviderRepository covers the provider catalog, environments and stored credentials
type ProviderRepository interface {
	GetProviderBySlug(userID uint, slug string) (*models.CloudProvider, error)
	GetProviders(userID uint) ([]models.CloudProvider, error)
	SeedProviders(userID uint) error
	GetEnvironmentBySlug(slug string) (*models.Environment, error)
	GetEnvironments() ([]models.Environment, error)
	GetCredential(userID uint, slug string) (*models.ProviderCredential, error)
	SaveCredential(cred *models.ProviderCredential) error
	DeleteCredential(userID uint, slug string) error
}

// TodoRepository defines the interface for todo operations
type TodoRepository interface {
	Create(todo *models.Todo) error
	GetOwned(userID, id uint) (*models.Todo, error)
	GetByUserID(userID uint) ([]models.Todo, error)
	GetByApplicationID(applicationID uint) ([]models.Todo, error)
	CountOpenByUserID(userID uint) (int64, error)
	Update(todo *models.Todo) error
	Delete(id uint) error
}

// NoteRepository defines the interface for note operations
type NoteRepository interface {
	Create(note *models.Note) error
	GetOwned(userID, id uint) (*models.Note, error)
	GetByUserID(userID uint) ([]models.Note, error)
	GetByApplicationID(applicationID uint) ([]models.Note, error)
	Update(note *models.Note) error
	Delete(id uint) error
}

// MaintenanceRepository defines the interface for maintenance task operations
type MaintenanceRepository interface {
	Create(task *models.MaintenanceTask) error
	GetOwned(userID, id uint) (*models.MaintenanceTask, error)
	GetByUserID(userID uint) ([]models.MaintenanceTask, error)
	GetByApplicationID(applicationID uint) ([]models.MaintenanceTask, error)
	GetOverdue(userID uint) ([]models.MaintenanceTask, error)
	Update(task *models.MaintenanceTask) error
	Delete(id uint) error
}

// CodingSessionRepository defines the interface for coding session log operations
type CodingSessionRepository interface {
	Create(session *models.CodingSession) error
	GetOwned(userID, id uint) (*models.CodingSession, error)
	GetByUserID(userID uint, offset, limit int) ([]models.CodingSession, error)
	GetByApplicationID(applicationID uint) ([]models.CodingSession, error)
	TotalMinutesByUserID(userID uint) (int64, error)
	Update(session *models.CodingSession) error
	Delete(id uint) error
}

// TagRepository defines the interface for tag operations
type TagRepository interface {
	Create(tag *models.Tag) error
	GetOwned(userID, id uint) (*models.Tag, error)
	GetByUserID(userID uint) ([]models.Tag, error)
	FindOrCreate(userID uint, name string) (*models.Tag, error)
	Update(tag *models.Tag) error
	Delete(id uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User          UserRepository
	Application   ApplicationRepository
	Deployment    DeploymentRepository
	Provider      ProviderRepository
	Todo          TodoRepository
	Note          NoteRepository
	Maintenance   MaintenanceRepository
	CodingSession CodingSessionRepository
	Tag           TagRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:          NewUserRepository(db),
		Application:   NewApplicationRepository(db),
		Deployment:    NewDeploymentRepository(db),
		Provider:      NewProviderRepository(db),
		Todo:          NewTodoRepository(db),
		Note:          NewNoteRepository(db),
		Maintenance:   NewMaintenanceRepository(db),
		CodingSession: NewCodingSessionRepository(db),
		Tag:           NewTagRepository(db),
	}
}
