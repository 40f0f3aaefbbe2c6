package repository

import (
	"github.com/cloudtrackerhq/cloudtracker/app/models"
	"gorm.io/gorm"
)

// todoRepository implements the TodoRepository interface
type todoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new todo repository instance
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepository{db: db}
}

// Create creates a new todo
func (r *todoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

// GetOwned retrieves a todo by ID scoped to its owner
func (r *todoRepository) GetOwned(userID, id uint) (*models.Todo, error) {
	var todo models.Todo
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&todo).Error
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// GetByUserID retrieves all todos of one user, open items first
func (r *todoRepository) GetByUserID(userID uint) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.Preload("Application").Where("user_id = ?", userID).
		Order("status ASC, due_at IS NULL, due_at ASC, created_at DESC").Find(&todos).Error
	return todos, err
}

// GetByApplicationID retrieves all todos bound to one application
func (r *todoRepository) GetByApplicationID(applicationID uint) ([]models.Todo, error) {
	var todos []models.Todo
	err := r.db.Where("application_id = ?", applicationID).
		Order("created_at DESC").Find(&todos).Error
	return todos, err
}

// CountOpenByUserID returns the number of not yet done todos of one user
func (r *todoRepository) CountOpenByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Todo{}).
		Where("user_id = ? AND status <> ?", userID, models.TODO_STATUS_DONE).
		Count(&count).Error
	return count, err
}

// Update updates an existing todo
func (r *todoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

// Delete removes a todo
func (r *todoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Todo{}, id).Error
}
