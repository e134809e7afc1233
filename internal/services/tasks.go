package services

import (
	"errors"

	"todo-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskService is the durable-store side of the system. Every query is
// scoped to the owning user; a task that exists but belongs to someone
// else is indistinguishable from one that does not exist.
type TaskService interface {
	CreateTask(db *gorm.DB, task models.Task) (models.Task, error)
	GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error)
	GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error)
	UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, updated models.Task) error
	ToggleDone(db *gorm.DB, ownerID, id uuid.UUID) error
	DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", id, ownerID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, ErrNotFound
	}
	return task, err
}

func (s *TaskServiceImpl) GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	result := db.Where("user_id = ?", ownerID).Order("created_at asc").Find(&tasks)
	return tasks, result.Error
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, updated models.Task) error {
	result := db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Select("Text", "CreatedOn", "DueOn", "Done").
		Updates(map[string]interface{}{
			"text":       updated.Text,
			"created_on": updated.CreatedOn,
			"due_on":     updated.DueOn,
			"done":       updated.Done,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TaskServiceImpl) ToggleDone(db *gorm.DB, ownerID, id uuid.UUID) error {
	result := db.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("done", gorm.Expr("NOT done"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
