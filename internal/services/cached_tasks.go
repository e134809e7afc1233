package services

import (
	"fmt"
	"log"
	"time"

	"todo-tracker/internal/cache"
	"todo-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const taskListTTL = 5 * time.Minute

// CachedTaskService decorates a TaskService with a per-owner list
// cache. Every mutation by an owner invalidates that owner's entry, so
// reads after writes always see fresh data.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, c cache.Cache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: c}
}

func ownerTasksKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("tasks:owner:%s", ownerID)
}

func (s *CachedTaskService) GetTasksByOwner(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	key := ownerTasksKey(ownerID)

	var cached []models.Task
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		log.Printf("task list cache read failed for %s: %v", ownerID, err)
	} else if found {
		return cached, nil
	}

	tasks, err := s.inner.GetTasksByOwner(db, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(key, tasks, taskListTTL); err != nil {
		log.Printf("task list cache write failed for %s: %v", ownerID, err)
	}
	return tasks, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, ownerID, id uuid.UUID) (models.Task, error) {
	return s.inner.GetTaskByID(db, ownerID, id)
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task) (models.Task, error) {
	created, err := s.inner.CreateTask(db, task)
	if err == nil {
		s.invalidate(created.UserID)
	}
	return created, err
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, ownerID, id uuid.UUID, updated models.Task) error {
	err := s.inner.UpdateTask(db, ownerID, id, updated)
	if err == nil {
		s.invalidate(ownerID)
	}
	return err
}

func (s *CachedTaskService) ToggleDone(db *gorm.DB, ownerID, id uuid.UUID) error {
	err := s.inner.ToggleDone(db, ownerID, id)
	if err == nil {
		s.invalidate(ownerID)
	}
	return err
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, id uuid.UUID) error {
	err := s.inner.DeleteTask(db, ownerID, id)
	if err == nil {
		s.invalidate(ownerID)
	}
	return err
}

// Invalidate drops the cached list for ownerID. The migration handler
// calls this after a batch save, which bypasses the TaskService.
func (s *CachedTaskService) Invalidate(ownerID uuid.UUID) {
	s.invalidate(ownerID)
}

func (s *CachedTaskService) invalidate(ownerID uuid.UUID) {
	if err := s.cache.Delete(ownerTasksKey(ownerID)); err != nil {
		log.Printf("task list cache invalidation failed for %s: %v", ownerID, err)
	}
}
