package services

import (
	"testing"

	"todo-tracker/internal/cache"
	"todo-tracker/internal/models"
)

func newCachedService(t *testing.T) (*CachedTaskService, cache.Cache) {
	t.Helper()
	memCache := cache.NewMemoryCache()
	t.Cleanup(func() { memCache.Close() })
	return NewCachedTaskService(NewTaskService(), memCache), memCache
}

func TestCachedTasks_ServesSecondReadFromCache(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "cached@example.com")
	svc, memCache := newCachedService(t)

	if _, err := svc.CreateTask(db, models.Task{UserID: user.ID, Text: "cache me", CreatedOn: dateOf(2025, 6, 1)}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	first, err := svc.GetTasksByOwner(db, user.ID)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}

	// Mutate the row behind the service's back; a cache hit must return
	// the stale list.
	if err := db.Model(&models.Task{}).Where("user_id = ?", user.ID).Update("text", "changed directly").Error; err != nil {
		t.Fatalf("direct update failed: %v", err)
	}

	second, err := svc.GetTasksByOwner(db, user.ID)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if second[0].Text != first[0].Text {
		t.Errorf("Expected cached list, got %q", second[0].Text)
	}

	var cached []models.Task
	found, err := memCache.Get(ownerTasksKey(user.ID), &cached)
	if err != nil || !found {
		t.Errorf("Expected task list in cache, found=%v err=%v", found, err)
	}
}

func TestCachedTasks_MutationsInvalidate(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "invalidate@example.com")
	svc, memCache := newCachedService(t)

	created, err := svc.CreateTask(db, models.Task{UserID: user.ID, Text: "v1", CreatedOn: dateOf(2025, 6, 1)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := svc.GetTasksByOwner(db, user.ID); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if err := svc.ToggleDone(db, user.ID, created.ID); err != nil {
		t.Fatalf("ToggleDone failed: %v", err)
	}

	var cached []models.Task
	if found, _ := memCache.Get(ownerTasksKey(user.ID), &cached); found {
		t.Error("Expected cache entry dropped after mutation")
	}

	tasks, err := svc.GetTasksByOwner(db, user.ID)
	if err != nil {
		t.Fatalf("read after mutation failed: %v", err)
	}
	if len(tasks) != 1 || !tasks[0].Done {
		t.Errorf("Expected fresh toggled task, got %+v", tasks)
	}
}

func TestCachedTasks_ExplicitInvalidate(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "explicit@example.com")
	svc, memCache := newCachedService(t)

	if _, err := svc.CreateTask(db, models.Task{UserID: user.ID, Text: "v1", CreatedOn: dateOf(2025, 6, 1)}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := svc.GetTasksByOwner(db, user.ID); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	svc.Invalidate(user.ID)

	var cached []models.Task
	if found, _ := memCache.Get(ownerTasksKey(user.ID), &cached); found {
		t.Error("Expected cache entry dropped after explicit invalidation")
	}
}
