package services

import (
	"errors"
	"testing"
	"time"

	"todo-tracker/internal/models"

	"github.com/gofrs/uuid"
)

func TestTaskService_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "crud@example.com")
	svc := NewTaskService()

	created, err := svc.CreateTask(db, models.Task{
		UserID:    user.ID,
		Text:      "buy milk",
		CreatedOn: dateOf(2025, time.June, 1),
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("Expected CreateTask to assign an ID")
	}

	got, err := svc.GetTaskByID(db, user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Text != "buy milk" {
		t.Errorf("Expected text 'buy milk', got %q", got.Text)
	}
}

func TestTaskService_ToggleDone(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "toggle@example.com")
	svc := NewTaskService()

	created, err := svc.CreateTask(db, models.Task{UserID: user.ID, Text: "flip me", CreatedOn: dateOf(2025, time.June, 1)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for i, want := range []bool{true, false} {
		if err := svc.ToggleDone(db, user.ID, created.ID); err != nil {
			t.Fatalf("ToggleDone #%d failed: %v", i+1, err)
		}
		got, err := svc.GetTaskByID(db, user.ID, created.ID)
		if err != nil {
			t.Fatalf("GetTaskByID failed: %v", err)
		}
		if got.Done != want {
			t.Errorf("Toggle #%d: expected done=%v, got %v", i+1, want, got.Done)
		}
	}
}

func TestTaskService_UpdateTask(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "update@example.com")
	svc := NewTaskService()

	created, err := svc.CreateTask(db, models.Task{UserID: user.ID, Text: "old text", CreatedOn: dateOf(2025, time.June, 1)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	due := dateOf(2025, time.June, 10)
	err = svc.UpdateTask(db, user.ID, created.ID, models.Task{
		Text:      "new text",
		CreatedOn: dateOf(2025, time.June, 2),
		DueOn:     &due,
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, err := svc.GetTaskByID(db, user.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Text != "new text" {
		t.Errorf("Expected updated text, got %q", got.Text)
	}
	if got.DueOn == nil || !got.DueOn.Equal(due) {
		t.Errorf("Expected due date %v, got %v", due, got.DueOn)
	}
}

func TestTaskService_Delete(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, "delete@example.com")
	svc := NewTaskService()

	created, err := svc.CreateTask(db, models.Task{UserID: user.ID, Text: "doomed", CreatedOn: dateOf(2025, time.June, 1)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if err := svc.DeleteTask(db, user.ID, created.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := svc.GetTaskByID(db, user.ID, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

// A task belonging to another user must behave exactly like a missing
// task for every scoped operation, and must be left untouched.
func TestTaskService_ForeignTaskIndistinguishableFromMissing(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice@example.com")
	mallory := newTestUser(t, db, "mallory@example.com")
	svc := NewTaskService()

	created, err := svc.CreateTask(db, models.Task{UserID: alice.ID, Text: "alice's secret", CreatedOn: dateOf(2025, time.June, 1)})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	missing := uuid.Must(uuid.NewV4())

	cases := []struct {
		name string
		call func(id uuid.UUID) error
	}{
		{"get", func(id uuid.UUID) error { _, err := svc.GetTaskByID(db, mallory.ID, id); return err }},
		{"toggle", func(id uuid.UUID) error { return svc.ToggleDone(db, mallory.ID, id) }},
		{"update", func(id uuid.UUID) error {
			return svc.UpdateTask(db, mallory.ID, id, models.Task{Text: "hijacked", CreatedOn: dateOf(2025, time.June, 2)})
		}},
		{"delete", func(id uuid.UUID) error { return svc.DeleteTask(db, mallory.ID, id) }},
	}

	for _, tc := range cases {
		if err := tc.call(created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s on foreign task: expected ErrNotFound, got %v", tc.name, err)
		}
		if err := tc.call(missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s on missing task: expected ErrNotFound, got %v", tc.name, err)
		}
	}

	got, err := svc.GetTaskByID(db, alice.ID, created.ID)
	if err != nil {
		t.Fatalf("GetTaskByID failed: %v", err)
	}
	if got.Text != "alice's secret" || got.Done {
		t.Errorf("Foreign operations must not change the task, got %+v", got)
	}
}

func TestTaskService_GetTasksByOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	alice := newTestUser(t, db, "alice2@example.com")
	bob := newTestUser(t, db, "bob@example.com")
	svc := NewTaskService()

	for _, text := range []string{"a1", "a2"} {
		if _, err := svc.CreateTask(db, models.Task{UserID: alice.ID, Text: text, CreatedOn: dateOf(2025, time.June, 1)}); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
	}
	if _, err := svc.CreateTask(db, models.Task{UserID: bob.ID, Text: "b1", CreatedOn: dateOf(2025, time.June, 1)}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tasks, err := svc.GetTasksByOwner(db, alice.ID)
	if err != nil {
		t.Fatalf("GetTasksByOwner failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks for alice, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.UserID != alice.ID {
			t.Errorf("Expected only alice's tasks, got owner %s", task.UserID)
		}
	}
}
