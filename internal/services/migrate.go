package services

import (
	"fmt"

	"todo-tracker/internal/dates"
	"todo-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// MigrationService moves every session-held task into durable storage
// under the now-authenticated owner, all-or-nothing.
type MigrationService interface {
	Save(db *gorm.DB, ownerID uuid.UUID, entries []models.SessionTask) (int, error)
}

type MigrationServiceImpl struct{}

func NewMigrationService() *MigrationServiceImpl {
	return &MigrationServiceImpl{}
}

// Save persists the session entries in a single transaction and
// returns how many were written. Entries with empty text are skipped.
// On any failure nothing persists and the caller must leave the
// session list untouched so the operation can be retried.
func (s *MigrationServiceImpl) Save(db *gorm.DB, ownerID uuid.UUID, entries []models.SessionTask) (int, error) {
	if len(entries) == 0 {
		return 0, ErrNothingToSave
	}

	tasks := make([]models.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.Text == "" {
			continue
		}
		tasks = append(tasks, models.Task{
			ID:        uuid.Must(uuid.NewV4()),
			UserID:    ownerID,
			Text:      entry.Text,
			CreatedOn: dates.Normalize(entry.Date),
			DueOn:     dates.NormalizeOptional(entry.DueOnDate),
			Done:      entry.Done,
		})
	}

	if len(tasks) == 0 {
		return 0, ErrNothingToSave
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return fmt.Errorf("failed to save todo %q: %w", tasks[i].Text, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(tasks), nil
}
