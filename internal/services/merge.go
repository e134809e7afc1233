package services

import (
	"time"

	"todo-tracker/internal/dates"
	"todo-tracker/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// MergeTasks builds the working list for one request: the durable tasks
// of ownerID (when non-nil) first, then the session-held tasks in their
// stored order, every date normalized and every entry tagged with its
// origin. It is a read-only projection; both sources may be empty.
func MergeTasks(db *gorm.DB, taskService TaskService, ownerID *uuid.UUID, sessionTasks []models.SessionTask) ([]models.TaskView, error) {
	var views []models.TaskView

	if ownerID != nil {
		durable, err := taskService.GetTasksByOwner(db, *ownerID)
		if err != nil {
			return nil, err
		}
		for _, task := range durable {
			views = append(views, models.TaskView{
				ID:        task.ID.String(),
				Text:      task.Text,
				CreatedOn: dates.Truncate(task.CreatedOn),
				DueOn:     truncateOptional(task.DueOn),
				Done:      task.Done,
				Origin:    models.OriginDurable,
			})
		}
	}

	for index, entry := range sessionTasks {
		views = append(views, models.TaskView{
			ID:             entry.ID,
			Text:           entry.Text,
			CreatedOn:      dates.Normalize(entry.Date),
			DueOn:          dates.NormalizeOptional(entry.DueOnDate),
			Done:           entry.Done,
			Origin:         models.OriginEphemeral,
			EphemeralIndex: index,
		})
	}

	return views, nil
}

func truncateOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	truncated := dates.Truncate(*t)
	return &truncated
}
