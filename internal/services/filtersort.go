package services

import (
	"sort"
	"time"

	"todo-tracker/internal/dates"
	"todo-tracker/internal/models"
)

// Filter values accepted by the list view. Anything else is a no-op.
const (
	FilterAll        = "all"
	FilterCompleted  = "completed"
	FilterActive     = "active"
	FilterHasDueDate = "has-due-date"
)

// Sort values accepted by the list view. Anything else leaves merge
// order untouched.
const (
	SortAddedAsc  = "added-date-asc"
	SortAddedDesc = "added-date-desc"
	SortDueAsc    = "due-date-asc"
	SortDueDesc   = "due-date-desc"
)

// ApplyFilter returns the subset of tasks matching the filter,
// preserving relative order. The input slice is not modified.
func ApplyFilter(tasks []models.TaskView, filter string) []models.TaskView {
	var predicate func(models.TaskView) bool

	switch filter {
	case FilterCompleted:
		predicate = func(t models.TaskView) bool { return t.Done }
	case FilterActive:
		predicate = func(t models.TaskView) bool { return !t.Done }
	case FilterHasDueDate:
		predicate = func(t models.TaskView) bool { return t.DueOn != nil }
	default:
		out := make([]models.TaskView, len(tasks))
		copy(out, tasks)
		return out
	}

	out := make([]models.TaskView, 0, len(tasks))
	for _, task := range tasks {
		if predicate(task) {
			out = append(out, task)
		}
	}
	return out
}

// ApplySort orders tasks by the requested key. Missing due dates sort
// last in both directions via max/min substitution. The sort is stable:
// ties keep merge order. The input slice is not modified.
func ApplySort(tasks []models.TaskView, sortBy string) []models.TaskView {
	out := make([]models.TaskView, len(tasks))
	copy(out, tasks)

	switch sortBy {
	case SortAddedAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return createdKey(out[i]).Before(createdKey(out[j]))
		})
	case SortAddedDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return createdKey(out[j]).Before(createdKey(out[i]))
		})
	case SortDueAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return dueKey(out[i], dates.Max).Before(dueKey(out[j], dates.Max))
		})
	case SortDueDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return dueKey(out[j], dates.Min).Before(dueKey(out[i], dates.Min))
		})
	}

	return out
}

func createdKey(t models.TaskView) time.Time {
	if t.CreatedOn.IsZero() {
		return dates.Today()
	}
	return t.CreatedOn
}

func dueKey(t models.TaskView, missing time.Time) time.Time {
	if t.DueOn == nil {
		return missing
	}
	return *t.DueOn
}
