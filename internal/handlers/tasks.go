package handlers

import (
	"errors"
	"net/http"
	"time"

	"todo-tracker/internal/dates"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/models"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// TaskHandler serves the single-record mutations. Each one routes to
// the durable store or the session list depending on whether the
// request carries an authenticated owner, then redirects home.
type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	sessions    *session.Store
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService, sessions *session.Store) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService, sessions: sessions}
}

// Add creates one task. Empty text is a silent no-op. The creation
// date is always today; the optional "date" field carries the due date.
func (h *TaskHandler) Add(c *gin.Context) {
	text := c.PostForm("text")
	if text == "" {
		redirectHome(c)
		return
	}

	dueOn := dates.NormalizeOptional(c.PostForm("date"))

	if ownerID := optionalOwner(c); ownerID != nil {
		_, err := h.taskService.CreateTask(h.db, models.Task{
			UserID:    *ownerID,
			Text:      text,
			CreatedOn: dates.Today(),
			DueOn:     dueOn,
		})
		if err != nil {
			h.flash(c, "Failed to add todo.")
		}
		redirectHome(c)
		return
	}

	entry := models.SessionTask{
		ID:   uuid.Must(uuid.NewV4()).String(),
		Text: text,
		Date: dates.Today().Format(dates.ISOFormat),
	}
	if dueOn != nil {
		entry.DueOnDate = dueOn.Format(dates.ISOFormat)
	}

	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	tasks := append(h.sessions.Tasks(ctx, sid), entry)
	if err := h.sessions.SaveTasks(ctx, sid, tasks); err != nil {
		h.flash(c, "Failed to add todo.")
	}
	redirectHome(c)
}

// ToggleDone flips the completion flag of one task.
func (h *TaskHandler) ToggleDone(c *gin.Context) {
	todoID := c.PostForm("todo_id")

	if ownerID := optionalOwner(c); ownerID != nil {
		id, err := uuid.FromString(todoID)
		if err != nil {
			h.flash(c, msgNotFound)
			redirectHome(c)
			return
		}
		if err := h.taskService.ToggleDone(h.db, *ownerID, id); err != nil {
			h.flash(c, msgNotFound)
		}
		redirectHome(c)
		return
	}

	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	tasks := h.sessions.Tasks(ctx, sid)

	found := false
	for i := range tasks {
		if tasks[i].ID == todoID {
			tasks[i].Done = !tasks[i].Done
			found = true
			break
		}
	}
	if !found {
		h.flash(c, msgNotFound)
		redirectHome(c)
		return
	}

	if err := h.sessions.SaveTasks(ctx, sid, tasks); err != nil {
		h.flash(c, "Failed to update todo.")
	}
	redirectHome(c)
}

// Delete removes one task.
func (h *TaskHandler) Delete(c *gin.Context) {
	todoID := c.PostForm("todo_id")
	if todoID == "" {
		redirectHome(c)
		return
	}

	if ownerID := optionalOwner(c); ownerID != nil {
		id, err := uuid.FromString(todoID)
		if err != nil {
			h.flash(c, msgNotFound)
			redirectHome(c)
			return
		}
		if err := h.taskService.DeleteTask(h.db, *ownerID, id); err != nil {
			h.flash(c, msgNotFound)
		}
		redirectHome(c)
		return
	}

	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	tasks := h.sessions.Tasks(ctx, sid)

	kept := tasks[:0]
	for _, task := range tasks {
		if task.ID != todoID {
			kept = append(kept, task)
		}
	}
	if len(kept) == len(tasks) {
		h.flash(c, msgNotFound)
		redirectHome(c)
		return
	}

	if err := h.sessions.SaveTasks(ctx, sid, kept); err != nil {
		h.flash(c, "Failed to delete todo.")
	}
	redirectHome(c)
}

// EditForm renders the edit page for a durable task.
func (h *TaskHandler) EditForm(c *gin.Context) {
	ownerID := optionalOwner(c)
	if ownerID == nil {
		h.flash(c, msgNotFound)
		redirectHome(c)
		return
	}

	task, ok := h.loadOwnedTask(c, *ownerID)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "edit.html", gin.H{
		"TodoID":    task.ID.String(),
		"Text":      task.Text,
		"CreatedOn": task.CreatedOn.Format(dates.ISOFormat),
		"DueOn":     formatOptional(task.DueOn),
		"Done":      task.Done,
	})
}

// Edit applies the posted form to a durable task. Validation failure
// redisplays the form with the entered values; nothing is written.
func (h *TaskHandler) Edit(c *gin.Context) {
	ownerID := optionalOwner(c)
	if ownerID == nil {
		h.flash(c, msgNotFound)
		redirectHome(c)
		return
	}

	task, ok := h.loadOwnedTask(c, *ownerID)
	if !ok {
		return
	}

	text := c.PostForm("text")
	if text == "" {
		c.HTML(http.StatusOK, "edit.html", gin.H{
			"TodoID":    task.ID.String(),
			"Text":      text,
			"CreatedOn": c.PostForm("date"),
			"DueOn":     c.PostForm("due_on_date"),
			"Done":      c.PostForm("done") != "",
			"Error":     "Form validation failed. Check your inputs.",
		})
		return
	}

	updated := models.Task{
		Text:      text,
		CreatedOn: dates.Normalize(c.PostForm("date")),
		DueOn:     dates.NormalizeOptional(c.PostForm("due_on_date")),
		Done:      c.PostForm("done") != "",
	}

	if err := h.taskService.UpdateTask(h.db, *ownerID, task.ID, updated); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.flash(c, msgNotFound)
		} else {
			h.flash(c, "Failed to update todo.")
		}
		redirectHome(c)
		return
	}

	h.flash(c, "Todo updated successfully.")
	redirectHome(c)
}

// EditSessionForm renders the edit page for a session-held task.
func (h *TaskHandler) EditSessionForm(c *gin.Context) {
	todoID := c.Query("todo_id")
	if todoID == "" {
		todoID = c.PostForm("todo_id")
	}

	task, _, ok := h.findSessionTask(c, todoID)
	if !ok {
		h.flash(c, "Todo not found.")
		redirectHome(c)
		return
	}

	c.HTML(http.StatusOK, "edit_session.html", gin.H{
		"TodoID":    task.ID,
		"Text":      task.Text,
		"DueOnDate": task.DueOnDate,
		"Done":      task.Done,
	})
}

// EditSession applies posted changes to a session-held task. Text is
// replaced only when non-empty; the due date is normalized when
// supplied and cleared when supplied empty.
func (h *TaskHandler) EditSession(c *gin.Context) {
	todoID := c.PostForm("todo_id")

	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	tasks := h.sessions.Tasks(ctx, sid)

	index := -1
	for i := range tasks {
		if tasks[i].ID == todoID {
			index = i
			break
		}
	}
	if index < 0 {
		h.flash(c, "Todo not found.")
		redirectHome(c)
		return
	}

	if text := c.PostForm("text"); text != "" {
		tasks[index].Text = text
	}

	if due := c.PostForm("due_on_date"); due != "" {
		tasks[index].DueOnDate = dates.Normalize(due).Format(dates.ISOFormat)
	} else {
		tasks[index].DueOnDate = ""
	}

	// Settle the stored creation date into canonical form while the
	// entry is being rewritten anyway.
	tasks[index].Date = dates.Normalize(tasks[index].Date).Format(dates.ISOFormat)

	if err := h.sessions.SaveTasks(ctx, sid, tasks); err != nil {
		h.flash(c, "Failed to update todo.")
		redirectHome(c)
		return
	}

	h.flash(c, "Todo updated successfully.")
	redirectHome(c)
}

func (h *TaskHandler) loadOwnedTask(c *gin.Context, ownerID uuid.UUID) (models.Task, bool) {
	todoID := c.Query("todo_id")
	if todoID == "" {
		todoID = c.PostForm("todo_id")
	}

	id, err := uuid.FromString(todoID)
	if err != nil {
		h.flash(c, msgNotFound)
		redirectHome(c)
		return models.Task{}, false
	}

	task, err := h.taskService.GetTaskByID(h.db, ownerID, id)
	if err != nil {
		h.flash(c, msgNotFound)
		redirectHome(c)
		return models.Task{}, false
	}
	return task, true
}

func (h *TaskHandler) findSessionTask(c *gin.Context, todoID string) (models.SessionTask, int, bool) {
	tasks := h.sessions.Tasks(c.Request.Context(), middleware.SessionID(c))
	for i, task := range tasks {
		if task.ID == todoID {
			return task, i, true
		}
	}
	return models.SessionTask{}, -1, false
}

func (h *TaskHandler) flash(c *gin.Context, message string) {
	h.sessions.AddFlash(c.Request.Context(), middleware.SessionID(c), message)
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dates.ISOFormat)
}
