package handlers

import (
	"net/http"

	"todo-tracker/internal/middleware"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListHandler renders the unified task list: durable tasks merged with
// session-held ones, filtered and sorted per query parameters.
type ListHandler struct {
	db          *gorm.DB
	taskService services.TaskService
	sessions    *session.Store
}

func NewListHandler(db *gorm.DB, taskService services.TaskService, sessions *session.Store) *ListHandler {
	return &ListHandler{db: db, taskService: taskService, sessions: sessions}
}

func (h *ListHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.SessionID(c)

	filter := c.DefaultQuery("filter", services.FilterAll)
	sortBy := c.DefaultQuery("sort", services.SortAddedAsc)

	var ownerID = optionalOwner(c)
	sessionTasks := h.sessions.Tasks(ctx, sid)

	todos, err := services.MergeTasks(h.db, h.taskService, ownerID, sessionTasks)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "index.html", gin.H{
			"Todos":           nil,
			"HasSessionTodos": false,
			"LoggedIn":        ownerID != nil,
			"Filter":          filter,
			"Sort":            sortBy,
			"Flashes":         []string{"Failed to load todos."},
		})
		return
	}

	todos = services.ApplyFilter(todos, filter)
	todos = services.ApplySort(todos, sortBy)

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Todos":           todos,
		"HasSessionTodos": len(sessionTasks) > 0,
		"LoggedIn":        ownerID != nil,
		"Filter":          filter,
		"Sort":            sortBy,
		"Flashes":         h.sessions.PopFlashes(ctx, sid),
	})
}
