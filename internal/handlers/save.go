package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"todo-tracker/internal/middleware"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// SaveHandler performs the guest-to-account migration: every
// session-held task becomes a durable row owned by the caller, then the
// session list is cleared. The write is all-or-nothing; on failure the
// session list is preserved for retry.
type SaveHandler struct {
	db        *gorm.DB
	migration services.MigrationService
	sessions  *session.Store

	// invalidate drops the caller's cached task list after the batch
	// write bypasses the task service. May be nil when no cache is
	// configured.
	invalidate func(uuid.UUID)
}

func NewSaveHandler(db *gorm.DB, migration services.MigrationService, sessions *session.Store, invalidate func(uuid.UUID)) *SaveHandler {
	return &SaveHandler{db: db, migration: migration, sessions: sessions, invalidate: invalidate}
}

func (h *SaveHandler) Save(c *gin.Context) {
	ownerID := optionalOwner(c)
	if ownerID == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	ctx := c.Request.Context()
	sid := middleware.SessionID(c)
	entries := h.sessions.Tasks(ctx, sid)

	_, err := h.migration.Save(h.db, *ownerID, entries)
	if err != nil {
		if errors.Is(err, services.ErrNothingToSave) {
			h.sessions.AddFlash(ctx, sid, "No todos to save.")
		} else {
			h.sessions.AddFlash(ctx, sid, fmt.Sprintf("Error saving todos: %v", err))
		}
		redirectHome(c)
		return
	}

	if err := h.sessions.ClearTasks(ctx, sid); err != nil {
		// The rows are committed; the stale session list will be
		// cleared on the next successful write.
		h.sessions.AddFlash(ctx, sid, "Todos saved, but the session could not be cleared.")
		redirectHome(c)
		return
	}

	if h.invalidate != nil {
		h.invalidate(*ownerID)
	}

	h.sessions.AddFlash(ctx, sid, "Todos saved to your account.")
	redirectHome(c)
}
