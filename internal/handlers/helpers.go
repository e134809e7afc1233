package handlers

import (
	"net/http"

	"todo-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const msgNotFound = "Todo not found or unauthorized."

func optionalOwner(c *gin.Context) *uuid.UUID {
	ownerID, ok := middleware.CurrentOwner(c)
	if !ok {
		return nil
	}
	return &ownerID
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}
