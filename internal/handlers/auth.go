package handlers

import (
	"errors"
	"net/http"

	"todo-tracker/internal/config"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	sessions    *session.Store
	cfg         config.AuthConfig
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, sessions *session.Store, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, sessions: sessions, cfg: cfg}
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	if _, ok := middleware.CurrentOwner(c); ok {
		redirectHome(c)
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flashes": h.sessions.PopFlashes(c.Request.Context(), middleware.SessionID(c)),
		"Email":   "",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := middleware.CurrentOwner(c); ok {
		redirectHome(c)
		return
	}

	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.authService.LoginUser(h.db, email, password)
	if err != nil {
		message := "Password incorrect, please try again."
		if errors.Is(err, services.ErrUnknownEmail) {
			message = "That email does not exist, please try again."
		}
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Flashes": []string{message},
			"Email":   email,
		})
		return
	}

	if err := h.setAuthCookie(c, user.ID); err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Flashes": []string{"Login failed, please try again."},
			"Email":   email,
		})
		return
	}
	redirectHome(c)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", false, true)
	redirectHome(c)
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, userID uuid.UUID) error {
	token, err := h.authService.IssueToken(userID)
	if err != nil {
		return err
	}
	c.SetCookie(h.cfg.CookieName, token, int(h.cfg.TokenTTL.Seconds()), "/", "", false, true)
	return nil
}
