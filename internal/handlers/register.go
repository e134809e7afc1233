package handlers

import (
	"errors"
	"net/http"

	"todo-tracker/internal/config"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RegisterHandler struct {
	db              *gorm.DB
	registerService services.RegisterService
	authService     services.AuthService
	sessions        *session.Store
	cfg             config.AuthConfig
}

func NewRegisterHandler(db *gorm.DB, registerService services.RegisterService, authService services.AuthService, sessions *session.Store, cfg config.AuthConfig) *RegisterHandler {
	return &RegisterHandler{
		db:              db,
		registerService: registerService,
		authService:     authService,
		sessions:        sessions,
		cfg:             cfg,
	}
}

func (h *RegisterHandler) RegisterForm(c *gin.Context) {
	if _, ok := middleware.CurrentOwner(c); ok {
		redirectHome(c)
		return
	}

	c.HTML(http.StatusOK, "register.html", gin.H{
		"Flashes": h.sessions.PopFlashes(c.Request.Context(), middleware.SessionID(c)),
		"Name":    "",
		"Email":   "",
	})
}

func (h *RegisterHandler) Register(c *gin.Context) {
	if _, ok := middleware.CurrentOwner(c); ok {
		redirectHome(c)
		return
	}

	req := services.RegistrationRequest{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.HTML(http.StatusOK, "register.html", gin.H{
			"Flashes": []string{"All fields are required."},
			"Name":    req.Name,
			"Email":   req.Email,
		})
		return
	}

	user, err := h.registerService.RegisterUser(h.db, req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			h.sessions.AddFlash(c.Request.Context(), middleware.SessionID(c),
				"You've already signed up with that email, log in instead!")
			c.Redirect(http.StatusFound, "/register")
			return
		}
		c.HTML(http.StatusInternalServerError, "register.html", gin.H{
			"Flashes": []string{"Registration failed, please try again."},
			"Name":    req.Name,
			"Email":   req.Email,
		})
		return
	}

	// Log the new user in right away so any guest tasks can be saved
	// to the fresh account without a second credential round-trip.
	token, err := h.authService.IssueToken(user.ID)
	if err == nil {
		c.SetCookie(h.cfg.CookieName, token, int(h.cfg.TokenTTL.Seconds()), "/", "", false, true)
	}
	redirectHome(c)
}
