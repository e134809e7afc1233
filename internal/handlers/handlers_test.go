package handlers

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todo-tracker/internal/config"
	"todo-tracker/internal/dates"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/models"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	server   *httptest.Server
	client   *http.Client
	db       *gorm.DB
	sessions *session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewStore(client, time.Hour)

	authCfg := config.AuthConfig{
		CookieName: "auth_token",
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
	}

	taskService := services.NewTaskService()
	authService := services.NewAuthService(authCfg.JWTSecret, authCfg.TokenTTL)

	r := gin.New()
	r.SetFuncMap(template.FuncMap{"humanDate": dates.Human})
	r.LoadHTMLGlob("../../templates/*.html")
	r.Use(middleware.EnsureSession("session_id", 3600))
	r.Use(middleware.Authenticate(authService, authCfg.CookieName))

	listHandler := NewListHandler(db, taskService, sessions)
	taskHandler := NewTaskHandler(db, taskService, sessions)
	authHandler := NewAuthHandler(db, authService, sessions, authCfg)
	registerHandler := NewRegisterHandler(db, services.NewRegisterService(), authService, sessions, authCfg)
	saveHandler := NewSaveHandler(db, services.NewMigrationService(), sessions, func(uuid.UUID) {})

	r.GET("/", listHandler.Home)
	r.POST("/add", taskHandler.Add)
	r.POST("/toggle_done", taskHandler.ToggleDone)
	r.POST("/delete", taskHandler.Delete)
	r.GET("/edit", taskHandler.EditForm)
	r.POST("/edit", taskHandler.Edit)
	r.GET("/edit_session", taskHandler.EditSessionForm)
	r.POST("/edit_session", taskHandler.EditSession)
	r.GET("/save", saveHandler.Save)
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/register", registerHandler.RegisterForm)
	r.POST("/register", registerHandler.Register)

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &testEnv{
		server:   server,
		client:   &http.Client{Jar: jar},
		db:       db,
		sessions: sessions,
	}
}

func (e *testEnv) get(t *testing.T, path string) string {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading GET %s body failed: %v", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected status 200, got %d", path, resp.StatusCode)
	}
	return string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) string {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading POST %s body failed: %v", path, err)
	}
	return string(body)
}

func (e *testEnv) sessionID(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(e.server.URL)
	for _, cookie := range e.client.Jar.Cookies(u) {
		if cookie.Name == "session_id" {
			return cookie.Value
		}
	}
	t.Fatal("no session_id cookie set")
	return ""
}

func TestGuestAddAndList(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/")
	env.post(t, "/add", url.Values{"text": {"walk the dog"}})

	body := env.get(t, "/")
	if !strings.Contains(body, "walk the dog") {
		t.Error("Expected guest todo to appear on the home page")
	}

	var count int64
	env.db.Model(&models.Task{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected guest todo to stay out of durable storage, found %d rows", count)
	}
}

func TestGuestRegisterAndSaveFlow(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/")
	env.post(t, "/add", url.Values{"text": {"first guest todo"}})
	env.post(t, "/add", url.Values{"text": {"second guest todo"}, "date": {"2026-09-01"}})

	env.post(t, "/register", url.Values{
		"name":     {"Guest Turned User"},
		"email":    {"guest@example.com"},
		"password": {"secret123"},
	})

	body := env.get(t, "/save")
	if !strings.Contains(body, "Todos saved to your account.") {
		t.Error("Expected save confirmation flash after /save")
	}
	if !strings.Contains(body, "first guest todo") || !strings.Contains(body, "second guest todo") {
		t.Error("Expected both saved todos on the home page")
	}

	var user models.User
	if err := env.db.Where("email = ?", "guest@example.com").First(&user).Error; err != nil {
		t.Fatalf("registered user not found: %v", err)
	}

	var tasks []models.Task
	if err := env.db.Where("user_id = ?", user.ID).Find(&tasks).Error; err != nil {
		t.Fatalf("failed to load tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 durable tasks after save, got %d", len(tasks))
	}

	remaining := env.sessions.Tasks(context.Background(), env.sessionID(t))
	if len(remaining) != 0 {
		t.Errorf("Expected session todos cleared after save, %d remain", len(remaining))
	}
}

func TestSaveRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/")
	env.post(t, "/add", url.Values{"text": {"unsaved"}})

	resp, err := env.client.Get(env.server.URL + "/save")
	if err != nil {
		t.Fatalf("GET /save failed: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Request.URL.Path; got != "/login" {
		t.Errorf("Expected redirect to /login, landed on %s", got)
	}

	remaining := env.sessions.Tasks(context.Background(), env.sessionID(t))
	if len(remaining) != 1 {
		t.Errorf("Expected session todo preserved, got %d", len(remaining))
	}
}

func TestLoginWrongPasswordFlash(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/")
	env.post(t, "/register", url.Values{
		"name":     {"Existing"},
		"email":    {"existing@example.com"},
		"password": {"rightpassword"},
	})
	env.get(t, "/logout")

	body := env.post(t, "/login", url.Values{
		"email":    {"existing@example.com"},
		"password": {"wrongpassword"},
	})
	if !strings.Contains(body, "Password incorrect, please try again.") {
		t.Error("Expected wrong-password flash")
	}

	body = env.post(t, "/login", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})
	if !strings.Contains(body, "That email does not exist, please try again.") {
		t.Error("Expected unknown-email flash")
	}
}

func TestToggleForeignTaskReportsNotFound(t *testing.T) {
	env := newTestEnv(t)

	env.get(t, "/")
	env.post(t, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"password": {"alicepass"},
	})
	env.post(t, "/add", url.Values{"text": {"alice's task"}})

	var task models.Task
	if err := env.db.First(&task).Error; err != nil {
		t.Fatalf("task not found: %v", err)
	}

	// Second browser with its own cookies, logged in as a different user.
	other := newTestEnvClient(t, env)
	other.get(t, "/")
	other.post(t, "/register", url.Values{
		"name":     {"Mallory"},
		"email":    {"mallory@example.com"},
		"password": {"mallorypass"},
	})

	body := other.post(t, "/toggle_done", url.Values{"todo_id": {task.ID.String()}})
	if !strings.Contains(body, "Todo not found or unauthorized.") {
		t.Error("Expected generic not-found flash for a foreign task")
	}

	var reloaded models.Task
	if err := env.db.First(&reloaded, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("task disappeared: %v", err)
	}
	if reloaded.Done {
		t.Error("Expected foreign toggle to leave the task untouched")
	}
}

// newTestEnvClient shares the server and database of env but uses a
// fresh cookie jar, simulating a second browser.
func newTestEnvClient(t *testing.T, env *testEnv) *testEnv {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &testEnv{
		server:   env.server,
		client:   &http.Client{Jar: jar},
		db:       env.db,
		sessions: env.sessions,
	}
}
