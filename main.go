package main

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-tracker/internal/cache"
	"todo-tracker/internal/config"
	"todo-tracker/internal/database"
	"todo-tracker/internal/dates"
	"todo-tracker/internal/handlers"
	"todo-tracker/internal/middleware"
	"todo-tracker/internal/monitoring"
	"todo-tracker/internal/repositories"
	"todo-tracker/internal/services"
	"todo-tracker/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// Application holds all application dependencies and state
type Application struct {
	Config   *config.Config
	DB       *database.Pool
	Redis    *redis.Client
	Cache    cache.Cache
	Sessions *session.Store
	Router   *gin.Engine
	Server   *http.Server

	redisAvailable bool

	// Services
	TaskService      services.TaskService
	CachedTasks      *services.CachedTaskService
	AuthService      services.AuthService
	RegisterService  services.RegisterService
	MigrationService services.MigrationService
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "todoweb",
		Short: "Personal todo tracking web application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			pool, err := database.NewPool(&database.PoolConfig{
				DSN:             cfg.GetDatabaseDSN(),
				MaxOpenConns:    cfg.Database.MaxOpenConns,
				MaxIdleConns:    cfg.Database.MaxIdleConns,
				ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
				ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			})
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer pool.Close()

			migrationConfig := repositories.DefaultMigrationConfig()
			migrationConfig.DBName = cfg.Database.Name

			if down {
				return repositories.RollbackMigration(pool.DB, migrationConfig)
			}
			return repositories.RunMigrations(pool.DB, migrationConfig)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back the last migration")
	return cmd
}

func runServe() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
	return nil
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Todo Tracker...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	pool, err := database.NewPool(&database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = pool
	log.Println("✅ Database connected and configured")

	migrationConfig := repositories.DefaultMigrationConfig()
	migrationConfig.DBName = cfg.Database.Name

	if err := repositories.RunMigrations(pool.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	app.Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.Redis.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (sessions degraded, memory cache only)", err)
	} else {
		app.redisAvailable = true
		log.Println("✅ Redis connected")
	}

	// Guest task lists and flashes live in redis; the store's breaker
	// degrades reads to an empty session while redis is down.
	app.Sessions = session.NewStore(app.Redis, cfg.Session.TTL)

	if app.redisAvailable {
		app.Cache = cache.NewRedisCache(app.Redis)
		log.Println("✅ Redis cache initialized")
	} else {
		app.Cache = cache.NewMemoryCache()
		log.Println("✅ Memory cache initialized (fallback mode)")
	}

	app.AuthService = services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	app.RegisterService = services.NewRegisterService()
	app.MigrationService = services.NewMigrationService()

	app.CachedTasks = services.NewCachedTaskService(services.NewTaskService(), app.Cache)
	app.TaskService = app.CachedTasks
	log.Println("✅ All services initialized")

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	r.SetFuncMap(template.FuncMap{
		"humanDate": dates.Human,
	})
	r.LoadHTMLGlob("templates/*.html")

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
	r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.EnsureSession(app.Config.Session.CookieName, int(app.Config.Session.TTL.Seconds())))
	r.Use(middleware.Authenticate(app.AuthService, app.Config.Auth.CookieName))

	// Health and monitoring endpoints
	r.GET("/health", app.healthHandler())
	r.GET("/ready", app.readinessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	listHandler := handlers.NewListHandler(app.DB.DB, app.TaskService, app.Sessions)
	taskHandler := handlers.NewTaskHandler(app.DB.DB, app.TaskService, app.Sessions)
	authHandler := handlers.NewAuthHandler(app.DB.DB, app.AuthService, app.Sessions, app.Config.Auth)
	registerHandler := handlers.NewRegisterHandler(app.DB.DB, app.RegisterService, app.AuthService, app.Sessions, app.Config.Auth)
	saveHandler := handlers.NewSaveHandler(app.DB.DB, app.MigrationService, app.Sessions, app.CachedTasks.Invalidate)

	r.GET("/", listHandler.Home)
	r.GET("/home", listHandler.Home)

	r.POST("/add", taskHandler.Add)
	r.POST("/toggle_done", taskHandler.ToggleDone)
	r.POST("/delete", taskHandler.Delete)
	r.GET("/edit", taskHandler.EditForm)
	r.POST("/edit", taskHandler.Edit)
	r.GET("/edit_session", taskHandler.EditSessionForm)
	r.POST("/edit_session", taskHandler.EditSession)
	r.GET("/save", saveHandler.Save)

	// Credential endpoints get a stricter, cross-instance limit.
	var credentialLimit gin.HandlerFunc
	if app.redisAvailable {
		limiter := middleware.NewDistributedRateLimiter(app.Redis)
		credentialLimit = limiter.CreateMiddleware("credentials", &middleware.RateLimit{
			Rate:    app.Config.RateLimit.LoginPerMin,
			Window:  time.Minute,
			KeyFunc: middleware.IPKeyFunc,
		})
	} else {
		credentialLimit = middleware.RateLimiter(
			rate.Limit(float64(app.Config.RateLimit.LoginPerMin)/60.0), 5)
	}

	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", credentialLimit, authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/register", registerHandler.RegisterForm)
	r.POST("/register", credentialLimit, registerHandler.Register)

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}

func (app *Application) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "todo-tracker",
		}

		if err := app.DB.Health(); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "up"
		health["database_pool"] = app.DB.Stats()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := app.Redis.Ping(ctx).Err(); err != nil {
			health["redis"] = "down"
		} else {
			health["redis"] = "up"
		}

		c.JSON(http.StatusOK, health)
	}
}

func (app *Application) readinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.DB.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"reason": "database not ready",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ready": true,
		})
	}
}
