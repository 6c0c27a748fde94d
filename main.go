package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/backend/internal/cache"
	"taskboard/backend/internal/config"
	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/middleware"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/services"
	"taskboard/backend/internal/storage"
	"taskboard/backend/internal/worker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Application holds all application dependencies and state
type Application struct {
	Config  *config.Config
	DB      *gorm.DB
	Cache   cache.Cache
	Paths   storage.Paths
	Router  *gin.Engine
	Server  *http.Server
	Janitor *worker.Janitor

	// Services
	TaskService       services.TaskService
	UploadService     services.UploadService
	AttachmentService services.AttachmentService
	AuthService       services.AuthService
	RegisterService   services.RegisterService
}

func main() {
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
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Taskboard Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	db, err := repositories.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.DB = db

	if err := repositories.Migrate(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database connected and migrated")

	paths, err := storage.NewPaths(cfg.Upload.Dir, cfg.Upload.PublicPrefix)
	if err != nil {
		return nil, fmt.Errorf("upload root setup failed: %w", err)
	}
	if err := paths.EnsureRoot(); err != nil {
		return nil, fmt.Errorf("upload root creation failed: %w", err)
	}
	app.Paths = paths
	log.Printf("✅ Upload root ready at %s", paths.Root())

	redisCache := cache.NewRedisCache(&cache.CacheConfig{
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
	if err := redisCache.Ping(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing without cache)", err)
		redisCache.Close()
	} else {
		app.Cache = redisCache
		log.Println("✅ Redis cache connected")
	}

	app.AuthService = services.NewAuthService()
	app.RegisterService = services.NewRegisterService()
	app.UploadService = services.NewUploadService(paths, cfg.Upload)
	app.AttachmentService = services.NewAttachmentService(paths)

	taskServiceImpl := services.NewTaskService(paths)
	if app.Cache != nil {
		app.TaskService = services.NewCachedTaskService(taskServiceImpl, app.Cache)
		log.Println("✅ Cached task service initialized")
	} else {
		app.TaskService = taskServiceImpl
		log.Println("✅ Task service initialized")
	}

	app.Janitor = worker.NewJanitor(db, paths, cfg.Upload.OrphanTTL, cfg.Upload.SweepInterval)
	app.Janitor.Start()
	log.Printf("✅ Orphan attachment janitor started (TTL %v, every %v)", cfg.Upload.OrphanTTL, cfg.Upload.SweepInterval)

	log.Println("✅ All services initialized")

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	r.Use(gin.Logger())
	r.Use(middleware.RecoveryWithLog())

	if app.Config.RateLimit.Enabled {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", app.healthHandler())

	// Stored files are served read-only under the public prefix; the prefix
	// is also what attachment rows persist as their reference.
	r.Static(app.Config.Upload.PublicPrefix, app.Paths.Root())

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	{
		authHandler := handlers.NewAuthHandler(app.DB, app.AuthService)
		refreshHandler := handlers.NewRefreshHandler(app.DB, app.AuthService)
		registrationHandler := handlers.NewRegisterHandler(app.DB, app.RegisterService)

		authRoutes.POST("/register", registrationHandler.Registration)
		authRoutes.POST("/login", authHandler.Token)
		authRoutes.POST("/refresh", refreshHandler.Refresh)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthzMiddleware())
	{
		taskHandler := handlers.NewTaskHandler(app.DB, app.TaskService)
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.GET("", taskHandler.GetTasks)
			taskRoutes.GET("/:id", taskHandler.GetTaskByID)
			taskRoutes.PUT("/:id", taskHandler.UpdateTask)
			taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
		}

		uploadHandler := handlers.NewUploadHandler(app.DB, app.UploadService)
		protected.POST("/upload", uploadHandler.Upload)

		attachmentHandler := handlers.NewAttachmentHandler(app.DB, app.AttachmentService)
		attachmentRoutes := protected.Group("/attachments")
		{
			attachmentRoutes.GET("/my-files", attachmentHandler.MyFiles)
			attachmentRoutes.DELETE("/:id", attachmentHandler.Delete)
		}
	}

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

	if app.Janitor != nil {
		app.Janitor.Stop()
	}

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️  Error closing database: %v", err)
			}
		}
	}

	log.Println("✅ Cleanup complete")
}

func (app *Application) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "taskboard-backend",
		}

		sqlDB, err := app.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			health["status"] = "unhealthy"
			health["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "up"

		c.JSON(http.StatusOK, health)
	}
}
