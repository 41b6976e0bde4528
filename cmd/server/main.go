package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dkoren/drivenet/internal/blob/fsblob"
	"github.com/dkoren/drivenet/internal/config"
	"github.com/dkoren/drivenet/internal/database"
	"github.com/dkoren/drivenet/internal/handlers"
	"github.com/dkoren/drivenet/internal/middleware"
	"github.com/dkoren/drivenet/internal/observe"
	"github.com/dkoren/drivenet/internal/store/gormstore"
	"github.com/dkoren/drivenet/internal/types"

	_ "github.com/dkoren/drivenet/docs/api" // Swagger docs
)

// @title Drivenet API
// @version 1.0.0
// @description Community and vehicle tracking data service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/dkoren/drivenet

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Document store over the database
	docStore := gormstore.New(db)

	// Observability sink for the sync layer
	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()
	sink := observe.NewSink(zlog)

	// Blob storage
	blobs, err := fsblob.New(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("drivenet")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded blobs
	app.Static(cfg.BlobBaseURL, cfg.BlobDir)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	userHandler := handlers.NewUserHandler(docStore, sink)
	carHandler := handlers.NewCarHandler(docStore, sink)
	threadHandler := handlers.NewThreadHandler(docStore, sink)
	imageHandler := &handlers.ImageHandler{Blobs: blobs}
	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db}

	api.Get("/health", healthHandler.Health)

	// Public reads
	api.Get("/users", userHandler.ListUsers)
	api.Get("/users/:id", userHandler.GetUser)
	api.Get("/cars", carHandler.ListCars)
	api.Get("/cars/:id", carHandler.GetCar)
	api.Get("/cars/:id/logs", carHandler.ListLogs)
	api.Get("/cars/:id/consumption", carHandler.Consumption)
	api.Get("/threads", threadHandler.ListThreads)
	api.Get("/threads/:id", threadHandler.GetThread)
	api.Get("/threads/:id/comments", threadHandler.ListComments)
	api.Get("/threads/:id/comments/:commentId/replies", threadHandler.ListReplies)

	// Authenticated mutations
	api.Post("/users", middleware.AuthUser(cfg), userHandler.CreateUser)
	api.Patch("/users/:id", middleware.AuthUser(cfg), userHandler.UpdateUser)
	api.Post("/cars", middleware.AuthUser(cfg), carHandler.CreateCar)
	api.Patch("/cars/:id", middleware.AuthUser(cfg), carHandler.UpdateCar)
	api.Delete("/cars/:id", middleware.AuthUser(cfg), carHandler.DeleteCar)
	api.Post("/cars/:id/logs", middleware.AuthUser(cfg), carHandler.CreateLogs)
	api.Patch("/cars/:id/logs/:logId", middleware.AuthUser(cfg), carHandler.UpdateLog)
	api.Delete("/cars/:id/logs/:logId", middleware.AuthUser(cfg), carHandler.DeleteLog)
	api.Post("/threads", middleware.AuthUser(cfg), threadHandler.CreateThread)
	api.Patch("/threads/:id", middleware.AuthUser(cfg), threadHandler.UpdateThread)
	api.Delete("/threads/:id", middleware.AuthUser(cfg), threadHandler.DeleteThread)
	api.Post("/threads/:id/votes", middleware.AuthUser(cfg), threadHandler.Vote)
	api.Post("/threads/:id/comments", middleware.AuthUser(cfg), threadHandler.CreateComment)
	api.Delete("/threads/:id/comments/:commentId", middleware.AuthUser(cfg), threadHandler.DeleteComment)
	api.Post("/threads/:id/comments/:commentId/replies", middleware.AuthUser(cfg), threadHandler.CreateReply)
	api.Delete("/threads/:id/comments/:commentId/replies/:replyId", middleware.AuthUser(cfg), threadHandler.DeleteReply)
	api.Post("/images", middleware.AuthUser(cfg), imageHandler.Upload)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Authorizer is initialized lazily on the first authenticated request
	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Check for app-level typed errors (auth middleware)
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
