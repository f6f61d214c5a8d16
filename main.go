package main

import (
	"log"
	"math"
	"time"

	"lms/config"
	"lms/routes"
	"lms/storage"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Object storage: fail fast on misconfiguration instead of degrading at
	// upload time
	uploader, err := storage.NewUploader(cfg)
	if err != nil {
		log.Fatalf("Error initializing object storage: %v", err)
	}

	janitor := storage.NewJanitor(uploader, 24*time.Hour, logger)
	if err := janitor.Start(); err != nil {
		log.Fatalf("Error starting storage janitor: %v", err)
	}
	defer janitor.Stop()

	// Create Fiber app. Request bodies are streamed so large uploads are
	// never buffered whole.
	app := fiber.New(fiber.Config{
		StreamRequestBody: true,
		BodyLimit:         requestBodyLimit(),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(utils.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, logger, uploader)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}

// requestBodyLimit caps upload request bodies at 4 GiB, clamped so the value
// still fits int on 32-bit platforms.
func requestBodyLimit() int {
	limit := int64(4) << 30
	if limit > math.MaxInt {
		limit = math.MaxInt
	}
	return int(limit)
}
