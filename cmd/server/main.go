package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"tanda-xntrust/internal/adapters/http/middleware"
	"tanda-xntrust/internal/adapters/http/routes"
	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "tanda-xntrust/docs" // Swagger docs
)

// @title XnTrust API
// @version 1.0
// @description XnScore trust scoring backend for XnTanda rotating savings circles
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@xntanda.com

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host api.xntanda.com
// @BasePath /api/v1
// @schemes https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed baseline accounts and circles outside production
	if cfg.AppMode != "prod" {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed data: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "XnTrust API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	scoreService, sweepService := routes.Setup(app, db, cfg)

	// Background workers: snapshot invalidation and the nightly sweep
	scoreService.StartWorker()
	defer scoreService.Stop()

	if err := sweepService.Start(); err != nil {
		log.Fatalf("❌ Failed to start sweep scheduler: %v", err)
	}
	defer sweepService.Stop()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
