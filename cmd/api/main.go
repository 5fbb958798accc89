package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/feedme/feedme-golang/internal/database"
	"github.com/feedme/feedme-golang/internal/drafts"
	"github.com/feedme/feedme-golang/internal/handlers"
	"github.com/feedme/feedme-golang/internal/routes"
	"github.com/feedme/feedme-golang/internal/storage"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	if err := database.SeedIfEmpty(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	if err := database.SeedAdminIfMissing(db); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// 2. --- Draft Store ---
	draftsFile := os.Getenv("DRAFTS_FILE")
	if draftsFile == "" {
		draftsFile = "./data/drafts.json"
	}
	if err := os.MkdirAll(filepath.Dir(draftsFile), 0o755); err != nil {
		log.Fatalf("Failed to create drafts directory: %v", err)
	}
	draftStore, err := drafts.Open(draftsFile)
	if err != nil {
		log.Fatalf("Failed to open draft store: %v", err)
	}

	// 3. --- Image Storage ---
	images := storage.NewFromEnv()
	if err := os.MkdirAll(images.Dir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// --- Application Setup ---
	app := handlers.New(db, images, draftStore)

	// --- 4. Background Workers (Cron) ---
	// Expired notifications are swept hourly so the table does not grow
	// without bound.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Background worker started: sweeping expired notifications...")

		for range ticker.C {
			n, err := app.Notifications.SweepExpired(context.Background())
			if err != nil {
				log.Printf("Notification sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Notification sweep removed %d expired rows", n)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting FeedMe API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
