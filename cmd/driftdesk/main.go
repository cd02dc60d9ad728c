package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/auth"
	"github.com/drift-desk/driftdesk/internal/router"
	"github.com/drift-desk/driftdesk/internal/scheduler"
)

const defaultRetentionDays = 30

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	retentionDays := defaultRetentionDays

	if raw := os.Getenv("NOTIFICATION_RETENTION_DAYS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("Invalid NOTIFICATION_RETENTION_DAYS: %q", raw)
		}
		retentionDays = n
	}

	// Retention of zero or less disables the sweeper entirely.
	if retentionDays > 0 {
		sweeper := scheduler.NewSweeper(retentionDays)
		sweeper.Start()
		defer sweeper.Stop()
	}

	r := router.NewRouter()

	port := os.Getenv("PORT")

	if port == "" {
		port = "8000"
		log.Println("PORT not set, defaulting to 8000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
