package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/api"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/db"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/schedule"
)

const sweepLookback = 7 * 24 * time.Hour

func main() {
	// Check for command-line arguments
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	// Start the server
	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database for migrations")

	// Perform migrations
	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.Business{}:             "Business",
		&models.User{}:                 "User",
		&models.Client{}:               "Client",
		&models.ClientHistory{}:        "ClientHistory",
		&models.Staff{}:                "Staff",
		&models.Service{}:              "Service",
		&models.Appointment{}:          "Appointment",
		&models.AppointmentException{}: "AppointmentException",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	log.Println("All migrations completed successfully")
	return nil
}

func startServer() {
	// Initialize database connection
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database")

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Background lifecycle sweep: elapsed pending appointments get
	// promoted even when the calendar is not being viewed.
	c := cron.New()
	if _, err := c.AddFunc("@every 15m", func() { runStatusSweep(DB) }); err != nil {
		log.Fatalf("Error scheduling status sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Start the API server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}

// runStatusSweep promotes elapsed appointments for every business.
// Promotion is idempotent, so overlapping runs are harmless.
func runStatusSweep(DB *gorm.DB) {
	store := schedule.NewGormStore(DB)
	engine := schedule.NewEngine(store, store, store, schedule.SystemClock)

	var businesses []models.Business
	if err := DB.Find(&businesses).Error; err != nil {
		log.Printf("Status sweep: error listing businesses: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, business := range businesses {
		promoted, err := engine.RunStatusSweep(ctx, business.ID, sweepLookback)
		if err != nil {
			log.Printf("Status sweep: business %d: %v", business.ID, err)
			continue
		}
		if promoted > 0 {
			log.Printf("Status sweep: business %d: %d appointments promoted to done", business.ID, promoted)
		}
	}
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()

	log.Println("Preparing to clear database...")

	// Optional: Add a confirmation prompt
	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		log.Println("Database clearing cancelled.")
		return
	}

	tables := []interface{}{
		&models.AppointmentException{},
		&models.Appointment{},
		&models.ClientHistory{},
		&models.Client{},
		&models.Staff{},
		&models.Service{},
		&models.User{},
		&models.Business{},
	}

	log.Println("Dropping tables...")
	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			log.Printf("Warning dropping table %T: %v", table, err)
		} else {
			log.Printf("Table %T dropped", table)
		}
	}

	log.Println("Database cleared successfully")
}
