package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"lifeos/internal/config"
	"lifeos/pkg/database"
)

const usage = `
LifeOS - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all SQL migrations
  status      Show database connection status

Flags:
  -migrations string   Path to migrations directory (default "migrations")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go status
`

func main() {
	migrationsDir := flag.String("migrations", "migrations", "Path to migrations directory")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		log.Println("Running migrations...")
		if err := database.ApplyMigrations(db, *migrationsDir); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "status":
		log.Println("Checking database status...")
		if err := database.HealthCheck(db); err != nil {
			log.Fatalf("Database connection failed: %v", err)
		}
		log.Println("Database connection: OK")

		tables := []string{
			"users", "calendar_events", "calendar_event_interpretations",
			"outbox_messages", "insights",
		}
		for _, table := range tables {
			exists, err := database.TableExists(db, table)
			if err != nil {
				log.Printf("Error checking table %s: %v", table, err)
				continue
			}
			if exists {
				log.Printf("Table %-32s exists", table)
			} else {
				log.Printf("Table %-32s does not exist", table)
			}
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
