package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"roomatch/config"
	"roomatch/internal/repository"
	"roomatch/pkg/database"
)

const usage = `
Roomatch - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run schema migration (extensions, enums, tables)
  status      Show database connection status
  seed        Seed the database with the admin user only
  seed-dev    Seed with development/test data
  reset       Drop all tables and re-run migrations (DANGEROUS)
  truncate    Truncate all tables (DANGEROUS)

Flags:
  -admin-email string  Admin email for seeding (default "admin@roomatch.dev")
  -admin-pass string   Admin password for seeding (default "Admin@123!")

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go seed-dev
  go run cmd/migrate/main.go reset
`

func main() {
	adminEmail := flag.String("admin-email", "admin@roomatch.dev", "Admin email for seeding")
	adminPass := flag.String("admin-pass", "Admin@123!", "Admin password for seeding")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	database.Connect(cfg)
	defer database.Close()

	switch command {
	case "up":
		runMigrationsUp()
	case "status":
		showStatus()
	case "seed":
		runSeedMinimal(*adminEmail, *adminPass)
	case "seed-dev":
		runSeedDevelopment()
	case "reset":
		runReset()
	case "truncate":
		runTruncate()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp() {
	log.Println("Running schema migration...")

	if err := repository.InitSchema(database.DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully!")
}

func showStatus() {
	log.Println("Checking database status...")

	if err := database.HealthCheck(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	tables := []string{"users", "groups", "group_invitees", "conversations", "messages"}
	for _, table := range tables {
		exists, err := database.TableExists(table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if exists {
			count, _ := database.GetTableCount(table)
			log.Printf("Table %-20s exists (%d rows)", table, count)
		} else {
			log.Printf("Table %-20s does not exist", table)
		}
	}
}

func runSeedMinimal(adminEmail, adminPass string) {
	log.Println("Seeding database (admin only)...")

	cfg := database.DefaultSeedConfig()
	cfg.AdminEmail = adminEmail
	cfg.AdminPassword = adminPass

	admin, err := database.SeedMinimal(cfg)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Admin user created/verified: %s (ID: %s)", admin.Email, admin.ID)
}

func runSeedDevelopment() {
	log.Println("Seeding database (development mode)...")

	result, err := database.Seed(nil)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seed summary:")
	log.Printf("   - Admin user: %s", result.AdminUser.Email)
	log.Printf("   - Test users: %d", len(result.TestUsers))
	log.Printf("   - Groups: %d", len(result.Groups))
	log.Printf("   - Conversations: %d", len(result.Conversations))
	log.Printf("   - Messages: %d", len(result.Messages))
}

func runReset() {
	log.Println("WARNING: This will DROP all tables and re-run migrations!")

	log.Println("Dropping all tables...")
	if err := database.DropAllTables(); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	runMigrationsUp()
	log.Println("Database reset completed!")
}

func runTruncate() {
	log.Println("WARNING: This will TRUNCATE all tables!")

	if err := database.TruncateAllTables(); err != nil {
		log.Fatalf("Truncate failed: %v", err)
	}

	log.Println("All tables truncated!")
}
