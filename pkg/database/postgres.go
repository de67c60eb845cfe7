package database

import (
	"fmt"
	"log"
	"time"

	"roomatch/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("Failed to get generic database object: %v", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
}

func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// TableExists reports whether a table is present in the public schema.
func TableExists(table string) (bool, error) {
	var exists bool
	err := DB.Raw(
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?)`,
		table,
	).Scan(&exists).Error
	return exists, err
}

// GetTableCount returns the row count of a table.
func GetTableCount(table string) (int64, error) {
	var count int64
	err := DB.Table(table).Count(&count).Error
	return count, err
}

// DropAllTables drops the application tables. Order matters because of
// foreign keys; CASCADE covers the rest.
func DropAllTables() error {
	tables := []string{"messages", "conversations", "group_invitees", "groups", "users"}
	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAllTables empties the application tables but keeps the schema.
func TruncateAllTables() error {
	tables := []string{"messages", "conversations", "group_invitees", "groups", "users"}
	for _, table := range tables {
		if err := DB.Exec(fmt.Sprintf(`TRUNCATE TABLE %s CASCADE`, table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}
	return nil
}
