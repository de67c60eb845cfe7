package repository

import (
	"fmt"

	"roomatch/internal/domain/chat"
	"roomatch/internal/domain/group"
	"roomatch/internal/domain/user"

	"gorm.io/gorm"
)

// InitSchema handles the database schema migration.
// It creates necessary extensions, enums and runs Gorm auto-migration.
func InitSchema(db *gorm.DB) error {
	// 1. Extensions
	// Note: Creating extensions usually requires superuser privileges.
	extensions := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS "citext";`,
	}

	for _, ext := range extensions {
		if err := db.Exec(ext).Error; err != nil {
			return fmt.Errorf("failed to create extension: %w", err)
		}
	}

	// 2. Enums
	// 'DO $$ BEGIN ... END $$' blocks create the types only if they don't exist.
	enums := []string{
		`DO $$ BEGIN
			CREATE TYPE user_status AS ENUM ('ENABLED', 'DISABLED', 'BANNED', 'VACATION');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			CREATE TYPE group_status AS ENUM ('OPENED', 'CLOSED');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			CREATE TYPE invitee_role AS ENUM ('CREATOR', 'MEMBER');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
		`DO $$ BEGIN
			CREATE TYPE conversation_kind AS ENUM ('PRIVATE', 'GROUP');
		EXCEPTION
			WHEN duplicate_object THEN null;
		END $$;`,
	}

	for _, enum := range enums {
		if err := db.Exec(enum).Error; err != nil {
			return fmt.Errorf("failed to create enum: %w", err)
		}
	}

	// 3. AutoMigrate Tables
	if err := db.AutoMigrate(
		&user.User{},
		&group.Group{},
		&group.Invitee{},
		&chat.Conversation{},
		&chat.Message{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	return nil
}
