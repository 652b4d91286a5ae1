package db

import (
	"database/sql"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Seed creates the initial admin account when the users table has no
// admin yet. Without a configured password the seed is skipped so a
// fresh database never ships a known credential.
func Seed(database *sql.DB, adminEmail, adminPassword string) error {
	var exists bool
	err := database.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking for admin account: %w", err)
	}
	if exists {
		return nil
	}

	if adminPassword == "" {
		log.Println("Warning: no admin account and ADMIN_PASSWORD not set, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	_, err = database.Exec(`
		INSERT INTO users (first_name, last_name, email, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, 'admin', TRUE)
	`, "Nursery", "Admin", adminEmail, string(hash))
	if err != nil {
		return fmt.Errorf("error seeding admin account: %w", err)
	}

	log.Println("Seeded initial admin account")
	return nil
}
