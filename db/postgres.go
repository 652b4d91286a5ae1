package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"nursery_app_backend/config"
)

// Open connects to PostgreSQL and verifies the connection. The returned
// handle is passed explicitly to every component that needs it; there is
// no package-level connection.
func Open(cfg *config.Config) (*sql.DB, error) {
	database, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	database.SetMaxOpenConns(25)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(30 * time.Minute)

	if err = database.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return database, nil
}
