package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"pricing-rollup/config"
	"pricing-rollup/logger"
)

// DB holds the database connection
var DB *sql.DB

// InitDB opens the Postgres connection described by cfg and pings it
func InitDB(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) error {
	connStr, err := cfg.DSN()
	if err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}

	conn, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = conn
	log.Info("✓ Database connection established", "host", cfg.Host, "name", cfg.Name)
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
