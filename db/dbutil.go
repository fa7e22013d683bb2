package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DBConfig holds configuration options for database initialization
type DBConfig struct {
	// Path specifies the database file path. Use MemoryPath for an in-memory database
	Path string
	// LogLevel specifies the GORM logging level
	LogLevel logger.LogLevel
}

// InitDatabase creates and configures a SQLite database with the given configuration.
// The caller is responsible for running migrations.
func InitDatabase(config DBConfig) (*gorm.DB, error) {
	inMemory := config.Path == MemoryPath

	if !inMemory {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Failed to create data directory", "dir", dir, "error", err)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		slog.Error("Failed to connect to database", "dsn", config.Path, "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A pool would hand out separate in-memory databases.
	if inMemory {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	pragmas := "PRAGMA foreign_keys = ON;"
	if !inMemory {
		pragmas += `
		PRAGMA journal_mode       = WAL;
		PRAGMA synchronous        = NORMAL;
		PRAGMA busy_timeout       = 5000;
		PRAGMA cache_size         = 2000;`
	}

	if err := db.Exec(pragmas).Error; err != nil {
		slog.Error("Failed to configure database", "error", err)
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return db, nil
}
