// Package store wraps the SQLite-backed relational database that owns
// historical Race, Horse, and Race Result rows, and implements the
// read-only query contracts the prediction core and backtest engine
// depend on.
package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps a *gorm.DB opened against a local SQLite file.
type DB struct {
	*gorm.DB
}

// ConnectionConfig tunes the pool for a local, single-writer SQLite file
// rather than a networked server.
type ConnectionConfig struct {
	DatabasePath    string
	IsDevelopment   bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the SQLite file at path using sane single-writer
// defaults.
func Open(path string, isDevelopment bool) (*DB, error) {
	return OpenWithConfig(ConnectionConfig{
		DatabasePath:    path,
		IsDevelopment:   isDevelopment,
		MaxIdleConns:    2,
		MaxOpenConns:    4,
		ConnMaxLifetime: time.Hour,
	})
}

// OpenWithConfig connects to the SQLite file described by config.
func OpenWithConfig(config ConnectionConfig) (*DB, error) {
	logLevel := gormlogger.Error
	if config.IsDevelopment {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(config.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// A local SQLite file has a single writer; keep the pool small so
	// concurrent goroutines don't contend for file locks.
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"database_path":  config.DatabasePath,
		"max_idle_conns": config.MaxIdleConns,
		"max_open_conns": config.MaxOpenConns,
	}).Info("database connection established")

	return &DB{db}, nil
}

// AutoMigrate creates or updates the schema for the core entities.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(&RaceModel{}, &HorseModel{}, &RaceResultModel{})
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
