// Package sqlite implements the repositories on an embedded SQLite file
// through gorm. It backs STORE_DRIVER=sqlite and the test suites.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type userModel struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Username     string    `gorm:"not null"`
	Email        string    `gorm:"not null;uniqueIndex:users_email_key"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

type taskModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	UserID      string `gorm:"not null;index:tasks_user_created_idx,priority:1"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null"`
	Status      string `gorm:"not null;default:'to do'"`
	DueDate     *time.Time
	CreatedAt   time.Time `gorm:"not null;index:tasks_user_created_idx,priority:2"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (taskModel) TableName() string { return "tasks" }

// Open connects to the SQLite file at path (":memory:" for a private
// in-memory database) and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// a single connection keeps ":memory:" databases shared across calls
	if sqlDB, err := db.DB(); err == nil && path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&userModel{}, &taskModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Pinger adapts a gorm handle to repository.Pinger.
type Pinger struct {
	DB *gorm.DB
}

func (p Pinger) Ping(ctx context.Context) error {
	if p.DB == nil {
		return errors.New("sqlite not initialized")
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func likePattern(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ""
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}
