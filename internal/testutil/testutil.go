// Package testutil opens throwaway SQLite stores for package tests
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/adapters/persistence/sqlgraph"
	"campus-rms/internal/config"
	"campus-rms/internal/pkg/password"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// JWT is the token configuration used by tests
var JWT = config.JWTConfig{Secret: "test-secret", AccessTokenMins: 5}

// Hasher is a fast bcrypt hasher
func Hasher() *password.Hasher {
	return password.NewHasher(bcrypt.MinCost)
}

// OpenDB opens a migrated entity database under t.TempDir()
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "entities.db")
	db, err := gorm.Open(sqlite.Dialector{DriverName: "sqlite", DSN: config.SQLiteDSN(path)}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open entity db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate entity db: %v", err)
	}
	return db
}

// Stores opens a fresh entity store and relationship store
func Stores(t *testing.T) (repositories.Store, *sqlgraph.Store) {
	t.Helper()

	entities := repositories.NewStore(OpenDB(t))

	g, err := sqlgraph.Open(context.Background(), filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("open graph store: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })

	return entities, g
}
