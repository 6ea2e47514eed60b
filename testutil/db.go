package testutil

import (
	"testing"

	"options-pricer/config"
	"options-pricer/database"

	"gorm.io/gorm"
)

// SetupDB opens a migrated in-memory SQLite database that lives for the
// duration of the test.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: ":memory:",
		DBLogLevel: "silent",
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
