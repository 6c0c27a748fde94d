package services_test

import (
	"testing"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A pooled second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return db
}

func setupTestPaths(t *testing.T) storage.Paths {
	t.Helper()

	paths, err := storage.NewPaths(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("Failed to create test paths: %v", err)
	}
	if err := paths.EnsureRoot(); err != nil {
		t.Fatalf("Failed to create upload root: %v", err)
	}
	return paths
}

func testUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		PublicPrefix:      "/uploads",
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".pdf", ".txt"},
		MaxSizeMB:         1,
	}
}
