package repositories_test

import (
	"path/filepath"
	"testing"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/repositories"
)

func sqliteTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			SQLitePath:   filepath.Join(t.TempDir(), "test.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
	}
}

func TestConnectSQLite(t *testing.T) {
	db, err := repositories.Connect(sqliteTestConfig(t))
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		t.Errorf("Expected database to be reachable: %v", err)
	}
}

func TestConnectUnsupportedDriver(t *testing.T) {
	cfg := sqliteTestConfig(t)
	cfg.Database.Driver = "oracle"

	if _, err := repositories.Connect(cfg); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := repositories.Connect(sqliteTestConfig(t))
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	for _, table := range []string{"users", "tasks", "attachments", "tokens"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %q to exist after migration", table)
		}
	}
}
