package db

import (
	"path/filepath"
	"testing"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(logger.NewNop(), Config{Driver: "SQLite", SQLitePath: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := AutoMigrateAll(db); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, m := range types.AllModels() {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}
	sqlDB, _ := db.DB()
	if sqlDB.Stats().MaxOpenConnections != 1 {
		t.Fatalf("sqlite should use a single connection")
	}
	_ = sqlDB.Close()
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(logger.NewNop(), Config{Driver: "mysql"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PostgresHost: "h", PostgresPort: "5432", PostgresUser: "u", PostgresPassword: "p", PostgresName: "n"}
	if got := cfg.postgresDSN(); got != "postgres://u:p@h:5432/n?sslmode=disable" {
		t.Fatalf("dsn = %s", got)
	}
}
