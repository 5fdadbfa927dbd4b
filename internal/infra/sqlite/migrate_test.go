package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/econpulse/econpulse/internal/infra/sqlite"
)

// ============================================================
// Helpers
// ============================================================

func mustMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	return db
}

func assertTableExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table,
	).Scan(&name)
	if err != nil {
		t.Errorf("table %q does not exist: %v", table, err)
	}
}

// ============================================================
// MigrateUp
// ============================================================

func TestMigrateUp_CreatesSchema(t *testing.T) {
	t.Parallel()

	db := mustMigratedDB(t)

	assertTableExists(t, db, "schema_migrations")
	assertTableExists(t, db, "service_account")
	assertTableExists(t, db, "ai_call_event")
}

func TestMigrateUp_Idempotent(t *testing.T) {
	t.Parallel()

	db := mustMigratedDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("second MigrateUp: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_migrations rows = %d, want 1", count)
	}
}

func TestMigrateUp_RecordsVersion(t *testing.T) {
	t.Parallel()

	db := mustMigratedDB(t)

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
}

func TestMigrationVersion_FreshDatabase(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != 0 {
		t.Errorf("version = %d, want 0", version)
	}
}

// ============================================================
// Schema constraints
// ============================================================

func TestSchema_CallEventOperationCheck(t *testing.T) {
	t.Parallel()

	db := mustMigratedDB(t)

	_, err := db.Exec(
		`INSERT INTO ai_call_event (id, operation, provider_id, outcome)
		 VALUES ('evt-1', 'translate', 'local', 'success')`,
	)
	if err == nil {
		t.Error("expected CHECK violation for unknown operation")
	}
}

func TestSchema_CallEventOutcomeCheck(t *testing.T) {
	t.Parallel()

	db := mustMigratedDB(t)

	_, err := db.Exec(
		`INSERT INTO ai_call_event (id, operation, provider_id, outcome)
		 VALUES ('evt-1', 'generate', 'local', 'maybe')`,
	)
	if err == nil {
		t.Error("expected CHECK violation for unknown outcome")
	}
}

func TestSchema_ServiceAccountPrimaryKey(t *testing.T) {
	t.Parallel()

	db := mustMigratedDB(t)

	insert := `INSERT INTO service_account (client_id, name, secret_hash)
	           VALUES ('svc-1', 'reporting', 'hash')`
	if _, err := db.Exec(insert); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(insert); err == nil {
		t.Error("expected primary key violation on duplicate client_id")
	}
}
