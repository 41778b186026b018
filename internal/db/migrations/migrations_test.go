package migrations

import (
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAll_OrderAndNames(t *testing.T) {
	all := All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d migrations, want 2", len(all))
	}
	if all[0].Name != "001_initial_schema" {
		t.Errorf("first migration = %q, want 001_initial_schema", all[0].Name)
	}
	if all[1].Name != "002_retention_policies" {
		t.Errorf("second migration = %q, want 002_retention_policies", all[1].Name)
	}
	for _, m := range all {
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Errorf("migration %s is missing up or down SQL", m.Name)
		}
	}
}

func TestInitialSchema_CreatesCoreTables(t *testing.T) {
	for _, table := range []string{"position_fixes", "trips", "saved_places", "nav_stats"} {
		if !strings.Contains(InitialSchema.UpSQL, table) {
			t.Errorf("initial schema does not create %s", table)
		}
	}
}

func TestMigrator_Migrate_AppliesPending(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_initial_schema"))

	// Only 002 is pending
	mock.ExpectBegin()
	mock.ExpectExec("add_retention_policy").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO migrations").
		WithArgs("002_retention_policies").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	migrator := New(mockDB)
	if err := migrator.Migrate(All()); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMigrator_Migrate_InitializeFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
		WillReturnError(errors.New("permission denied"))

	migrator := New(mockDB)
	if err := migrator.Migrate(All()); err == nil {
		t.Error("Migrate() expected error but got none")
	}
}

func TestMigrator_Rollback_NothingApplied(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectQuery("SELECT name FROM migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	migrator := New(mockDB)
	if err := migrator.Rollback(All()); err == nil {
		t.Error("Rollback() with no applied migrations should fail")
	}
}
