package database

import (
	"context"
	"path/filepath"
	"testing"

	"kidpoints/migrations"
)

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_integration.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Test that tables were created by migrations
	tables := []string{"owners", "children", "activities", "completed_activities", "payouts"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		err := db.QueryRowContext(ctx, query, table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Rerunning migrations is a no-op
	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Migration rerun failed: %v", err)
	}
}

// TestDatabaseTransactions tests transaction support with placeholder rewriting
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_transactions.db")

	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	// Committed transaction
	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	ownerID, err := tx.ExecReturningID(ctx, "INSERT INTO owners (display_name) VALUES (?)", "The Testers")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if ownerID == 0 {
		tx.Rollback()
		t.Fatal("Expected a non-zero id from ExecReturningID")
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	// Rolled back transaction leaves no trace
	tx, err = db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.ExecReturningID(ctx, "INSERT INTO owners (display_name) VALUES (?)", "Ghost"); err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to roll back transaction: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM owners WHERE display_name = ?", "Ghost").Scan(&count); err != nil {
		t.Fatalf("Failed to count owners: %v", err)
	}
	if count != 0 {
		t.Errorf("Rolled back insert is visible: count %d", count)
	}
}
