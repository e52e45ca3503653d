package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"kidpoints/internal/database"
	"kidpoints/internal/models"
	"kidpoints/internal/repository"
	"kidpoints/internal/storage"
	"kidpoints/migrations"
)

// testEnv wires every service against a fresh SQLite database and an
// in-memory object store, with one owner seeded.
type testEnv struct {
	db    *database.DB
	store *storage.MemoryStore

	children    *repository.ChildRepository
	activities  *repository.ActivityRepository
	completions *repository.CompletionRepository
	payouts     *repository.PayoutRepository
	owners      *repository.OwnerRepository

	family   *FamilyService
	catalog  *CatalogService
	ledger   *LedgerService
	gate     *GateService
	accounts *AccountService

	ownerID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(migrations.FS); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	store := storage.NewMemoryStore()

	env := &testEnv{
		db:          db,
		store:       store,
		children:    repository.NewChildRepository(db),
		activities:  repository.NewActivityRepository(db),
		completions: repository.NewCompletionRepository(db),
		payouts:     repository.NewPayoutRepository(db),
		owners:      repository.NewOwnerRepository(db),
	}

	env.family = NewFamilyService(env.children, env.completions, env.payouts, store)
	env.catalog = NewCatalogService(env.activities)
	env.ledger = NewLedgerService(db, env.children, env.activities, env.completions, env.payouts)
	env.gate = NewGateService(env.owners, []byte("test-token-secret"), 15*time.Minute)
	env.accounts = NewAccountService(env.owners, env.children, env.activities, env.completions, env.payouts, store, NoopIdentityProvider{}, NewDisabledNotifyService())

	owner, err := env.owners.CreateOwner(context.Background(), "The Testers")
	if err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}
	env.ownerID = owner.ID

	return env
}

// mustAddChild creates a child without an avatar
func (env *testEnv) mustAddChild(t *testing.T, name string) *models.Child {
	t.Helper()
	child, err := env.family.AddChild(context.Background(), env.ownerID, name, AvatarUpload{})
	if err != nil {
		t.Fatalf("Failed to add child: %v", err)
	}
	return child
}

// mustAddActivity creates an activity worth the given points
func (env *testEnv) mustAddActivity(t *testing.T, name string, points int) *models.Activity {
	t.Helper()
	activity, err := env.catalog.AddActivity(context.Background(), env.ownerID, name, "", "⭐", points, "chores")
	if err != nil {
		t.Fatalf("Failed to add activity: %v", err)
	}
	return activity
}

// childPoints reads the child's cached rollup straight from the store
func (env *testEnv) childPoints(t *testing.T, childID int64) int {
	t.Helper()
	child, err := env.children.GetChildByID(context.Background(), childID)
	if err != nil {
		t.Fatalf("Failed to get child: %v", err)
	}
	if child == nil {
		t.Fatalf("Child %d not found", childID)
	}
	return child.TotalPoints
}
