package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"kidpoints/internal/config"
	"kidpoints/internal/database"
	"kidpoints/internal/repository"
	"kidpoints/internal/service"
	"kidpoints/internal/storage"
	"kidpoints/migrations"
)

func main() {
	// Define subcommands
	reconcileCmd := flag.NewFlagSet("reconcile", flag.ExitOnError)
	promoteCmd := flag.NewFlagSet("promote-avatars", flag.ExitOnError)

	// Reconcile flags
	reconcileChild := reconcileCmd.Int64("child", 0, "Reconcile a single child id (default: all children)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	childRepo := repository.NewChildRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)

	switch os.Args[1] {
	case "reconcile":
		reconcileCmd.Parse(os.Args[2:])
		ledgerService := service.NewLedgerService(db, childRepo, activityRepo, completionRepo, payoutRepo)
		handleReconcile(ctx, db, ledgerService, *reconcileChild)

	case "promote-avatars":
		promoteCmd.Parse(os.Args[2:])
		if cfg.AvatarBucket == "" {
			log.Fatal("AVATAR_BUCKET is not configured")
		}
		store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AvatarBucket, cfg.AvatarBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize avatar storage: %v", err)
		}
		familyService := service.NewFamilyService(childRepo, completionRepo, payoutRepo, store)
		handlePromote(ctx, familyService)

	default:
		printUsage()
		os.Exit(1)
	}
}

// handleReconcile recomputes cached point rollups from the ledger, for one
// child or for every child in the database
func handleReconcile(ctx context.Context, db *database.DB, ledgerService *service.LedgerService, childID int64) {
	ids := []int64{childID}
	if childID == 0 {
		var err error
		ids, err = allChildIDs(ctx, db)
		if err != nil {
			log.Fatalf("Failed to list children: %v", err)
		}
	}

	for _, id := range ids {
		balance, err := ledgerService.ReconcileChild(ctx, id)
		if err != nil {
			log.Fatalf("Reconcile failed for child %d: %v", id, err)
		}
		log.Printf("Child %d: balance %d", id, balance)
	}
	log.Printf("Reconciled %d children", len(ids))
}

// handlePromote retries the storage move for avatars still on temporary keys
func handlePromote(ctx context.Context, familyService *service.FamilyService) {
	promoted, err := familyService.PromotePendingAvatars(ctx)
	if err != nil {
		log.Fatalf("Avatar promotion failed: %v", err)
	}
	log.Printf("Promoted %d avatars", promoted)
}

func allChildIDs(ctx context.Context, db *database.DB) ([]int64, error) {
	rows, err := db.QueryContext(ctx, "SELECT id FROM children ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func printUsage() {
	fmt.Println("Usage: admin <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  reconcile        Recompute cached point balances from the ledger")
	fmt.Println("                   -child <id>  reconcile one child only")
	fmt.Println("  promote-avatars  Retry moving avatars to their permanent storage keys")
}
