package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kidpoints/internal/config"
	"kidpoints/internal/database"
	"kidpoints/internal/handlers"
	"kidpoints/internal/repository"
	"kidpoints/internal/service"
	"kidpoints/internal/storage"
	"kidpoints/migrations"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize avatar object storage
	var store storage.ObjectStore
	if cfg.AvatarBucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AvatarBucket, cfg.AvatarBaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize avatar storage: %v", err)
		}
		store = s3Store
		log.Printf("Avatar storage enabled: bucket=%s", cfg.AvatarBucket)
	} else {
		store = storage.NewMemoryStore()
		log.Println("Avatar storage bucket not configured, using in-memory store")
	}

	// Initialize notification service
	notifier, err := service.NewNotifyService(ctx, cfg.AWSRegion, cfg.NotifyFromEmail, cfg.NotifyFromName)
	if err != nil {
		log.Fatalf("Failed to initialize notification service: %v", err)
	}

	// Initialize repositories
	ownerRepo := repository.NewOwnerRepository(db)
	childRepo := repository.NewChildRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)

	// Initialize services
	familyService := service.NewFamilyService(childRepo, completionRepo, payoutRepo, store)
	catalogService := service.NewCatalogService(activityRepo)
	ledgerService := service.NewLedgerService(db, childRepo, activityRepo, completionRepo, payoutRepo)
	gateService := service.NewGateService(ownerRepo, []byte(cfg.ParentTokenSecret), cfg.ParentTokenTTL)
	accountService := service.NewAccountService(ownerRepo, childRepo, activityRepo, completionRepo, payoutRepo, store, service.NoopIdentityProvider{}, notifier)

	// Initialize handlers
	middleware := handlers.NewMiddleware(gateService)
	accountHandler := handlers.NewAccountHandler(accountService, gateService)
	childHandler := handlers.NewChildHandler(familyService, ledgerService)
	activityHandler := handlers.NewActivityHandler(catalogService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)

	// Setup routes
	mux := http.NewServeMux()

	// Account routes
	mux.HandleFunc("POST /account", accountHandler.Create)
	mux.HandleFunc("GET /account", middleware.RequireOwner(accountHandler.Get))
	mux.HandleFunc("POST /account/name", middleware.RequireParent(accountHandler.UpdateName))
	mux.HandleFunc("POST /account/delete", middleware.RequireParent(accountHandler.Delete))

	// Parent gate routes
	mux.HandleFunc("POST /parent/check", middleware.RequireOwner(accountHandler.CheckParentSecret))
	mux.HandleFunc("POST /parent/secret", middleware.RequireParent(accountHandler.UpdateParentSecret))

	// Child profile routes
	mux.HandleFunc("GET /children", middleware.RequireOwner(childHandler.List))
	mux.HandleFunc("GET /children/{id}", middleware.RequireOwner(childHandler.Get))
	mux.HandleFunc("POST /children", middleware.RequireParent(childHandler.Create))
	mux.HandleFunc("POST /children/{id}", middleware.RequireParent(childHandler.Update))
	mux.HandleFunc("POST /children/{id}/delete", middleware.RequireParent(childHandler.Delete))
	mux.HandleFunc("POST /children/{id}/payout", middleware.RequireParent(childHandler.Payout))

	// Activity catalog routes
	mux.HandleFunc("GET /activities", middleware.RequireOwner(activityHandler.List))
	mux.HandleFunc("POST /activities", middleware.RequireParent(activityHandler.Create))
	mux.HandleFunc("POST /activities/{id}", middleware.RequireParent(activityHandler.Update))
	mux.HandleFunc("POST /activities/{id}/delete", middleware.RequireParent(activityHandler.Delete))

	// Completion ledger routes
	mux.HandleFunc("GET /completions", middleware.RequireOwner(ledgerHandler.List))
	mux.HandleFunc("POST /completions", middleware.RequireOwner(ledgerHandler.Record))
	mux.HandleFunc("POST /completions/{id}/approve", middleware.RequireParent(ledgerHandler.Approve))
	mux.HandleFunc("POST /completions/{id}/discard", middleware.RequireParent(ledgerHandler.Discard))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background retry loop for avatars stuck on temporary keys
	go retryPendingAvatars(familyService, cfg.AvatarRetryInterval)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// retryPendingAvatars periodically re-promotes avatars whose move to their
// permanent storage key failed at creation time
func retryPendingAvatars(familyService *service.FamilyService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		promoted, err := familyService.PromotePendingAvatars(context.Background())
		if err != nil {
			log.Printf("Avatar promotion pass failed: %v", err)
			continue
		}
		if promoted > 0 {
			log.Printf("Promoted %d pending avatars", promoted)
		}
	}
}
