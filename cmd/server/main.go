package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/openbloc/chainfeed/internal/handlers"
	"github.com/openbloc/chainfeed/internal/journal"
	"github.com/openbloc/chainfeed/internal/ledger"
	"github.com/openbloc/chainfeed/internal/router"
	"github.com/openbloc/chainfeed/pkg/config"
	"github.com/openbloc/chainfeed/pkg/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.Close()

	// Pick the ledger store backend
	var store ledger.Store
	var subscribe func(ledger.EventFunc)
	if db.Postgres != nil {
		gormStore := ledger.NewGormStore(db.Postgres)
		if err := gormStore.AutoMigrate(); err != nil {
			log.Fatalf("Failed to migrate ledger tables: %v", err)
		}
		store = gormStore
		subscribe = gormStore.Subscribe
	} else {
		log.Println("POSTGRES_CONN_STR not set; using the in-memory ledger store.")
		memStore := ledger.NewMemoryStore()
		store = memStore
		subscribe = memStore.Subscribe
	}

	// Attach the event journal when Mongo is configured; it also serves the
	// audit feed route.
	var events handlers.EventSource
	if db.Mongo != nil {
		j := journal.New(db.Mongo.Database("chainfeed"))
		subscribe(j.Record)
		events = j
		log.Println("Event journal attached.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, store, cfg.JWTSecret, events)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
