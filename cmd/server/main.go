/*
main.go - Application entry point

PURPOSE:
  Starts the contract generator server. Handles configuration, catalog
  selection, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env, environment, flags)
  2. Open the SQLite catalog store if DB_PATH is set
  3. Pick the active catalog
  4. Check the contract template
  5. Start the catalog reloader (store only)
  6. Start server with graceful shutdown

CATALOG SELECTION:
  -catalog-file set    JSON file, store is not consulted
  store configured     store's active catalog; an empty store is seeded
                       with the presets and -catalog becomes active
  otherwise            built-in preset named by -catalog (in-memory source)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the reloader
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Built-in catalog, fixed billing day 10
  ./server -template=./contract_template.docx

  # Shared catalog database, anchored billing day
  ./server -db=./data/contracts.db -day-policy=anchored

  # Catalog from file
  ./server -catalog-file=./tariffs.json

SEE ALSO:
  - config/config.go: All settings
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/warp/contract-engine/api"
	"github.com/warp/contract-engine/config"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/document"
	"github.com/warp/contract-engine/factory"
	"github.com/warp/contract-engine/schedule"
	"github.com/warp/contract-engine/store/memory"
	"github.com/warp/contract-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx := context.Background()

	// Initialize store
	var store *sqlite.Store
	if cfg.DBPath != "" {
		store, err = sqlite.New(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()
	}

	catalog, err := loadCatalog(ctx, cfg, store)
	if err != nil {
		log.Fatalf("Failed to load tariff catalog: %v", err)
	}
	log.Printf("Catalog %q loaded with %d tariffs", catalog.Name(), catalog.Len())

	binder := document.NewDocx(cfg.TemplatePath)
	svc := contract.NewService(catalog, schedule.NewGenerator(cfg.Policy()), binder)
	checkTemplate(binder, svc.Builder)

	// Catalog reloads only make sense when the store is the source
	if store != nil && cfg.CatalogFile == "" {
		reloader := api.NewCatalogReloader(store, svc, cfg.ReloadSchedule)
		if err := reloader.Start(); err != nil {
			log.Fatalf("Failed to start reloader: %v", err)
		}
		defer reloader.Stop()
	}

	handler := api.NewHandler(svc, store)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d (day policy: %s)", cfg.Port, cfg.DayPolicy)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func loadCatalog(ctx context.Context, cfg config.Config, store *sqlite.Store) (*schedule.Catalog, error) {
	f := factory.NewCatalogFactory()

	if cfg.CatalogFile != "" {
		return f.LoadFile(cfg.CatalogFile)
	}
	if store == nil {
		presets := memory.NewMemory()
		for _, name := range contract.PresetNames() {
			c, err := f.Preset(name)
			if err != nil {
				return nil, err
			}
			presets.Put(c)
		}
		c, err := presets.LoadCatalog(ctx, cfg.Catalog)
		if err != nil {
			return nil, fmt.Errorf("%w (presets: %s)", err, strings.Join(presets.Names(), ", "))
		}
		return c, nil
	}

	if err := seedPresets(ctx, store, f); err != nil {
		return nil, err
	}
	active, err := store.ActiveCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if active == "" {
		active = cfg.Catalog
		if err := store.SetActiveCatalog(ctx, active); err != nil {
			return nil, err
		}
	} else if active != cfg.Catalog {
		log.Printf("Store has %q active, ignoring -catalog=%s", active, cfg.Catalog)
	}
	return store.LoadCatalog(ctx, active)
}

// seedPresets stores the built-in catalogs into an empty store.
func seedPresets(ctx context.Context, store *sqlite.Store, f *factory.CatalogFactory) error {
	existing, err := store.ListCatalogs(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, name := range contract.PresetNames() {
		c, err := f.Preset(name)
		if err != nil {
			return err
		}
		if _, err := store.SaveParsed(ctx, c); err != nil {
			return fmt.Errorf("seed catalog %q: %w", name, err)
		}
	}
	log.Printf("Seeded catalog store with presets: %s", strings.Join(contract.PresetNames(), ", "))
	return nil
}

// checkTemplate logs template problems. Every request checks it again.
func checkTemplate(d *document.Docx, b *contract.Builder) {
	if err := d.Check(); err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	missing, err := d.MissingKeys(b.Blank())
	if err != nil {
		log.Printf("Warning: failed to scan template placeholders: %v", err)
		return
	}
	if len(missing) > 0 {
		log.Printf("Template %s has no placeholder for: %s", d.TemplatePath, strings.Join(missing, ", "))
	}
}
