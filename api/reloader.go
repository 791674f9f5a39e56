/*
reloader.go - Scheduled reload of the active tariff catalog

PURPOSE:
  Several server instances can share one catalog database. When a catalog
  is edited or activated through another instance, this instance picks it
  up on the next tick instead of needing a restart.

DESIGN:
  - robfig/cron drives the ticks; the spec is any cron expression or
    descriptor ("@every 5m", "0 * * * *")
  - Each tick reads the active catalog name from the store and swaps it
    into the service
  - No active name in the store means the startup catalog stays in use
  - A failed reload is logged and the previous catalog keeps serving

USAGE:
  reloader := NewCatalogReloader(store, service, "@every 5m")
  if err := reloader.Start(); err != nil { ... }
  // ... later
  reloader.Stop()

SEE ALSO:
  - handlers.go: ActivateCatalog (immediate reload)
  - contract/service.go: ReloadCatalog
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/warp/contract-engine/contract"
)

// ActiveCatalogSource is a catalog store that also knows which catalog is live.
type ActiveCatalogSource interface {
	contract.CatalogSource
	ActiveCatalog(ctx context.Context) (string, error)
}

// CatalogReloader periodically reloads the active catalog.
type CatalogReloader struct {
	Source   ActiveCatalogSource
	Service  *contract.Service
	Schedule string
	Timeout  time.Duration

	cron *cron.Cron
	mu   sync.Mutex
}

// NewCatalogReloader creates a reloader. Call Start to begin ticking.
func NewCatalogReloader(src ActiveCatalogSource, svc *contract.Service, schedule string) *CatalogReloader {
	return &CatalogReloader{
		Source:   src,
		Service:  svc,
		Schedule: schedule,
		Timeout:  30 * time.Second,
	}
}

// Start registers the schedule and begins ticking.
func (cr *CatalogReloader) Start() error {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(cr.Schedule, cr.tick); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", cr.Schedule, err)
	}
	c.Start()
	cr.cron = c

	log.Printf("[Reloader] Started with schedule: %s", cr.Schedule)
	return nil
}

// Stop stops ticking and waits for a running reload to finish.
func (cr *CatalogReloader) Stop() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.cron != nil {
		<-cr.cron.Stop().Done()
		cr.cron = nil
		log.Println("[Reloader] Stopped")
	}
}

// Reload loads the active catalog now. It returns the name that was
// applied, or "" when the store names no active catalog.
func (cr *CatalogReloader) Reload(ctx context.Context) (string, error) {
	name, err := cr.Source.ActiveCatalog(ctx)
	if err != nil {
		return "", fmt.Errorf("read active catalog: %w", err)
	}
	if name == "" {
		return "", nil
	}
	if err := cr.Service.ReloadCatalog(ctx, cr.Source, name); err != nil {
		return "", err
	}
	return name, nil
}

func (cr *CatalogReloader) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), cr.Timeout)
	defer cancel()

	name, err := cr.Reload(ctx)
	if err != nil {
		log.Printf("[Reloader] Reload failed, keeping current catalog: %v", err)
		return
	}
	if name != "" {
		log.Printf("[Reloader] Active catalog: %s", name)
	}
}
