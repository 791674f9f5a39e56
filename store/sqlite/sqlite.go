/*
Package sqlite provides a SQLite-backed tariff catalog store.

PURPOSE:
  Keeps named catalog documents (the same JSON the factory parses) and the
  name of the catalog that is active for this deployment. Generated
  contracts are never stored; only pricing configuration lives here.

INTERFACES IMPLEMENTED:
  contract.CatalogSource: LoadCatalog(ctx, name)

KEY TABLES:
  catalogs: name, config_json, version (bumped on every save), timestamps
  settings: key/value pairs; "active_catalog" names the live catalog

CONCURRENCY:
  Uses sync.RWMutex around the connection, as writes are rare and reads
  happen on every reload tick.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging). The pool is limited to
  one connection so ":memory:" databases are shared by all queries.

USAGE:
  store, err := sqlite.New("./data/contracts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  catalog, err := store.LoadCatalog(ctx, "standard")

SEE ALSO:
  - factory/catalog.go:   JSON schema of config_json
  - api/reloader.go:      Periodic reload of the active catalog
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/factory"
	"github.com/warp/contract-engine/schedule"
)

const settingActiveCatalog = "active_catalog"

// ErrCatalogActive is returned when deleting the catalog currently in use.
var ErrCatalogActive = errors.New("catalog is active")

// Store implements catalog persistence using SQLite.
type Store struct {
	db      *sqlx.DB
	mu      sync.RWMutex
	factory *factory.CatalogFactory
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, factory: factory.NewCatalogFactory()}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS catalogs (
		name TEXT PRIMARY KEY,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CATALOG STORE
// =============================================================================

// CatalogRecord is a stored catalog with its JSON config.
type CatalogRecord struct {
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type catalogRow struct {
	Name       string `db:"name"`
	ConfigJSON string `db:"config_json"`
	Version    int    `db:"version"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func (r catalogRow) record() CatalogRecord {
	rec := CatalogRecord{Name: r.Name, ConfigJSON: r.ConfigJSON, Version: r.Version}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, r.CreatedAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, r.UpdatedAt)
	return rec
}

// SaveCatalog validates config JSON and stores it under its catalog name.
// Saving an existing name replaces the document and bumps its version.
func (s *Store) SaveCatalog(ctx context.Context, configJSON string) (*CatalogRecord, error) {
	catalog, err := s.factory.ParseCatalog(configJSON)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO catalogs (name, config_json, version, created_at, updated_at)
		VALUES (:name, :config_json, 1, :created_at, :updated_at)
		ON CONFLICT(name) DO UPDATE SET
			config_json = excluded.config_json,
			version = catalogs.version + 1,
			updated_at = excluded.updated_at
	`, catalogRow{Name: catalog.Name(), ConfigJSON: configJSON, CreatedAt: now, UpdatedAt: now})
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}

	return s.GetCatalog(ctx, catalog.Name())
}

// SaveParsed stores an already-built catalog in canonical JSON form.
func (s *Store) SaveParsed(ctx context.Context, c *schedule.Catalog) (*CatalogRecord, error) {
	data, err := json.Marshal(s.factory.ToJSON(c))
	if err != nil {
		return nil, err
	}
	return s.SaveCatalog(ctx, string(data))
}

// GetCatalog retrieves a catalog record by name. Returns nil, nil if absent.
func (s *Store) GetCatalog(ctx context.Context, name string) (*CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var row catalogRow
	err := s.db.GetContext(ctx, &row,
		"SELECT name, config_json, version, created_at, updated_at FROM catalogs WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := row.record()
	return &rec, nil
}

// ListCatalogs returns all catalogs ordered by name.
func (s *Store) ListCatalogs(ctx context.Context) ([]CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []catalogRow
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT name, config_json, version, created_at, updated_at FROM catalogs ORDER BY name"); err != nil {
		return nil, err
	}

	records := make([]CatalogRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// DeleteCatalog removes a catalog. The active catalog cannot be deleted.
func (s *Store) DeleteCatalog(ctx context.Context, name string) error {
	active, err := s.ActiveCatalog(ctx)
	if err != nil {
		return err
	}
	if active == name {
		return fmt.Errorf("catalog %q: %w", name, ErrCatalogActive)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM catalogs WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("catalog %q: %w", name, contract.ErrCatalogNotFound)
	}
	return nil
}

// LoadCatalog parses a stored catalog. Implements contract.CatalogSource.
func (s *Store) LoadCatalog(ctx context.Context, name string) (*schedule.Catalog, error) {
	rec, err := s.GetCatalog(ctx, name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("catalog %q: %w", name, contract.ErrCatalogNotFound)
	}
	return s.factory.ParseCatalog(rec.ConfigJSON)
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetActiveCatalog marks an existing catalog as the live one.
func (s *Store) SetActiveCatalog(ctx context.Context, name string) error {
	rec, err := s.GetCatalog(ctx, name)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("catalog %q: %w", name, contract.ErrCatalogNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, settingActiveCatalog, name, time.Now().UTC().Format(time.RFC3339))
	return err
}

// ActiveCatalog returns the active catalog name, or "" if none was set.
func (s *Store) ActiveCatalog(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var name string
	err := s.db.GetContext(ctx, &name, "SELECT value FROM settings WHERE key = ?", settingActiveCatalog)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"settings", "catalogs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
