// Package memory provides an in-memory catalog source (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory catalog source
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	catalogs map[string]*schedule.Catalog
}

func NewMemory(catalogs ...*schedule.Catalog) *Memory {
	m := &Memory{catalogs: make(map[string]*schedule.Catalog)}
	for _, c := range catalogs {
		m.catalogs[c.Name()] = c
	}
	return m
}

// Put adds or replaces a catalog under its name.
func (m *Memory) Put(c *schedule.Catalog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogs[c.Name()] = c
}

// LoadCatalog implements contract.CatalogSource.
func (m *Memory) LoadCatalog(_ context.Context, name string) (*schedule.Catalog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.catalogs[name]
	if !ok {
		return nil, fmt.Errorf("catalog %q: %w", name, contract.ErrCatalogNotFound)
	}
	return c, nil
}

// Names returns the stored catalog names, sorted.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.catalogs))
	for name := range m.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ contract.CatalogSource = (*Memory)(nil)
