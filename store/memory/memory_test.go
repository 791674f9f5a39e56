package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
	"github.com/warp/contract-engine/store/memory"
)

func catalog(name string, installments int) *schedule.Catalog {
	return schedule.NewCatalog(name, map[int64]schedule.Terms{
		100000: {TotalPrice: 100000, MonthlyPayment: 10000, Installments: installments},
	})
}

func TestMemory_LoadAndReplace(t *testing.T) {
	ctx := context.Background()
	m := memory.NewMemory(catalog("a", 10), catalog("b", 5))

	assert.Equal(t, []string{"a", "b"}, m.Names())

	c, err := m.LoadCatalog(ctx, "a")
	require.NoError(t, err)
	terms, _ := c.Resolve(100000)
	assert.Equal(t, 10, terms.Installments)

	m.Put(catalog("a", 4))
	c, err = m.LoadCatalog(ctx, "a")
	require.NoError(t, err)
	terms, _ = c.Resolve(100000)
	assert.Equal(t, 4, terms.Installments)

	_, err = m.LoadCatalog(ctx, "missing")
	assert.ErrorIs(t, err, contract.ErrCatalogNotFound)
}

func TestMemory_ServiceReload(t *testing.T) {
	// GIVEN: a service running catalog "a"
	// WHEN: reloading "b" from the memory source
	// THEN: new previews use b's terms
	ctx := context.Background()
	m := memory.NewMemory(catalog("a", 10), catalog("b", 5))
	svc := contract.NewService(catalog("a", 10), schedule.NewGenerator(schedule.DefaultPolicy()), nil)

	require.NoError(t, svc.ReloadCatalog(ctx, m, "b"))
	assert.Equal(t, "b", svc.Catalog().Name())

	err := svc.ReloadCatalog(ctx, m, "zzz")
	assert.ErrorIs(t, err, contract.ErrCatalogNotFound)
	assert.Equal(t, "b", svc.Catalog().Name())
}
