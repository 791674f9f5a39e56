package api_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/contract-engine/api"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
)

type brokenSource struct{}

func (brokenSource) ActiveCatalog(context.Context) (string, error) { return "flat", nil }
func (brokenSource) LoadCatalog(context.Context, string) (*schedule.Catalog, error) {
	return nil, errors.New("database is locked")
}

func TestReloader_PicksUpActiveCatalog(t *testing.T) {
	// GIVEN: the service runs the standard catalog, the store says flat
	store := newStore(t)
	ctx := context.Background()
	_, err := store.SaveCatalog(ctx, contract.FlatCatalogJSON())
	require.NoError(t, err)
	require.NoError(t, store.SetActiveCatalog(ctx, contract.CatalogFlat))

	svc := newService(t, writeTemplate(t))
	reloader := api.NewCatalogReloader(store, svc, "@every 1h")

	// WHEN: a reload runs
	name, err := reloader.Reload(ctx)

	// THEN: the service switches to flat
	require.NoError(t, err)
	assert.Equal(t, contract.CatalogFlat, name)
	assert.Equal(t, contract.CatalogFlat, svc.Catalog().Name())
}

func TestReloader_NoActiveCatalogKeepsCurrent(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Reset(context.Background()))

	svc := newService(t, writeTemplate(t))
	name, err := api.NewCatalogReloader(store, svc, "@every 1h").Reload(context.Background())

	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Equal(t, contract.CatalogStandard, svc.Catalog().Name())
}

func TestReloader_FailureKeepsCurrent(t *testing.T) {
	svc := newService(t, writeTemplate(t))

	_, err := api.NewCatalogReloader(brokenSource{}, svc, "@every 1h").Reload(context.Background())

	assert.Error(t, err)
	assert.Equal(t, contract.CatalogStandard, svc.Catalog().Name())
}

func TestReloader_StartStop(t *testing.T) {
	svc := newService(t, writeTemplate(t))

	bad := api.NewCatalogReloader(newStore(t), svc, "every now and then")
	assert.Error(t, bad.Start())

	good := api.NewCatalogReloader(newStore(t), svc, "@every 1h")
	require.NoError(t, good.Start())
	require.NoError(t, good.Start(), "second start is a no-op")
	good.Stop()
	good.Stop()
}
