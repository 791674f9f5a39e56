package schedule_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/contract-engine/schedule"
)

func testCatalog() *schedule.Catalog {
	return schedule.NewCatalog("test", map[int64]schedule.Terms{
		180000: {TotalPrice: 180000, MonthlyPayment: 180000, Installments: 1, Fee: schedule.FeeAmount(9000)},
		200000: {TotalPrice: 200000, MonthlyPayment: 25000, Installments: 8, Fee: schedule.FeeAmount(10000)},
		240000: {TotalPrice: 240000, MonthlyPayment: 20000, Installments: 12},
	})
}

func TestCatalog_Resolve(t *testing.T) {
	c := testCatalog()

	terms, err := c.Resolve(200000)
	require.NoError(t, err)
	assert.Equal(t, schedule.Amount(25000), terms.MonthlyPayment)
	assert.Equal(t, 8, terms.Installments)
	require.NotNil(t, terms.Fee)
	assert.Equal(t, schedule.Amount(10000), *terms.Fee)

	terms, err = c.Resolve(240000)
	require.NoError(t, err)
	assert.False(t, terms.HasFee())
}

func TestCatalog_UnknownSelector(t *testing.T) {
	terms, err := testCatalog().Resolve(199999)

	assert.Equal(t, schedule.Terms{}, terms)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schedule.ErrInvalidTariff))

	var tErr *schedule.TariffError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, int64(199999), tErr.Selector)
	assert.Equal(t, "test", tErr.Catalog)
}

func TestCatalog_ResolveString(t *testing.T) {
	c := testCatalog()

	_, sel, err := c.ResolveString(" 200 000 ")
	require.NoError(t, err)
	assert.Equal(t, int64(200000), sel)

	_, _, err = c.ResolveString("two hundred")
	assert.ErrorIs(t, err, schedule.ErrInvalidTariff)

	_, _, err = c.ResolveString("")
	assert.ErrorIs(t, err, schedule.ErrInvalidTariff)
}

func TestCatalog_SelectorsSorted(t *testing.T) {
	assert.Equal(t, []int64{180000, 200000, 240000}, testCatalog().Selectors())
}

func TestCatalog_IsolatedFromSourceMap(t *testing.T) {
	fee := schedule.Amount(100)
	src := map[int64]schedule.Terms{1000: {TotalPrice: 1000, MonthlyPayment: 1000, Installments: 1, Fee: &fee}}
	c := schedule.NewCatalog("copy", src)

	src[2000] = schedule.Terms{TotalPrice: 2000, Installments: 1}
	fee = 999

	assert.Equal(t, 1, c.Len())
	terms, err := c.Resolve(1000)
	require.NoError(t, err)
	assert.Equal(t, schedule.Amount(100), *terms.Fee)
}

func TestCatalog_Validate(t *testing.T) {
	require.NoError(t, testCatalog().Validate())

	bad := schedule.NewCatalog("bad", map[int64]schedule.Terms{
		5000: {TotalPrice: 5000, MonthlyPayment: 500, Installments: 0},
	})
	err := bad.Validate()
	require.ErrorIs(t, err, schedule.ErrInvalidTerms)
	var tErr *schedule.TermsError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, int64(5000), tErr.Selector)

	assert.ErrorIs(t, schedule.NewCatalog("empty", nil).Validate(), schedule.ErrInvalidTerms)
}
