package contract_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fakeBinder records the context it was asked to render.
type fakeBinder struct {
	checkErr error
	rendered contract.Context
	checks   int
}

func (b *fakeBinder) Check() error {
	b.checks++
	return b.checkErr
}

func (b *fakeBinder) Render(w io.Writer, ctx contract.Context) error {
	b.rendered = ctx
	_, err := io.WriteString(w, "docx:"+ctx[contract.KeyContractNumber])
	return err
}

func standardCatalog() *schedule.Catalog {
	return schedule.NewCatalog("standard", map[int64]schedule.Terms{
		150000: {TotalPrice: 150000, MonthlyPayment: 150000, Installments: 1},
		180000: {TotalPrice: 180000, MonthlyPayment: 180000, Installments: 1, Fee: schedule.FeeAmount(9000)},
		200000: {TotalPrice: 200000, MonthlyPayment: 25000, Installments: 8, Fee: schedule.FeeAmount(10000)},
		270000: {TotalPrice: 270000, MonthlyPayment: 15000, Installments: 18, Fee: schedule.FeeAmount(13500)},
		420000: {TotalPrice: 420000, MonthlyPayment: 20000, Installments: 21},
	})
}

func validInput() contract.Input {
	return contract.Input{
		ContractNumber: "№ 17 65",
		ContractDate:   "22.10.2025",
		FullName:       "Ivanov Ivan Ivanovich",
		BirthDate:      "25.05.2000",
		Passport:       "45 04 123456",
		Tariff:         "200000",
		Address:        "Saint Petersburg, 50 Example st., apt. 50",
		Phone:          "+79019435321",
	}
}

func newService(binder contract.Binder) *contract.Service {
	return contract.NewService(standardCatalog(), schedule.NewGenerator(schedule.DefaultPolicy()), binder)
}

// =============================================================================
// INPUT
// =============================================================================

func TestInput_NormalizeAndFileName(t *testing.T) {
	in := validInput().Normalize()

	assert.Equal(t, "№1765", in.ContractNumber, "spaces are removed from the number")
	assert.Equal(t, "1765.docx", in.FileName(), "number sign is stripped from the file name")
	assert.Equal(t, "1765.docx", contract.Input{ContractNumber: "1765"}.FileName())
	assert.Equal(t, "12_34.docx", contract.Input{ContractNumber: "12/34"}.FileName())
}

func TestInput_ValidateMissingFields(t *testing.T) {
	fields := []string{
		contract.FieldContractNumber, contract.FieldContractDate, contract.FieldFullName,
		contract.FieldBirthDate, contract.FieldPassport, contract.FieldTariff,
		contract.FieldAddress, contract.FieldPhone,
	}
	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			in := blank(validInput(), field)

			err := in.Normalize().Validate()
			require.ErrorIs(t, err, schedule.ErrMissingField)
			var fErr *schedule.FieldError
			require.ErrorAs(t, err, &fErr)
			assert.Equal(t, field, fErr.Field)
			assert.NotEmpty(t, fErr.Label)
		})
	}
}

func TestInput_NumberSignAloneIsMissing(t *testing.T) {
	in := validInput()
	in.ContractNumber = " № "
	assert.ErrorIs(t, in.Normalize().Validate(), schedule.ErrMissingField)
}

func blank(in contract.Input, field string) contract.Input {
	switch field {
	case contract.FieldContractNumber:
		in.ContractNumber = "  "
	case contract.FieldContractDate:
		in.ContractDate = ""
	case contract.FieldFullName:
		in.FullName = "\t"
	case contract.FieldBirthDate:
		in.BirthDate = ""
	case contract.FieldPassport:
		in.Passport = ""
	case contract.FieldTariff:
		in.Tariff = " "
	case contract.FieldAddress:
		in.Address = ""
	case contract.FieldPhone:
		in.Phone = ""
	}
	return in
}

// =============================================================================
// BUILDER
// =============================================================================

func TestBuilder_AlwaysTwentySlots(t *testing.T) {
	b := contract.NewBuilder()
	gen := schedule.NewGenerator(schedule.DefaultPolicy())
	start := schedule.NewDate(2025, time.October, 22)

	for _, n := range []int{1, 8, 12, 18, 20} {
		terms := schedule.Terms{TotalPrice: 1000 * schedule.Amount(n), MonthlyPayment: 1000, Installments: n}
		entries, err := gen.Generate(start, terms)
		require.NoError(t, err)

		ctx, err := b.Build(contract.Identity{ContractDate: start}, terms, entries)
		require.NoError(t, err)

		for i := 1; i <= contract.DefaultCapacity; i++ {
			date, ok := ctx[contract.SlotDateKey(i)]
			require.True(t, ok, "slot %d date key must be present", i)
			amount, ok := ctx[contract.SlotAmountKey(i)]
			require.True(t, ok, "slot %d amount key must be present", i)

			if i <= n {
				assert.NotEmpty(t, date)
				assert.NotEmpty(t, amount)
			} else {
				assert.Empty(t, date, "slot %d beyond %d installments", i, n)
				assert.Empty(t, amount, "slot %d beyond %d installments", i, n)
			}
		}
		_, extra := ctx[contract.SlotDateKey(contract.DefaultCapacity+1)]
		assert.False(t, extra)
		assert.Len(t, ctx, 9+2*contract.DefaultCapacity)
		assert.Equal(t, b.Blank().Keys(), ctx.Keys())
	}
}

func TestBuilder_CapacityExceeded(t *testing.T) {
	terms := schedule.Terms{TotalPrice: 420000, MonthlyPayment: 20000, Installments: 21}
	entries, err := schedule.NewGenerator(schedule.DefaultPolicy()).
		Generate(schedule.NewDate(2025, time.October, 22), terms)
	require.NoError(t, err)

	ctx, err := contract.NewBuilder().Build(contract.Identity{}, terms, entries)
	assert.Nil(t, ctx)
	require.ErrorIs(t, err, schedule.ErrCapacityExceeded)

	var cErr *schedule.CapacityError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 21, cErr.Installments)
	assert.Equal(t, 20, cErr.Capacity)
}

func TestBuilder_EntryCountMismatch(t *testing.T) {
	terms := schedule.Terms{TotalPrice: 3000, MonthlyPayment: 1000, Installments: 3}
	_, err := contract.NewBuilder().Build(contract.Identity{}, terms, nil)
	assert.Error(t, err)
}

// =============================================================================
// SERVICE
// =============================================================================

func TestService_Preview_FixedDayScenario(t *testing.T) {
	res, err := newService(nil).Preview(validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(200000), res.Selector)
	require.Len(t, res.Entries, 8)

	ctx := res.Context
	assert.Equal(t, "№1765", ctx[contract.KeyContractNumber])
	assert.Equal(t, "22.10.2025", ctx[contract.KeyContractDate])
	assert.Equal(t, "200 000", ctx[contract.KeyTotal])
	assert.Equal(t, "10 000", ctx[contract.KeyFee])
	assert.Equal(t, "25.05.2000", ctx[contract.KeyBirthDate])

	date, amount := ctx.Slot(1)
	assert.Equal(t, "22.10.2025", date)
	assert.Equal(t, "25 000", amount)
	date, _ = ctx.Slot(2)
	assert.Equal(t, "10.11.2025", date)
	date, _ = ctx.Slot(8)
	assert.Equal(t, "10.05.2026", date)
	date, amount = ctx.Slot(9)
	assert.Empty(t, date)
	assert.Empty(t, amount)
}

func TestService_Preview_LumpSum(t *testing.T) {
	in := validInput()
	in.Tariff = "150000"

	res, err := newService(nil).Preview(in)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	date, amount := res.Context.Slot(1)
	assert.Equal(t, "22.10.2025", date)
	assert.Equal(t, "150 000", amount)
	assert.Equal(t, "", res.Context[contract.KeyFee], "no fee in this tariff")
}

func TestService_Preview_AnchoredPolicy(t *testing.T) {
	svc := contract.NewService(standardCatalog(), schedule.NewGenerator(schedule.AnchoredPolicy()), nil)
	in := validInput()
	in.Tariff = "270000"

	res, err := svc.Preview(in)
	require.NoError(t, err)
	require.Len(t, res.Entries, 18)
	date, _ := res.Context.Slot(2)
	assert.Equal(t, "22.11.2025", date)
	date, _ = res.Context.Slot(18)
	assert.Equal(t, "22.03.2027", date)
}

func TestService_InvalidTariff(t *testing.T) {
	for _, tariff := range []string{"199999", "abc"} {
		in := validInput()
		in.Tariff = tariff

		res, err := newService(nil).Preview(in)
		assert.Nil(t, res, "no partial result")
		assert.ErrorIs(t, err, schedule.ErrInvalidTariff, tariff)
		assert.NotErrorIs(t, err, schedule.ErrInvalidStartDate, tariff)
	}
}

func TestService_InvalidDate(t *testing.T) {
	in := validInput()
	in.ContractDate = "2025-10-22"

	res, err := newService(nil).Preview(in)
	assert.Nil(t, res)
	require.ErrorIs(t, err, schedule.ErrInvalidStartDate)

	var dErr *schedule.DateError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, contract.FieldContractDate, dErr.Field)
	assert.Equal(t, "2025-10-22", dErr.Value)
}

func TestService_ZeroDateNamesTheField(t *testing.T) {
	in := validInput()
	in.ContractDate = "01.01.0001"

	res, err := newService(nil).Preview(in)
	assert.Nil(t, res)

	var dErr *schedule.DateError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, contract.FieldContractDate, dErr.Field)
	assert.Equal(t, "01.01.0001", dErr.Value)
	assert.Contains(t, err.Error(), "01.01.0001")
}

func TestService_CapacityExceeded(t *testing.T) {
	in := validInput()
	in.Tariff = "420000"

	res, err := newService(nil).Preview(in)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, schedule.ErrCapacityExceeded)
}

func TestService_MissingFieldBeforeAnythingElse(t *testing.T) {
	// GIVEN: a blank name, a bad tariff and a broken template
	// THEN: the missing field is reported and the template is never checked
	binder := &fakeBinder{checkErr: &schedule.TemplateError{Path: "x.docx"}}
	in := validInput()
	in.FullName = ""
	in.Tariff = "1"

	_, err := newService(binder).Generate(in, io.Discard)
	assert.ErrorIs(t, err, schedule.ErrMissingField)
	assert.Equal(t, 0, binder.checks)
}

func TestService_Generate_TemplateUnavailableBeforeComputation(t *testing.T) {
	binder := &fakeBinder{checkErr: &schedule.TemplateError{Path: "missing.docx"}}
	in := validInput()
	in.Tariff = "1" // would be InvalidTariff if computation ran

	var buf bytes.Buffer
	_, err := newService(binder).Generate(in, &buf)
	assert.ErrorIs(t, err, schedule.ErrTemplateUnavailable)
	assert.Nil(t, binder.rendered)
	assert.Zero(t, buf.Len())
}

func TestService_Generate_NoBinder(t *testing.T) {
	_, err := newService(nil).Generate(validInput(), io.Discard)
	assert.ErrorIs(t, err, schedule.ErrTemplateUnavailable)
}

func TestService_Generate_RendersContext(t *testing.T) {
	binder := &fakeBinder{}
	var buf bytes.Buffer

	res, err := newService(binder).Generate(validInput(), &buf)
	require.NoError(t, err)

	assert.Equal(t, "1765.docx", res.FileName())
	assert.Equal(t, res.Context, binder.rendered)
	assert.Equal(t, "docx:№1765", buf.String())
}

func TestService_Generate_RenderFailureIsWrapped(t *testing.T) {
	svc := newService(failingBinder{})
	_, err := svc.Generate(validInput(), io.Discard)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "render contract"))
	assert.False(t, schedule.IsClassified(err))
}

type failingBinder struct{}

func (failingBinder) Check() error { return nil }
func (failingBinder) Render(io.Writer, contract.Context) error { return errors.New("disk full") }

func TestService_SetCatalog(t *testing.T) {
	svc := newService(nil)

	err := svc.SetCatalog(schedule.NewCatalog("broken", map[int64]schedule.Terms{
		1000: {TotalPrice: 1000, Installments: 0},
	}))
	assert.ErrorIs(t, err, schedule.ErrInvalidTerms)
	assert.Equal(t, "standard", svc.Catalog().Name(), "invalid catalog is not activated")

	next := schedule.NewCatalog("next", map[int64]schedule.Terms{
		200000: {TotalPrice: 200000, MonthlyPayment: 20000, Installments: 10},
	})
	require.NoError(t, svc.SetCatalog(next))

	res, err := svc.Preview(validInput())
	require.NoError(t, err)
	assert.Len(t, res.Entries, 10)

	assert.Error(t, svc.SetCatalog(nil))
}

func TestService_ConcurrentPreviews(t *testing.T) {
	svc := newService(nil)
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			in := validInput()
			in.ContractNumber = fmt.Sprintf("%d", 1000+i)
			res, err := svc.Preview(in)
			if err == nil && res.Context[contract.KeyContractNumber] != in.ContractNumber {
				err = fmt.Errorf("context mixed up for %s", in.ContractNumber)
			}
			errs <- err
		}(i)
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-errs)
	}
}
