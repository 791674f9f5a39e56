/*
Package schedule provides the installment schedule engine.

PURPOSE:
  Derives the ordered list of installment payments for a contract from
  its start date and the terms of the selected tariff. The package knows
  nothing about forms, documents or HTTP; it receives validated values
  and returns immutable results.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: Whole currency units (no fractional part is ever shown)
  - Terms:  The installment structure of one tariff
  - Entry:  One scheduled (due date, amount) pair

DESIGN PRINCIPLES:
  1. Purity: No I/O, no clock, no randomness. Same input, same output.
  2. Explicit policy: Day-of-month and first-entry rules are named
     fields on Policy, never inline conditionals.
  3. Injected catalogs: Tariff tables are values passed in by the caller.

USAGE:
  catalog := schedule.NewCatalog("standard", map[int64]schedule.Terms{
      200000: {TotalPrice: 200000, MonthlyPayment: 25000, Installments: 8},
  })
  terms, err := catalog.Resolve(200000)
  entries, err := schedule.NewGenerator(schedule.DefaultPolicy()).
      GenerateFromString("22.10.2025", terms)

SEE ALSO:
  - date.go:      Date type and month arithmetic
  - catalog.go:   Tariff lookup
  - generator.go: Schedule derivation
  - errors.go:    Error taxonomy
*/
package schedule

// =============================================================================
// AMOUNT - Whole currency units
// =============================================================================

// Amount is a currency value in whole units.
type Amount int64

// Int64 returns the raw value.
func (a Amount) Int64() int64 { return int64(a) }

// String renders the amount with thousands grouping ("180 000").
func (a Amount) String() string { return FormatAmount(a) }

// =============================================================================
// TERMS - Installment structure of a tariff
// =============================================================================

// Terms is the resolved installment structure of one tariff.
//
// MonthlyPayment * Installments is not required to equal TotalPrice;
// business catalogs are not always exact.
type Terms struct {
	TotalPrice     Amount
	MonthlyPayment Amount
	Installments   int
	Fee            *Amount // nil when the tariff carries no fee
}

// IsLumpSum reports whether the tariff is paid in full with one installment.
func (t Terms) IsLumpSum() bool { return t.Installments == 1 }

// HasFee reports whether a fee figure is attached.
func (t Terms) HasFee() bool { return t.Fee != nil }

// Validate checks the structural invariants of the terms.
func (t Terms) Validate() error {
	if t.Installments < 1 {
		return &TermsError{Reason: "installment count must be at least 1"}
	}
	if t.TotalPrice <= 0 {
		return &TermsError{Reason: "total price must be positive"}
	}
	if !t.IsLumpSum() && t.MonthlyPayment <= 0 {
		return &TermsError{Reason: "monthly payment must be positive"}
	}
	if t.Fee != nil && *t.Fee < 0 {
		return &TermsError{Reason: "fee must not be negative"}
	}
	return nil
}

// FeeAmount returns a pointer to a copy of fee, for building Terms literals.
func FeeAmount(fee Amount) *Amount { return &fee }

// =============================================================================
// ENTRY - One scheduled installment
// =============================================================================

// Entry is one installment of a generated schedule.
type Entry struct {
	Index  int // 1-based
	Due    Date
	Amount Amount
}
