package schedule

import (
	"fmt"
	"strings"
)

// =============================================================================
// POLICY - Named knobs of schedule derivation
// =============================================================================

// DayPolicy selects how the day-of-month of installments 2..n is chosen.
type DayPolicy string

const (
	// DayFixed puts every later installment on Policy.FixedDay of its month,
	// ignoring the contract date's own day.
	DayFixed DayPolicy = "fixed"
	// DayAnchored reuses the contract date's day number in every month.
	DayAnchored DayPolicy = "anchored"
)

// DefaultFixedDay is the billing day used by DayFixed when none is configured.
const DefaultFixedDay = 10

// ParseDayPolicy accepts "fixed" or "anchored" (case-insensitive).
func ParseDayPolicy(s string) (DayPolicy, error) {
	switch p := DayPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DayFixed, DayAnchored:
		return p, nil
	case "":
		return DayFixed, nil
	default:
		return "", fmt.Errorf("unknown day policy %q (want %q or %q)", s, DayFixed, DayAnchored)
	}
}

// Policy holds the deployment-wide schedule rules. Exactly one Policy is
// active per Generator, so a schedule never mixes day rules.
type Policy struct {
	Day      DayPolicy
	FixedDay int // 1..31, used by DayFixed; clamped to the month length

	// FirstOnStart dates entry 1 exactly on the contract date. When false,
	// entry 1 follows the same day rule as the others.
	FirstOnStart bool
}

// DefaultPolicy is fixed billing on the 10th with the first payment on signing.
func DefaultPolicy() Policy {
	return Policy{Day: DayFixed, FixedDay: DefaultFixedDay, FirstOnStart: true}
}

// AnchoredPolicy keeps every installment on the contract date's day.
func AnchoredPolicy() Policy {
	return Policy{Day: DayAnchored, FirstOnStart: true}
}

// Validate checks the policy fields.
func (p Policy) Validate() error {
	switch p.Day {
	case DayFixed:
		if p.FixedDay < 1 || p.FixedDay > 31 {
			return fmt.Errorf("fixed day must be within 1..31, got %d", p.FixedDay)
		}
	case DayAnchored:
	default:
		return fmt.Errorf("unknown day policy %q", p.Day)
	}
	return nil
}

// dayFor returns the requested day number for a later installment.
func (p Policy) dayFor(start Date) int {
	if p.Day == DayAnchored {
		return start.Day()
	}
	return p.FixedDay
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator derives installment schedules under a single Policy.
// It is stateless and safe for concurrent use.
type Generator struct {
	policy Policy
}

func NewGenerator(p Policy) *Generator {
	return &Generator{policy: p}
}

func (g *Generator) Policy() Policy { return g.policy }

// DueDate returns the due date of installment i (1-based).
//
// Installment i falls i-1 months after start on the 12-month wheel. The
// day comes from the policy and is clamped to the target month's length.
func (g *Generator) DueDate(start Date, i int) Date {
	if i == 1 && g.policy.FirstOnStart {
		return start
	}
	year, month := MonthOffset(start.Year(), start.Month(), i-1)
	return ClampedDate(year, month, g.policy.dayFor(start))
}

// AmountFor returns the amount due for each installment of terms.
func (g *Generator) AmountFor(terms Terms) Amount {
	if terms.IsLumpSum() {
		return terms.TotalPrice
	}
	return terms.MonthlyPayment
}

// Generate produces exactly terms.Installments entries, ordered by Index.
func (g *Generator) Generate(start Date, terms Terms) ([]Entry, error) {
	if start.IsZero() {
		return nil, &DateError{Field: "start"}
	}
	if terms.Installments < 1 {
		return nil, &TermsError{Reason: fmt.Sprintf("installment count must be at least 1, got %d", terms.Installments)}
	}

	entries := make([]Entry, terms.Installments)
	for i := 1; i <= terms.Installments; i++ {
		entries[i-1] = Entry{
			Index:  i,
			Due:    g.DueDate(start, i),
			Amount: g.AmountFor(terms),
		}
	}
	return entries, nil
}

// GenerateFromString parses raw as DD.MM.YYYY before any date arithmetic.
func (g *Generator) GenerateFromString(raw string, terms Terms) ([]Entry, error) {
	start, err := ParseDate(raw)
	if err != nil {
		return nil, &DateError{Field: "start", Value: raw, Err: err}
	}
	return g.Generate(start, terms)
}
