/*
errors.go - Error taxonomy for contract generation

PURPOSE:
  Every failure a caller can hit while turning form input into a schedule
  is classified into one of a small set of kinds. Each kind is recoverable:
  the serving layer reports a field-specific message and lets the user
  resubmit.

ERROR KINDS:
  ErrMissingField        required input absent or blank
  ErrInvalidStartDate    contract date not in DD.MM.YYYY form
  ErrInvalidTariff       selector not present in the active catalog
  ErrCapacityExceeded    more installments than the template has slots
  ErrTemplateUnavailable document template missing or unreadable
  ErrInvalidTerms        catalog data violates Terms invariants

USAGE:
  Structured errors carry context and unwrap to the sentinel:

    var tErr *schedule.TariffError
    if errors.As(err, &tErr) { ... tErr.Selector ... }

    if errors.Is(err, schedule.ErrInvalidTariff) { ... }

  Code(err) gives a stable machine-readable code for APIs.

SEE ALSO:
  - contract/service.go: Produces these errors in request order
  - api/handlers.go:     Maps them to HTTP status codes
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidStartDate    = errors.New("invalid start date")
	ErrInvalidTariff       = errors.New("invalid tariff")
	ErrCapacityExceeded    = errors.New("installment capacity exceeded")
	ErrTemplateUnavailable = errors.New("document template unavailable")
	ErrInvalidTerms        = errors.New("invalid tariff terms")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError reports a required input field that is absent or blank.
type FieldError struct {
	Field string // input field name, e.g. "fio"
	Label string // human-readable field label
}

func (e *FieldError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("field %q (%s) is required", e.Field, e.Label)
	}
	return fmt.Sprintf("field %q is required", e.Field)
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// DateError reports a date string that does not follow DD.MM.YYYY.
type DateError struct {
	Field string
	Value string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("field %q: %q is not a valid date, expected DD.MM.YYYY", e.Field, e.Value)
}

func (e *DateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidStartDate}
	}
	return []error{ErrInvalidStartDate, e.Err}
}

// TariffError reports a selector that is not a key of the active catalog.
type TariffError struct {
	Selector int64
	Raw      string // original text when the selector was not a number
	Catalog  string
}

func (e *TariffError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("tariff %q is not a valid price", e.Raw)
	}
	return fmt.Sprintf("tariff %d is not offered in catalog %q", e.Selector, e.Catalog)
}

func (e *TariffError) Unwrap() error { return ErrInvalidTariff }

// CapacityError reports a schedule longer than the template can hold.
type CapacityError struct {
	Installments int
	Capacity     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("tariff has %d installments but the contract template holds only %d",
		e.Installments, e.Capacity)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// TemplateError reports a missing or unreadable document template.
type TemplateError struct {
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("contract template %q is unavailable", e.Path)
}

func (e *TemplateError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTemplateUnavailable}
	}
	return []error{ErrTemplateUnavailable, e.Err}
}

// TermsError reports catalog data that violates Terms invariants.
type TermsError struct {
	Selector int64
	Reason   string
}

func (e *TermsError) Error() string {
	if e.Selector != 0 {
		return fmt.Sprintf("tariff %d: %s", e.Selector, e.Reason)
	}
	return "tariff terms: " + e.Reason
}

func (e *TermsError) Unwrap() error { return ErrInvalidTerms }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// Code returns a stable code for a classified error, or "internal".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidStartDate):
		return "invalid_start_date"
	case errors.Is(err, ErrInvalidTariff):
		return "invalid_tariff"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrTemplateUnavailable):
		return "template_unavailable"
	case errors.Is(err, ErrInvalidTerms):
		return "invalid_terms"
	default:
		return "internal"
	}
}

// IsClientError returns true if the user can fix the error by resubmitting.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidStartDate) ||
		errors.Is(err, ErrInvalidTariff) ||
		errors.Is(err, ErrCapacityExceeded)
}

// IsClassified returns true if err belongs to the taxonomy above.
func IsClassified(err error) bool {
	return Code(err) != "internal"
}
