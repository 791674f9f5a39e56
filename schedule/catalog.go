package schedule

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// CATALOG - Tariff lookup table for one deployment
// =============================================================================

// Catalog maps a total-price selector to its installment terms.
// A Catalog is immutable once built; deployments swap whole catalogs.
type Catalog struct {
	name    string
	tariffs map[int64]Terms
}

// NewCatalog copies tariffs into a new catalog.
func NewCatalog(name string, tariffs map[int64]Terms) *Catalog {
	c := &Catalog{name: name, tariffs: make(map[int64]Terms, len(tariffs))}
	for k, v := range tariffs {
		if v.Fee != nil {
			v.Fee = FeeAmount(*v.Fee)
		}
		c.tariffs[k] = v
	}
	return c
}

func (c *Catalog) Name() string { return c.name }
func (c *Catalog) Len() int     { return len(c.tariffs) }

// Resolve returns the terms for an exact selector match.
func (c *Catalog) Resolve(selector int64) (Terms, error) {
	t, ok := c.tariffs[selector]
	if !ok {
		return Terms{}, &TariffError{Selector: selector, Catalog: c.name}
	}
	return t, nil
}

// ResolveString parses a textual selector ("200000", "200 000") and resolves it.
func (c *Catalog) ResolveString(raw string) (Terms, int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	selector, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return Terms{}, 0, &TariffError{Raw: raw, Catalog: c.name}
	}
	terms, err := c.Resolve(selector)
	return terms, selector, err
}

// Selectors returns all keys in ascending order.
func (c *Catalog) Selectors() []int64 {
	keys := make([]int64, 0, len(c.tariffs))
	for k := range c.tariffs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Validate checks every tariff's invariants.
func (c *Catalog) Validate() error {
	if len(c.tariffs) == 0 {
		return &TermsError{Reason: "catalog " + strconv.Quote(c.name) + " is empty"}
	}
	for _, sel := range c.Selectors() {
		if err := c.tariffs[sel].Validate(); err != nil {
			var tErr *TermsError
			if errors.As(err, &tErr) {
				tErr.Selector = sel
			}
			return err
		}
	}
	return nil
}
