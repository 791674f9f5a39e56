/*
Package factory provides JSON to Go catalog conversion.

PURPOSE:
  Converts JSON tariff catalogs into schedule.Catalog values. Pricing
  differs between deployments, so the active catalog is configuration:
  a preset, a JSON file, or a document stored in the database. All three
  go through this parser.

JSON SCHEMA:
  {
    "name": "standard",
    "fee_rate": "5",                  // optional, percent of price
    "tariffs": [
      {"price": 180000, "monthly_payment": 180000, "installments": 1},
      {"price": 200000, "monthly_payment": 25000, "installments": 8,
       "fee": 10000},                 // explicit fee wins over any rate
      {"price": 240000, "monthly_payment": 20000, "installments": 12,
       "fee_rate": "4.5"}             // per-tariff rate wins over catalog rate
    ]
  }

FEE COMPUTATION:
  fee = round(price * rate / 100), half away from zero, in whole units.
  Rates are decimals so "4.5" percent is exact.

DEFAULTS:
  - monthly_payment of a single-installment tariff defaults to price
  - no fee and no rate: the tariff carries no fee

USAGE:
  f := NewCatalogFactory()
  catalog, err := f.ParseCatalog(jsonString)
  catalog, err := f.Preset(contract.CatalogStandard)

SEE ALSO:
  - contract/catalogs.go: Preset catalog JSON
  - store/sqlite:         Catalog documents in the database
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CatalogJSON is the JSON representation of a tariff catalog.
type CatalogJSON struct {
	Name    string           `json:"name"`
	FeeRate *decimal.Decimal `json:"fee_rate,omitempty"`
	Tariffs []TariffJSON     `json:"tariffs"`
}

// TariffJSON represents one tariff.
type TariffJSON struct {
	Price          int64            `json:"price"`
	MonthlyPayment int64            `json:"monthly_payment,omitempty"`
	Installments   int              `json:"installments"`
	Fee            *int64           `json:"fee,omitempty"`
	FeeRate        *decimal.Decimal `json:"fee_rate,omitempty"`
}

// =============================================================================
// CATALOG FACTORY
// =============================================================================

// CatalogFactory converts JSON catalogs to schedule.Catalog.
type CatalogFactory struct{}

func NewCatalogFactory() *CatalogFactory {
	return &CatalogFactory{}
}

// ParseCatalog parses a JSON string into a validated catalog.
func (f *CatalogFactory) ParseCatalog(jsonStr string) (*schedule.Catalog, error) {
	var cj CatalogJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// LoadFile reads and parses a catalog file.
func (f *CatalogFactory) LoadFile(path string) (*schedule.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return f.ParseCatalog(string(data))
}

// Preset parses one of the built-in catalogs.
func (f *CatalogFactory) Preset(name string) (*schedule.Catalog, error) {
	js, err := contract.PresetJSON(name)
	if err != nil {
		return nil, err
	}
	return f.ParseCatalog(js)
}

// FromJSON converts the JSON struct to a catalog.
func (f *CatalogFactory) FromJSON(cj CatalogJSON) (*schedule.Catalog, error) {
	if cj.Name == "" {
		return nil, fmt.Errorf("catalog name is required")
	}

	tariffs := make(map[int64]schedule.Terms, len(cj.Tariffs))
	for _, tj := range cj.Tariffs {
		if _, dup := tariffs[tj.Price]; dup {
			return nil, fmt.Errorf("catalog %q: duplicate tariff price %d", cj.Name, tj.Price)
		}
		terms, err := f.termsFromJSON(tj, cj.FeeRate)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", cj.Name, err)
		}
		tariffs[tj.Price] = terms
	}

	catalog := schedule.NewCatalog(cj.Name, tariffs)
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (f *CatalogFactory) termsFromJSON(tj TariffJSON, catalogRate *decimal.Decimal) (schedule.Terms, error) {
	terms := schedule.Terms{
		TotalPrice:     schedule.Amount(tj.Price),
		MonthlyPayment: schedule.Amount(tj.MonthlyPayment),
		Installments:   tj.Installments,
	}
	if terms.IsLumpSum() && terms.MonthlyPayment == 0 {
		terms.MonthlyPayment = terms.TotalPrice
	}

	rate := catalogRate
	if tj.FeeRate != nil {
		rate = tj.FeeRate
	}
	switch {
	case tj.Fee != nil:
		terms.Fee = schedule.FeeAmount(schedule.Amount(*tj.Fee))
	case rate != nil:
		if rate.IsNegative() {
			return terms, fmt.Errorf("tariff %d: negative fee rate %s", tj.Price, rate)
		}
		terms.Fee = schedule.FeeAmount(FeeFromRate(terms.TotalPrice, *rate))
	}
	return terms, nil
}

// FeeFromRate computes round(price * ratePercent / 100) in whole units.
func FeeFromRate(price schedule.Amount, ratePercent decimal.Decimal) schedule.Amount {
	fee := decimal.NewFromInt(int64(price)).
		Mul(ratePercent).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return schedule.Amount(fee.IntPart())
}

// ToJSON converts a catalog back to JSON form. Fees are written explicitly.
func (f *CatalogFactory) ToJSON(c *schedule.Catalog) CatalogJSON {
	cj := CatalogJSON{Name: c.Name()}
	for _, sel := range c.Selectors() {
		terms, _ := c.Resolve(sel)
		tj := TariffJSON{
			Price:          sel,
			MonthlyPayment: int64(terms.MonthlyPayment),
			Installments:   terms.Installments,
		}
		if terms.Fee != nil {
			fee := int64(*terms.Fee)
			tj.Fee = &fee
		}
		cj.Tariffs = append(cj.Tariffs, tj)
	}
	sort.Slice(cj.Tariffs, func(i, j int) bool { return cj.Tariffs[i].Price < cj.Tariffs[j].Price })
	return cj
}
