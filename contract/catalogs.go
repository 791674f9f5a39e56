/*
catalogs.go - Preset tariff catalogs

PURPOSE:
  Ready-to-use catalog definitions for the two pricing schemes in use.
  They are JSON documents so the same parser (factory.ParseCatalog)
  handles presets, catalog files and catalogs stored in the database.

AVAILABLE CATALOGS:
  standard: 180 000 paid in full, longer plans at fixed monthly amounts,
            5% VAT figure computed from the price
  flat:     no fee; 150 000 paid in full, 180 000 split into 9 x 20 000

EXAMPLE:
  c, err := factory.NewCatalogFactory().ParseCatalog(contract.StandardCatalogJSON())

SEE ALSO:
  - factory/catalog.go: JSON schema and parser
*/
package contract

import "fmt"

const (
	CatalogStandard = "standard"
	CatalogFlat     = "flat"
)

// PresetNames lists the built-in catalogs.
func PresetNames() []string { return []string{CatalogStandard, CatalogFlat} }

// PresetJSON returns the JSON of a built-in catalog.
func PresetJSON(name string) (string, error) {
	switch name {
	case CatalogStandard:
		return StandardCatalogJSON(), nil
	case CatalogFlat:
		return FlatCatalogJSON(), nil
	}
	return "", fmt.Errorf("unknown preset catalog %q", name)
}

// StandardCatalogJSON: fee is 5% of the total price.
func StandardCatalogJSON() string {
	return `{
  "name": "standard",
  "fee_rate": "5",
  "tariffs": [
    {"price": 180000, "monthly_payment": 180000, "installments": 1},
    {"price": 200000, "monthly_payment": 25000, "installments": 8},
    {"price": 240000, "monthly_payment": 20000, "installments": 12},
    {"price": 270000, "monthly_payment": 15000, "installments": 18}
  ]
}`
}

func FlatCatalogJSON() string {
	return `{
  "name": "flat",
  "tariffs": [
    {"price": 150000, "monthly_payment": 150000, "installments": 1},
    {"price": 180000, "monthly_payment": 20000, "installments": 9},
    {"price": 200000, "monthly_payment": 25000, "installments": 8},
    {"price": 240000, "monthly_payment": 20000, "installments": 12}
  ]
}`
}
