/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures of the /api endpoints. They decouple the engine types
  (schedule.Terms, schedule.Entry) from the wire format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - Request bodies reuse contract.Input and factory.CatalogJSON

TYPES:
  Tariffs:   TariffDTO, TariffListDTO
  Schedule:  contract.Input (request), ScheduleDTO, EntryDTO
  Catalogs:  CatalogDTO
  Errors:    ErrorResponse

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/warp/contract-engine/contract"
	"github.com/warp/contract-engine/schedule"
	"github.com/warp/contract-engine/store/sqlite"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// TariffDTO describes one tariff of the active catalog.
type TariffDTO struct {
	Price          int64  `json:"price"`
	MonthlyPayment int64  `json:"monthly_payment"`
	Installments   int    `json:"installments"`
	Fee            *int64 `json:"fee,omitempty"`
	Label          string `json:"label"`
}

// TariffListDTO is the active catalog.
type TariffListDTO struct {
	Catalog   string      `json:"catalog"`
	DayPolicy string      `json:"day_policy"`
	Tariffs   []TariffDTO `json:"tariffs"`
}

// EntryDTO is one installment.
type EntryDTO struct {
	Index      int    `json:"index"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	AmountText string `json:"amount_text"`
}

// ScheduleDTO is the preview of a contract: schedule plus template context.
type ScheduleDTO struct {
	Catalog  string            `json:"catalog"`
	Tariff   TariffDTO         `json:"tariff"`
	Entries  []EntryDTO        `json:"entries"`
	Context  map[string]string `json:"context"`
	FileName string            `json:"file_name"`
}

// CatalogDTO is a stored catalog.
type CatalogDTO struct {
	Name      string          `json:"name"`
	Version   int             `json:"version"`
	Active    bool            `json:"active"`
	Config    json.RawMessage `json:"config,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toTariffDTO(price int64, t schedule.Terms) TariffDTO {
	dto := TariffDTO{
		Price:          price,
		MonthlyPayment: int64(t.MonthlyPayment),
		Installments:   t.Installments,
		Label:          tariffLabel(price, t),
	}
	if t.Fee != nil {
		fee := int64(*t.Fee)
		dto.Fee = &fee
	}
	return dto
}

func toEntryDTOs(entries []schedule.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{
			Index:      e.Index,
			Date:       e.Due.String(),
			Amount:     int64(e.Amount),
			AmountText: schedule.FormatAmount(e.Amount),
		}
	}
	return dtos
}

func toScheduleDTO(catalog string, res *contract.Result) ScheduleDTO {
	return ScheduleDTO{
		Catalog:  catalog,
		Tariff:   toTariffDTO(res.Selector, res.Terms),
		Entries:  toEntryDTOs(res.Entries),
		Context:  res.Context,
		FileName: res.FileName(),
	}
}

func toCatalogDTO(rec sqlite.CatalogRecord, active string, withConfig bool) CatalogDTO {
	dto := CatalogDTO{
		Name:      rec.Name,
		Version:   rec.Version,
		Active:    rec.Name == active,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	}
	if withConfig {
		dto.Config = json.RawMessage(rec.ConfigJSON)
	}
	return dto
}

// tariffLabel renders the option text shown in the form, e.g.
// "200 000 ₽ (8 мес по 25 000 ₽)".
func tariffLabel(price int64, t schedule.Terms) string {
	per := t.MonthlyPayment
	if t.IsLumpSum() {
		per = t.TotalPrice
	}
	return schedule.FormatAmount(schedule.Amount(price)) + " ₽ (" +
		strconv.Itoa(t.Installments) + " мес по " + schedule.FormatAmount(per) + " ₽)"
}
