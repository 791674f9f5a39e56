/*
Package contract turns contract form input into a filled document context.

PURPOSE:
  Sits between the serving layer and the schedule engine. It validates the
  eight form fields, resolves the tariff in the active catalog, derives the
  installment schedule and flattens everything into the key/value Context
  that the document template binds to.

FILES:
  input.go    Input fields, normalization, required-field checks
  context.go  Context keys and the fixed-capacity Builder
  service.go  Service: the request pipeline and active catalog
  catalogs.go Preset catalog definitions (JSON)

SEE ALSO:
  - schedule/: Engine (catalog, generator, errors)
  - factory/:  Catalog JSON parsing
  - document/: .docx binder consuming Context
*/
package contract

import (
	"strings"

	"github.com/warp/contract-engine/schedule"
)

// NumberSign is the legal "No." glyph users often type before a contract number.
const NumberSign = "№"

// Form field names. These are also the names used by the HTML form.
const (
	FieldContractNumber = "contractnum"
	FieldContractDate   = "datezakl"
	FieldFullName       = "fio"
	FieldBirthDate      = "datarod"
	FieldPassport       = "passport"
	FieldTariff         = "summa"
	FieldAddress        = "adres"
	FieldPhone          = "phone"
)

// fieldLabels gives the label of each field as the form shows it, in form order.
var fieldLabels = []struct{ name, label string }{
	{FieldContractNumber, "номер договора"},
	{FieldContractDate, "дата договора"},
	{FieldFullName, "ФИО"},
	{FieldBirthDate, "дата рождения"},
	{FieldPassport, "паспорт"},
	{FieldTariff, "стоимость услуг"},
	{FieldAddress, "адрес"},
	{FieldPhone, "телефон"},
}

// Input holds the raw form fields of one contract.
type Input struct {
	ContractNumber string `json:"contractnum"`
	ContractDate   string `json:"datezakl"`
	FullName       string `json:"fio"`
	BirthDate      string `json:"datarod"` // carried through, not validated
	Passport       string `json:"passport"`
	Tariff         string `json:"summa"`
	Address        string `json:"adres"`
	Phone          string `json:"phone"`
}

// Normalize trims every field and removes all spaces from the contract number.
func (in Input) Normalize() Input {
	return Input{
		ContractNumber: strings.ReplaceAll(strings.TrimSpace(in.ContractNumber), " ", ""),
		ContractDate:   strings.TrimSpace(in.ContractDate),
		FullName:       strings.TrimSpace(in.FullName),
		BirthDate:      strings.TrimSpace(in.BirthDate),
		Passport:       strings.TrimSpace(in.Passport),
		Tariff:         strings.TrimSpace(in.Tariff),
		Address:        strings.TrimSpace(in.Address),
		Phone:          strings.TrimSpace(in.Phone),
	}
}

// Get returns a field by its form name.
func (in Input) Get(field string) string {
	switch field {
	case FieldContractNumber:
		return in.ContractNumber
	case FieldContractDate:
		return in.ContractDate
	case FieldFullName:
		return in.FullName
	case FieldBirthDate:
		return in.BirthDate
	case FieldPassport:
		return in.Passport
	case FieldTariff:
		return in.Tariff
	case FieldAddress:
		return in.Address
	case FieldPhone:
		return in.Phone
	}
	return ""
}

// Validate reports the first blank required field, in form order.
// A contract number made only of the number sign counts as blank.
func (in Input) Validate() error {
	for _, f := range fieldLabels {
		v := strings.TrimSpace(in.Get(f.name))
		if f.name == FieldContractNumber {
			v = StripNumberSign(v)
		}
		if v == "" {
			return &schedule.FieldError{Field: f.name, Label: f.label}
		}
	}
	return nil
}

// StripNumberSign removes every "№" and surrounding spaces.
func StripNumberSign(num string) string {
	return strings.TrimSpace(strings.ReplaceAll(num, NumberSign, ""))
}

// FileName is the download name for the filled document: "<number>.docx".
// Path separators are replaced so the name cannot escape a directory.
func (in Input) FileName() string {
	name := fileNameReplacer.Replace(StripNumberSign(in.ContractNumber))
	return name + ".docx"
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_")
