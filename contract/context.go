package contract

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/warp/contract-engine/schedule"
)

// DefaultCapacity is the number of installment placeholder pairs wired into
// the contract template.
const DefaultCapacity = 20

// Context keys bound by the document template.
const (
	KeyContractNumber = "contract_num"
	KeyContractDate   = "date_zakl"
	KeyFullName       = "fio"
	KeyBirthDate      = "data_rod"
	KeyPassport       = "passport"
	KeyTotal          = "summa"
	KeyFee            = "summa2"
	KeyAddress        = "adres"
	KeyPhone          = "phone"
)

// SlotDateKey and SlotAmountKey name the i-th (1-based) installment placeholders.
func SlotDateKey(i int) string   { return "payment_date_" + strconv.Itoa(i) }
func SlotAmountKey(i int) string { return "payment_summa_" + strconv.Itoa(i) }

// =============================================================================
// CONTEXT
// =============================================================================

// Context is the flat mapping handed to the document binder.
type Context map[string]string

// Slot returns the date and amount strings of slot i.
func (c Context) Slot(i int) (string, string) {
	return c[SlotDateKey(i)], c[SlotAmountKey(i)]
}

// Keys returns all keys in sorted order.
func (c Context) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Identity is the non-financial part of a contract.
type Identity struct {
	ContractNumber string
	ContractDate   schedule.Date
	FullName       string
	BirthDate      string
	Passport       string
	Address        string
	Phone          string
}

// =============================================================================
// BUILDER
// =============================================================================

// Builder flattens a schedule into a Context with a fixed number of slots.
type Builder struct {
	Capacity int
}

func NewBuilder() *Builder {
	return &Builder{Capacity: DefaultCapacity}
}

// CheckCapacity rejects terms with more installments than slots. The
// template would otherwise silently lose payments.
func (b *Builder) CheckCapacity(terms schedule.Terms) error {
	if terms.Installments > b.Capacity {
		return &schedule.CapacityError{Installments: terms.Installments, Capacity: b.Capacity}
	}
	return nil
}

// Build produces a Context with exactly Capacity slot pairs. Slots past
// the last installment are present and empty.
func (b *Builder) Build(id Identity, terms schedule.Terms, entries []schedule.Entry) (Context, error) {
	if err := b.CheckCapacity(terms); err != nil {
		return nil, err
	}
	if len(entries) != terms.Installments {
		return nil, fmt.Errorf("schedule has %d entries, tariff expects %d", len(entries), terms.Installments)
	}

	ctx := Context{
		KeyContractNumber: id.ContractNumber,
		KeyContractDate:   id.ContractDate.String(),
		KeyFullName:       id.FullName,
		KeyBirthDate:      id.BirthDate,
		KeyPassport:       id.Passport,
		KeyTotal:          schedule.FormatAmount(terms.TotalPrice),
		KeyFee:            schedule.FormatFee(terms.Fee),
		KeyAddress:        id.Address,
		KeyPhone:          id.Phone,
	}

	for i := 1; i <= b.Capacity; i++ {
		date, amount := "", ""
		if i <= len(entries) {
			e := entries[i-1]
			date, amount = e.Due.String(), schedule.FormatAmount(e.Amount)
		}
		ctx[SlotDateKey(i)] = date
		ctx[SlotAmountKey(i)] = amount
	}
	return ctx, nil
}

// Blank returns a Context with every key the builder emits, all empty.
func (b *Builder) Blank() Context {
	ctx := Context{
		KeyContractNumber: "", KeyContractDate: "", KeyFullName: "",
		KeyBirthDate: "", KeyPassport: "", KeyTotal: "",
		KeyFee: "", KeyAddress: "", KeyPhone: "",
	}
	for i := 1; i <= b.Capacity; i++ {
		ctx[SlotDateKey(i)] = ""
		ctx[SlotAmountKey(i)] = ""
	}
	return ctx
}
