package ordering

import (
	"fmt"

	"github.com/ordena/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerField names an editable column of a ledger row
type LedgerField string

const (
	LedgerFieldMethod LedgerField = "method"
	LedgerFieldAmount LedgerField = "amount"
	LedgerFieldRate   LedgerField = "rate"
)

// LedgerRow is one in-progress payment entry. Amount and Rate are kept as the
// operator typed them; parsing happens on serialization so partially filled
// rows survive edits.
type LedgerRow struct {
	Method PaymentMethod
	Amount string
	Rate   string
}

// IsEmpty reports whether the row has no data at all
func (r LedgerRow) IsEmpty() bool {
	return r.Method == "" && r.Amount == "" && r.Rate == ""
}

// IsValid reports whether the row can be serialized: a method is chosen and
// the amount parses to a finite positive number.
func (r LedgerRow) IsValid() bool {
	if !r.Method.IsValid() {
		return false
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return false
	}
	return amount.IsPositive()
}

// SerializedPayment is a clean method/amount pair produced from a valid row
type SerializedPayment struct {
	Method PaymentMethod
	Amount decimal.Decimal
	Rate   decimal.Decimal
}

// PaymentLedger holds the mutable list of payment rows being edited for an
// order. It always contains at least one row: removing the last row resets it
// to a single empty row instead.
type PaymentLedger struct {
	rows     []LedgerRow
	onChange func([]SerializedPayment)
}

// NewPaymentLedger creates a ledger seeded from existing payments, or with a
// single empty row when the order has none yet
func NewPaymentLedger(seed []Payment) *PaymentLedger {
	l := &PaymentLedger{}
	for _, p := range seed {
		row := LedgerRow{
			Method: p.Method,
			Amount: p.Amount.StringFixed(2),
		}
		if !p.Rate.IsZero() {
			row.Rate = p.Rate.String()
		}
		l.rows = append(l.rows, row)
	}
	if len(l.rows) == 0 {
		l.rows = []LedgerRow{{}}
	}
	return l
}

// OnChange registers a callback invoked with the serialized valid subset
// whenever a row mutates. The callback tolerates partial rows by design: it
// receives only the rows that already parse.
func (l *PaymentLedger) OnChange(fn func([]SerializedPayment)) {
	l.onChange = fn
}

// Rows returns a copy of the current rows
func (l *PaymentLedger) Rows() []LedgerRow {
	out := make([]LedgerRow, len(l.rows))
	copy(out, l.rows)
	return out
}

// AddRow appends an empty row
func (l *PaymentLedger) AddRow() {
	l.rows = append(l.rows, LedgerRow{})
}

// UpdateRow mutates one field of one row and fires the change callback
func (l *PaymentLedger) UpdateRow(index int, field LedgerField, value string) error {
	if index < 0 || index >= len(l.rows) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Row index %d out of range", index))
	}
	switch field {
	case LedgerFieldMethod:
		l.rows[index].Method = PaymentMethod(value)
	case LedgerFieldAmount:
		l.rows[index].Amount = value
	case LedgerFieldRate:
		l.rows[index].Rate = value
	default:
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown ledger field %q", field))
	}
	l.fireChange()
	return nil
}

// RemoveRow deletes a row; deleting the only row leaves a fresh empty one
func (l *PaymentLedger) RemoveRow(index int) error {
	if index < 0 || index >= len(l.rows) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Row index %d out of range", index))
	}
	if len(l.rows) == 1 {
		l.rows[0] = LedgerRow{}
	} else {
		l.rows = append(l.rows[:index], l.rows[index+1:]...)
	}
	l.fireChange()
	return nil
}

// Serialize filters out rows missing a method or a positive numeric amount and
// returns the clean list
func (l *PaymentLedger) Serialize() []SerializedPayment {
	out := make([]SerializedPayment, 0, len(l.rows))
	for _, row := range l.rows {
		if !row.IsValid() {
			continue
		}
		amount, _ := decimal.NewFromString(row.Amount)
		sp := SerializedPayment{Method: row.Method, Amount: amount}
		if row.Rate != "" && row.Method.IsVESDenominated() {
			if rate, err := decimal.NewFromString(row.Rate); err == nil {
				sp.Rate = rate
			}
		}
		out = append(out, sp)
	}
	return out
}

// ValidateAll reports whether every row is valid. This gates the explicit
// save action; the live change callback is looser on purpose.
func (l *PaymentLedger) ValidateAll() bool {
	for _, row := range l.rows {
		if !row.IsValid() {
			return false
		}
	}
	return true
}

// Replace swaps the full row set, e.g. with the output of the mixed-payment
// solver
func (l *PaymentLedger) Replace(rows []LedgerRow) {
	if len(rows) == 0 {
		rows = []LedgerRow{{}}
	}
	l.rows = rows
	l.fireChange()
}

func (l *PaymentLedger) fireChange() {
	if l.onChange != nil {
		l.onChange(l.Serialize())
	}
}
