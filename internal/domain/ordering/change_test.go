package ordering

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func payments(amounts ...float64) []SerializedPayment {
	out := make([]SerializedPayment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, SerializedPayment{Method: PaymentMethodCashUSD, Amount: decimal.NewFromFloat(a)})
	}
	return out
}

func TestChangeAmount(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		total   float64
		want    string
	}{
		{"overpayment yields change", []float64{120}, 100, "120.00"},
		{"exact payment yields zero", []float64{100}, 100, "0.00"},
		{"underpayment floors at zero", []float64{80}, 100, "0.00"},
		{"multiple rows are summed", []float64{60, 30, 20}, 100, "10.00"},
		{"fractional cents round to two decimals", []float64{100.567}, 100, "0.57"},
		{"no payments", nil, 100, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received := TotalReceived(payments(tt.amounts...))
			got := ChangeAmount(received, decimal.NewFromFloat(tt.total))
			assert.Equal(t, tt.want, got.StringFixed(2))

			// derivation is pure: a second pass from the same inputs agrees
			again := ChangeAmount(TotalReceived(payments(tt.amounts...)), decimal.NewFromFloat(tt.total))
			assert.True(t, got.Equal(again))
		})
	}
}

func TestTotalReceivedSumsWithoutConversion(t *testing.T) {
	// amounts are USD-equivalent regardless of tender method; the rate on a
	// bolívar row never converts its amount
	rows := []SerializedPayment{
		{Method: PaymentMethodCashUSD, Amount: decimal.NewFromInt(50)},
		{Method: PaymentMethodBankTransfer, Amount: decimal.NewFromInt(30), Rate: decimal.NewFromInt(40)},
	}
	assert.Equal(t, "80.00", TotalReceived(rows).StringFixed(2))
}

func TestChangeVisible(t *testing.T) {
	tests := []struct {
		name       string
		recomputed float64
		persisted  float64
		canEdit    bool
		want       bool
	}{
		{"editor sees live positive change", 5, 0, true, true},
		{"editor with zero change sees nothing even with history", 0, 5, true, false},
		{"editor below epsilon sees nothing", 0.004, 0, true, false},
		{"read-only viewer keeps historical change", 0, 5, false, true},
		{"read-only viewer with slight negative drift keeps history", -0.005, 5, false, true},
		{"read-only viewer with clearly negative recomputation loses it", -0.5, 5, false, false},
		{"read-only viewer with no history sees nothing", 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangeVisible(decimal.NewFromFloat(tt.recomputed), decimal.NewFromFloat(tt.persisted), tt.canEdit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartialSumCorrect(t *testing.T) {
	change := decimal.NewFromInt(20)

	tests := []struct {
		name    string
		company float64
		agency  float64
		want    bool
	}{
		{"exact split", 12, 8, true},
		{"within a cent", 12.005, 8, true},
		{"off by a cent", 12.01, 8, false},
		{"wildly off", 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PartialSumCorrect(decimal.NewFromFloat(tt.company), decimal.NewFromFloat(tt.agency), change)
			assert.Equal(t, tt.want, got)
		})
	}
}
