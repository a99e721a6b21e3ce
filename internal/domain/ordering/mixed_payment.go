package ordering

import (
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MixedPaymentInput describes a payment split between a discounted
// hard-currency portion and a bolívar remainder at the reference rate
type MixedPaymentInput struct {
	// HardMethod is the cash method tendered (cash-USD or cash-EUR)
	HardMethod PaymentMethod
	// HardAmount is the amount paid in the hard currency (mp)
	HardAmount decimal.Decimal
	// DiscountFraction is the cash discount, 0–1 (e.g. 0.10 for 10%)
	DiscountFraction decimal.Decimal
	// Rate is the reference rate in VES per unit of the hard currency
	Rate decimal.Decimal
	// OrderTotal is the order total in the hard currency
	OrderTotal decimal.Decimal
}

// MixedPaymentResult is the two-row settlement that exactly closes the order
type MixedPaymentResult struct {
	// Equivalent is the hard-currency value credited after the discount (me)
	Equivalent decimal.Decimal
	// RemainderHard is the amount still owed in hard-currency terms (mapd);
	// negative means the customer overpaid
	RemainderHard decimal.Decimal
	// RemainderVES is the bolívar amount to collect, floored at zero (mapbs)
	RemainderVES decimal.Decimal
	// Rows is the replacement ledger: the hard-currency row and the
	// bolívar bank-transfer remainder
	Rows []LedgerRow
}

// SolveMixedPayment derives the two-row split:
//
//	me    = mp / (1 − d)
//	mapd  = total − me
//	mapbs = max(0, mapd × rate)
//
// It refuses to produce rows when the inputs cannot yield a meaningful split:
// a zero rate, a discount outside [0, 1), a non-positive hard amount, or a
// non-cash hard method. Refusal leaves the caller's ledger untouched.
func SolveMixedPayment(in MixedPaymentInput) (MixedPaymentResult, error) {
	if !in.HardMethod.IsCash() || in.HardMethod == PaymentMethodCashVES {
		return MixedPaymentResult{}, shared.NewDomainError("INVALID_INPUT", "Mixed payment requires a hard-currency cash method")
	}
	if !in.HardAmount.IsPositive() {
		return MixedPaymentResult{}, shared.NewDomainError("INVALID_INPUT", "Hard-currency amount must be positive")
	}
	if in.DiscountFraction.IsNegative() || in.DiscountFraction.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return MixedPaymentResult{}, shared.NewDomainError("INVALID_INPUT", "Discount must be a fraction in [0, 1)")
	}
	if in.Rate.IsZero() {
		return MixedPaymentResult{}, shared.NewDomainError("RATE_UNAVAILABLE", "Reference rate is not available yet")
	}

	one := decimal.NewFromInt(1)
	equivalent := in.HardAmount.DivRound(one.Sub(in.DiscountFraction), 8)
	remainderHard := in.OrderTotal.Sub(equivalent)
	remainderVES := remainderHard.Mul(in.Rate).Round(2)
	if remainderVES.IsNegative() {
		remainderVES = decimal.Zero.Round(2)
	}

	rows := []LedgerRow{
		{Method: in.HardMethod, Amount: in.HardAmount.StringFixed(2)},
		{Method: PaymentMethodBankTransfer, Amount: remainderVES.StringFixed(2), Rate: in.Rate.String()},
	}

	return MixedPaymentResult{
		Equivalent:    equivalent,
		RemainderHard: remainderHard,
		RemainderVES:  remainderVES,
		Rows:          rows,
	}, nil
}
