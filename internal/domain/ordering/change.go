package ordering

import (
	"github.com/shopspring/decimal"
)

// visibilityEpsilon is the threshold under which a recomputed change amount is
// treated as zero for editors
var visibilityEpsilon = decimal.NewFromFloat(0.005)

// negativeTolerance allows read-only viewers to keep seeing a historical
// change record when live recomputation drifts slightly negative
var negativeTolerance = decimal.NewFromFloat(-0.01)

// partialSumTolerance bounds the allowed gap between the partial split and the
// change owed
var partialSumTolerance = decimal.NewFromFloat(0.01)

// TotalReceived sums payment amounts as entered. Amounts are summed directly
// with no currency conversion: operators record the USD-equivalent value for
// every tender method, and the per-row rate is display-only.
func TotalReceived(payments []SerializedPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// ChangeAmount derives the change owed to the customer: the overpayment above
// the order total, floored at zero and rounded to 2 decimals
func ChangeAmount(totalReceived, orderTotal decimal.Decimal) decimal.Decimal {
	change := totalReceived.Sub(orderTotal)
	if change.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return change.Round(2)
}

// ChangeVisible decides whether the change-management surface is active.
//
// Editors see it only when the live recomputation yields a meaningful amount.
// Read-only viewers also see it when the order carries a persisted positive
// change and the recomputed value is not clearly negative, so historical
// records stay visible to them even when a live edit would hide them.
func ChangeVisible(recomputed, persisted decimal.Decimal, canEdit bool) bool {
	if recomputed.GreaterThan(visibilityEpsilon) {
		return true
	}
	if canEdit {
		return false
	}
	return persisted.IsPositive() && recomputed.GreaterThanOrEqual(negativeTolerance)
}

// PartialSumCorrect checks the split branch: company and agency portions must
// add up to the change owed within a cent
func PartialSumCorrect(company, agency, change decimal.Decimal) bool {
	diff := company.Add(agency).Sub(change).Abs()
	return diff.LessThan(partialSumTolerance)
}
