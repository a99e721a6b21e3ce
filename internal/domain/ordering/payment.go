package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how money was tendered or how change is delivered.
// The string values are a persistence and API compatibility surface; they must
// not be renamed.
type PaymentMethod string

const (
	PaymentMethodCashUSD       PaymentMethod = "cash-USD"
	PaymentMethodCashVES       PaymentMethod = "cash-VES"
	PaymentMethodCashEUR       PaymentMethod = "cash-EUR"
	PaymentMethodMobilePayment PaymentMethod = "mobile-payment-VES"
	PaymentMethodBankTransfer  PaymentMethod = "bank-transfer-VES"
	PaymentMethodZelle         PaymentMethod = "Zelle-USD"
	PaymentMethodBinance       PaymentMethod = "Binance-USD"
	PaymentMethodPayPal        PaymentMethod = "PayPal-USD"
	PaymentMethodZinli         PaymentMethod = "Zinli-USD"
)

// CompanyPaymentMethods is the full set of methods the company can use,
// both for receiving payments and for disbursing change.
var CompanyPaymentMethods = []PaymentMethod{
	PaymentMethodCashUSD,
	PaymentMethodCashVES,
	PaymentMethodCashEUR,
	PaymentMethodMobilePayment,
	PaymentMethodBankTransfer,
	PaymentMethodZelle,
	PaymentMethodBinance,
	PaymentMethodPayPal,
	PaymentMethodZinli,
}

// AgencyPaymentMethods is the restricted set available to the delivery agency:
// it only ever hands over cash.
var AgencyPaymentMethods = []PaymentMethod{
	PaymentMethodCashUSD,
	PaymentMethodCashVES,
}

// IsValid reports whether the method is a known company-side method
func (m PaymentMethod) IsValid() bool {
	for _, known := range CompanyPaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// IsValidForAgency reports whether the method is in the agency subset
func (m PaymentMethod) IsValidForAgency() bool {
	for _, known := range AgencyPaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// IsCash reports whether the method is physical cash in any currency
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCashUSD || m == PaymentMethodCashVES || m == PaymentMethodCashEUR
}

// IsVESDenominated reports whether the method is settled in bolívares.
// These are the methods that carry an informational exchange rate.
func (m PaymentMethod) IsVESDenominated() bool {
	return m == PaymentMethodCashVES || m == PaymentMethodMobilePayment || m == PaymentMethodBankTransfer
}

// IsEmailWallet reports whether the method is a digital wallet identified by
// an email address (Zelle, Binance, PayPal, Zinli).
func (m PaymentMethod) IsEmailWallet() bool {
	switch m {
	case PaymentMethodZelle, PaymentMethodBinance, PaymentMethodPayPal, PaymentMethodZinli:
		return true
	}
	return false
}

// Payment is one entry in an order's payment ledger.
//
// Amount is always expressed in the order's base currency (USD) regardless of
// the tender method. The optional Rate on VES-denominated methods is stored to
// render a bolívar-equivalent figure; it is never used to convert Amount.
type Payment struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position int             `gorm:"not null"`
	Method   PaymentMethod   `gorm:"type:varchar(30);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate     decimal.Decimal `gorm:"type:decimal(18,4)"`
	AddedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "order_payments"
}

// NewPayment creates a ledger entry for an order
func NewPayment(orderID uuid.UUID, position int, method PaymentMethod, amount, rate decimal.Decimal) Payment {
	return Payment{
		ID:       uuid.New(),
		OrderID:  orderID,
		Position: position,
		Method:   method,
		Amount:   amount,
		Rate:     rate,
		AddedAt:  time.Now(),
	}
}

// BolivarEquivalent returns Amount×Rate for display, or zero when no rate is
// attached. Informational only.
func (p Payment) BolivarEquivalent() decimal.Decimal {
	if p.Rate.IsZero() {
		return decimal.Zero
	}
	return p.Amount.Mul(p.Rate).Round(2)
}

// ChangeCoveredBy identifies who is liable for disbursing change to the customer
type ChangeCoveredBy string

const (
	ChangeCoveredByNone    ChangeCoveredBy = "none"
	ChangeCoveredByCompany ChangeCoveredBy = "company"
	ChangeCoveredByAgency  ChangeCoveredBy = "agency"
	ChangeCoveredByPartial ChangeCoveredBy = "partial"
)

// IsValid reports whether the value is a known responsibility
func (c ChangeCoveredBy) IsValid() bool {
	switch c {
	case ChangeCoveredByNone, ChangeCoveredByCompany, ChangeCoveredByAgency, ChangeCoveredByPartial:
		return true
	}
	return false
}

// InvolvesCompany reports whether the company owes any part of the change
func (c ChangeCoveredBy) InvolvesCompany() bool {
	return c == ChangeCoveredByCompany || c == ChangeCoveredByPartial
}

// InvolvesAgency reports whether the agency owes any part of the change
func (c ChangeCoveredBy) InvolvesAgency() bool {
	return c == ChangeCoveredByAgency || c == ChangeCoveredByPartial
}
