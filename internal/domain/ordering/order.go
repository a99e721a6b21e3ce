package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus is the delivery lifecycle of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the aggregate root the reconciliation engine reads from and writes
// back to. The engine owns the payment ledger and all change_* fields; totals
// and delivery status are maintained elsewhere.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string      `gorm:"type:varchar(50);uniqueIndex;not null"`
	CustomerName string      `gorm:"type:varchar(255);not null"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	CurrentTotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Payments []Payment `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	// CashReceived and ChangeAmount are derived figures, recomputed from the
	// ledger on every save; operators never edit them directly
	CashReceived decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ChangeAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	ChangeCoveredBy     ChangeCoveredBy `gorm:"type:varchar(10);not null;default:'none'"`
	ChangeAmountCompany decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ChangeAmountAgency  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ChangeMethodCompany PaymentMethod   `gorm:"type:varchar(30)"`
	ChangeMethodAgency  PaymentMethod   `gorm:"type:varchar(30)"`

	// ChangeRate is a historical lock: once persisted non-zero it is never
	// overwritten by a freshly fetched reference rate
	ChangeRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// ChangePaymentDetails holds the JSON-encoded settlement detail keyed by
	// ChangeMethodCompany
	ChangePaymentDetails string `gorm:"type:text"`

	// ChangeReceiptKey references the stored disbursement receipt object
	ChangeReceiptKey string `gorm:"type:varchar(512)"`

	PaymentReceipts []PaymentReceipt `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// PaymentReceipt is a stored proof-of-payment attachment on an order
type PaymentReceipt struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	FileKey     string    `gorm:"type:varchar(512);not null"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100)"`
	UploadedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentReceipt) TableName() string {
	return "order_payment_receipts"
}

// NewOrder creates an order with no payments recorded yet
func NewOrder(orderNumber, customerName string, total decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order number is required")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order total cannot be negative")
	}
	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerName:      customerName,
		Status:            OrderStatusPending,
		CurrentTotalPrice: total,
		ChangeCoveredBy:   ChangeCoveredByNone,
	}
	order.AddDomainEvent(NewOrderCreatedEvent(order.ID, orderNumber))
	return order, nil
}

// RecordPayments replaces the order's payment ledger with the serialized rows
// and rederives cash_received and change_amount. Saving the ledger and saving
// the change assignment are independent operations; this one never touches the
// change_* fields beyond the derived amount.
func (o *Order) RecordPayments(rows []SerializedPayment) error {
	for _, row := range rows {
		if !row.Method.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method "+string(row.Method))
		}
		if !row.Amount.IsPositive() {
			return shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
		}
	}

	payments := make([]Payment, 0, len(rows))
	for i, row := range rows {
		rate := decimal.Zero
		if row.Method.IsVESDenominated() {
			rate = row.Rate
		}
		payments = append(payments, NewPayment(o.ID, i, row.Method, row.Amount, rate))
	}
	o.Payments = payments

	received := TotalReceived(rows)
	if received.IsPositive() {
		o.CashReceived = received
	}
	o.ChangeAmount = ChangeAmount(received, o.CurrentTotalPrice)

	o.Touch()
	o.AddDomainEvent(NewOrderPaymentsRecordedEvent(o.ID, len(payments), o.ChangeAmount))
	return nil
}

// ChangeAssignment is the write model for the change side of an order
type ChangeAssignment struct {
	CashReceived  decimal.Decimal
	ChangeAmount  decimal.Decimal
	CoveredBy     ChangeCoveredBy
	AmountCompany decimal.Decimal
	AmountAgency  decimal.Decimal
	MethodCompany PaymentMethod
	MethodAgency  PaymentMethod
	Rate          decimal.Decimal
	Detail        SettlementDetail
}

// AssignChange persists who covers the change and how it will be delivered.
// The allocator state decides whether the assignment may be saved; nothing is
// mutated when it blocks.
func (o *Order) AssignChange(a ChangeAssignment) error {
	working := AllocatorState{
		CashReceived:  a.CashReceived,
		ChangeAmount:  a.ChangeAmount,
		CoveredBy:     a.CoveredBy,
		AmountCompany: a.AmountCompany,
		AmountAgency:  a.AmountAgency,
		MethodCompany: a.MethodCompany,
		MethodAgency:  a.MethodAgency,
		Detail:        a.Detail,
	}
	if err := working.SaveBlocker(); err != nil {
		return err
	}

	detailJSON, err := EncodeSettlementDetail(a.Detail)
	if err != nil {
		return shared.NewDomainError("INVALID_DETAIL", err.Error())
	}

	o.CashReceived = a.CashReceived
	o.ChangeAmount = a.ChangeAmount
	o.ChangeCoveredBy = a.CoveredBy
	o.ChangeAmountCompany = a.AmountCompany
	o.ChangeAmountAgency = a.AmountAgency
	o.ChangeMethodCompany = a.MethodCompany
	o.ChangeMethodAgency = a.MethodAgency
	o.ChangePaymentDetails = detailJSON
	// rate lock: only a zero persisted rate may be filled in
	if o.ChangeRate.IsZero() && !a.Rate.IsZero() {
		o.ChangeRate = a.Rate
	}

	o.Touch()
	o.AddDomainEvent(NewOrderChangeAssignedEvent(o.ID, a.CoveredBy, a.ChangeAmount))
	return nil
}

// AttachChangeReceipt stores the disbursement receipt reference. Re-uploading
// replaces the previous receipt.
func (o *Order) AttachChangeReceipt(fileKey string) error {
	if fileKey == "" {
		return shared.NewDomainError("INVALID_INPUT", "Receipt file reference is required")
	}
	if !o.ChangeCoveredBy.InvolvesCompany() {
		return shared.NewDomainError("INVALID_STATE", "Change receipts apply only when the company covers change")
	}
	if !o.ChangeAmount.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Order has no change to document")
	}
	replaced := o.ChangeReceiptKey
	o.ChangeReceiptKey = fileKey
	o.Touch()
	o.AddDomainEvent(NewChangeReceiptAttachedEvent(o.ID, fileKey, replaced != ""))
	return nil
}

// AddPaymentReceipt attaches a proof-of-payment file to the order
func (o *Order) AddPaymentReceipt(fileKey, fileName, contentType string) (*PaymentReceipt, error) {
	if fileKey == "" || fileName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt file reference and name are required")
	}
	receipt := PaymentReceipt{
		ID:          uuid.New(),
		OrderID:     o.ID,
		FileKey:     fileKey,
		FileName:    fileName,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	o.PaymentReceipts = append(o.PaymentReceipts, receipt)
	o.Touch()
	return &receipt, nil
}

// RemovePaymentReceipt detaches a proof-of-payment file and returns it so the
// caller can delete the stored object
func (o *Order) RemovePaymentReceipt(receiptID uuid.UUID) (*PaymentReceipt, error) {
	for i, r := range o.PaymentReceipts {
		if r.ID == receiptID {
			o.PaymentReceipts = append(o.PaymentReceipts[:i], o.PaymentReceipts[i+1:]...)
			o.Touch()
			o.AddDomainEvent(NewPaymentReceiptRemovedEvent(o.ID, receiptID))
			return &r, nil
		}
	}
	return nil, shared.ErrNotFound
}

// SerializedPayments renders the persisted ledger rows in calculation form
func (o *Order) SerializedPayments() []SerializedPayment {
	rows := make([]SerializedPayment, 0, len(o.Payments))
	for _, p := range o.Payments {
		rows = append(rows, SerializedPayment{Method: p.Method, Amount: p.Amount, Rate: p.Rate})
	}
	return rows
}

// ParsedChangeDetail decodes the persisted settlement detail for the current
// company change method
func (o *Order) ParsedChangeDetail() (SettlementDetail, error) {
	if o.ChangeMethodCompany == "" {
		return nil, nil
	}
	return ParseSettlementDetail(o.ChangeMethodCompany, []byte(o.ChangePaymentDetails))
}
