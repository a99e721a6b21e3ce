package ordering

import (
	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventOrderCreated          = "order.created"
	EventOrderPaymentsRecorded = "order.payments_recorded"
	EventOrderChangeAssigned   = "order.change_assigned"
	EventChangeReceiptAttached = "order.change_receipt_attached"
	EventPaymentReceiptRemoved = "order.payment_receipt_removed"
)

const aggregateTypeOrder = "Order"

// OrderCreatedEvent is raised when a new order enters the system
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewOrderCreatedEvent creates an OrderCreatedEvent
func NewOrderCreatedEvent(orderID uuid.UUID, orderNumber string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderCreated, aggregateTypeOrder, orderID),
		OrderNumber:     orderNumber,
	}
}

// OrderPaymentsRecordedEvent is raised when the payment ledger is replaced
type OrderPaymentsRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentCount int             `json:"payment_count"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
}

// NewOrderPaymentsRecordedEvent creates an OrderPaymentsRecordedEvent
func NewOrderPaymentsRecordedEvent(orderID uuid.UUID, count int, change decimal.Decimal) *OrderPaymentsRecordedEvent {
	return &OrderPaymentsRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderPaymentsRecorded, aggregateTypeOrder, orderID),
		PaymentCount:    count,
		ChangeAmount:    change,
	}
}

// OrderChangeAssignedEvent is raised when change responsibility is persisted
type OrderChangeAssignedEvent struct {
	shared.BaseDomainEvent
	CoveredBy    ChangeCoveredBy `json:"covered_by"`
	ChangeAmount decimal.Decimal `json:"change_amount"`
}

// NewOrderChangeAssignedEvent creates an OrderChangeAssignedEvent
func NewOrderChangeAssignedEvent(orderID uuid.UUID, coveredBy ChangeCoveredBy, change decimal.Decimal) *OrderChangeAssignedEvent {
	return &OrderChangeAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderChangeAssigned, aggregateTypeOrder, orderID),
		CoveredBy:       coveredBy,
		ChangeAmount:    change,
	}
}

// ChangeReceiptAttachedEvent is raised when a disbursement receipt is stored
type ChangeReceiptAttachedEvent struct {
	shared.BaseDomainEvent
	FileKey  string `json:"file_key"`
	Replaced bool   `json:"replaced"`
}

// NewChangeReceiptAttachedEvent creates a ChangeReceiptAttachedEvent
func NewChangeReceiptAttachedEvent(orderID uuid.UUID, fileKey string, replaced bool) *ChangeReceiptAttachedEvent {
	return &ChangeReceiptAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventChangeReceiptAttached, aggregateTypeOrder, orderID),
		FileKey:         fileKey,
		Replaced:        replaced,
	}
}

// PaymentReceiptRemovedEvent is raised when a proof-of-payment file is detached
type PaymentReceiptRemovedEvent struct {
	shared.BaseDomainEvent
	ReceiptID uuid.UUID `json:"receipt_id"`
}

// NewPaymentReceiptRemovedEvent creates a PaymentReceiptRemovedEvent
func NewPaymentReceiptRemovedEvent(orderID, receiptID uuid.UUID) *PaymentReceiptRemovedEvent {
	return &PaymentReceiptRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentReceiptRemoved, aggregateTypeOrder, orderID),
		ReceiptID:       receiptID,
	}
}
