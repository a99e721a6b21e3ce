package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, total float64) *Order {
	t.Helper()
	order, err := NewOrder("ORD-2026-0001", "María Pérez", decimal.NewFromFloat(total))
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func TestNewOrder(t *testing.T) {
	t.Run("creates a pending order", func(t *testing.T) {
		order, err := NewOrder("ORD-2026-0001", "María Pérez", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, OrderStatusPending, order.Status)
		assert.Equal(t, ChangeCoveredByNone, order.ChangeCoveredBy)

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventOrderCreated, events[0].EventType())
	})

	t.Run("requires an order number", func(t *testing.T) {
		_, err := NewOrder("", "María Pérez", decimal.NewFromInt(100))
		require.Error(t, err)
	})

	t.Run("rejects a negative total", func(t *testing.T) {
		_, err := NewOrder("ORD-2026-0002", "María Pérez", decimal.NewFromInt(-1))
		require.Error(t, err)
	})
}

func TestOrderRecordPayments(t *testing.T) {
	t.Run("replaces the ledger and rederives figures", func(t *testing.T) {
		order := newTestOrder(t, 100)

		rows := []SerializedPayment{
			{Method: PaymentMethodCashUSD, Amount: decimal.NewFromInt(60)},
			{Method: PaymentMethodBankTransfer, Amount: decimal.NewFromInt(60), Rate: decimal.NewFromInt(40)},
		}
		require.NoError(t, order.RecordPayments(rows))

		require.Len(t, order.Payments, 2)
		assert.Equal(t, 0, order.Payments[0].Position)
		assert.Equal(t, 1, order.Payments[1].Position)
		assert.Equal(t, "120.00", order.CashReceived.StringFixed(2))
		assert.Equal(t, "20.00", order.ChangeAmount.StringFixed(2))

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventOrderPaymentsRecorded, events[0].EventType())
	})

	t.Run("rate is only kept on bolivar methods", func(t *testing.T) {
		order := newTestOrder(t, 100)
		rows := []SerializedPayment{
			{Method: PaymentMethodZelle, Amount: decimal.NewFromInt(50), Rate: decimal.NewFromInt(40)},
		}
		require.NoError(t, order.RecordPayments(rows))
		assert.True(t, order.Payments[0].Rate.IsZero())
	})

	t.Run("rejects unknown methods", func(t *testing.T) {
		order := newTestOrder(t, 100)
		err := order.RecordPayments([]SerializedPayment{{Method: "barter", Amount: decimal.NewFromInt(10)}})
		require.Error(t, err)
		assert.Empty(t, order.Payments)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		order := newTestOrder(t, 100)
		err := order.RecordPayments([]SerializedPayment{{Method: PaymentMethodCashUSD, Amount: decimal.Zero}})
		require.Error(t, err)
	})

	t.Run("underpayment keeps prior cash_received", func(t *testing.T) {
		order := newTestOrder(t, 100)
		require.NoError(t, order.RecordPayments([]SerializedPayment{
			{Method: PaymentMethodCashUSD, Amount: decimal.NewFromInt(120)},
		}))
		require.NoError(t, order.RecordPayments(nil))
		assert.Equal(t, "120.00", order.CashReceived.StringFixed(2))
		assert.Equal(t, "0.00", order.ChangeAmount.StringFixed(2))
	})
}

func TestOrderAssignChange(t *testing.T) {
	assignment := func() ChangeAssignment {
		return ChangeAssignment{
			CashReceived:  decimal.NewFromInt(120),
			ChangeAmount:  decimal.NewFromInt(20),
			CoveredBy:     ChangeCoveredByCompany,
			MethodCompany: PaymentMethodZelle,
			Rate:          decimal.NewFromInt(40),
			Detail:        EmailReceiverDetail{Email: "cliente@example.com"},
		}
	}

	t.Run("persists a company assignment", func(t *testing.T) {
		order := newTestOrder(t, 100)
		require.NoError(t, order.AssignChange(assignment()))

		assert.Equal(t, ChangeCoveredByCompany, order.ChangeCoveredBy)
		assert.Equal(t, PaymentMethodZelle, order.ChangeMethodCompany)
		assert.JSONEq(t, `{"email":"cliente@example.com"}`, order.ChangePaymentDetails)
		assert.Equal(t, "40", order.ChangeRate.String())

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventOrderChangeAssigned, events[0].EventType())
	})

	t.Run("nothing to save", func(t *testing.T) {
		order := newTestOrder(t, 100)
		err := order.AssignChange(ChangeAssignment{})
		assert.ErrorContains(t, err, "no change")
	})

	t.Run("cash_received alone is savable", func(t *testing.T) {
		order := newTestOrder(t, 100)
		require.NoError(t, order.AssignChange(ChangeAssignment{CashReceived: decimal.NewFromInt(100)}))
		assert.Equal(t, "100.00", order.CashReceived.StringFixed(2))
	})

	t.Run("responsibility is required when change is owed", func(t *testing.T) {
		order := newTestOrder(t, 100)
		a := assignment()
		a.CoveredBy = ChangeCoveredByNone
		require.Error(t, order.AssignChange(a))
	})

	t.Run("company detail must be complete", func(t *testing.T) {
		order := newTestOrder(t, 100)
		a := assignment()
		a.Detail = EmailReceiverDetail{}
		err := order.AssignChange(a)
		require.Error(t, err)
		// failed validation mutates nothing
		assert.Equal(t, ChangeCoveredByNone, order.ChangeCoveredBy)
	})

	t.Run("agency method must be cash", func(t *testing.T) {
		order := newTestOrder(t, 100)
		a := assignment()
		a.CoveredBy = ChangeCoveredByAgency
		a.MethodAgency = PaymentMethodZelle
		require.Error(t, order.AssignChange(a))
	})

	t.Run("partial split must sum to the change", func(t *testing.T) {
		order := newTestOrder(t, 100)
		a := assignment()
		a.CoveredBy = ChangeCoveredByPartial
		a.MethodAgency = PaymentMethodCashUSD
		a.AmountCompany = decimal.NewFromInt(12)
		a.AmountAgency = decimal.NewFromInt(5)
		require.Error(t, order.AssignChange(a))

		a.AmountAgency = decimal.NewFromInt(8)
		require.NoError(t, order.AssignChange(a))
	})

	t.Run("resubmitting identical data is idempotent", func(t *testing.T) {
		order := newTestOrder(t, 100)
		require.NoError(t, order.AssignChange(assignment()))
		before := *order
		require.NoError(t, order.AssignChange(assignment()))
		assert.Equal(t, before.ChangeCoveredBy, order.ChangeCoveredBy)
		assert.Equal(t, before.ChangePaymentDetails, order.ChangePaymentDetails)
		assert.True(t, before.ChangeRate.Equal(order.ChangeRate))
	})

	t.Run("persisted rate is never overwritten", func(t *testing.T) {
		order := newTestOrder(t, 100)
		require.NoError(t, order.AssignChange(assignment()))
		require.Equal(t, "40", order.ChangeRate.String())

		a := assignment()
		a.Rate = decimal.NewFromInt(45)
		require.NoError(t, order.AssignChange(a))
		assert.Equal(t, "40", order.ChangeRate.String())
	})
}

func TestOrderChangeReceipt(t *testing.T) {
	savedOrder := func(t *testing.T) *Order {
		order := newTestOrder(t, 100)
		require.NoError(t, order.AssignChange(ChangeAssignment{
			CashReceived:  decimal.NewFromInt(120),
			ChangeAmount:  decimal.NewFromInt(20),
			CoveredBy:     ChangeCoveredByCompany,
			MethodCompany: PaymentMethodCashUSD,
		}))
		order.ClearDomainEvents()
		return order
	}

	t.Run("attaches and replaces", func(t *testing.T) {
		order := savedOrder(t)
		require.NoError(t, order.AttachChangeReceipt("receipts/a.jpg"))
		assert.Equal(t, "receipts/a.jpg", order.ChangeReceiptKey)

		require.NoError(t, order.AttachChangeReceipt("receipts/b.jpg"))
		assert.Equal(t, "receipts/b.jpg", order.ChangeReceiptKey)

		events := order.GetDomainEvents()
		require.Len(t, events, 2)
		second, ok := events[1].(*ChangeReceiptAttachedEvent)
		require.True(t, ok)
		assert.True(t, second.Replaced)
	})

	t.Run("requires company involvement", func(t *testing.T) {
		order := newTestOrder(t, 100)
		require.NoError(t, order.AssignChange(ChangeAssignment{
			CashReceived: decimal.NewFromInt(120),
			ChangeAmount: decimal.NewFromInt(20),
			CoveredBy:    ChangeCoveredByAgency,
			MethodAgency: PaymentMethodCashUSD,
		}))
		require.Error(t, order.AttachChangeReceipt("receipts/a.jpg"))
	})
}

func TestOrderPaymentReceipts(t *testing.T) {
	order := newTestOrder(t, 100)

	receipt, err := order.AddPaymentReceipt("receipts/pago.jpg", "pago.jpg", "image/jpeg")
	require.NoError(t, err)
	require.Len(t, order.PaymentReceipts, 1)

	t.Run("remove returns the detached receipt", func(t *testing.T) {
		removed, err := order.RemovePaymentReceipt(receipt.ID)
		require.NoError(t, err)
		assert.Equal(t, "receipts/pago.jpg", removed.FileKey)
		assert.Empty(t, order.PaymentReceipts)
	})

	t.Run("removing an unknown receipt fails", func(t *testing.T) {
		_, err := order.RemovePaymentReceipt(uuid.New())
		require.Error(t, err)
	})
}

func TestOrderParsedChangeDetail(t *testing.T) {
	order := newTestOrder(t, 100)
	require.NoError(t, order.AssignChange(ChangeAssignment{
		CashReceived:  decimal.NewFromInt(120),
		ChangeAmount:  decimal.NewFromInt(20),
		CoveredBy:     ChangeCoveredByCompany,
		MethodCompany: PaymentMethodZelle,
		Detail:        EmailReceiverDetail{Email: "cliente@example.com"},
	}))

	detail, err := order.ParsedChangeDetail()
	require.NoError(t, err)
	assert.Equal(t, EmailReceiverDetail{Email: "cliente@example.com"}, detail)
}
