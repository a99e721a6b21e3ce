package ordering

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/rates"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/ordena/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// RateResolver resolves the conversion rate for an order when the client does
// not submit one
type RateResolver interface {
	RateForOrder(ctx context.Context, order *ordering.Order, currency rates.Currency) (decimal.Decimal, bool)
}

// PaymentService persists the payment ledger of an order
type PaymentService struct {
	orderRepo ordering.OrderRepository
	rates     RateResolver
}

// PaymentServiceOption customizes a PaymentService
type PaymentServiceOption func(*PaymentService)

// WithRateResolver supplies the reference-rate fallback for the mixed solver
func WithRateResolver(r RateResolver) PaymentServiceOption {
	return func(s *PaymentService) {
		s.rates = r
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(orderRepo ordering.OrderRepository, opts ...PaymentServiceOption) *PaymentService {
	s := &PaymentService{orderRepo: orderRepo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PaymentRowInput is one ledger row as submitted by the client. Values arrive
// as text and are validated through the ledger before anything is persisted.
type PaymentRowInput struct {
	Method string
	Amount string
	Rate   string
}

// SavePayments replaces an order's ledger with the submitted rows. Every row
// must be complete; partial rows that the live editor tolerates are rejected
// here.
func (s *PaymentService) SavePayments(ctx context.Context, orderID uuid.UUID, rows []PaymentRowInput) (*ordering.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_payment", "save")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		"row_count", len(rows),
	)

	ledger := ordering.NewPaymentLedger(nil)
	for i, row := range rows {
		if i > 0 {
			ledger.AddRow()
		}
		if err := ledger.UpdateRow(i, ordering.LedgerFieldMethod, row.Method); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := ledger.UpdateRow(i, ordering.LedgerFieldAmount, row.Amount); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if row.Rate != "" {
			if err := ledger.UpdateRow(i, ordering.LedgerFieldRate, row.Rate); err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
		}
	}
	if len(rows) > 0 && !ledger.ValidateAll() {
		err := shared.NewDomainError("INVALID_INPUT", "Every payment row needs a method and a positive amount")
		telemetry.RecordError(span, err)
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err := shared.ErrNotFound
		telemetry.RecordError(span, err)
		return nil, err
	}

	serialized := ledger.Serialize()
	if len(rows) == 0 {
		serialized = nil
	}
	if err := order.RecordPayments(serialized); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	return order, nil
}

// MixedPaymentRequest asks for the two-row split covering an order with a
// discounted hard-currency payment plus a bolívar remainder
type MixedPaymentRequest struct {
	HardMethod       string
	HardAmount       decimal.Decimal
	DiscountFraction decimal.Decimal
	Rate             decimal.Decimal
}

// PreviewMixedPayment runs the solver against the order's current total and
// returns the replacement rows without persisting anything
func (s *PaymentService) PreviewMixedPayment(ctx context.Context, orderID uuid.UUID, req MixedPaymentRequest) (*ordering.MixedPaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_payment", "preview_mixed")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID.String())

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err := shared.ErrNotFound
		telemetry.RecordError(span, err)
		return nil, err
	}

	rate := req.Rate
	// a locked historical rate always wins over the one submitted; when
	// neither exists, fall back to the live reference quote
	if !order.ChangeRate.IsZero() {
		rate = order.ChangeRate
	} else if rate.IsZero() && s.rates != nil {
		if resolved, ok := s.rates.RateForOrder(ctx, order, hardCurrency(req.HardMethod)); ok {
			rate = resolved
		}
	}

	result, err := ordering.SolveMixedPayment(ordering.MixedPaymentInput{
		HardMethod:       ordering.PaymentMethod(req.HardMethod),
		HardAmount:       req.HardAmount,
		DiscountFraction: req.DiscountFraction,
		Rate:             rate,
		OrderTotal:       order.CurrentTotalPrice,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &result, nil
}

// hardCurrency maps a hard-currency cash method to its reference quote
func hardCurrency(method string) rates.Currency {
	if ordering.PaymentMethod(method) == ordering.PaymentMethodCashEUR {
		return rates.CurrencyEUR
	}
	return rates.CurrencyUSD
}

// GetOrder loads an order with its payments and receipts
func (s *PaymentService) GetOrder(ctx context.Context, orderID uuid.UUID) (*ordering.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, shared.ErrNotFound
	}
	return order, nil
}
