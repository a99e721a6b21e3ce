package ordering

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/directory"
	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/ordena/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
)

// ChangeService persists the change assignment of an order. Saving the
// assignment is independent from saving the payment ledger.
type ChangeService struct {
	orderRepo        ordering.OrderRepository
	banks            directory.BankRepository
	idempotencyStore shared.IdempotencyStore
	idempotencyCfg   shared.IdempotencyConfig
}

// ChangeServiceOption customizes a ChangeService
type ChangeServiceOption func(*ChangeService)

// WithBankRoster makes bank references in settlement details resolve against
// the roster before anything is persisted
func WithBankRoster(banks directory.BankRepository) ChangeServiceOption {
	return func(s *ChangeService) {
		s.banks = banks
	}
}

// NewChangeService creates a new ChangeService
func NewChangeService(orderRepo ordering.OrderRepository, store shared.IdempotencyStore, cfg shared.IdempotencyConfig, opts ...ChangeServiceOption) *ChangeService {
	s := &ChangeService{
		orderRepo:        orderRepo,
		idempotencyStore: store,
		idempotencyCfg:   cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssignChangeRequest is the submitted change assignment. DetailJSON is the
// raw settlement detail, keyed by MethodCompany. CashReceived and ChangeAmount
// are what the client displayed when it submitted; both are rederived from the
// persisted ledger before anything is saved and enter only the idempotency
// key.
type AssignChangeRequest struct {
	CashReceived  decimal.Decimal
	ChangeAmount  decimal.Decimal
	CoveredBy     string
	AmountCompany decimal.Decimal
	AmountAgency  decimal.Decimal
	MethodCompany string
	MethodAgency  string
	Rate          decimal.Decimal
	DetailJSON    string
}

// AssignChange validates and persists who covers the change. Resubmitting the
// same payload for the same order is a no-op: the first accepted submission
// marks an idempotency key and replays return the already-persisted order.
func (s *ChangeService) AssignChange(ctx context.Context, orderID uuid.UUID, req AssignChangeRequest) (*ordering.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_change", "assign")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrCoveredBy, req.CoveredBy,
		telemetry.SpanAttrAmount, req.ChangeAmount.String(),
	)

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

	key := s.requestKey(orderID, req)
	if s.idempotencyCfg.Enabled && s.idempotencyStore != nil {
		processed, err := s.idempotencyStore.IsProcessed(ctx, key)
		if err == nil && processed {
			telemetry.SetAttribute(span, "idempotent_replay", true)
			return order, nil
		}
	}

	method := ordering.PaymentMethod(req.MethodCompany)
	var detail ordering.SettlementDetail
	if req.MethodCompany != "" {
		detail, err = ordering.ParseSettlementDetail(method, []byte(req.DetailJSON))
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := s.verifyBankReference(ctx, detail); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	// rebuild the working state from what is actually persisted, then replay
	// the submitted edits through the reducer: the derived figures come from
	// the ledger, never from the client
	state := ordering.NewAllocatorState(order.CurrentTotalPrice, order.SerializedPayments(), true)
	state = ordering.Reduce(state, ordering.OrderChanged{
		Total:           order.CurrentTotalPrice,
		PersistedChange: order.ChangeAmount,
		PersistedRate:   order.ChangeRate,
	})
	state = ordering.Reduce(state, ordering.RateFetched{Rate: req.Rate})
	state = ordering.Reduce(state, ordering.ResponsibilityChosen{CoveredBy: ordering.ChangeCoveredBy(req.CoveredBy)})
	state = ordering.Reduce(state, ordering.FieldEdited{Field: ordering.FieldAmountCompany, Amount: req.AmountCompany})
	state = ordering.Reduce(state, ordering.FieldEdited{Field: ordering.FieldAmountAgency, Amount: req.AmountAgency})
	state = ordering.Reduce(state, ordering.FieldEdited{Field: ordering.FieldMethodCompany, Method: method})
	state = ordering.Reduce(state, ordering.FieldEdited{Field: ordering.FieldMethodAgency, Method: ordering.PaymentMethod(req.MethodAgency)})
	state = ordering.Reduce(state, ordering.FieldEdited{Field: ordering.FieldDetail, Detail: detail})

	cashReceived := state.CashReceived
	if !cashReceived.IsPositive() {
		// an emptied ledger keeps the previously persisted figure
		cashReceived = order.CashReceived
	}

	assignment := ordering.ChangeAssignment{
		CashReceived:  cashReceived,
		ChangeAmount:  state.ChangeAmount,
		CoveredBy:     state.CoveredBy,
		AmountCompany: state.AmountCompany,
		AmountAgency:  state.AmountAgency,
		MethodCompany: state.MethodCompany,
		MethodAgency:  state.MethodAgency,
		Rate:          state.Rate,
		Detail:        state.Detail,
	}
	if err := order.AssignChange(assignment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if s.idempotencyCfg.Enabled && s.idempotencyStore != nil {
		// best effort; a failed mark only means a replay does redundant work
		_, _ = s.idempotencyStore.MarkProcessed(ctx, key, s.idempotencyCfg.TTL)
	}

	return order, nil
}

// verifyBankReference resolves the detail's bank against the roster. Details
// without a bank, or a service without a roster, pass through.
func (s *ChangeService) verifyBankReference(ctx context.Context, detail ordering.SettlementDetail) error {
	if s.banks == nil {
		return nil
	}

	var bankID uuid.UUID
	switch d := detail.(type) {
	case ordering.MobilePaymentDetail:
		bankID = d.BankID
	case ordering.BankTransferDetail:
		bankID = d.BankID
	}
	if bankID == uuid.Nil {
		return nil
	}

	if _, err := s.banks.FindByID(ctx, bankID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_DETAIL", "Referenced bank is not in the roster")
		}
		return fmt.Errorf("failed to verify bank reference: %w", err)
	}
	return nil
}

// requestKey derives a stable idempotency key from the order and the full
// payload, so that a changed payload is a new request
func (s *ChangeService) requestKey(orderID uuid.UUID, req AssignChangeRequest) string {
	payload := strings.Join([]string{
		orderID.String(),
		req.CashReceived.String(),
		req.ChangeAmount.String(),
		req.CoveredBy,
		req.AmountCompany.String(),
		req.AmountAgency.String(),
		req.MethodCompany,
		req.MethodAgency,
		req.Rate.String(),
		req.DetailJSON,
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return "order-change:" + hex.EncodeToString(sum[:])
}
