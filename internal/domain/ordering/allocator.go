package ordering

import (
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AllocatorPhase is the derived lifecycle position of a change assignment
type AllocatorPhase string

const (
	// PhaseNone: no change is owed
	PhaseNone AllocatorPhase = "NONE"
	// PhasePending: change is owed but nobody has been made responsible
	PhasePending AllocatorPhase = "PENDING"
	// PhaseCompany, PhaseAgency, PhasePartial: a responsibility branch is
	// chosen but its sub-conditions do not all hold yet
	PhaseCompany AllocatorPhase = "COMPANY"
	PhaseAgency  AllocatorPhase = "AGENCY"
	PhasePartial AllocatorPhase = "PARTIAL"
	// PhaseReady: every condition for persisting holds
	PhaseReady AllocatorPhase = "READY"
	// PhaseSaved: the assignment has been persisted
	PhaseSaved AllocatorPhase = "SAVED"
	// PhaseReceiptAttached: a disbursement receipt is on file
	PhaseReceiptAttached AllocatorPhase = "RECEIPT_ATTACHED"
)

// AllocatorEvent is one input to the change-allocation reducer. Every
// recomputation flows through Reduce; there are no reactive side channels.
type AllocatorEvent interface{ isAllocatorEvent() }

// PaymentsChanged carries the current serialized ledger rows
type PaymentsChanged struct {
	Payments []SerializedPayment
}

// OrderChanged carries refreshed order figures
type OrderChanged struct {
	Total           decimal.Decimal
	PersistedChange decimal.Decimal
	PersistedRate   decimal.Decimal
}

// RateFetched carries a freshly fetched reference rate
type RateFetched struct {
	Rate decimal.Decimal
}

// AllocatorField names an editable field of the change assignment
type AllocatorField string

const (
	FieldAmountCompany AllocatorField = "change_amount_company"
	FieldAmountAgency  AllocatorField = "change_amount_agency"
	FieldMethodCompany AllocatorField = "change_method_company"
	FieldMethodAgency  AllocatorField = "change_method_agency"
	FieldDetail        AllocatorField = "change_payment_details"
)

// FieldEdited mutates one editable field. Amount holds the parsed value for
// amount fields, Method for method fields, Detail for the settlement detail.
type FieldEdited struct {
	Field  AllocatorField
	Amount decimal.Decimal
	Method PaymentMethod
	Detail SettlementDetail
}

// ResponsibilityChosen selects who covers the change
type ResponsibilityChosen struct {
	CoveredBy ChangeCoveredBy
}

// SaveRequested marks the assignment persisted; the reducer only accepts it
// when the state is ready
type SaveRequested struct{}

// ReceiptAttached records that a disbursement receipt was stored
type ReceiptAttached struct{}

func (PaymentsChanged) isAllocatorEvent()      {}
func (OrderChanged) isAllocatorEvent()         {}
func (RateFetched) isAllocatorEvent()          {}
func (FieldEdited) isAllocatorEvent()          {}
func (ResponsibilityChosen) isAllocatorEvent() {}
func (SaveRequested) isAllocatorEvent()        {}
func (ReceiptAttached) isAllocatorEvent()      {}

// AllocatorState is the full working state of a change assignment while an
// order is being edited. It is a value: Reduce returns a new state and never
// mutates its input, so replaying the same events always lands on the same
// state.
type AllocatorState struct {
	OrderTotal      decimal.Decimal
	Payments        []SerializedPayment
	PersistedChange decimal.Decimal
	CanEdit         bool

	// Rate is the effective reference rate. A non-zero persisted rate is a
	// historical lock: RateFetched never overwrites it.
	Rate       decimal.Decimal
	RateLocked bool

	CashReceived decimal.Decimal
	ChangeAmount decimal.Decimal

	CoveredBy     ChangeCoveredBy
	AmountCompany decimal.Decimal
	AmountAgency  decimal.Decimal
	MethodCompany PaymentMethod
	MethodAgency  PaymentMethod
	Detail        SettlementDetail

	Saved           bool
	ReceiptAttached bool
}

// NewAllocatorState seeds working state from persisted order fields
func NewAllocatorState(total decimal.Decimal, payments []SerializedPayment, canEdit bool) AllocatorState {
	s := AllocatorState{
		OrderTotal: total,
		Payments:   payments,
		CanEdit:    canEdit,
		CoveredBy:  ChangeCoveredByNone,
	}
	return s.recompute()
}

// Reduce applies one event and returns the next state
func Reduce(s AllocatorState, event AllocatorEvent) AllocatorState {
	switch e := event.(type) {
	case PaymentsChanged:
		s.Payments = e.Payments
		return s.recompute()
	case OrderChanged:
		s.OrderTotal = e.Total
		s.PersistedChange = e.PersistedChange
		if !e.PersistedRate.IsZero() {
			s.Rate = e.PersistedRate
			s.RateLocked = true
		}
		return s.recompute()
	case RateFetched:
		if s.RateLocked {
			return s
		}
		if !e.Rate.IsZero() {
			s.Rate = e.Rate
		}
		return s
	case FieldEdited:
		switch e.Field {
		case FieldAmountCompany:
			s.AmountCompany = e.Amount
		case FieldAmountAgency:
			s.AmountAgency = e.Amount
		case FieldMethodCompany:
			s.MethodCompany = e.Method
			// the detail union is keyed by the company method; a stale
			// variant from the previous method must not linger
			if s.Detail != nil {
				if kind, err := DetailKindForMethod(e.Method); err != nil || s.Detail.Kind() != kind {
					s.Detail = nil
				}
			}
		case FieldMethodAgency:
			s.MethodAgency = e.Method
		case FieldDetail:
			s.Detail = e.Detail
		}
		s.Saved = false
		return s
	case ResponsibilityChosen:
		// switching branches retains prior amounts and methods so the
		// operator can flip back and forth without retyping
		s.CoveredBy = e.CoveredBy
		s.Saved = false
		return s
	case SaveRequested:
		if s.Phase() != PhaseReady {
			return s
		}
		s.Saved = true
		return s
	case ReceiptAttached:
		if !s.CoveredBy.InvolvesCompany() || !s.ChangeAmount.IsPositive() {
			return s
		}
		s.ReceiptAttached = true
		return s
	}
	return s
}

// recompute rederives cash_received and change_amount from the current
// payments and total. When the ledger no longer overpays, the previously
// derived cash_received is kept unless a positive total was actually received.
func (s AllocatorState) recompute() AllocatorState {
	received := TotalReceived(s.Payments)
	if received.IsPositive() {
		s.CashReceived = received
	}
	s.ChangeAmount = ChangeAmount(received, s.OrderTotal)
	return s
}

// Visible reports whether the change surface is active for this viewer
func (s AllocatorState) Visible() bool {
	return ChangeVisible(s.ChangeAmount, s.PersistedChange, s.CanEdit)
}

// SumCorrect checks the branch-specific amount condition
func (s AllocatorState) SumCorrect() bool {
	switch s.CoveredBy {
	case ChangeCoveredByCompany, ChangeCoveredByAgency:
		return true
	case ChangeCoveredByPartial:
		return PartialSumCorrect(s.AmountCompany, s.AmountAgency, s.ChangeAmount)
	}
	return false
}

// MethodSelected checks the branch-specific method condition: the company
// needs a method with a complete settlement detail, the agency only a method,
// and a partial split needs both.
func (s AllocatorState) MethodSelected() bool {
	switch s.CoveredBy {
	case ChangeCoveredByCompany:
		return s.MethodCompany.IsValid() && DetailCompleteForMethod(s.MethodCompany, s.Detail)
	case ChangeCoveredByAgency:
		return s.MethodAgency.IsValidForAgency()
	case ChangeCoveredByPartial:
		return s.MethodCompany.IsValid() &&
			s.MethodAgency.IsValidForAgency() &&
			DetailCompleteForMethod(s.MethodCompany, s.Detail)
	}
	return false
}

// SaveBlocker returns the specific error that disables the save action, or
// nil when the state can be persisted. It is the single authority on whether
// an assignment may be saved; CanSave and the Order aggregate both defer to
// it.
func (s AllocatorState) SaveBlocker() error {
	if !s.ChangeAmount.IsPositive() && !s.CashReceived.IsPositive() {
		return shared.ErrNothingToSave
	}
	if !s.ChangeAmount.IsPositive() {
		// only the derived cash_received figure changed; nothing else to
		// validate
		return nil
	}
	if s.CoveredBy == ChangeCoveredByNone || !s.CoveredBy.IsValid() {
		return shared.NewDomainError("CHANGE_RESPONSIBILITY_REQUIRED", "Someone must be made responsible for the change")
	}
	if s.CoveredBy.InvolvesCompany() {
		if !s.MethodCompany.IsValid() {
			return shared.NewDomainError("INVALID_PAYMENT_METHOD", "A company change method is required")
		}
		if !DetailCompleteForMethod(s.MethodCompany, s.Detail) {
			return shared.NewDomainError("INCOMPLETE_DETAIL", "Settlement details for the company change method are incomplete")
		}
	}
	if s.CoveredBy.InvolvesAgency() && !s.MethodAgency.IsValidForAgency() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "The agency can only hand over cash")
	}
	if !s.SumCorrect() {
		return shared.NewDomainError("PARTIAL_SUM_MISMATCH", "Company and agency portions must add up to the change amount")
	}
	return nil
}

// CanSave reports whether the save action is enabled
func (s AllocatorState) CanSave() bool {
	return s.SaveBlocker() == nil
}

// Phase derives the lifecycle position from the current state
func (s AllocatorState) Phase() AllocatorPhase {
	if s.ReceiptAttached {
		return PhaseReceiptAttached
	}
	if s.Saved {
		return PhaseSaved
	}
	if !s.ChangeAmount.IsPositive() {
		return PhaseNone
	}
	if s.CoveredBy == ChangeCoveredByNone || !s.CoveredBy.IsValid() {
		return PhasePending
	}
	if s.SumCorrect() && s.MethodSelected() {
		return PhaseReady
	}
	switch s.CoveredBy {
	case ChangeCoveredByCompany:
		return PhaseCompany
	case ChangeCoveredByAgency:
		return PhaseAgency
	default:
		return PhasePartial
	}
}
