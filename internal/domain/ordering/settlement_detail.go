package ordering

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/shared"
)

// MobileCarrierPrefixes are the phone prefixes accepted for pago móvil
var MobileCarrierPrefixes = []string{"0412", "0414", "0416", "0422", "0424", "0426"}

// IsValidCarrierPrefix reports whether the prefix belongs to a known carrier
func IsValidCarrierPrefix(prefix string) bool {
	for _, p := range MobileCarrierPrefixes {
		if p == prefix {
			return true
		}
	}
	return false
}

// SettlementDetailKind discriminates the settlement detail union
type SettlementDetailKind string

const (
	SettlementDetailMobilePayment SettlementDetailKind = "mobile_payment"
	SettlementDetailBankTransfer  SettlementDetailKind = "bank_transfer"
	SettlementDetailEmailReceiver SettlementDetailKind = "email_receiver"
	SettlementDetailCashNote      SettlementDetailKind = "cash_note"
)

// SettlementDetail carries the method-specific identifiers needed to actually
// transmit change to the customer. It is a tagged union keyed by the change
// method; each variant holds exactly the fields its method requires.
type SettlementDetail interface {
	Kind() SettlementDetailKind
	// Complete reports whether every required field for the method is filled
	Complete() bool
	// ClipboardText renders the detail for the operator to copy. Pure
	// formatting; it has no effect on validation.
	ClipboardText(bankName string) string
}

// DetailKindForMethod maps a change method to its settlement detail variant
func DetailKindForMethod(method PaymentMethod) (SettlementDetailKind, error) {
	switch method {
	case PaymentMethodMobilePayment:
		return SettlementDetailMobilePayment, nil
	case PaymentMethodBankTransfer:
		return SettlementDetailBankTransfer, nil
	case PaymentMethodZelle, PaymentMethodBinance, PaymentMethodPayPal, PaymentMethodZinli:
		return SettlementDetailEmailReceiver, nil
	case PaymentMethodCashUSD, PaymentMethodCashVES, PaymentMethodCashEUR:
		return SettlementDetailCashNote, nil
	}
	return "", shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
}

// MobilePaymentDetail identifies a pago móvil receiver
type MobilePaymentDetail struct {
	Cedula      string    `json:"cedula"`
	BankID      uuid.UUID `json:"bank_id"`
	PhonePrefix string    `json:"phone_prefix"`
	PhoneNumber string    `json:"phone_number"`
}

func (MobilePaymentDetail) Kind() SettlementDetailKind { return SettlementDetailMobilePayment }

// Complete requires cédula, bank and phone number; the prefix is carried for
// display but the legacy records did not always store it.
func (d MobilePaymentDetail) Complete() bool {
	return d.Cedula != "" && d.BankID != uuid.Nil && d.PhoneNumber != ""
}

func (d MobilePaymentDetail) ClipboardText(bankName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cédula: %s\n", d.Cedula)
	fmt.Fprintf(&b, "Banco: %s\n", bankName)
	fmt.Fprintf(&b, "Teléfono: %s-%s", d.PhonePrefix, d.PhoneNumber)
	return b.String()
}

// BankTransferDetail identifies a bolívar bank-transfer receiver
type BankTransferDetail struct {
	AccountNumber string    `json:"account_number"`
	Cedula        string    `json:"cedula"`
	BankID        uuid.UUID `json:"bank_id"`
}

func (BankTransferDetail) Kind() SettlementDetailKind { return SettlementDetailBankTransfer }

func (d BankTransferDetail) Complete() bool {
	return d.AccountNumber != "" && d.Cedula != "" && d.BankID != uuid.Nil
}

func (d BankTransferDetail) ClipboardText(bankName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cuenta: %s\n", d.AccountNumber)
	fmt.Fprintf(&b, "Cédula: %s\n", d.Cedula)
	fmt.Fprintf(&b, "Banco: %s", bankName)
	return b.String()
}

// EmailReceiverDetail identifies a digital-wallet receiver (Zelle, Binance,
// PayPal, Zinli)
type EmailReceiverDetail struct {
	Email string `json:"email"`
}

func (EmailReceiverDetail) Kind() SettlementDetailKind { return SettlementDetailEmailReceiver }

func (d EmailReceiverDetail) Complete() bool {
	return d.Email != ""
}

func (d EmailReceiverDetail) ClipboardText(string) string {
	return fmt.Sprintf("Correo: %s", d.Email)
}

// CashNoteDetail is the empty detail for cash methods; cash needs no
// identifying information and is always satisfied
type CashNoteDetail struct{}

func (CashNoteDetail) Kind() SettlementDetailKind { return SettlementDetailCashNote }

func (CashNoteDetail) Complete() bool { return true }

func (CashNoteDetail) ClipboardText(string) string { return "Efectivo" }

// EmptyDetailForMethod returns the zero-value detail variant for a method
func EmptyDetailForMethod(method PaymentMethod) (SettlementDetail, error) {
	kind, err := DetailKindForMethod(method)
	if err != nil {
		return nil, err
	}
	switch kind {
	case SettlementDetailMobilePayment:
		return MobilePaymentDetail{}, nil
	case SettlementDetailBankTransfer:
		return BankTransferDetail{}, nil
	case SettlementDetailEmailReceiver:
		return EmailReceiverDetail{}, nil
	case SettlementDetailCashNote:
		return CashNoteDetail{}, nil
	}
	return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown detail kind %q", kind))
}

// ParseSettlementDetail decodes the persisted JSON form of a detail for the
// given change method. An empty raw value yields the zero-value variant so a
// half-filled form can round-trip.
func ParseSettlementDetail(method PaymentMethod, raw []byte) (SettlementDetail, error) {
	if len(raw) == 0 {
		return EmptyDetailForMethod(method)
	}

	kind, err := DetailKindForMethod(method)
	if err != nil {
		return nil, err
	}

	switch kind {
	case SettlementDetailMobilePayment:
		var d MobilePaymentDetail
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, shared.NewDomainError("INVALID_DETAIL", fmt.Sprintf("Malformed mobile payment detail: %v", err))
		}
		if d.PhonePrefix != "" && !IsValidCarrierPrefix(d.PhonePrefix) {
			return nil, shared.NewDomainError("INVALID_DETAIL", fmt.Sprintf("Unknown carrier prefix %q", d.PhonePrefix))
		}
		return d, nil
	case SettlementDetailBankTransfer:
		var d BankTransferDetail
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, shared.NewDomainError("INVALID_DETAIL", fmt.Sprintf("Malformed bank transfer detail: %v", err))
		}
		return d, nil
	case SettlementDetailEmailReceiver:
		var d EmailReceiverDetail
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, shared.NewDomainError("INVALID_DETAIL", fmt.Sprintf("Malformed email receiver detail: %v", err))
		}
		return d, nil
	case SettlementDetailCashNote:
		return CashNoteDetail{}, nil
	}
	return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown detail kind %q", kind))
}

// EncodeSettlementDetail serializes a detail to its persisted JSON form
func EncodeSettlementDetail(detail SettlementDetail) (string, error) {
	if detail == nil {
		return "", nil
	}
	data, err := json.Marshal(detail)
	if err != nil {
		return "", fmt.Errorf("encode settlement detail: %w", err)
	}
	return string(data), nil
}

// DetailCompleteForMethod reports whether the given detail satisfies the
// method's required-field predicate. Cash methods are always satisfied, even
// with a nil detail.
func DetailCompleteForMethod(method PaymentMethod, detail SettlementDetail) bool {
	kind, err := DetailKindForMethod(method)
	if err != nil {
		return false
	}
	if kind == SettlementDetailCashNote {
		return true
	}
	if detail == nil || detail.Kind() != kind {
		return false
	}
	return detail.Complete()
}
