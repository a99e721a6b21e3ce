package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailKindForMethod(t *testing.T) {
	tests := []struct {
		method PaymentMethod
		kind   SettlementDetailKind
	}{
		{PaymentMethodMobilePayment, SettlementDetailMobilePayment},
		{PaymentMethodBankTransfer, SettlementDetailBankTransfer},
		{PaymentMethodZelle, SettlementDetailEmailReceiver},
		{PaymentMethodBinance, SettlementDetailEmailReceiver},
		{PaymentMethodPayPal, SettlementDetailEmailReceiver},
		{PaymentMethodZinli, SettlementDetailEmailReceiver},
		{PaymentMethodCashUSD, SettlementDetailCashNote},
		{PaymentMethodCashVES, SettlementDetailCashNote},
		{PaymentMethodCashEUR, SettlementDetailCashNote},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			kind, err := DetailKindForMethod(tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind)
		})
	}

	t.Run("unknown method", func(t *testing.T) {
		_, err := DetailKindForMethod("barter")
		require.Error(t, err)
	})
}

func TestDetailCompleteForMethod(t *testing.T) {
	bankID := uuid.New()

	tests := []struct {
		name   string
		method PaymentMethod
		detail SettlementDetail
		want   bool
	}{
		{
			name:   "mobile payment complete",
			method: PaymentMethodMobilePayment,
			detail: MobilePaymentDetail{Cedula: "12345678", BankID: bankID, PhonePrefix: "0414", PhoneNumber: "1234567"},
			want:   true,
		},
		{
			name:   "mobile payment missing cedula",
			method: PaymentMethodMobilePayment,
			detail: MobilePaymentDetail{BankID: bankID, PhoneNumber: "1234567"},
			want:   false,
		},
		{
			name:   "mobile payment missing bank",
			method: PaymentMethodMobilePayment,
			detail: MobilePaymentDetail{Cedula: "12345678", PhoneNumber: "1234567"},
			want:   false,
		},
		{
			name:   "bank transfer complete",
			method: PaymentMethodBankTransfer,
			detail: BankTransferDetail{AccountNumber: "01020123456789012345", Cedula: "12345678", BankID: bankID},
			want:   true,
		},
		{
			name:   "bank transfer missing account",
			method: PaymentMethodBankTransfer,
			detail: BankTransferDetail{Cedula: "12345678", BankID: bankID},
			want:   false,
		},
		{
			name:   "email wallet complete",
			method: PaymentMethodZelle,
			detail: EmailReceiverDetail{Email: "cliente@example.com"},
			want:   true,
		},
		{
			name:   "email wallet empty",
			method: PaymentMethodBinance,
			detail: EmailReceiverDetail{},
			want:   false,
		},
		{
			name:   "cash needs nothing",
			method: PaymentMethodCashUSD,
			detail: nil,
			want:   true,
		},
		{
			name:   "nil detail for non-cash method",
			method: PaymentMethodZelle,
			detail: nil,
			want:   false,
		},
		{
			name:   "detail kind mismatch",
			method: PaymentMethodMobilePayment,
			detail: EmailReceiverDetail{Email: "cliente@example.com"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetailCompleteForMethod(tt.method, tt.detail))
		})
	}
}

func TestParseSettlementDetail(t *testing.T) {
	t.Run("round-trips a mobile payment detail", func(t *testing.T) {
		original := MobilePaymentDetail{
			Cedula:      "12345678",
			BankID:      uuid.New(),
			PhonePrefix: "0424",
			PhoneNumber: "7654321",
		}
		encoded, err := EncodeSettlementDetail(original)
		require.NoError(t, err)

		parsed, err := ParseSettlementDetail(PaymentMethodMobilePayment, []byte(encoded))
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})

	t.Run("empty raw yields the zero variant", func(t *testing.T) {
		parsed, err := ParseSettlementDetail(PaymentMethodBankTransfer, nil)
		require.NoError(t, err)
		assert.Equal(t, BankTransferDetail{}, parsed)
		assert.False(t, parsed.Complete())
	})

	t.Run("rejects an unknown carrier prefix", func(t *testing.T) {
		raw := `{"cedula":"12345678","phone_prefix":"0499","phone_number":"1234567"}`
		_, err := ParseSettlementDetail(PaymentMethodMobilePayment, []byte(raw))
		require.Error(t, err)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := ParseSettlementDetail(PaymentMethodZelle, []byte("{not json"))
		require.Error(t, err)
	})

	t.Run("cash ignores the raw payload", func(t *testing.T) {
		parsed, err := ParseSettlementDetail(PaymentMethodCashUSD, []byte(`{"anything":1}`))
		require.NoError(t, err)
		assert.Equal(t, CashNoteDetail{}, parsed)
	})
}

func TestClipboardText(t *testing.T) {
	t.Run("mobile payment", func(t *testing.T) {
		d := MobilePaymentDetail{Cedula: "12345678", PhonePrefix: "0412", PhoneNumber: "1234567"}
		text := d.ClipboardText("Banco de Venezuela")
		assert.Contains(t, text, "Cédula: 12345678")
		assert.Contains(t, text, "Banco: Banco de Venezuela")
		assert.Contains(t, text, "0412-1234567")
	})

	t.Run("email wallet", func(t *testing.T) {
		d := EmailReceiverDetail{Email: "cliente@example.com"}
		assert.Equal(t, "Correo: cliente@example.com", d.ClipboardText(""))
	})
}

func TestIsValidCarrierPrefix(t *testing.T) {
	for _, p := range MobileCarrierPrefixes {
		assert.True(t, IsValidCarrierPrefix(p))
	}
	assert.False(t, IsValidCarrierPrefix("0499"))
	assert.False(t, IsValidCarrierPrefix(""))
}
