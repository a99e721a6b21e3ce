package dto

import (
	"encoding/json"
	"time"

	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
)

// PaymentResponse is one ledger row in API responses. Field and method wire
// strings are a compatibility surface.
type PaymentResponse struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate,omitempty"`
}

// PaymentReceiptResponse is a stored proof-of-payment attachment
type PaymentReceiptResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// OrderResponse is the engine's view of an order
type OrderResponse struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerName      string          `json:"customer_name"`
	Status            string          `json:"status"`
	CurrentTotalPrice decimal.Decimal `json:"current_total_price"`

	Payments []PaymentResponse `json:"payments"`

	CashReceived decimal.Decimal `json:"cash_received"`
	ChangeAmount decimal.Decimal `json:"change_amount"`

	ChangeCoveredBy      string          `json:"change_covered_by"`
	ChangeAmountCompany  decimal.Decimal `json:"change_amount_company"`
	ChangeAmountAgency   decimal.Decimal `json:"change_amount_agency"`
	ChangeMethodCompany  string          `json:"change_method_company,omitempty"`
	ChangeMethodAgency   string          `json:"change_method_agency,omitempty"`
	ChangeRate           decimal.Decimal `json:"change_rate"`
	ChangePaymentDetails json.RawMessage `json:"change_payment_details,omitempty"`
	HasChangeReceipt     bool            `json:"has_change_receipt"`

	PaymentReceipts []PaymentReceiptResponse `json:"payment_receipts"`
}

// ToOrderResponse maps an order aggregate to its API representation
func ToOrderResponse(order *ordering.Order) OrderResponse {
	payments := make([]PaymentResponse, 0, len(order.Payments))
	for _, p := range order.Payments {
		payments = append(payments, PaymentResponse{
			Method: string(p.Method),
			Amount: p.Amount,
			Rate:   p.Rate,
		})
	}

	receipts := make([]PaymentReceiptResponse, 0, len(order.PaymentReceipts))
	for _, r := range order.PaymentReceipts {
		receipts = append(receipts, PaymentReceiptResponse{
			ID:          r.ID.String(),
			FileName:    r.FileName,
			ContentType: r.ContentType,
			UploadedAt:  r.UploadedAt,
		})
	}

	var details json.RawMessage
	if order.ChangePaymentDetails != "" {
		details = json.RawMessage(order.ChangePaymentDetails)
	}

	return OrderResponse{
		ID:                   order.ID.String(),
		OrderNumber:          order.OrderNumber,
		CustomerName:         order.CustomerName,
		Status:               string(order.Status),
		CurrentTotalPrice:    order.CurrentTotalPrice,
		Payments:             payments,
		CashReceived:         order.CashReceived,
		ChangeAmount:         order.ChangeAmount,
		ChangeCoveredBy:      string(order.ChangeCoveredBy),
		ChangeAmountCompany:  order.ChangeAmountCompany,
		ChangeAmountAgency:   order.ChangeAmountAgency,
		ChangeMethodCompany:  string(order.ChangeMethodCompany),
		ChangeMethodAgency:   string(order.ChangeMethodAgency),
		ChangeRate:           order.ChangeRate,
		ChangePaymentDetails: details,
		HasChangeReceipt:     order.ChangeReceiptKey != "",
		PaymentReceipts:      receipts,
	}
}

// RateValue is one reference quote in the /currency payload
type RateValue struct {
	Value decimal.Decimal `json:"value"`
}

// CurrencyData carries the BCV reference quotes; a missing key means the rate
// is unavailable
type CurrencyData struct {
	BCVUSD *RateValue `json:"bcv_usd,omitempty"`
	BCVEUR *RateValue `json:"bcv_eur,omitempty"`
}

// CurrencyResponse is the exact /currency envelope consumers parse
type CurrencyResponse struct {
	Data CurrencyData `json:"data"`
}

// BankResponse is one roster entry for settlement pickers
type BankResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Active bool   `json:"active"`
}
