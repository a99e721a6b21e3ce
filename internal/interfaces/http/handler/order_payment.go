package handler

import (
	"net/http"
	"regexp"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/ordena/backend/internal/application/ordering"
	"github.com/ordena/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// paymentFieldPattern matches the url-encoded ledger row fields the clients
// submit: payments[0][method], payments[0][amount], payments[0][rate]
var paymentFieldPattern = regexp.MustCompile(`^payments\[(\d+)\]\[(method|amount|rate)\]$`)

// OrderPaymentHandler handles the payment ledger endpoints
type OrderPaymentHandler struct {
	BaseHandler
	paymentService *orderingapp.PaymentService
}

// NewOrderPaymentHandler creates a new OrderPaymentHandler
func NewOrderPaymentHandler(paymentService *orderingapp.PaymentService) *OrderPaymentHandler {
	return &OrderPaymentHandler{paymentService: paymentService}
}

// SavePayments handles PUT /orders/:id/payment. The body is url-encoded with
// repeated payments[i][method], payments[i][amount] and optional
// payments[i][rate] fields; the field layout is a compatibility surface.
func (h *OrderPaymentHandler) SavePayments(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		h.BadRequest(c, "Malformed form body")
		return
	}

	rows, err := parsePaymentRows(c.Request.PostForm)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.paymentService.SavePayments(c.Request.Context(), orderID, rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ToOrderResponse(order))
}

// parsePaymentRows collects the indexed ledger fields into ordered row inputs.
// Indices only establish order; gaps are tolerated.
func parsePaymentRows(form map[string][]string) ([]orderingapp.PaymentRowInput, error) {
	byIndex := make(map[int]*orderingapp.PaymentRowInput)
	for key, values := range form {
		m := paymentFieldPattern.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		index, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		row, ok := byIndex[index]
		if !ok {
			row = &orderingapp.PaymentRowInput{}
			byIndex[index] = row
		}
		switch m[2] {
		case "method":
			row.Method = values[0]
		case "amount":
			row.Amount = values[0]
		case "rate":
			row.Rate = values[0]
		}
	}

	indices := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	rows := make([]orderingapp.PaymentRowInput, 0, len(indices))
	for _, i := range indices {
		rows = append(rows, *byIndex[i])
	}
	return rows, nil
}

// MixedPaymentPreviewRequest asks the solver for the two-row split
type MixedPaymentPreviewRequest struct {
	Method   string  `json:"method" binding:"required"`
	Amount   string  `json:"amount" binding:"required"`
	Discount string  `json:"discount"`
	Rate     *string `json:"rate"`
}

// PreviewMixedPayment handles POST /orders/:id/payment/mixed. It returns the
// replacement ledger rows without persisting anything; the client applies
// them and saves through the regular payment endpoint.
func (h *OrderPaymentHandler) PreviewMixedPayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req MixedPaymentPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Amount is not a number")
		return
	}
	discount := decimal.Zero
	if req.Discount != "" {
		if discount, err = decimal.NewFromString(req.Discount); err != nil {
			h.BadRequest(c, "Discount is not a number")
			return
		}
	}
	rate := decimal.Zero
	if req.Rate != nil && *req.Rate != "" {
		if rate, err = decimal.NewFromString(*req.Rate); err != nil {
			h.BadRequest(c, "Rate is not a number")
			return
		}
	}

	result, err := h.paymentService.PreviewMixedPayment(c.Request.Context(), orderID, orderingapp.MixedPaymentRequest{
		HardMethod:       req.Method,
		HardAmount:       amount,
		DiscountFraction: discount,
		Rate:             rate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	rows := make([]dto.PaymentResponse, 0, len(result.Rows))
	for _, row := range result.Rows {
		resp := dto.PaymentResponse{Method: string(row.Method)}
		if amount, err := decimal.NewFromString(row.Amount); err == nil {
			resp.Amount = amount
		}
		if row.Rate != "" {
			if rate, err := decimal.NewFromString(row.Rate); err == nil {
				resp.Rate = rate
			}
		}
		rows = append(rows, resp)
	}
	h.Success(c, gin.H{
		"equivalent":     result.Equivalent,
		"remainder_hard": result.RemainderHard,
		"remainder_ves":  result.RemainderVES,
		"rows":           rows,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderPaymentHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.paymentService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ToOrderResponse(order))
}
