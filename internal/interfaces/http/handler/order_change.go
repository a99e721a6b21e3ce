package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/ordena/backend/internal/application/ordering"
	"github.com/ordena/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// OrderChangeHandler handles the change assignment endpoint
type OrderChangeHandler struct {
	BaseHandler
	changeService *orderingapp.ChangeService
}

// NewOrderChangeHandler creates a new OrderChangeHandler
func NewOrderChangeHandler(changeService *orderingapp.ChangeService) *OrderChangeHandler {
	return &OrderChangeHandler{changeService: changeService}
}

// AssignChange handles POST /orders/:id/change. The multipart body carries
// _method=PUT (a legacy method override, accepted and ignored) plus the
// change_* fields; names are a compatibility surface.
func (h *OrderChangeHandler) AssignChange(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	cashReceived, err := formDecimal(c, "cash_received")
	if err != nil {
		h.BadRequest(c, "cash_received is not a number")
		return
	}
	changeAmount, err := formDecimal(c, "change_amount")
	if err != nil {
		h.BadRequest(c, "change_amount is not a number")
		return
	}
	amountCompany, err := formDecimal(c, "change_amount_company")
	if err != nil {
		h.BadRequest(c, "change_amount_company is not a number")
		return
	}
	amountAgency, err := formDecimal(c, "change_amount_agency")
	if err != nil {
		h.BadRequest(c, "change_amount_agency is not a number")
		return
	}
	rate, err := formDecimal(c, "change_rate")
	if err != nil {
		h.BadRequest(c, "change_rate is not a number")
		return
	}

	order, err := h.changeService.AssignChange(c.Request.Context(), orderID, orderingapp.AssignChangeRequest{
		CashReceived:  cashReceived,
		ChangeAmount:  changeAmount,
		CoveredBy:     c.PostForm("change_covered_by"),
		AmountCompany: amountCompany,
		AmountAgency:  amountAgency,
		MethodCompany: c.PostForm("change_method_company"),
		MethodAgency:  c.PostForm("change_method_agency"),
		Rate:          rate,
		DetailJSON:    c.PostForm("change_payment_details"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ToOrderResponse(order))
}

// formDecimal parses a form field as a decimal; an absent or empty field
// reads as zero
func formDecimal(c *gin.Context, field string) (decimal.Decimal, error) {
	value := c.PostForm(field)
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
