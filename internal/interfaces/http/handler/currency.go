package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ratesapp "github.com/ordena/backend/internal/application/rates"
	"github.com/ordena/backend/internal/interfaces/http/dto"
)

// CurrencyHandler serves the BCV reference rates
type CurrencyHandler struct {
	BaseHandler
	rateService *ratesapp.RateService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(rateService *ratesapp.RateService) *CurrencyHandler {
	return &CurrencyHandler{rateService: rateService}
}

// GetRates handles GET /currency. The payload shape is a compatibility
// surface: an unavailable rate is an absent key, never a zero, and the
// endpoint never fails — consumers render "unavailable" instead.
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	rates := h.rateService.CurrentRates(c.Request.Context())

	var data dto.CurrencyData
	if !rates.USD.IsZero() {
		data.BCVUSD = &dto.RateValue{Value: rates.USD}
	}
	if !rates.EUR.IsZero() {
		data.BCVEUR = &dto.RateValue{Value: rates.EUR}
	}

	c.JSON(http.StatusOK, dto.CurrencyResponse{Data: data})
}
