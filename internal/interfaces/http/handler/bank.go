package handler

import (
	"github.com/gin-gonic/gin"
	directoryapp "github.com/ordena/backend/internal/application/directory"
	"github.com/ordena/backend/internal/interfaces/http/dto"
)

// BankHandler serves the bank roster for settlement pickers
type BankHandler struct {
	BaseHandler
	bankService *directoryapp.BankService
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(bankService *directoryapp.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// ListBanks handles GET /banks
func (h *BankHandler) ListBanks(c *gin.Context) {
	banks, err := h.bankService.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.BankResponse, 0, len(banks))
	for _, bank := range banks {
		out = append(out, dto.BankResponse{
			ID:     bank.ID.String(),
			Name:   bank.Name,
			Code:   bank.Code,
			Active: bank.Active,
		})
	}
	h.Success(c, out)
}
