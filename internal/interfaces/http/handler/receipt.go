package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/ordena/backend/internal/application/ordering"
	"github.com/ordena/backend/internal/interfaces/http/dto"
)

// ReceiptHandler handles receipt upload and removal endpoints
type ReceiptHandler struct {
	BaseHandler
	receiptService *orderingapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *orderingapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// AttachChangeReceipt handles POST /orders/:id/change-receipt. The multipart
// body carries the file under the change_receipt field; re-uploading replaces
// the previous receipt.
func (h *ReceiptHandler) AttachChangeReceipt(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	fileHeader, err := c.FormFile("change_receipt")
	if err != nil {
		h.BadRequest(c, "A change_receipt file is required")
		return
	}

	upload, file, err := openUpload(fileHeader)
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	order, err := h.receiptService.AttachChangeReceipt(c.Request.Context(), orderID, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.ToOrderResponse(order))
}

// AddPaymentReceipt handles POST /orders/:id/payment-receipt with a
// payment_receipt file field
func (h *ReceiptHandler) AddPaymentReceipt(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	fileHeader, err := c.FormFile("payment_receipt")
	if err != nil {
		h.BadRequest(c, "A payment_receipt file is required")
		return
	}

	upload, file, err := openUpload(fileHeader)
	if err != nil {
		h.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	receipt, err := h.receiptService.AddPaymentReceipt(c.Request.Context(), orderID, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.PaymentReceiptResponse{
		ID:          receipt.ID.String(),
		FileName:    receipt.FileName,
		ContentType: receipt.ContentType,
		UploadedAt:  receipt.UploadedAt,
	})
}

// RemovePaymentReceipt handles DELETE /orders/:id/payment-receipt/:receiptId
func (h *ReceiptHandler) RemovePaymentReceipt(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	receiptID, err := uuid.Parse(c.Param("receiptId"))
	if err != nil {
		h.BadRequest(c, "Invalid receipt ID")
		return
	}

	if err := h.receiptService.RemovePaymentReceipt(c.Request.Context(), orderID, receiptID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"deleted": true})
}

// openUpload opens the multipart file and wraps it as a service upload
func openUpload(fileHeader *multipart.FileHeader) (orderingapp.ReceiptUpload, multipart.File, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return orderingapp.ReceiptUpload{}, nil, err
	}
	return orderingapp.ReceiptUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	}, file, nil
}
