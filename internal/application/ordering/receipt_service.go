package ordering

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/ordena/backend/internal/infrastructure/telemetry"
)

// allowedReceiptContentTypes limits receipt uploads to image formats and PDF
var allowedReceiptContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// maxReceiptSize caps receipt uploads at 10 MiB
const maxReceiptSize = 10 << 20

// ObjectStorageService defines the interface for object storage operations.
// Implemented by the infrastructure layer (S3-compatible backends).
type ObjectStorageService interface {
	// PutObject stores an object and returns nil on success
	PutObject(ctx context.Context, storageKey, contentType string, body io.Reader, size int64) error

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ReceiptService stores and detaches receipt files on orders
type ReceiptService struct {
	orderRepo ordering.OrderRepository
	storage   ObjectStorageService
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(orderRepo ordering.OrderRepository, storage ObjectStorageService) *ReceiptService {
	return &ReceiptService{orderRepo: orderRepo, storage: storage}
}

// ReceiptUpload is an incoming receipt file
type ReceiptUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (u ReceiptUpload) validate() error {
	if u.FileName == "" || u.Body == nil {
		return shared.NewDomainError("INVALID_INPUT", "A receipt file is required")
	}
	if !allowedReceiptContentTypes[u.ContentType] {
		return shared.NewDomainError("UNSUPPORTED_FILE_TYPE", fmt.Sprintf("Receipts cannot be of type %s", u.ContentType))
	}
	if u.Size > maxReceiptSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "Receipt files are limited to 10 MiB")
	}
	return nil
}

// AttachChangeReceipt stores the change disbursement receipt for an order.
// Re-uploading replaces the previous file; the superseded object is deleted
// after the new reference is persisted.
func (s *ReceiptService) AttachChangeReceipt(ctx context.Context, orderID uuid.UUID, upload ReceiptUpload) (*ordering.Order, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_receipt", "attach_change")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID.String())

	if err := upload.validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

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

	previous := order.ChangeReceiptKey
	key := receiptKey(orderID, "change", upload.FileName)

	if err := s.storage.PutObject(ctx, key, upload.ContentType, upload.Body, upload.Size); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	if err := order.AttachChangeReceipt(key); err != nil {
		_ = s.storage.DeleteObject(ctx, key)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		_ = s.storage.DeleteObject(ctx, key)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if previous != "" && previous != key {
		// superseded object; removal is best effort
		_ = s.storage.DeleteObject(ctx, previous)
	}

	return order, nil
}

// AddPaymentReceipt stores a proof-of-payment file on an order
func (s *ReceiptService) AddPaymentReceipt(ctx context.Context, orderID uuid.UUID, upload ReceiptUpload) (*ordering.PaymentReceipt, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_receipt", "add_payment")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, orderID.String())

	if err := upload.validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

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

	key := receiptKey(orderID, "payment", upload.FileName)
	if err := s.storage.PutObject(ctx, key, upload.ContentType, upload.Body, upload.Size); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	receipt, err := order.AddPaymentReceipt(key, upload.FileName, upload.ContentType)
	if err != nil {
		_ = s.storage.DeleteObject(ctx, key)
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		_ = s.storage.DeleteObject(ctx, key)
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	return receipt, nil
}

// RemovePaymentReceipt detaches a proof-of-payment file and deletes the stored
// object
func (s *ReceiptService) RemovePaymentReceipt(ctx context.Context, orderID, receiptID uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "order_receipt", "remove_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, orderID.String(),
		"receipt_id", receiptID.String(),
	)

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		err := shared.ErrNotFound
		telemetry.RecordError(span, err)
		return err
	}

	removed, err := order.RemovePaymentReceipt(receiptID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save order: %w", err)
	}

	// the database reference is gone; a dangling object is acceptable
	_ = s.storage.DeleteObject(ctx, removed.FileKey)
	return nil
}

// ReceiptDownloadURL returns a presigned URL for a stored receipt object
func (s *ReceiptService) ReceiptDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return s.storage.GenerateDownloadURL(ctx, storageKey, expiresIn)
}

// receiptKey builds a collision-free storage key; the original extension is
// kept so content type survives a bare object listing
func receiptKey(orderID uuid.UUID, kind, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("orders/%s/%s-receipts/%s%s", orderID, kind, uuid.New(), ext)
}
