package ordering

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) PutObject(ctx context.Context, storageKey, contentType string, body io.Reader, size int64) error {
	args := m.Called(ctx, storageKey, contentType, body, size)
	return args.Error(0)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func orderWithChange(t *testing.T) *ordering.Order {
	t.Helper()
	order := testOrder(t, 100)
	require.NoError(t, order.AssignChange(ordering.ChangeAssignment{
		CashReceived:  decimal.NewFromInt(120),
		ChangeAmount:  decimal.NewFromInt(20),
		CoveredBy:     ordering.ChangeCoveredByCompany,
		MethodCompany: ordering.PaymentMethodCashUSD,
	}))
	order.ClearDomainEvents()
	return order
}

func jpegUpload() ReceiptUpload {
	return ReceiptUpload{
		FileName:    "vuelto.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		Body:        strings.NewReader("fake image bytes"),
	}
}

func TestReceiptServiceAttachChangeReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and persists the receipt", func(t *testing.T) {
		order := orderWithChange(t)
		repo := new(MockOrderRepository)
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		repo.On("Save", mock.Anything, order).Return(nil)
		storage := new(MockObjectStorage)
		storage.On("PutObject", mock.Anything, mock.Anything, "image/jpeg", mock.Anything, int64(1024)).Return(nil)

		svc := NewReceiptService(repo, storage)
		saved, err := svc.AttachChangeReceipt(ctx, order.ID, jpegUpload())
		require.NoError(t, err)

		assert.NotEmpty(t, saved.ChangeReceiptKey)
		assert.Contains(t, saved.ChangeReceiptKey, "change-receipts/")
		assert.True(t, strings.HasSuffix(saved.ChangeReceiptKey, ".jpg"))
		storage.AssertExpectations(t)
	})

	t.Run("re-upload deletes the superseded object", func(t *testing.T) {
		order := orderWithChange(t)
		order.ChangeReceiptKey = "orders/old-key.jpg"
		repo := new(MockOrderRepository)
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		repo.On("Save", mock.Anything, order).Return(nil)
		storage := new(MockObjectStorage)
		storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		storage.On("DeleteObject", mock.Anything, "orders/old-key.jpg").Return(nil)

		svc := NewReceiptService(repo, storage)
		saved, err := svc.AttachChangeReceipt(ctx, order.ID, jpegUpload())
		require.NoError(t, err)
		assert.NotEqual(t, "orders/old-key.jpg", saved.ChangeReceiptKey)
		storage.AssertExpectations(t)
	})

	t.Run("rejects unsupported content types", func(t *testing.T) {
		repo := new(MockOrderRepository)
		storage := new(MockObjectStorage)
		svc := NewReceiptService(repo, storage)

		upload := jpegUpload()
		upload.ContentType = "application/x-msdownload"
		_, err := svc.AttachChangeReceipt(ctx, uuid.New(), upload)
		require.Error(t, err)
		storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("agency-covered order refuses a receipt and cleans up", func(t *testing.T) {
		order := testOrder(t, 100)
		require.NoError(t, order.AssignChange(ordering.ChangeAssignment{
			CashReceived: decimal.NewFromInt(120),
			ChangeAmount: decimal.NewFromInt(20),
			CoveredBy:    ordering.ChangeCoveredByAgency,
			MethodAgency: ordering.PaymentMethodCashUSD,
		}))
		repo := new(MockOrderRepository)
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		storage := new(MockObjectStorage)
		storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		storage.On("DeleteObject", mock.Anything, mock.Anything).Return(nil)

		svc := NewReceiptService(repo, storage)
		_, err := svc.AttachChangeReceipt(ctx, order.ID, jpegUpload())
		require.Error(t, err)
		storage.AssertCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})
}

func TestReceiptServicePaymentReceipts(t *testing.T) {
	ctx := context.Background()

	t.Run("add then remove", func(t *testing.T) {
		order := testOrder(t, 100)
		repo := new(MockOrderRepository)
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		repo.On("Save", mock.Anything, order).Return(nil)
		storage := new(MockObjectStorage)
		storage.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		svc := NewReceiptService(repo, storage)
		receipt, err := svc.AddPaymentReceipt(ctx, order.ID, jpegUpload())
		require.NoError(t, err)
		require.Len(t, order.PaymentReceipts, 1)

		storage.On("DeleteObject", mock.Anything, receipt.FileKey).Return(nil)
		require.NoError(t, svc.RemovePaymentReceipt(ctx, order.ID, receipt.ID))
		assert.Empty(t, order.PaymentReceipts)
		storage.AssertExpectations(t)
	})

	t.Run("removing an unknown receipt fails", func(t *testing.T) {
		order := testOrder(t, 100)
		repo := new(MockOrderRepository)
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		storage := new(MockObjectStorage)

		svc := NewReceiptService(repo, storage)
		err := svc.RemovePaymentReceipt(ctx, order.ID, uuid.New())
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
