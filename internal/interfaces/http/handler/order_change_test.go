package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/ordena/backend/internal/application/ordering"
	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/shared"
	"github.com/ordena/backend/internal/infrastructure/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Test helpers

func setupChangeTestRouter(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) (*gin.Engine, *MockOrderRepository, *OrderChangeHandler) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockOrderRepository)
	service := orderingapp.NewChangeService(mockRepo, store, cfg)
	handler := NewOrderChangeHandler(service)

	router := gin.New()
	return router, mockRepo, handler
}

// createChangeDueOrder returns an order whose ledger yields change: 50
// received against a 45.00 total
func createChangeDueOrder(t *testing.T) *ordering.Order {
	t.Helper()
	order := createReconTestOrder(t, "45.00")
	require.NoError(t, order.RecordPayments([]ordering.SerializedPayment{
		{Method: ordering.PaymentMethodCashUSD, Amount: decimal.NewFromInt(50)},
	}))
	order.ClearDomainEvents()
	return order
}

// multipartForm builds a multipart body from field pairs and returns the body
// with its content type
func multipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// Tests

func TestOrderChangeHandler_AssignChange(t *testing.T) {
	t.Run("should assign company-covered change", func(t *testing.T) {
		router, mockRepo, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil)

		body, contentType := multipartForm(t, map[string]string{
			"_method":                "PUT",
			"cash_received":          "50",
			"change_amount":          "5",
			"change_covered_by":      "company",
			"change_method_company":  "Zelle-USD",
			"change_rate":            "36.5",
			"change_payment_details": `{"email":"cliente@example.com"}`,
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "company", data["change_covered_by"])
		assert.Equal(t, "Zelle-USD", data["change_method_company"])
		assert.Equal(t, "36.5", data["change_rate"])
		assert.Equal(t, "50", data["cash_received"])
		assert.Equal(t, "5", data["change_amount"])

		mockRepo.AssertExpectations(t)
	})

	t.Run("should persist the ledger-derived change, not the submitted figure", func(t *testing.T) {
		router, mockRepo, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil)

		body, contentType := multipartForm(t, map[string]string{
			"_method":                "PUT",
			"cash_received":          "200",
			"change_amount":          "30",
			"change_covered_by":      "company",
			"change_method_company":  "Zelle-USD",
			"change_payment_details": `{"email":"cliente@example.com"}`,
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "50", data["cash_received"])
		assert.Equal(t, "5", data["change_amount"])
		assert.Equal(t, "5", order.ChangeAmount.String())
	})

	t.Run("should reject partial split that does not add up", func(t *testing.T) {
		router, mockRepo, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body, contentType := multipartForm(t, map[string]string{
			"cash_received":          "50",
			"change_amount":          "5",
			"change_covered_by":      "partial",
			"change_amount_company":  "2",
			"change_amount_agency":   "2",
			"change_method_company":  "Zelle-USD",
			"change_method_agency":   "cash-USD",
			"change_payment_details": `{"email":"cliente@example.com"}`,
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "PARTIAL_SUM_MISMATCH", errInfo["code"])

		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("should require a responsible party when change is owed", func(t *testing.T) {
		router, mockRepo, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body, contentType := multipartForm(t, map[string]string{
			"cash_received":     "50",
			"change_amount":     "5",
			"change_covered_by": "none",
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "CHANGE_RESPONSIBILITY_REQUIRED", errInfo["code"])
	})

	t.Run("should reject incomplete settlement detail", func(t *testing.T) {
		router, mockRepo, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		body, contentType := multipartForm(t, map[string]string{
			"cash_received":          "50",
			"change_amount":          "5",
			"change_covered_by":      "company",
			"change_method_company":  "mobile-payment-VES",
			"change_payment_details": `{"cedula":"V-12345678"}`,
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		errInfo := response["error"].(map[string]interface{})
		assert.Equal(t, "INCOMPLETE_DETAIL", errInfo["code"])
	})

	t.Run("should return error for non-numeric amount", func(t *testing.T) {
		router, _, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		body, contentType := multipartForm(t, map[string]string{
			"cash_received": "fifty",
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+uuid.New().String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should replay identical submission without saving again", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		router, mockRepo, handler := setupChangeTestRouter(store, shared.DefaultIdempotencyConfig())
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil).Once()

		fields := map[string]string{
			"cash_received":          "50",
			"change_amount":          "5",
			"change_covered_by":      "company",
			"change_method_company":  "Zelle-USD",
			"change_payment_details": `{"email":"cliente@example.com"}`,
		}

		for i := 0; i < 2; i++ {
			body, contentType := multipartForm(t, fields)
			req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
			req.Header.Set("Content-Type", contentType)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		mockRepo.AssertExpectations(t)
	})

	t.Run("should keep locked rate on resubmission", func(t *testing.T) {
		router, mockRepo, handler := setupChangeTestRouter(nil, shared.IdempotencyConfig{})
		router.POST("/orders/:id/change", handler.AssignChange)

		order := createChangeDueOrder(t)
		order.ChangeRate = decimal.RequireFromString("36.5")
		mockRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*ordering.Order")).Return(nil)

		body, contentType := multipartForm(t, map[string]string{
			"cash_received":          "50",
			"change_amount":          "5",
			"change_covered_by":      "company",
			"change_method_company":  "Zelle-USD",
			"change_rate":            "41.2",
			"change_payment_details": `{"email":"cliente@example.com"}`,
		})

		req, _ := http.NewRequest(http.MethodPost, "/orders/"+order.ID.String()+"/change", body)
		req.Header.Set("Content-Type", contentType)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "36.5", data["change_rate"])
	})
}
