package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	ratesapp "github.com/ordena/backend/internal/application/rates"
	"github.com/ordena/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockRateProvider implements rates.Provider for testing
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) FetchRates(ctx context.Context) (rates.ReferenceRates, error) {
	args := m.Called(ctx)
	return args.Get(0).(rates.ReferenceRates), args.Error(1)
}

// Ensure mock implements the interface
var _ rates.Provider = (*MockRateProvider)(nil)

// Test helpers

func setupCurrencyTestRouter(provider rates.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := ratesapp.NewRateService(provider, zap.NewNop())
	handler := NewCurrencyHandler(service)

	router := gin.New()
	router.GET("/currency", handler.GetRates)
	return router
}

// Tests

func TestCurrencyHandler_GetRates(t *testing.T) {
	t.Run("should return both quotes under fixed keys", func(t *testing.T) {
		mockProvider := new(MockRateProvider)
		mockProvider.On("FetchRates", mock.Anything).Return(rates.ReferenceRates{
			USD:       decimal.RequireFromString("40.25"),
			EUR:       decimal.RequireFromString("43.8"),
			FetchedAt: time.Now(),
		}, nil)

		router := setupCurrencyTestRouter(mockProvider)

		req, _ := http.NewRequest(http.MethodGet, "/currency", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]map[string]map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "40.25", response["data"]["bcv_usd"]["value"])
		assert.Equal(t, "43.8", response["data"]["bcv_eur"]["value"])
	})

	t.Run("should omit unavailable quotes instead of failing", func(t *testing.T) {
		mockProvider := new(MockRateProvider)
		mockProvider.On("FetchRates", mock.Anything).Return(rates.ReferenceRates{}, errors.New("upstream down"))

		router := setupCurrencyTestRouter(mockProvider)

		req, _ := http.NewRequest(http.MethodGet, "/currency", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.NotContains(t, response["data"], "bcv_usd")
		assert.NotContains(t, response["data"], "bcv_eur")
	})

	t.Run("should omit only the missing quote", func(t *testing.T) {
		mockProvider := new(MockRateProvider)
		mockProvider.On("FetchRates", mock.Anything).Return(rates.ReferenceRates{
			USD:       decimal.RequireFromString("40.25"),
			FetchedAt: time.Now(),
		}, nil)

		router := setupCurrencyTestRouter(mockProvider)

		req, _ := http.NewRequest(http.MethodGet, "/currency", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]map[string]map[string]string
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "40.25", response["data"]["bcv_usd"]["value"])
		assert.NotContains(t, response["data"], "bcv_eur")
	})

	t.Run("should fetch upstream only once", func(t *testing.T) {
		mockProvider := new(MockRateProvider)
		mockProvider.On("FetchRates", mock.Anything).Return(rates.ReferenceRates{
			USD:       decimal.RequireFromString("40.25"),
			FetchedAt: time.Now(),
		}, nil).Once()

		router := setupCurrencyTestRouter(mockProvider)

		for i := 0; i < 3; i++ {
			req, _ := http.NewRequest(http.MethodGet, "/currency", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		mockProvider.AssertExpectations(t)
	})
}
