package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/rates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProvider is a mock implementation of rates.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) FetchRates(ctx context.Context) (rates.ReferenceRates, error) {
	args := m.Called(ctx)
	return args.Get(0).(rates.ReferenceRates), args.Error(1)
}

func bcvRates() rates.ReferenceRates {
	return rates.ReferenceRates{
		USD:       decimal.NewFromFloat(40.12),
		EUR:       decimal.NewFromFloat(43.55),
		FetchedAt: time.Now(),
	}
}

func TestRateServiceCurrentRates(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches once and caches", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("FetchRates", mock.Anything).Return(bcvRates(), nil).Once()

		svc := NewRateService(provider, zap.NewNop())
		first := svc.CurrentRates(ctx)
		second := svc.CurrentRates(ctx)

		assert.Equal(t, "40.12", first.USD.String())
		assert.Equal(t, first.USD.String(), second.USD.String())
		provider.AssertNumberOfCalls(t, "FetchRates", 1)
	})

	t.Run("failure keeps the previous value and reports nothing", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("FetchRates", mock.Anything).Return(rates.ReferenceRates{}, errors.New("bcv.org.ve unreachable")).Once()
		provider.On("FetchRates", mock.Anything).Return(bcvRates(), nil).Once()

		svc := NewRateService(provider, zap.NewNop())
		unavailable := svc.CurrentRates(ctx)
		assert.False(t, unavailable.Available())

		// a later call retries since nothing was cached
		recovered := svc.CurrentRates(ctx)
		assert.True(t, recovered.Available())
		provider.AssertNumberOfCalls(t, "FetchRates", 2)
	})
}

func TestRateServiceRateForOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("locked order rate wins without fetching", func(t *testing.T) {
		provider := new(MockProvider)

		order, err := ordering.NewOrder("ORD-2001", "Carlos Rondón", decimal.NewFromInt(100))
		require.NoError(t, err)
		order.ChangeRate = decimal.RequireFromString("36.5")

		svc := NewRateService(provider, zap.NewNop())
		rate, ok := svc.RateForOrder(ctx, order, rates.CurrencyUSD)

		assert.True(t, ok)
		assert.Equal(t, "36.5", rate.String())
		provider.AssertNotCalled(t, "FetchRates")
	})

	t.Run("falls back to the reference quote per currency", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("FetchRates", mock.Anything).Return(bcvRates(), nil).Once()

		order, err := ordering.NewOrder("ORD-2002", "Carlos Rondón", decimal.NewFromInt(100))
		require.NoError(t, err)

		svc := NewRateService(provider, zap.NewNop())

		usd, ok := svc.RateForOrder(ctx, order, rates.CurrencyUSD)
		assert.True(t, ok)
		assert.Equal(t, "40.12", usd.String())

		eur, ok := svc.RateForOrder(ctx, order, rates.CurrencyEUR)
		assert.True(t, ok)
		assert.Equal(t, "43.55", eur.String())
		provider.AssertNumberOfCalls(t, "FetchRates", 1)
	})

	t.Run("reports unavailable when the quote never resolved", func(t *testing.T) {
		provider := new(MockProvider)
		provider.On("FetchRates", mock.Anything).Return(rates.ReferenceRates{}, errors.New("bcv.org.ve unreachable")).Once()

		order, err := ordering.NewOrder("ORD-2003", "Carlos Rondón", decimal.NewFromInt(100))
		require.NoError(t, err)

		svc := NewRateService(provider, zap.NewNop())
		rate, ok := svc.RateForOrder(ctx, order, rates.CurrencyUSD)

		assert.False(t, ok)
		assert.True(t, rate.IsZero())
	})
}
