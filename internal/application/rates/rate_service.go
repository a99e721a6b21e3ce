package rates

import (
	"context"
	"sync"

	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/rates"
	"github.com/ordena/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateService resolves the official reference rates with fetch-once
// semantics: the first successful fetch is cached for the lifetime of the
// process and never refetched. A failed fetch keeps whatever was cached
// before (usually nothing) and reports no error; callers render the rate as
// unavailable instead of failing.
type RateService struct {
	provider rates.Provider
	logger   *zap.Logger

	mu       sync.Mutex
	cached   rates.ReferenceRates
	inFlight bool
}

// NewRateService creates a new RateService
func NewRateService(provider rates.Provider, logger *zap.Logger) *RateService {
	return &RateService{
		provider: provider,
		logger:   logger,
	}
}

// CurrentRates returns the cached rates, fetching them on first need. At most
// one fetch is in flight at a time; concurrent callers during a fetch get the
// current (possibly empty) cache rather than piling on the upstream.
func (s *RateService) CurrentRates(ctx context.Context) rates.ReferenceRates {
	ctx, span := telemetry.StartServiceSpan(ctx, "rates", "current")
	defer span.End()

	s.mu.Lock()
	if s.cached.Available() || s.inFlight {
		cached := s.cached
		s.mu.Unlock()
		return cached
	}
	s.inFlight = true
	s.mu.Unlock()

	fetched, err := s.provider.FetchRates(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Reference rate fetch failed, keeping previous value", zap.Error(err))
		return s.cached
	}
	if fetched.Available() {
		s.cached = fetched
	}
	return s.cached
}

// RateForOrder resolves the conversion rate for an order. A non-zero persisted
// change rate is locked and wins without touching the upstream; otherwise the
// reference quote for the currency is used. The bool reports availability.
func (s *RateService) RateForOrder(ctx context.Context, order *ordering.Order, currency rates.Currency) (decimal.Decimal, bool) {
	if order != nil && !order.ChangeRate.IsZero() {
		return order.ChangeRate, true
	}
	rate := s.CurrentRates(ctx).For(currency)
	return rate, !rate.IsZero()
}
