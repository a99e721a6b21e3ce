package directory

import (
	"context"
	"fmt"

	"github.com/ordena/backend/internal/domain/directory"
	"github.com/ordena/backend/internal/infrastructure/telemetry"
)

// BankService exposes the bank roster for settlement pickers
type BankService struct {
	bankRepo directory.BankRepository
}

// NewBankService creates a new BankService
func NewBankService(bankRepo directory.BankRepository) *BankService {
	return &BankService{bankRepo: bankRepo}
}

// ListActive returns the active banks
func (s *BankService) ListActive(ctx context.Context) ([]*directory.Bank, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "banks", "list_active")
	defer span.End()

	banks, err := s.bankRepo.FindActive(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list banks: %w", err)
	}
	return banks, nil
}
