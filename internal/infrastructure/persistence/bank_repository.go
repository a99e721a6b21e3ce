package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/directory"
	"github.com/ordena/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Ensure GormBankRepository implements directory.BankRepository
var _ directory.BankRepository = (*GormBankRepository)(nil)

// GormBankRepository implements directory.BankRepository using GORM
type GormBankRepository struct {
	db *gorm.DB
}

// NewGormBankRepository creates a new GormBankRepository
func NewGormBankRepository(db *gorm.DB) *GormBankRepository {
	return &GormBankRepository{db: db}
}

// Save persists a bank roster entry
func (r *GormBankRepository) Save(ctx context.Context, bank *directory.Bank) error {
	return r.db.WithContext(ctx).Save(bank).Error
}

// FindByID finds a bank by its ID
func (r *GormBankRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Bank, error) {
	var bank directory.Bank
	if err := r.db.WithContext(ctx).First(&bank, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &bank, nil
}

// FindActive returns the active banks ordered by name
func (r *GormBankRepository) FindActive(ctx context.Context) ([]*directory.Bank, error) {
	var banks []*directory.Bank
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}
