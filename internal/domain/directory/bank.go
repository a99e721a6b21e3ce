package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/shared"
)

// Bank is one entry of the national bank roster used to populate settlement
// pickers and validate bank references
type Bank struct {
	shared.BaseEntity
	Name   string `gorm:"type:varchar(255);not null"`
	Code   string `gorm:"type:varchar(10);uniqueIndex;not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Bank) TableName() string {
	return "banks"
}

// NewBank creates a roster entry. Code is the 4-digit national bank code.
func NewBank(name, code string) (*Bank, error) {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank name is required")
	}
	if len(code) != 4 || strings.Trim(code, "0123456789") != "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank code must be 4 digits")
	}
	return &Bank{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Code:       code,
		Active:     true,
	}, nil
}

// Deactivate hides the bank from pickers without breaking old references
func (b *Bank) Deactivate() {
	b.Active = false
	b.Touch()
}

// BankRepository defines persistence for the bank roster
type BankRepository interface {
	Save(ctx context.Context, bank *Bank) error
	FindByID(ctx context.Context, id uuid.UUID) (*Bank, error)
	FindActive(ctx context.Context) ([]*Bank, error)
}
