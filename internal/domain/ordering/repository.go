package ordering

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines persistence for the Order aggregate
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	List(ctx context.Context, offset, limit int) ([]*Order, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
