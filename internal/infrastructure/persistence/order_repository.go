package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ordena/backend/internal/domain/ordering"
	"github.com/ordena/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Ensure GormOrderRepository implements ordering.OrderRepository
var _ ordering.OrderRepository = (*GormOrderRepository)(nil)

// GormOrderRepository implements ordering.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save persists the order and replaces its payment and receipt rows. Ledger
// rows are replaced wholesale since every save rewrites the full list.
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&ordering.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&ordering.PaymentReceipt{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
	})
}

// FindByID finds an order by its ID, preloading payments and receipts
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("PaymentReceipts").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds an order by its business number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	var order ordering.Order
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("PaymentReceipts").
		First(&order, "order_number = ?", orderNumber).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// List returns a page of orders with the total count
func (r *GormOrderRepository) List(ctx context.Context, offset, limit int) ([]*ordering.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ordering.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*ordering.Order
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Delete removes an order; payments and receipts cascade
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ordering.Order{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
