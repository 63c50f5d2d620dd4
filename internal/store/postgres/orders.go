package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func (s *Store) CreateOrder(ctx context.Context, o *models.Order, created *models.OrderEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Share-lock the register so a concurrent close waits for this insert.
		var reg models.CashRegister
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("id = ? AND status = ?", o.CashRegisterID, models.RegisterOpen).
			First(&reg).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrConditionFailed
		}
		if err != nil {
			return errors.Wrap(err, "lock register")
		}

		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return translate(err, "insert order")
		}

		var modifiers []models.OrderItemModifier
		for i := range o.Items {
			modifiers = append(modifiers, o.Items[i].Modifiers...)
		}
		if len(o.Items) > 0 {
			if err := tx.Omit(clause.Associations).Create(&o.Items).Error; err != nil {
				return translate(err, "insert order items")
			}
		}
		if len(modifiers) > 0 {
			if err := tx.Create(&modifiers).Error; err != nil {
				return translate(err, "insert order item modifiers")
			}
		}

		return translate(tx.Create(created).Error, "insert order event")
	})
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, client_reference") }).
		Preload("Items.Modifiers").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, position") }).
		Preload("Events", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "get order")
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CashRegisterID != nil {
		q = q.Where("cash_register_id = ?", *f.CashRegisterID)
	}
	if f.ShiftID != nil {
		q = q.Where("shift_id = ?", *f.ShiftID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	var orders []models.Order
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	return orders, total, nil
}

func (s *Store) CancelOrder(ctx context.Context, id uuid.UUID, canceled *models.OrderEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderOpen).
			Where("NOT EXISTS (SELECT 1 FROM payments WHERE payments.order_id = orders.id)").
			Update("status", models.OrderCanceled)
		if err := cas(res, "cancel order"); err != nil {
			return err
		}
		return translate(tx.Create(canceled).Error, "insert order event")
	})
}

func (s *Store) CountPayments(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, translate(err, "count payments")
}

func (s *Store) InsertPayments(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Create(&payments).Error, "insert payments")
}

func (s *Store) DeletePayments(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Payment{}).Error
	return translate(err, "delete payments")
}

func (s *Store) TransitionOrder(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return cas(res, "transition order")
}

func (s *Store) AppendEvent(ctx context.Context, e *models.OrderEvent) error {
	return translate(s.db.WithContext(ctx).Create(e).Error, "insert order event")
}
