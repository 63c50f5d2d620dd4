package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
)

func (s *Store) CreateRegister(ctx context.Context, r *models.CashRegister) error {
	return translate(s.db.WithContext(ctx).Create(r).Error, "create register")
}

func (s *Store) CurrentRegister(ctx context.Context) (*models.CashRegister, error) {
	var r models.CashRegister
	err := s.db.WithContext(ctx).Where("status = ?", models.RegisterOpen).First(&r).Error
	if err != nil {
		return nil, translate(err, "query open register")
	}
	return &r, nil
}

func (s *Store) CloseRegister(ctx context.Context, id uuid.UUID, closing decimal.Decimal, closedBy uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.CashRegister{}).
		Where("id = ? AND status = ?", id, models.RegisterOpen).
		Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.cash_register_id = cash_registers.id AND orders.status = ?)", models.OrderOpen).
		Updates(map[string]interface{}{
			"status":         models.RegisterClosed,
			"closing_amount": closing,
			"closed_at":      at,
			"closed_by":      closedBy,
		})
	return cas(res, "close register")
}

func (s *Store) CountOpenOrders(ctx context.Context, registerID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("cash_register_id = ? AND status = ?", registerID, models.OrderOpen).
		Count(&n).Error
	return n, translate(err, "count open orders")
}

func (s *Store) CreateShift(ctx context.Context, sh *models.Shift) error {
	return translate(s.db.WithContext(ctx).Create(sh).Error, "create shift")
}

func (s *Store) CurrentShift(ctx context.Context, operatorID uuid.UUID) (*models.Shift, error) {
	var sh models.Shift
	err := s.db.WithContext(ctx).
		Where("opened_by = ? AND status = ?", operatorID, models.ShiftOpen).
		First(&sh).Error
	if err != nil {
		return nil, translate(err, "query open shift")
	}
	return &sh, nil
}

func (s *Store) CloseShift(ctx context.Context, id uuid.UUID, closedBy uuid.UUID, note *string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Shift{}).
		Where("id = ? AND status = ?", id, models.ShiftOpen).
		Updates(map[string]interface{}{
			"status":     models.ShiftClosed,
			"closed_at":  at,
			"closed_by":  closedBy,
			"note_close": note,
		})
	return cas(res, "close shift")
}

func (s *Store) CreateCashMovement(ctx context.Context, m *models.CashMovement) error {
	return translate(s.db.WithContext(ctx).Create(m).Error, "create cash movement")
}

func (s *Store) CashMovements(ctx context.Context, registerID uuid.UUID) ([]models.CashMovement, error) {
	var movements []models.CashMovement
	err := s.db.WithContext(ctx).
		Where("cash_register_id = ?", registerID).
		Order("created_at").
		Find(&movements).Error
	return movements, translate(err, "list cash movements")
}

func (s *Store) RegisterPayments(ctx context.Context, registerID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.cash_register_id = ? AND orders.status = ?", registerID, models.OrderPaid).
		Order("payments.created_at").
		Find(&payments).Error
	return payments, translate(err, "list register payments")
}
