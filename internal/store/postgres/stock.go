package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func (s *Store) DecrementIfSufficient(ctx context.Context, m *models.StockMovement) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND track_stock = ? AND stock_qty >= ?", m.ProductID, true, m.Quantity).
			Update("stock_qty", gorm.Expr("stock_qty - ?", m.Quantity))
		if res.Error != nil {
			return translate(res.Error, "decrement stock")
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return translate(tx.Create(m).Error, "insert stock movement")
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (s *Store) Restock(ctx context.Context, m *models.StockMovement) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", m.ProductID).
			Update("stock_qty", gorm.Expr("stock_qty + ?", m.Quantity))
		if err := cas(res, "restock"); err != nil {
			if err == store.ErrConditionFailed {
				return store.ErrNotFound
			}
			return err
		}
		return translate(tx.Create(m).Error, "insert stock movement")
	})
}

func (s *Store) Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&movements).Error
	return movements, translate(err, "list stock movements")
}

func (s *Store) LowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("active = ? AND track_stock = ? AND stock_qty <= min_stock", true, true).
		Order("stock_qty, name").
		Find(&products).Error
	return products, translate(err, "list low stock")
}
