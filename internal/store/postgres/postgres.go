// Package postgres implements store.Store on gorm.
//
// The connection must be opened with TranslateError so that unique violations
// of the partial "OPEN" indexes come back as gorm.ErrDuplicatedKey.
package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// cas turns a zero-row conditional update into ErrConditionFailed.
func cas(res *gorm.DB, op string) error {
	if res.Error != nil {
		return translate(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return store.ErrConditionFailed
	}
	return nil
}

func (s *Store) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, translate(err, "query products")
}

func (s *Store) CombosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Combo, error) {
	var combos []models.Combo
	if len(ids) == 0 {
		return combos, nil
	}
	err := s.db.WithContext(ctx).Preload("Items").Where("id IN ?", ids).Find(&combos).Error
	return combos, translate(err, "query combos")
}

func (s *Store) ModifiersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Modifier, error) {
	var modifiers []models.Modifier
	if len(ids) == 0 {
		return modifiers, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&modifiers).Error
	return modifiers, translate(err, "query modifiers")
}

func (s *Store) ModifierGroupsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ModifierGroup, error) {
	var groups []models.ModifierGroup
	if len(ids) == 0 {
		return groups, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&groups).Error
	return groups, translate(err, "query modifier groups")
}

func (s *Store) ProductModifierGroups(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductModifierGroup, error) {
	var links []models.ProductModifierGroup
	if len(productIDs) == 0 {
		return links, nil
	}
	err := s.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("product_id, sort_order").
		Find(&links).Error
	return links, translate(err, "query product modifier groups")
}

func (s *Store) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("name").Find(&products).Error
	return products, translate(err, "list products")
}

func (s *Store) ActiveCombos(ctx context.Context) ([]models.Combo, error) {
	var combos []models.Combo
	err := s.db.WithContext(ctx).Preload("Items").Where("active = ?", true).Order("name").Find(&combos).Error
	return combos, translate(err, "list combos")
}

func (s *Store) ActiveModifierGroups(ctx context.Context) ([]models.ModifierGroup, error) {
	var groups []models.ModifierGroup
	err := s.db.WithContext(ctx).
		Preload("Modifiers", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("name")
		}).
		Where("active = ?", true).
		Order("name").
		Find(&groups).Error
	return groups, translate(err, "list modifier groups")
}

func (s *Store) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := s.db.WithContext(ctx).Order("code").Find(&methods).Error
	return methods, translate(err, "list payment methods")
}
