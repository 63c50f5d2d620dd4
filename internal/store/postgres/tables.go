package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"syntra-pos/internal/database/models"
)

func (s *Store) GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	var t models.Table
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get table")
	}
	return &t, nil
}

func (s *Store) CreateTableSession(ctx context.Context, ts *models.TableSession) error {
	return translate(s.db.WithContext(ctx).Create(ts).Error, "create table session")
}

func (s *Store) GetTableSession(ctx context.Context, id uuid.UUID) (*models.TableSession, error) {
	var ts models.TableSession
	if err := s.db.WithContext(ctx).First(&ts, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get table session")
	}
	return &ts, nil
}

func (s *Store) CloseTableSession(ctx context.Context, id uuid.UUID, closedBy uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.TableSession{}).
		Where("id = ? AND status = ?", id, models.TableSessionOpen).
		Updates(map[string]interface{}{
			"status":    models.TableSessionClosed,
			"closed_at": at,
			"closed_by": closedBy,
		})
	return cas(res, "close table session")
}
