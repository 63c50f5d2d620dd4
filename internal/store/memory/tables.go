package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func (s *Store) GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

func (s *Store) CreateTableSession(ctx context.Context, ts *models.TableSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tableSessions {
		if existing.TableID == ts.TableID && existing.Status == models.TableSessionOpen && ts.Status == models.TableSessionOpen {
			return store.ErrDuplicate
		}
	}
	s.tableSessions[ts.ID] = *ts
	return nil
}

func (s *Store) GetTableSession(ctx context.Context, id uuid.UUID) (*models.TableSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.tableSessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ts, nil
}

func (s *Store) CloseTableSession(ctx context.Context, id uuid.UUID, closedBy uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.tableSessions[id]
	if !ok || ts.Status != models.TableSessionOpen {
		return store.ErrConditionFailed
	}
	ts.Status = models.TableSessionClosed
	ts.ClosedAt = &at
	ts.ClosedBy = &closedBy
	s.tableSessions[id] = ts
	return nil
}
