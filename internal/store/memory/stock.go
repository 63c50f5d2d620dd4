package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func (s *Store) DecrementIfSufficient(ctx context.Context, m *models.StockMovement) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[m.ProductID]
	if !ok || !p.TrackStock || p.StockQty < m.Quantity {
		return false, nil
	}
	p.StockQty -= m.Quantity
	s.products[p.ID] = p
	s.appendMovementLocked(m)
	return true, nil
}

func (s *Store) Restock(ctx context.Context, m *models.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[m.ProductID]
	if !ok {
		return store.ErrNotFound
	}
	p.StockQty += m.Quantity
	s.products[p.ID] = p
	s.appendMovementLocked(m)
	return nil
}

func (s *Store) appendMovementLocked(m *models.StockMovement) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.stockMovements = append(s.stockMovements, *m)
}

func (s *Store) Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.StockMovement
	for i := len(s.stockMovements) - 1; i >= 0; i-- {
		if s.stockMovements[i].ProductID == productID {
			out = append(out, s.stockMovements[i])
		}
	}
	return out, nil
}

func (s *Store) LowStock(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if p.Active && p.TrackStock && p.StockQty <= p.MinStock {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockQty != out[j].StockQty {
			return out[i].StockQty < out[j].StockQty
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
