package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func (s *Store) CreateRegister(ctx context.Context, r *models.CashRegister) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.registers {
		if existing.Status == models.RegisterOpen && r.Status == models.RegisterOpen {
			return store.ErrDuplicate
		}
	}
	s.registers[r.ID] = *r
	return nil
}

func (s *Store) CurrentRegister(ctx context.Context) (*models.CashRegister, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.registers {
		if r.Status == models.RegisterOpen {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CloseRegister(ctx context.Context, id uuid.UUID, closing decimal.Decimal, closedBy uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.registers[id]
	if !ok || r.Status != models.RegisterOpen || s.countOpenOrdersLocked(id) > 0 {
		return store.ErrConditionFailed
	}
	r.Status = models.RegisterClosed
	r.ClosingAmount = &closing
	r.ClosedAt = &at
	r.ClosedBy = &closedBy
	s.registers[id] = r
	return nil
}

func (s *Store) countOpenOrdersLocked(registerID uuid.UUID) int64 {
	var n int64
	for _, o := range s.orders {
		if o.CashRegisterID == registerID && o.Status == models.OrderOpen {
			n++
		}
	}
	return n
}

func (s *Store) CountOpenOrders(ctx context.Context, registerID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countOpenOrdersLocked(registerID), nil
}

func (s *Store) CreateShift(ctx context.Context, sh *models.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.shifts {
		if existing.OpenedBy == sh.OpenedBy && existing.Status == models.ShiftOpen && sh.Status == models.ShiftOpen {
			return store.ErrDuplicate
		}
	}
	s.shifts[sh.ID] = *sh
	return nil
}

func (s *Store) CurrentShift(ctx context.Context, operatorID uuid.UUID) (*models.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shifts {
		if sh.OpenedBy == operatorID && sh.Status == models.ShiftOpen {
			return &sh, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CloseShift(ctx context.Context, id uuid.UUID, closedBy uuid.UUID, note *string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shifts[id]
	if !ok || sh.Status != models.ShiftOpen {
		return store.ErrConditionFailed
	}
	sh.Status = models.ShiftClosed
	sh.ClosedAt = &at
	sh.ClosedBy = &closedBy
	sh.NoteClose = note
	s.shifts[id] = sh
	return nil
}

func (s *Store) CreateCashMovement(ctx context.Context, m *models.CashMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.cashMovements = append(s.cashMovements, *m)
	return nil
}

func (s *Store) CashMovements(ctx context.Context, registerID uuid.UUID) ([]models.CashMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CashMovement
	for _, m := range s.cashMovements {
		if m.CashRegisterID == registerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) RegisterPayments(ctx context.Context, registerID uuid.UUID) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Payment
	for _, p := range s.payments {
		o, ok := s.orders[p.OrderID]
		if ok && o.CashRegisterID == registerID && o.Status == models.OrderPaid {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
