package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func copyItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	for i, it := range items {
		it.Modifiers = append([]models.OrderItemModifier(nil), it.Modifiers...)
		out[i] = it
	}
	return out
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order, created *models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.registers[o.CashRegisterID]
	if !ok || reg.Status != models.RegisterOpen {
		return store.ErrConditionFailed
	}
	if _, exists := s.orders[o.ID]; exists {
		return store.ErrDuplicate
	}
	refs := map[string]struct{}{}
	for _, it := range o.Items {
		if _, dup := refs[it.ClientReference]; dup {
			return store.ErrDuplicate
		}
		refs[it.ClientReference] = struct{}{}
	}

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	for i := range o.Items {
		if o.Items[i].CreatedAt.IsZero() {
			o.Items[i].CreatedAt = o.CreatedAt
		}
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}

	stored := *o
	stored.Items = copyItems(o.Items)
	stored.Payments = nil
	stored.Events = nil
	s.orders[o.ID] = stored
	s.events = append(s.events, *created)
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	o.Items = copyItems(o.Items)
	o.Payments = nil
	for _, p := range s.payments {
		if p.OrderID == id {
			o.Payments = append(o.Payments, p)
		}
	}
	sort.Slice(o.Payments, func(i, j int) bool {
		a, b := o.Payments[i], o.Payments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Position < b.Position
	})
	o.Events = nil
	for _, e := range s.events {
		if e.OrderID == id {
			o.Events = append(o.Events, e)
		}
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Order
	for _, o := range s.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.CashRegisterID != nil && o.CashRegisterID != *f.CashRegisterID {
			continue
		}
		if f.ShiftID != nil && o.ShiftID != *f.ShiftID {
			continue
		}
		o.Items, o.Payments, o.Events = nil, nil, nil
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (f.Page - 1) * f.PageSize
	if start < 0 || start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *Store) hasPaymentsLocked(orderID uuid.UUID) bool {
	for _, p := range s.payments {
		if p.OrderID == orderID {
			return true
		}
	}
	return false
}

func (s *Store) CancelOrder(ctx context.Context, id uuid.UUID, canceled *models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != models.OrderOpen || s.hasPaymentsLocked(id) {
		return store.ErrConditionFailed
	}
	now := time.Now().UTC()
	o.Status = models.OrderCanceled
	o.UpdatedAt = now
	s.orders[id] = o
	if canceled.CreatedAt.IsZero() {
		canceled.CreatedAt = now
	}
	s.events = append(s.events, *canceled)
	return nil
}

func (s *Store) CountPayments(ctx context.Context, orderID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.payments {
		if p.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

func (s *Store) InsertPayments(ctx context.Context, payments []models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range payments {
		if _, exists := s.payments[p.ID]; exists {
			return store.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	for _, p := range payments {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		s.payments[p.ID] = p
	}
	return nil
}

func (s *Store) DeletePayments(ctx context.Context, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.payments, id)
	}
	return nil
}

func (s *Store) TransitionOrder(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return store.ErrConditionFailed
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return nil
}

func (s *Store) AppendEvent(ctx context.Context, e *models.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, *e)
	return nil
}
