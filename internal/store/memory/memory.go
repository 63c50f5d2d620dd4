// Package memory is a mutex-guarded store.Store used by tests and by the
// --memory development mode. Conditional writes follow the same rules as the
// postgres implementation.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

type Store struct {
	mu sync.RWMutex

	categories     map[uuid.UUID]models.Category
	products       map[uuid.UUID]models.Product
	combos         map[uuid.UUID]models.Combo
	modifierGroups map[uuid.UUID]models.ModifierGroup
	modifiers      map[uuid.UUID]models.Modifier
	productGroups  []models.ProductModifierGroup
	paymentMethods map[string]models.PaymentMethod

	registers     map[uuid.UUID]models.CashRegister
	shifts        map[uuid.UUID]models.Shift
	cashMovements []models.CashMovement

	orders         map[uuid.UUID]models.Order
	payments       map[uuid.UUID]models.Payment
	events         []models.OrderEvent
	stockMovements []models.StockMovement

	tables        map[uuid.UUID]models.Table
	tableSessions map[uuid.UUID]models.TableSession
}

var _ store.Store = (*Store)(nil)

// New returns an empty store holding the default payment methods.
func New() *Store {
	s := &Store{
		categories:     map[uuid.UUID]models.Category{},
		products:       map[uuid.UUID]models.Product{},
		combos:         map[uuid.UUID]models.Combo{},
		modifierGroups: map[uuid.UUID]models.ModifierGroup{},
		modifiers:      map[uuid.UUID]models.Modifier{},
		paymentMethods: map[string]models.PaymentMethod{},
		registers:      map[uuid.UUID]models.CashRegister{},
		shifts:         map[uuid.UUID]models.Shift{},
		orders:         map[uuid.UUID]models.Order{},
		payments:       map[uuid.UUID]models.Payment{},
		tables:         map[uuid.UUID]models.Table{},
		tableSessions:  map[uuid.UUID]models.TableSession{},
	}
	now := time.Now().UTC()
	for _, m := range models.DefaultPaymentMethods() {
		m.ID = uuid.New()
		m.CreatedAt, m.UpdatedAt = now, now
		s.paymentMethods[m.Code] = m
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) PutCategory(c models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
}

func (s *Store) PutProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Store) PutCombo(c models.Combo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Items = append([]models.ComboItem(nil), c.Items...)
	s.combos[c.ID] = c
}

// PutModifierGroup stores the group and any modifiers attached to it.
func (s *Store) PutModifierGroup(g models.ModifierGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range g.Modifiers {
		m.GroupID = g.ID
		s.modifiers[m.ID] = m
	}
	g.Modifiers = nil
	s.modifierGroups[g.ID] = g
}

func (s *Store) PutModifier(m models.Modifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modifiers[m.ID] = m
}

func (s *Store) LinkModifierGroup(productID, groupID uuid.UUID, sortOrder int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productGroups = append(s.productGroups, models.ProductModifierGroup{
		ProductID:       productID,
		ModifierGroupID: groupID,
		SortOrder:       sortOrder,
	})
}

func (s *Store) PutPaymentMethod(m models.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethods[m.Code] = m
}

func (s *Store) PutTable(t models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.ID] = t
}

// Product returns the current row, for assertions on stock levels.
func (s *Store) Product(id uuid.UUID) (models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

func lessUUID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *Store) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for id := range idSet(ids) {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) CombosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Combo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Combo
	for id := range idSet(ids) {
		if c, ok := s.combos[id]; ok {
			c.Items = append([]models.ComboItem(nil), c.Items...)
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) ModifiersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Modifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Modifier
	for id := range idSet(ids) {
		if m, ok := s.modifiers[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) ModifierGroupsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ModifierGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ModifierGroup
	for id := range idSet(ids) {
		if g, ok := s.modifierGroups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) ProductModifierGroups(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductModifierGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := idSet(productIDs)
	var out []models.ProductModifierGroup
	for _, l := range s.productGroups {
		if _, ok := set[l.ProductID]; ok {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return lessUUID(out[i].ProductID, out[j].ProductID)
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (s *Store) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ActiveCombos(ctx context.Context) ([]models.Combo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Combo
	for _, c := range s.combos {
		if c.Active {
			c.Items = append([]models.ComboItem(nil), c.Items...)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ActiveModifierGroups(ctx context.Context) ([]models.ModifierGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ModifierGroup
	for _, g := range s.modifierGroups {
		if !g.Active {
			continue
		}
		g.Modifiers = nil
		for _, m := range s.modifiers {
			if m.GroupID == g.ID && m.Active {
				g.Modifiers = append(g.Modifiers, m)
			}
		}
		sort.Slice(g.Modifiers, func(i, j int) bool { return g.Modifiers[i].Name < g.Modifiers[j].Name })
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PaymentMethod, 0, len(s.paymentMethods))
	for _, m := range s.paymentMethods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
