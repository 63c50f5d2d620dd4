package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/poserr"
	"syntra-pos/internal/services/pos/pricing"
	"syntra-pos/internal/store"
)

const (
	CATALOG_CACHE_KEY = "pos:catalog"
	DEFAULT_CACHE_TTL = 5 * time.Minute
)

type Store interface {
	store.Catalog
	GetTableSession(ctx context.Context, id uuid.UUID) (*models.TableSession, error)
}

type CatalogHandler struct {
	store Store
	cache Cache
	ttl   time.Duration
}

func NewCatalogHandler(st Store, cache Cache, ttl time.Duration) *CatalogHandler {
	if cache == nil {
		cache = NopCache{}
	}
	if ttl <= 0 {
		ttl = DEFAULT_CACHE_TTL
	}
	return &CatalogHandler{store: st, cache: cache, ttl: ttl}
}

// Listing is the active catalog shown to operators.
type Listing struct {
	Products       []models.Product              `json:"products"`
	Combos         []models.Combo                `json:"combos"`
	ModifierGroups []models.ModifierGroup        `json:"modifier_groups"`
	ProductGroups  []models.ProductModifierGroup `json:"product_modifier_groups"`
}

// Snapshot loads exactly the rows refs points at.
func (h *CatalogHandler) Snapshot(ctx context.Context, refs pricing.Refs) (*pricing.Snapshot, error) {
	snap := &pricing.Snapshot{
		Products:       map[uuid.UUID]models.Product{},
		Combos:         map[uuid.UUID]models.Combo{},
		Modifiers:      map[uuid.UUID]models.Modifier{},
		ModifierGroups: map[uuid.UUID]models.ModifierGroup{},
		ProductGroups:  map[uuid.UUID][]models.ProductModifierGroup{},
	}

	products, err := h.store.ProductsByIDs(ctx, refs.ProductIDs)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load products")
	}
	for _, p := range products {
		snap.Products[p.ID] = p
	}

	combos, err := h.store.CombosByIDs(ctx, refs.ComboIDs)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load combos")
	}
	for _, c := range combos {
		snap.Combos[c.ID] = c
	}

	modifiers, err := h.store.ModifiersByIDs(ctx, refs.ModifierIDs)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load modifiers")
	}
	groupIDs := map[uuid.UUID]struct{}{}
	for _, m := range modifiers {
		snap.Modifiers[m.ID] = m
		groupIDs[m.GroupID] = struct{}{}
	}

	links, err := h.store.ProductModifierGroups(ctx, refs.ProductIDs)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load product modifier groups")
	}
	for _, l := range links {
		snap.ProductGroups[l.ProductID] = append(snap.ProductGroups[l.ProductID], l)
		groupIDs[l.ModifierGroupID] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(groupIDs))
	for id := range groupIDs {
		ids = append(ids, id)
	}
	groups, err := h.store.ModifierGroupsByIDs(ctx, ids)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load modifier groups")
	}
	for _, g := range groups {
		snap.ModifierGroups[g.ID] = g
	}

	if refs.TableSessionID != nil {
		ts, err := h.store.GetTableSession(ctx, *refs.TableSessionID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, poserr.Internal(err, "failed to load table session")
		default:
			snap.TableSession = ts
		}
	}

	return snap, nil
}

func (h *CatalogHandler) Listing(ctx context.Context) (*Listing, error) {
	if raw, ok, err := h.cache.Get(ctx, CATALOG_CACHE_KEY); err != nil {
		log.WithError(err).Warn("catalog cache read failed")
	} else if ok {
		var cached Listing
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	listing, err := h.loadListing(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(listing); err == nil {
		if err := h.cache.Set(ctx, CATALOG_CACHE_KEY, raw, h.ttl); err != nil {
			log.WithError(err).Warn("catalog cache write failed")
		}
	}
	return listing, nil
}

func (h *CatalogHandler) loadListing(ctx context.Context) (*Listing, error) {
	products, err := h.store.ActiveProducts(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list products")
	}
	combos, err := h.store.ActiveCombos(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list combos")
	}
	groups, err := h.store.ActiveModifierGroups(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list modifier groups")
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	links, err := h.store.ProductModifierGroups(ctx, ids)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list product modifier groups")
	}

	return &Listing{
		Products:       emptyIfNil(products),
		Combos:         emptyIfNil(combos),
		ModifierGroups: emptyIfNil(groups),
		ProductGroups:  emptyIfNil(links),
	}, nil
}

// Invalidate drops the cached listing; called after stock changes.
func (h *CatalogHandler) Invalidate(ctx context.Context) {
	if err := h.cache.Del(ctx, CATALOG_CACHE_KEY); err != nil {
		log.WithError(err).Warn("catalog cache invalidation failed")
	}
}

// PaymentMethods returns the active tenders.
func (h *CatalogHandler) PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error) {
	methods, err := h.store.PaymentMethods(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list payment methods")
	}
	active := make([]models.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
