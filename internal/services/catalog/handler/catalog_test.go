package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/services/pos/pricing"
	"syntra-pos/internal/store/memory"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *mapCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func TestSnapshotLoadsReferencedRows(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	burger := models.Product{ID: uuid.New(), Name: "Burger", Price: decimal.NewFromInt(15), Active: true}
	other := models.Product{ID: uuid.New(), Name: "Soda", Price: decimal.NewFromInt(5), Active: true}
	st.PutProduct(burger)
	st.PutProduct(other)

	sauces := models.ModifierGroup{ID: uuid.New(), Name: "Sauces", Required: true, Active: true}
	extras := models.ModifierGroup{ID: uuid.New(), Name: "Extras", Active: true}
	cheese := models.Modifier{ID: uuid.New(), Name: "Cheese", Price: decimal.NewFromInt(2), Active: true}
	extras.Modifiers = []models.Modifier{cheese}
	st.PutModifierGroup(sauces)
	st.PutModifierGroup(extras)
	st.LinkModifierGroup(burger.ID, sauces.ID, 1)

	tableID := uuid.New()
	session := models.TableSession{ID: uuid.New(), TableID: tableID, Status: models.TableSessionOpen}
	require.NoError(t, st.CreateTableSession(ctx, &session))

	h := NewCatalogHandler(st, nil, 0)
	snap, err := h.Snapshot(ctx, pricing.Refs{
		ProductIDs:     []uuid.UUID{burger.ID},
		ModifierIDs:    []uuid.UUID{cheese.ID},
		TableSessionID: &session.ID,
	})
	require.NoError(t, err)

	assert.Len(t, snap.Products, 1)
	assert.Contains(t, snap.Products, burger.ID)
	assert.Contains(t, snap.Modifiers, cheese.ID)
	// the required group is loaded even though nothing in it was selected
	assert.Contains(t, snap.ModifierGroups, sauces.ID)
	assert.Contains(t, snap.ModifierGroups, extras.ID)
	require.Len(t, snap.ProductGroups[burger.ID], 1)
	require.NotNil(t, snap.TableSession)
	assert.Equal(t, tableID, snap.TableSession.TableID)

	missing := uuid.New()
	snap, err = h.Snapshot(ctx, pricing.Refs{TableSessionID: &missing})
	require.NoError(t, err)
	assert.Nil(t, snap.TableSession)
}

func TestListingIsCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	st.PutProduct(models.Product{ID: uuid.New(), Name: "Fries", Price: decimal.NewFromInt(10), Active: true})
	st.PutProduct(models.Product{ID: uuid.New(), Name: "Old", Price: decimal.NewFromInt(1), Active: false})

	cache := newMapCache()
	h := NewCatalogHandler(st, cache, time.Minute)

	listing, err := h.Listing(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Products, 1)
	assert.Equal(t, "Fries", listing.Products[0].Name)
	assert.Empty(t, listing.Combos)
	assert.Equal(t, 1, cache.sets)

	st.PutProduct(models.Product{ID: uuid.New(), Name: "Burger", Price: decimal.NewFromInt(15), Active: true})
	listing, err = h.Listing(ctx)
	require.NoError(t, err)
	assert.Len(t, listing.Products, 1)
	assert.Equal(t, 1, cache.sets)

	h.Invalidate(ctx)
	listing, err = h.Listing(ctx)
	require.NoError(t, err)
	assert.Len(t, listing.Products, 2)
	assert.Equal(t, 2, cache.sets)
}

func TestPaymentMethodsOnlyActive(t *testing.T) {
	st := memory.New()
	st.PutPaymentMethod(models.PaymentMethod{ID: uuid.New(), Code: "VOUCHER", Name: "Voucher", Active: false})

	methods, err := NewCatalogHandler(st, nil, 0).PaymentMethods(context.Background())
	require.NoError(t, err)

	codes := make([]string, len(methods))
	for i, m := range methods {
		codes[i] = m.Code
	}
	assert.Equal(t, []string{"CARD", "CASH", "PIX"}, codes)
}
