package handler

import (
	"bytes"
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/poserr"
	"syntra-pos/internal/store"
)

const (
	REASON_ORDER_SALE          = "order sale"
	REASON_COMBO_SALE          = "combo sale"
	REASON_SETTLEMENT_ROLLBACK = "settlement rollback"
)

type Store interface {
	store.Stock
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type InventoryHandler struct {
	store Store
	now   func() time.Time
}

func NewInventoryHandler(st Store) *InventoryHandler {
	return &InventoryHandler{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Demand is one conditional decrement owed by a paid order.
type Demand struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	Reason      string
}

// StockDemand aggregates the stock an order consumes. Direct product lines and
// combo components are summed separately per product, so a product sold both
// ways yields two demands. Untracked products are skipped. The result is
// ordered by product id, direct demand first. A per-product demand larger than
// any stock level can hold fails with InsufficientStockError.
func StockDemand(items []models.OrderItem, products map[uuid.UUID]models.Product, combos map[uuid.UUID]models.Combo) ([]Demand, error) {
	direct := map[uuid.UUID]int64{}
	viaCombo := map[uuid.UUID]int64{}

	for _, it := range items {
		switch it.ItemType {
		case models.ItemProduct:
			if it.ProductID != nil {
				direct[*it.ProductID] += int64(it.Quantity)
			}
		case models.ItemCombo:
			if it.ComboID == nil {
				continue
			}
			combo, ok := combos[*it.ComboID]
			if !ok {
				continue
			}
			for _, comp := range combo.Items {
				viaCombo[comp.ProductID] += int64(comp.Quantity) * int64(it.Quantity)
			}
		}
	}

	ids := map[uuid.UUID]struct{}{}
	for id := range direct {
		ids[id] = struct{}{}
	}
	for id := range viaCombo {
		ids[id] = struct{}{}
	}
	ordered := make([]uuid.UUID, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return bytes.Compare(ordered[i][:], ordered[j][:]) < 0 })

	var out []Demand
	for _, id := range ordered {
		p, ok := products[id]
		if !ok || !p.TrackStock {
			continue
		}
		for _, part := range []struct {
			qty    int64
			reason string
		}{{direct[id], REASON_ORDER_SALE}, {viaCombo[id], REASON_COMBO_SALE}} {
			if part.qty <= 0 {
				continue
			}
			if part.qty > math.MaxInt32 {
				return nil, poserr.InsufficientStock(p.Name)
			}
			out = append(out, Demand{ProductID: id, ProductName: p.Name, Quantity: int32(part.qty), Reason: part.reason})
		}
	}
	return out, nil
}

// Decrement applies d only when the product's stock covers it and reports
// whether it did. Stock never goes negative.
func (h *InventoryHandler) Decrement(ctx context.Context, d Demand, orderID uuid.UUID, operatorID uuid.UUID) (bool, error) {
	if d.Quantity < 1 {
		return false, poserr.Validation("decrement quantity must be positive")
	}
	oid := orderID
	ok, err := h.store.DecrementIfSufficient(ctx, &models.StockMovement{
		ID:        uuid.New(),
		ProductID: d.ProductID,
		OrderID:   &oid,
		Type:      models.StockOut,
		Quantity:  d.Quantity,
		Reason:    d.Reason,
		CreatedBy: operatorID,
		CreatedAt: h.now(),
	})
	if err != nil {
		return false, errors.Wrapf(err, "decrement %s", d.ProductID)
	}
	return ok, nil
}

// Restock returns quantity to a product with an IN movement.
func (h *InventoryHandler) Restock(ctx context.Context, productID uuid.UUID, quantity int32, orderID uuid.UUID, reason string, operatorID uuid.UUID) error {
	oid := orderID
	err := h.store.Restock(ctx, &models.StockMovement{
		ID:        uuid.New(),
		ProductID: productID,
		OrderID:   &oid,
		Type:      models.StockIn,
		Quantity:  quantity,
		Reason:    reason,
		CreatedBy: operatorID,
		CreatedAt: h.now(),
	})
	if err != nil {
		return errors.Wrapf(err, "restock %s", productID)
	}
	log.WithFields(log.Fields{
		"product_id": productID,
		"quantity":   quantity,
		"order_id":   orderID,
		"reason":     reason,
	}).Info("stock returned")
	return nil
}

func (h *InventoryHandler) LowStock(ctx context.Context) ([]models.Product, error) {
	products, err := h.store.LowStock(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list low stock")
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// Movements lists a product's stock history, newest first.
func (h *InventoryHandler) Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	products, err := h.store.ProductsByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, poserr.Internal(err, "failed to load product")
	}
	if len(products) == 0 {
		return nil, poserr.NotFound("product %s not found", productID)
	}

	movements, err := h.store.Movements(ctx, productID)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list stock movements")
	}
	if movements == nil {
		movements = []models.StockMovement{}
	}
	return movements, nil
}
