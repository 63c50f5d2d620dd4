package handler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/events"
	"syntra-pos/internal/money"
	"syntra-pos/internal/poserr"
	inventory "syntra-pos/internal/services/inventory/handler"
	"syntra-pos/internal/services/pos/pricing"
	"syntra-pos/internal/store"
)

const (
	DEFAULT_PAGE_SIZE = 20
	MAX_PAGE_SIZE     = 100
)

type CatalogReader interface {
	Snapshot(ctx context.Context, refs pricing.Refs) (*pricing.Snapshot, error)
	Invalidate(ctx context.Context)
}

type StockLedger interface {
	Decrement(ctx context.Context, d inventory.Demand, orderID, operatorID uuid.UUID) (bool, error)
	Restock(ctx context.Context, productID uuid.UUID, quantity int32, orderID uuid.UUID, reason string, operatorID uuid.UUID) error
}

type ShiftOpener interface {
	EnsureShift(ctx context.Context, operatorID, registerID uuid.UUID) (*models.Shift, error)
}

type Deps struct {
	Store     store.Store
	Catalog   CatalogReader
	Stock     StockLedger
	Shifts    ShiftOpener
	Publisher events.Publisher
	Printer   events.Printer
	// AutoOpenShift opens a shift for operators creating an order without one.
	AutoOpenShift bool
}

type POSHandler struct {
	store         store.Store
	catalog       CatalogReader
	stock         StockLedger
	shifts        ShiftOpener
	publisher     events.Publisher
	printer       events.Printer
	autoOpenShift bool
	now           func() time.Time
}

func NewPOSHandler(d Deps) *POSHandler {
	h := &POSHandler{
		store:         d.Store,
		catalog:       d.Catalog,
		stock:         d.Stock,
		shifts:        d.Shifts,
		publisher:     d.Publisher,
		printer:       d.Printer,
		autoOpenShift: d.AutoOpenShift,
		now:           func() time.Time { return time.Now().UTC() },
	}
	if h.publisher == nil {
		h.publisher = events.LogPublisher{}
	}
	if h.printer == nil {
		h.printer = events.LogPrinter{}
	}
	return h
}

func strPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func totalsPayload(o *models.Order) models.EventPayload {
	return models.EventPayload{
		"subtotal":    money.String(o.Subtotal),
		"discount":    money.String(o.Discount),
		"service_fee": money.String(o.ServiceFee),
		"total":       money.String(o.Total),
	}
}

func (h *POSHandler) publish(ctx context.Context, o *models.Order, e *models.OrderEvent) {
	if err := h.publisher.Publish(ctx, events.NewMessage(o, e)); err != nil {
		log.WithError(err).WithField("order_id", o.ID).Warn("failed to publish order event")
	}
}

// CreateOrder prices the cart against the live catalog and persists the order
// with its items, modifiers and CREATED event in one unit.
func (h *POSHandler) CreateOrder(ctx context.Context, operatorID uuid.UUID, cart pricing.Cart) (*models.Order, error) {
	if operatorID == uuid.Nil {
		return nil, poserr.Unauthenticated()
	}
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	reg, err := h.store.CurrentRegister(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.RegisterClosed()
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load register")
	}

	shift, err := h.store.CurrentShift(ctx, operatorID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if !h.autoOpenShift || h.shifts == nil {
			return nil, poserr.ShiftRequired()
		}
		if shift, err = h.shifts.EnsureShift(ctx, operatorID, reg.ID); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, poserr.Internal(err, "failed to load shift")
	}

	snap, err := h.catalog.Snapshot(ctx, cart.Refs())
	if err != nil {
		return nil, err
	}
	priced, err := pricing.Price(cart, snap)
	if err != nil {
		return nil, err
	}

	order := h.buildOrder(priced, reg.ID, shift.ID, operatorID)
	created := &models.OrderEvent{
		ID:        uuid.New(),
		OrderID:   order.ID,
		EventType: models.EventCreated,
		Payload:   totalsPayload(order),
		CreatedBy: operatorID,
		CreatedAt: order.CreatedAt,
	}

	if err := h.store.CreateOrder(ctx, order, created); err != nil {
		switch {
		case errors.Is(err, store.ErrConditionFailed):
			return nil, poserr.RegisterClosed()
		case errors.Is(err, store.ErrDuplicate):
			return nil, poserr.Conflict("order items collide with an existing order")
		}
		return nil, poserr.Internal(err, "failed to create order")
	}

	order.Events = []models.OrderEvent{*created}
	h.publish(ctx, order, created)

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"register_id": reg.ID,
		"shift_id":    shift.ID,
		"operator_id": operatorID,
		"items":       len(order.Items),
		"total":       money.String(order.Total),
	}).Info("order created")
	return order, nil
}

func (h *POSHandler) buildOrder(p *pricing.PricedOrder, registerID, shiftID, operatorID uuid.UUID) *models.Order {
	now := h.now()
	o := &models.Order{
		ID:              uuid.New(),
		CashRegisterID:  registerID,
		ShiftID:         shiftID,
		OperatorID:      operatorID,
		OrderType:       p.OrderType,
		TableSessionID:  p.TableSessionID,
		TableID:         p.TableID,
		Subtotal:        p.Totals.Subtotal,
		Discount:        p.Totals.Discount,
		DiscountType:    p.DiscountType,
		DiscountValue:   p.DiscountValue,
		ServiceFee:      p.Totals.ServiceFee,
		ServiceFeeType:  p.ServiceFeeType,
		ServiceFeeValue: p.ServiceFeeValue,
		Total:           p.Totals.Total,
		Status:          models.OrderOpen,
		Notes:           strPtr(p.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, line := range p.Lines {
		item := models.OrderItem{
			ID:              uuid.New(),
			OrderID:         o.ID,
			ItemType:        line.ItemType,
			ProductID:       line.ProductID,
			ComboID:         line.ComboID,
			ItemName:        line.Name,
			ClientReference: line.ClientReference,
			Quantity:        line.Quantity,
			Price:           line.UnitPrice,
			Notes:           strPtr(line.Notes),
			CreatedAt:       now,
		}
		for _, m := range line.Modifiers {
			item.Modifiers = append(item.Modifiers, models.OrderItemModifier{
				ID:           uuid.New(),
				OrderItemID:  item.ID,
				ModifierID:   m.ModifierID,
				ModifierName: m.Name,
				Quantity:     m.Quantity,
				Price:        m.UnitPrice,
			})
		}
		o.Items = append(o.Items, item)
	}
	return o
}

// CancelOrder is legal only while the order is OPEN and has no payments.
func (h *POSHandler) CancelOrder(ctx context.Context, operatorID, orderID uuid.UUID, reason string) (*models.Order, error) {
	if operatorID == uuid.Nil {
		return nil, poserr.Unauthenticated()
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, poserr.Validation("cancel reason is required")
	}

	order, err := h.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderOpen {
		return nil, poserr.NotCancelable("order is %s", order.Status)
	}
	if len(order.Payments) > 0 {
		return nil, poserr.NotCancelable("order already has payments")
	}

	canceled := &models.OrderEvent{
		ID:        uuid.New(),
		OrderID:   order.ID,
		EventType: models.EventCanceled,
		Payload:   models.EventPayload{"reason": reason},
		CreatedBy: operatorID,
		CreatedAt: h.now(),
	}
	if err := h.store.CancelOrder(ctx, order.ID, canceled); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return nil, poserr.NotCancelable("order changed while canceling")
		}
		return nil, poserr.Internal(err, "failed to cancel order")
	}

	order.Status = models.OrderCanceled
	order.Events = append(order.Events, *canceled)
	h.publish(ctx, order, canceled)

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"operator_id": operatorID,
		"reason":      reason,
	}).Info("order canceled")
	return order, nil
}

func (h *POSHandler) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := h.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load order")
	}
	return order, nil
}

// OrderPage is one page of orders plus the paging actually applied.
type OrderPage struct {
	Orders   []models.Order
	Total    int64
	Page     int
	PageSize int
}

func (h *POSHandler) ListOrders(ctx context.Context, f store.OrderFilter) (*OrderPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DEFAULT_PAGE_SIZE
	}
	if f.PageSize > MAX_PAGE_SIZE {
		f.PageSize = MAX_PAGE_SIZE
	}
	orders, total, err := h.store.ListOrders(ctx, f)
	if err != nil {
		return nil, poserr.Internal(err, "failed to list orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderPage{Orders: orders, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}
