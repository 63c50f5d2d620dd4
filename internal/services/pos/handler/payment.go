package handler

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/events"
	"syntra-pos/internal/money"
	"syntra-pos/internal/poserr"
	inventory "syntra-pos/internal/services/inventory/handler"
	"syntra-pos/internal/store"
)

// PaymentRequest is one tender. Received and Change apply to cash methods only.
type PaymentRequest struct {
	Method   string
	Amount   decimal.Decimal
	Received *decimal.Decimal
	Change   *decimal.Decimal
}

// FinalizePayment settles an OPEN order. Steps run as a saga: payments are
// inserted, the order moves OPEN to PAID by compare-and-swap, stock is
// decremented product by product and the PAID event is appended. Any failure
// after the first write undoes every step already applied.
func (h *POSHandler) FinalizePayment(ctx context.Context, operatorID, orderID uuid.UUID, reqs []PaymentRequest) (*models.Order, error) {
	if operatorID == uuid.Nil {
		return nil, poserr.Unauthenticated()
	}
	if len(reqs) == 0 {
		return nil, poserr.Validation("at least one payment is required")
	}

	order, err := h.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, poserr.InvalidOrder("order %s does not exist", orderID)
	}
	if err != nil {
		return nil, poserr.Internal(err, "failed to load order")
	}
	if order.Status != models.OrderOpen {
		return nil, poserr.InvalidOrder("order is %s", order.Status)
	}

	count, err := h.store.CountPayments(ctx, order.ID)
	if err != nil {
		return nil, poserr.Internal(err, "failed to count payments")
	}
	if count > 0 {
		return nil, poserr.AlreadyPaid()
	}

	payments, err := h.buildPayments(ctx, order.ID, reqs)
	if err != nil {
		return nil, err
	}

	var paidCents int64
	for _, p := range payments {
		paidCents += money.Cents(p.Amount)
	}
	if paidCents != money.Cents(order.Total) {
		return nil, poserr.AmountMismatch(money.String(money.FromCents(paidCents)), money.String(order.Total))
	}

	demand, err := h.stockDemand(ctx, order)
	if err != nil {
		return nil, err
	}

	s := &settlement{
		h:        h,
		order:    order,
		operator: operatorID,
		payments: payments,
		demand:   demand,
	}
	if err := s.run(ctx); err != nil {
		return nil, err
	}

	order.Status = models.OrderPaid
	order.Payments = payments
	order.Events = append(order.Events, *s.event)

	h.publish(ctx, order, s.event)
	receipt := events.NewReceipt(order, payments, operatorID, s.event.CreatedAt)
	if err := h.printer.PrintReceipt(ctx, receipt); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Warn("failed to print receipt")
	}
	if len(demand) > 0 {
		h.catalog.Invalidate(ctx)
	}

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"operator_id": operatorID,
		"payments":    len(payments),
		"total":       money.String(order.Total),
	}).Info("order paid")
	return order, nil
}

func (h *POSHandler) buildPayments(ctx context.Context, orderID uuid.UUID, reqs []PaymentRequest) ([]models.Payment, error) {
	methods, err := h.store.PaymentMethods(ctx)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load payment methods")
	}
	byCode := make(map[string]models.PaymentMethod, len(methods))
	for _, m := range methods {
		byCode[m.Code] = m
	}

	now := h.now()
	payments := make([]models.Payment, 0, len(reqs))
	for i, r := range reqs {
		code := strings.ToUpper(strings.TrimSpace(r.Method))
		m, ok := byCode[code]
		if !ok || !m.Active {
			return nil, poserr.Validation("payment %d: unknown or inactive method %q", i+1, r.Method)
		}
		if !r.Amount.IsPositive() || !money.IsExactCents(r.Amount) {
			return nil, poserr.Validation("payment %d: amount must be a positive value in cents", i+1)
		}
		amount := money.Round(r.Amount)

		p := models.Payment{
			ID:        uuid.New(),
			OrderID:   orderID,
			Position:  int32(i + 1),
			Method:    m.Code,
			Amount:    amount,
			FeeAmount: money.Round(money.Percent(amount, m.FeePercent).Add(m.FeeFixed)),
			CreatedAt: now,
		}

		if m.IsCash {
			received := amount
			if r.Received != nil {
				received = *r.Received
			}
			if !money.IsExactCents(received) {
				return nil, poserr.Validation("payment %d: received must be a value in cents", i+1)
			}
			if received.LessThan(amount) {
				return nil, poserr.Validation("payment %d: received %s is less than amount %s", i+1, money.String(received), money.String(amount))
			}
			change := money.Round(received.Sub(amount))
			if r.Change != nil && !r.Change.Equal(change) {
				return nil, poserr.Validation("payment %d: change %s does not match %s", i+1, money.String(*r.Change), money.String(change))
			}
			received = money.Round(received)
			p.ReceivedAmount = &received
			p.ChangeAmount = &change
		} else if r.Received != nil || r.Change != nil {
			return nil, poserr.Validation("payment %d: received and change apply to cash only", i+1)
		}

		payments = append(payments, p)
	}
	return payments, nil
}

func (h *POSHandler) stockDemand(ctx context.Context, order *models.Order) ([]inventory.Demand, error) {
	var productIDs, comboIDs []uuid.UUID
	for _, it := range order.Items {
		if it.ProductID != nil {
			productIDs = append(productIDs, *it.ProductID)
		}
		if it.ComboID != nil {
			comboIDs = append(comboIDs, *it.ComboID)
		}
	}

	combos, err := h.store.CombosByIDs(ctx, comboIDs)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load combos")
	}
	comboMap := make(map[uuid.UUID]models.Combo, len(combos))
	for _, c := range combos {
		comboMap[c.ID] = c
		for _, ci := range c.Items {
			productIDs = append(productIDs, ci.ProductID)
		}
	}

	products, err := h.store.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, poserr.Internal(err, "failed to load products")
	}
	productMap := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	return inventory.StockDemand(order.Items, productMap, comboMap)
}

// settlement tracks which saga steps have been applied so they can be undone.
type settlement struct {
	h        *POSHandler
	order    *models.Order
	operator uuid.UUID
	payments []models.Payment
	demand   []inventory.Demand

	paymentsInserted bool
	orderPaid        bool
	applied          []inventory.Demand
	event            *models.OrderEvent
}

func (s *settlement) run(ctx context.Context) error {
	st := s.h.store

	if err := st.InsertPayments(ctx, s.payments); err != nil {
		return poserr.Internal(err, "failed to record payments")
	}
	s.paymentsInserted = true

	if err := st.TransitionOrder(ctx, s.order.ID, models.OrderOpen, models.OrderPaid); err != nil {
		s.compensate(ctx, err)
		if errors.Is(err, store.ErrConditionFailed) {
			return poserr.ConcurrentSettlement()
		}
		return poserr.Internal(err, "failed to mark order paid")
	}
	s.orderPaid = true

	for _, d := range s.demand {
		ok, err := s.h.stock.Decrement(ctx, d, s.order.ID, s.operator)
		if err != nil {
			s.compensate(ctx, err)
			return poserr.Internal(err, "failed to decrement stock")
		}
		if !ok {
			short := poserr.InsufficientStock(d.ProductName)
			s.compensate(ctx, short)
			return short
		}
		s.applied = append(s.applied, d)
	}

	s.event = &models.OrderEvent{
		ID:        uuid.New(),
		OrderID:   s.order.ID,
		EventType: models.EventPaid,
		Payload:   paidPayload(s.order, s.payments),
		CreatedBy: s.operator,
		CreatedAt: s.h.now(),
	}
	if err := st.AppendEvent(ctx, s.event); err != nil {
		s.compensate(ctx, err)
		return poserr.Internal(err, "failed to record payment event")
	}
	return nil
}

// compensate undoes applied steps in reverse order. It runs detached from the
// request context so a canceled request still unwinds.
func (s *settlement) compensate(ctx context.Context, cause error) {
	ctx = context.WithoutCancel(ctx)
	entry := log.WithError(cause).WithField("order_id", s.order.ID)

	for i := len(s.applied) - 1; i >= 0; i-- {
		d := s.applied[i]
		if err := s.h.stock.Restock(ctx, d.ProductID, d.Quantity, s.order.ID, inventory.REASON_SETTLEMENT_ROLLBACK, s.operator); err != nil {
			entry.WithError(err).WithField("product_id", d.ProductID).Error("failed to restock during rollback")
		}
	}

	if s.paymentsInserted {
		ids := make([]uuid.UUID, len(s.payments))
		for i, p := range s.payments {
			ids[i] = p.ID
		}
		if err := s.h.store.DeletePayments(ctx, ids); err != nil {
			entry.WithError(err).Error("failed to delete payments during rollback")
		}
	}

	if s.orderPaid {
		if err := s.h.store.TransitionOrder(ctx, s.order.ID, models.OrderPaid, models.OrderOpen); err != nil {
			entry.WithError(err).Error("failed to reopen order during rollback")
		}
	}

	entry.WithFields(log.Fields{
		"restocked":   len(s.applied),
		"order_reset": s.orderPaid,
	}).Warn("settlement rolled back")
}

func paidPayload(o *models.Order, payments []models.Payment) models.EventPayload {
	lines := make([]interface{}, 0, len(payments))
	for _, p := range payments {
		line := map[string]interface{}{
			"method": p.Method,
			"amount": money.String(p.Amount),
			"fee":    money.String(p.FeeAmount),
		}
		if p.ReceivedAmount != nil {
			line["received"] = money.String(*p.ReceivedAmount)
		}
		if p.ChangeAmount != nil {
			line["change"] = money.String(*p.ChangeAmount)
		}
		lines = append(lines, line)
	}
	return models.EventPayload{
		"total":    money.String(o.Total),
		"payments": lines,
	}
}
