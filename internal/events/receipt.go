package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/money"
)

type ReceiptItem struct {
	Name      string   `json:"name"`
	Quantity  int32    `json:"quantity"`
	UnitPrice string   `json:"unit_price"`
	Modifiers []string `json:"modifiers,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

type ReceiptPayment struct {
	Method   string  `json:"method"`
	Amount   string  `json:"amount"`
	Received *string `json:"received,omitempty"`
	Change   *string `json:"change,omitempty"`
}

type Receipt struct {
	OrderID    uuid.UUID        `json:"order_id"`
	OrderType  models.OrderType `json:"order_type"`
	TableID    *uuid.UUID       `json:"table_id,omitempty"`
	OperatorID uuid.UUID        `json:"operator_id"`
	Items      []ReceiptItem    `json:"items"`
	Subtotal   string           `json:"subtotal"`
	Discount   string           `json:"discount"`
	ServiceFee string           `json:"service_fee"`
	Total      string           `json:"total"`
	Payments   []ReceiptPayment `json:"payments"`
	PaidAt     time.Time        `json:"paid_at"`
}

func optionalAmount(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money.String(*d)
	return &s
}

// NewReceipt renders a paid order and the payments that settled it.
func NewReceipt(o *models.Order, payments []models.Payment, operatorID uuid.UUID, paidAt time.Time) Receipt {
	r := Receipt{
		OrderID:    o.ID,
		OrderType:  o.OrderType,
		TableID:    o.TableID,
		OperatorID: operatorID,
		Subtotal:   money.String(o.Subtotal),
		Discount:   money.String(o.Discount),
		ServiceFee: money.String(o.ServiceFee),
		Total:      money.String(o.Total),
		PaidAt:     paidAt,
	}
	for _, it := range o.Items {
		item := ReceiptItem{
			Name:      it.ItemName,
			Quantity:  it.Quantity,
			UnitPrice: money.String(it.Price),
			Notes:     it.Notes,
		}
		for _, m := range it.Modifiers {
			item.Modifiers = append(item.Modifiers, m.ModifierName)
		}
		r.Items = append(r.Items, item)
	}
	for _, p := range payments {
		r.Payments = append(r.Payments, ReceiptPayment{
			Method:   p.Method,
			Amount:   money.String(p.Amount),
			Received: optionalAmount(p.ReceivedAmount),
			Change:   optionalAmount(p.ChangeAmount),
		})
	}
	return r
}

type Printer interface {
	PrintReceipt(ctx context.Context, r Receipt) error
}

// RedisPrinter pushes receipts onto a list drained by the printer agent.
type RedisPrinter struct {
	redis *redis.Client
	queue string
}

func NewRedisPrinter(client *redis.Client) *RedisPrinter {
	return &RedisPrinter{redis: client, queue: PRINT_QUEUE}
}

func (p *RedisPrinter) PrintReceipt(ctx context.Context, r Receipt) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal receipt")
	}
	if err := p.redis.RPush(ctx, p.queue, raw).Err(); err != nil {
		return errors.Wrap(err, "failed to queue receipt")
	}
	return nil
}

type LogPrinter struct{}

func (LogPrinter) PrintReceipt(ctx context.Context, r Receipt) error {
	log.WithFields(log.Fields{
		"order_id": r.OrderID,
		"total":    r.Total,
		"items":    len(r.Items),
		"payments": len(r.Payments),
	}).Info("receipt printed")
	return nil
}
