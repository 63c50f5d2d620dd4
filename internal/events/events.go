// Package events fans order audit events out to subscribers and queues receipts
// for printing. Both are side effects after a successful write; callers log
// failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/money"
)

const (
	EventOrderCreated  = "order.created"
	EventOrderCanceled = "order.canceled"
	EventOrderPaid     = "order.paid"

	CHANNEL_PREFIX = "pos:events:"
	CHANNEL_ALL    = "pos:events:all"
	PRINT_QUEUE    = "pos:print:receipts"
)

// EventName maps a persisted event type to its channel suffix.
func EventName(t models.OrderEventType) string {
	switch t {
	case models.EventCreated:
		return EventOrderCreated
	case models.EventCanceled:
		return EventOrderCanceled
	case models.EventPaid:
		return EventOrderPaid
	}
	return "order." + string(t)
}

type Message struct {
	EventType  string              `json:"event_type"`
	OrderID    uuid.UUID           `json:"order_id"`
	OperatorID uuid.UUID           `json:"operator_id"`
	Status     models.OrderStatus  `json:"status"`
	Total      string              `json:"total"`
	Payload    models.EventPayload `json:"payload,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
}

// NewMessage builds the broadcast form of a persisted order event.
func NewMessage(o *models.Order, e *models.OrderEvent) Message {
	return Message{
		EventType:  EventName(e.EventType),
		OrderID:    o.ID,
		OperatorID: e.CreatedBy,
		Status:     o.Status,
		Total:      money.String(o.Total),
		Payload:    e.Payload,
		Timestamp:  e.CreatedAt,
	}
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

type RedisPublisher struct {
	redis *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{redis: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, msg Message) error {
	eventJSON, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	channel := fmt.Sprintf("%s%s", CHANNEL_PREFIX, msg.EventType)
	if err := p.redis.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return errors.Wrap(err, "failed to publish event")
	}

	if err := p.redis.Publish(ctx, CHANNEL_ALL, eventJSON).Err(); err != nil {
		return errors.Wrap(err, "failed to publish to all channel")
	}

	return nil
}

// LogPublisher writes events to the log; used when running without redis.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, msg Message) error {
	log.WithFields(log.Fields{
		"event":    msg.EventType,
		"order_id": msg.OrderID,
		"status":   msg.Status,
		"total":    msg.Total,
	}).Info("order event")
	return nil
}
