package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntra-pos/internal/database/models"
)

func TestEventName(t *testing.T) {
	assert.Equal(t, EventOrderCreated, EventName(models.EventCreated))
	assert.Equal(t, EventOrderCanceled, EventName(models.EventCanceled))
	assert.Equal(t, EventOrderPaid, EventName(models.EventPaid))
}

func TestNewReceipt(t *testing.T) {
	received := decimal.RequireFromString("20")
	change := decimal.RequireFromString("5.8")
	order := &models.Order{
		ID:         uuid.New(),
		OrderType:  models.OrderCounter,
		Subtotal:   decimal.RequireFromString("27"),
		Discount:   decimal.RequireFromString("5"),
		ServiceFee: decimal.RequireFromString("2.2"),
		Total:      decimal.RequireFromString("24.2"),
		Items: []models.OrderItem{
			{ItemName: "Fries", Quantity: 1, Price: decimal.RequireFromString("10")},
			{ItemName: "Burger", Quantity: 1, Price: decimal.RequireFromString("17"), Modifiers: []models.OrderItemModifier{
				{ModifierName: "Cheese", Quantity: 1, Price: decimal.RequireFromString("2")},
			}},
		},
	}
	payments := []models.Payment{
		{Method: "CASH", Amount: decimal.RequireFromString("14.2"), ReceivedAmount: &received, ChangeAmount: &change},
		{Method: "PIX", Amount: decimal.RequireFromString("10")},
	}

	r := NewReceipt(order, payments, uuid.New(), time.Now())

	assert.Equal(t, "24.20", r.Total)
	assert.Equal(t, "2.20", r.ServiceFee)
	require.Len(t, r.Items, 2)
	assert.Equal(t, []string{"Cheese"}, r.Items[1].Modifiers)
	assert.Equal(t, "17.00", r.Items[1].UnitPrice)
	require.Len(t, r.Payments, 2)
	require.NotNil(t, r.Payments[0].Change)
	assert.Equal(t, "5.80", *r.Payments[0].Change)
	assert.Nil(t, r.Payments[1].Received)
}
