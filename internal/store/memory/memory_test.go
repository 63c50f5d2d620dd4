package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store"
)

func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := models.Product{ID: uuid.New(), Name: "Burger", Active: true, TrackStock: true, StockQty: 5}
	s.PutProduct(p)

	var applied int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.DecrementIfSufficient(ctx, &models.StockMovement{
				ID: uuid.New(), ProductID: p.ID, Type: models.StockOut, Quantity: 1, Reason: "order sale",
			})
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&applied, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), applied)
	got, _ := s.Product(p.ID)
	assert.Zero(t, got.StockQty)
	movements, err := s.Movements(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, movements, 5)
}

func TestSingleOpenRegisterAndCloseCondition(t *testing.T) {
	ctx := context.Background()
	s := New()
	op := uuid.New()

	reg := &models.CashRegister{ID: uuid.New(), Status: models.RegisterOpen, OpenedBy: op, OpenedAt: time.Now()}
	require.NoError(t, s.CreateRegister(ctx, reg))
	err := s.CreateRegister(ctx, &models.CashRegister{ID: uuid.New(), Status: models.RegisterOpen, OpenedBy: op})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	o := &models.Order{ID: uuid.New(), CashRegisterID: reg.ID, Status: models.OrderOpen, Items: []models.OrderItem{
		{ID: uuid.New(), ClientReference: "a", Quantity: 1},
	}}
	require.NoError(t, s.CreateOrder(ctx, o, &models.OrderEvent{ID: uuid.New(), OrderID: o.ID, EventType: models.EventCreated}))

	err = s.CloseRegister(ctx, reg.ID, decimal.Zero, op, time.Now())
	assert.ErrorIs(t, err, store.ErrConditionFailed)

	require.NoError(t, s.TransitionOrder(ctx, o.ID, models.OrderOpen, models.OrderPaid))
	require.NoError(t, s.CloseRegister(ctx, reg.ID, decimal.Zero, op, time.Now()))

	late := &models.Order{ID: uuid.New(), CashRegisterID: reg.ID, Status: models.OrderOpen}
	err = s.CreateOrder(ctx, late, &models.OrderEvent{ID: uuid.New(), OrderID: late.ID})
	assert.ErrorIs(t, err, store.ErrConditionFailed, "orders cannot attach to a closed register")
}

func TestCancelAndTransitionAreConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	reg := &models.CashRegister{ID: uuid.New(), Status: models.RegisterOpen}
	require.NoError(t, s.CreateRegister(ctx, reg))

	o := &models.Order{ID: uuid.New(), CashRegisterID: reg.ID, Status: models.OrderOpen}
	require.NoError(t, s.CreateOrder(ctx, o, &models.OrderEvent{ID: uuid.New(), OrderID: o.ID}))
	require.NoError(t, s.InsertPayments(ctx, []models.Payment{{ID: uuid.New(), OrderID: o.ID, Amount: decimal.NewFromInt(1)}}))

	err := s.CancelOrder(ctx, o.ID, &models.OrderEvent{ID: uuid.New(), OrderID: o.ID, EventType: models.EventCanceled})
	assert.ErrorIs(t, err, store.ErrConditionFailed)

	require.NoError(t, s.TransitionOrder(ctx, o.ID, models.OrderOpen, models.OrderPaid))
	assert.ErrorIs(t, s.TransitionOrder(ctx, o.ID, models.OrderOpen, models.OrderPaid), store.ErrConditionFailed)

	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaid, got.Status)
	assert.Len(t, got.Payments, 1)
	assert.Len(t, got.Events, 1)

	_, err = s.GetOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetOrderKeepsPaymentOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	reg := &models.CashRegister{ID: uuid.New(), Status: models.RegisterOpen}
	require.NoError(t, s.CreateRegister(ctx, reg))
	o := &models.Order{ID: uuid.New(), CashRegisterID: reg.ID, Status: models.OrderOpen}
	require.NoError(t, s.CreateOrder(ctx, o, &models.OrderEvent{ID: uuid.New(), OrderID: o.ID}))

	at := time.Now().UTC()
	methods := []string{"CASH", "PIX", "CARD", "PIX", "CASH", "CARD"}
	payments := make([]models.Payment, len(methods))
	for i, m := range methods {
		payments[i] = models.Payment{ID: uuid.New(), OrderID: o.ID, Position: int32(i + 1), Method: m,
			Amount: decimal.NewFromInt(int64(i + 1)), CreatedAt: at}
	}
	require.NoError(t, s.InsertPayments(ctx, payments))

	for i := 0; i < 10; i++ {
		got, err := s.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Payments, len(methods))
		for j, p := range got.Payments {
			assert.Equal(t, int32(j+1), p.Position)
			assert.Equal(t, methods[j], p.Method)
		}
	}
}
