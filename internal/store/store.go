// Package store declares the persistence contract of the POS services.
//
// Every state transition is expressed as a conditional write: implementations
// apply the change only when the row still matches the expected prior state
// and report ErrConditionFailed otherwise. No method holds a lock across calls.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrDuplicate       = errors.New("store: duplicate")
	ErrConditionFailed = errors.New("store: condition not met")
)

type Catalog interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	// CombosByIDs returns combos with their Items loaded.
	CombosByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Combo, error)
	ModifiersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Modifier, error)
	ModifierGroupsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ModifierGroup, error)
	ProductModifierGroups(ctx context.Context, productIDs []uuid.UUID) ([]models.ProductModifierGroup, error)

	ActiveProducts(ctx context.Context) ([]models.Product, error)
	ActiveCombos(ctx context.Context) ([]models.Combo, error)
	// ActiveModifierGroups returns active groups with only their active modifiers loaded.
	ActiveModifierGroups(ctx context.Context) ([]models.ModifierGroup, error)
	PaymentMethods(ctx context.Context) ([]models.PaymentMethod, error)
}

type Cash interface {
	// CreateRegister fails with ErrDuplicate when a register is already OPEN.
	CreateRegister(ctx context.Context, r *models.CashRegister) error
	CurrentRegister(ctx context.Context) (*models.CashRegister, error)
	// CloseRegister closes the register only while it is OPEN and has no OPEN orders.
	CloseRegister(ctx context.Context, id uuid.UUID, closing decimal.Decimal, closedBy uuid.UUID, at time.Time) error
	CountOpenOrders(ctx context.Context, registerID uuid.UUID) (int64, error)

	// CreateShift fails with ErrDuplicate when the operator already has an OPEN shift.
	CreateShift(ctx context.Context, s *models.Shift) error
	CurrentShift(ctx context.Context, operatorID uuid.UUID) (*models.Shift, error)
	CloseShift(ctx context.Context, id uuid.UUID, closedBy uuid.UUID, note *string, at time.Time) error

	CreateCashMovement(ctx context.Context, m *models.CashMovement) error
	CashMovements(ctx context.Context, registerID uuid.UUID) ([]models.CashMovement, error)
	// RegisterPayments lists the payments of PAID orders taken on the register.
	RegisterPayments(ctx context.Context, registerID uuid.UUID) ([]models.Payment, error)
}

type OrderFilter struct {
	Status         *models.OrderStatus
	CashRegisterID *uuid.UUID
	ShiftID        *uuid.UUID
	Page           int
	PageSize       int
}

type Orders interface {
	// CreateOrder persists the order, its items and modifiers, and the CREATED
	// event as one unit. It fails with ErrConditionFailed when the order's
	// register is not OPEN.
	CreateOrder(ctx context.Context, o *models.Order, created *models.OrderEvent) error
	// GetOrder loads the order with items, modifiers, payments and events.
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	// CancelOrder moves OPEN to CANCELED only while no payment exists, then appends the event.
	CancelOrder(ctx context.Context, id uuid.UUID, canceled *models.OrderEvent) error

	CountPayments(ctx context.Context, orderID uuid.UUID) (int64, error)
	InsertPayments(ctx context.Context, payments []models.Payment) error
	DeletePayments(ctx context.Context, ids []uuid.UUID) error
	// TransitionOrder is a compare-and-swap on the order status.
	TransitionOrder(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error
	AppendEvent(ctx context.Context, e *models.OrderEvent) error
}

type Stock interface {
	// DecrementIfSufficient subtracts m.Quantity from a tracked product whose
	// stock covers it and records m. It returns false when stock is short.
	DecrementIfSufficient(ctx context.Context, m *models.StockMovement) (bool, error)
	// Restock adds m.Quantity back and records m.
	Restock(ctx context.Context, m *models.StockMovement) error
	Movements(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	LowStock(ctx context.Context) ([]models.Product, error)
}

type Tables interface {
	GetTable(ctx context.Context, id uuid.UUID) (*models.Table, error)
	// CreateTableSession fails with ErrDuplicate when the table already has an OPEN session.
	CreateTableSession(ctx context.Context, s *models.TableSession) error
	GetTableSession(ctx context.Context, id uuid.UUID) (*models.TableSession, error)
	CloseTableSession(ctx context.Context, id uuid.UUID, closedBy uuid.UUID, at time.Time) error
}

type Store interface {
	Catalog
	Cash
	Orders
	Stock
	Tables

	Ping(ctx context.Context) error
}
