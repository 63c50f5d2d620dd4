package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "OPEN"
	RegisterClosed RegisterStatus = "CLOSED"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "OPEN"
	ShiftClosed ShiftStatus = "CLOSED"
)

type CashMovementType string

const (
	CashSupply   CashMovementType = "SUPPLY"
	CashWithdraw CashMovementType = "WITHDRAW"
)

type OrderType string

const (
	OrderCounter OrderType = "COUNTER"
	OrderTable   OrderType = "TABLE"
)

type OrderStatus string

const (
	OrderOpen     OrderStatus = "OPEN"
	OrderPaid     OrderStatus = "PAID"
	OrderCanceled OrderStatus = "CANCELED"
)

type AdjustmentType string

const (
	AdjustmentNone    AdjustmentType = "NONE"
	AdjustmentPercent AdjustmentType = "PERCENT"
	AdjustmentFixed   AdjustmentType = "FIXED"
)

type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemCombo   ItemType = "COMBO"
)

type OrderEventType string

const (
	EventCreated  OrderEventType = "CREATED"
	EventCanceled OrderEventType = "CANCELED"
	EventPaid     OrderEventType = "PAID"
)

type TableSessionStatus string

const (
	TableSessionOpen   TableSessionStatus = "OPEN"
	TableSessionClosed TableSessionStatus = "CLOSED"
)

// EventPayload is stored as jsonb.
type EventPayload map[string]interface{}

func (p *EventPayload) Scan(value interface{}) error {
	if value == nil {
		*p = EventPayload{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan EventPayload: %v", value)
	}

	return json.Unmarshal(bytes, p)
}

func (p EventPayload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type CashRegister struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OpeningAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"opening_amount"`
	ClosingAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"closing_amount,omitempty"`
	OpenedAt      time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time       `json:"closed_at,omitempty"`
	Status        RegisterStatus   `gorm:"type:varchar(16);not null;index" json:"status"`
	OpenedBy      uuid.UUID        `gorm:"type:uuid;not null" json:"opened_by"`
	ClosedBy      *uuid.UUID       `gorm:"type:uuid" json:"closed_by,omitempty"`
}

type Shift struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OpenedBy       uuid.UUID   `gorm:"type:uuid;not null;index" json:"opened_by"`
	CashRegisterID *uuid.UUID  `gorm:"type:uuid;index" json:"cash_register_id,omitempty"`
	OpenedAt       time.Time   `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time  `json:"closed_at,omitempty"`
	ClosedBy       *uuid.UUID  `gorm:"type:uuid" json:"closed_by,omitempty"`
	Status         ShiftStatus `gorm:"type:varchar(16);not null" json:"status"`
	NoteOpen       *string     `gorm:"type:text" json:"note_open,omitempty"`
	NoteClose      *string     `gorm:"type:text" json:"note_close,omitempty"`
}

type CashMovement struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CashRegisterID uuid.UUID        `gorm:"type:uuid;not null;index" json:"cash_register_id"`
	ShiftID        *uuid.UUID       `gorm:"type:uuid" json:"shift_id,omitempty"`
	Type           CashMovementType `gorm:"type:varchar(16);not null" json:"type"`
	Amount         decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Reason         string           `gorm:"type:text;not null" json:"reason"`
	CreatedBy      uuid.UUID        `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CashRegisterID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"cash_register_id"`
	ShiftID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"shift_id"`
	OperatorID      uuid.UUID       `gorm:"type:uuid;not null" json:"operator_id"`
	OrderType       OrderType       `gorm:"type:varchar(16);not null" json:"order_type"`
	TableSessionID  *uuid.UUID      `gorm:"type:uuid" json:"table_session_id,omitempty"`
	TableID         *uuid.UUID      `gorm:"type:uuid" json:"table_id,omitempty"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount"`
	DiscountType    AdjustmentType  `gorm:"type:varchar(16);not null" json:"discount_type"`
	DiscountValue   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"discount_value"`
	ServiceFee      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_fee"`
	ServiceFeeType  AdjustmentType  `gorm:"type:varchar(16);not null" json:"service_fee_type"`
	ServiceFeeValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"service_fee_value"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status          OrderStatus     `gorm:"type:varchar(16);not null;index" json:"status"`
	Notes           *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Items    []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payments []Payment    `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	Events   []OrderEvent `gorm:"foreignKey:OrderID" json:"events,omitempty"`
}

type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:ux_order_items_client_reference" json:"order_id"`
	ItemType        ItemType        `gorm:"type:varchar(16);not null" json:"item_type"`
	ProductID       *uuid.UUID      `gorm:"type:uuid" json:"product_id,omitempty"`
	ComboID         *uuid.UUID      `gorm:"type:uuid" json:"combo_id,omitempty"`
	ItemName        string          `gorm:"type:varchar(128);not null" json:"item_name"`
	ClientReference string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_order_items_client_reference" json:"client_reference"`
	Quantity        int32           `gorm:"not null" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Notes           *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	Modifiers []OrderItemModifier `gorm:"foreignKey:OrderItemID" json:"modifiers,omitempty"`
}

type OrderItemModifier struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderItemID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_item_id"`
	ModifierID   uuid.UUID       `gorm:"type:uuid;not null" json:"modifier_id"`
	ModifierName string          `gorm:"type:varchar(128);not null" json:"modifier_name"`
	Quantity     int32           `gorm:"not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

type Payment struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"order_id"`
	Position       int32            `gorm:"not null;default:0" json:"position"`
	Method         string           `gorm:"type:varchar(32);not null" json:"method"`
	Amount         decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount"`
	ReceivedAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"received_amount,omitempty"`
	ChangeAmount   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"change_amount,omitempty"`
	FeeAmount      decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"fee_amount"`
	CreatedAt      time.Time        `json:"created_at"`
}

// OrderEvent rows are append-only.
type OrderEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	EventType OrderEventType `gorm:"type:varchar(16);not null" json:"event_type"`
	Payload   EventPayload   `gorm:"type:jsonb;not null" json:"payload"`
	CreatedBy uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}

type Table struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	SortOrder int32     `gorm:"not null;default:0" json:"sort_order"`
	Active    bool      `gorm:"not null" json:"active"`
}

type TableSession struct {
	ID       uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	TableID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"table_id"`
	OpenedBy uuid.UUID          `gorm:"type:uuid;not null" json:"opened_by"`
	OpenedAt time.Time          `gorm:"not null" json:"opened_at"`
	ClosedAt *time.Time         `json:"closed_at,omitempty"`
	ClosedBy *uuid.UUID         `gorm:"type:uuid" json:"closed_by,omitempty"`
	Status   TableSessionStatus `gorm:"type:varchar(16);not null" json:"status"`
}
