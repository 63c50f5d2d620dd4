package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockMovementType string

const (
	StockOut StockMovementType = "OUT"
	StockIn  StockMovementType = "IN"
)

type Category struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"type:varchar(128);not null" json:"name"`
	Active bool      `gorm:"not null" json:"active"`
}

type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(128);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CategoryID *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Active     bool            `gorm:"not null" json:"active"`
	TrackStock bool            `gorm:"not null;default:false" json:"track_stock"`
	StockQty   int32           `gorm:"not null;default:0" json:"stock_qty"`
	MinStock   int32           `gorm:"not null;default:0" json:"min_stock"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type Combo struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(128);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CategoryID *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Active     bool            `gorm:"not null" json:"active"`

	Items []ComboItem `gorm:"foreignKey:ComboID" json:"items,omitempty"`
}

type ComboItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ComboID   uuid.UUID `gorm:"type:uuid;not null;index" json:"combo_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Quantity  int32     `gorm:"not null" json:"quantity"`
}

type ModifierGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	MinSelect int32     `gorm:"not null;default:0" json:"min_select"`
	MaxSelect int32     `gorm:"not null;default:0" json:"max_select"`
	Required  bool      `gorm:"not null;default:false" json:"required"`
	Active    bool      `gorm:"not null" json:"active"`

	Modifiers []Modifier `gorm:"foreignKey:GroupID" json:"modifiers,omitempty"`
}

type Modifier struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID uuid.UUID       `gorm:"type:uuid;not null;index" json:"group_id"`
	Name    string          `gorm:"type:varchar(128);not null" json:"name"`
	Price   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Active  bool            `gorm:"not null" json:"active"`
}

type ProductModifierGroup struct {
	ProductID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	ModifierGroupID uuid.UUID `gorm:"type:uuid;primaryKey" json:"modifier_group_id"`
	SortOrder       int32     `gorm:"not null;default:0" json:"sort_order"`
}

// StockMovement rows are append-only; compensations add an IN row.
type StockMovement struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	OrderID   *uuid.UUID        `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Type      StockMovementType `gorm:"type:varchar(8);not null" json:"type"`
	Quantity  int32             `gorm:"not null" json:"quantity"`
	Reason    string            `gorm:"type:text;not null" json:"reason"`
	CreatedBy uuid.UUID         `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time         `json:"created_at"`
}
