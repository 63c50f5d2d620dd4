package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the fee model for an opaque tender; no acquirer protocol is spoken.
type PaymentMethod struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Name       string          `gorm:"type:varchar(64);not null" json:"name"`
	Active     bool            `gorm:"not null" json:"active"`
	IsCash     bool            `gorm:"not null;default:false" json:"is_cash"`
	FeePercent decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0" json:"fee_percent"`
	FeeFixed   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"fee_fixed"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func DefaultPaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		{Code: "CASH", Name: "Cash", Active: true, IsCash: true, FeePercent: decimal.Zero, FeeFixed: decimal.Zero},
		{Code: "PIX", Name: "PIX", Active: true, FeePercent: decimal.Zero, FeeFixed: decimal.Zero},
		{Code: "CARD", Name: "Card", Active: true, FeePercent: decimal.RequireFromString("2.5"), FeeFixed: decimal.Zero},
	}
}
