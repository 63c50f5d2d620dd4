package pricing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/poserr"
)

const (
	MAX_LINE_QUANTITY     = 10000
	MAX_MODIFIER_QUANTITY = 100
)

type ModifierRequest struct {
	ModifierID uuid.UUID
	Quantity   int32
}

// LineRequest is one cart line; ItemType selects whether ItemID names a product or a combo.
type LineRequest struct {
	ItemType        models.ItemType
	ItemID          uuid.UUID
	ClientReference string
	Quantity        int32
	Notes           *string
	Modifiers       []ModifierRequest
}

type Cart struct {
	Items           []LineRequest
	OrderType       models.OrderType
	TableSessionID  *uuid.UUID
	DiscountType    models.AdjustmentType
	DiscountValue   decimal.Decimal
	ServiceFeeType  models.AdjustmentType
	ServiceFeeValue decimal.Decimal
	Notes           *string
}

// Refs lists every catalog row a cart points at.
type Refs struct {
	ProductIDs     []uuid.UUID
	ComboIDs       []uuid.UUID
	ModifierIDs    []uuid.UUID
	TableSessionID *uuid.UUID
}

func validAdjustment(t models.AdjustmentType) bool {
	switch t {
	case models.AdjustmentNone, models.AdjustmentPercent, models.AdjustmentFixed:
		return true
	}
	return false
}

// Validate checks the cart's shape, fills defaults and trims client references.
// It never looks at the catalog.
func (c *Cart) Validate() error {
	if len(c.Items) == 0 {
		return poserr.Validation("order must contain at least one item")
	}

	if c.OrderType == "" {
		c.OrderType = models.OrderCounter
	}
	switch c.OrderType {
	case models.OrderCounter:
		if c.TableSessionID != nil {
			return poserr.Validation("table_session_id is only allowed on TABLE orders")
		}
	case models.OrderTable:
		if c.TableSessionID == nil || *c.TableSessionID == uuid.Nil {
			return poserr.Validation("table_session_id is required for TABLE orders")
		}
	default:
		return poserr.Validation("invalid order type %q", c.OrderType)
	}

	if c.DiscountType == "" {
		c.DiscountType = models.AdjustmentNone
	}
	if c.ServiceFeeType == "" {
		c.ServiceFeeType = models.AdjustmentNone
	}
	if !validAdjustment(c.DiscountType) {
		return poserr.Validation("invalid discount type %q", c.DiscountType)
	}
	if !validAdjustment(c.ServiceFeeType) {
		return poserr.Validation("invalid service fee type %q", c.ServiceFeeType)
	}
	if c.DiscountValue.IsNegative() {
		return poserr.Validation("discount value must not be negative")
	}
	if c.ServiceFeeValue.IsNegative() {
		return poserr.Validation("service fee value must not be negative")
	}

	refs := make(map[string]struct{}, len(c.Items))
	for i := range c.Items {
		line := &c.Items[i]
		line.ClientReference = strings.TrimSpace(line.ClientReference)
		if line.ClientReference == "" {
			return poserr.Validation("item %d: client reference is required", i+1)
		}
		if _, dup := refs[line.ClientReference]; dup {
			return poserr.Validation("duplicate client reference %q", line.ClientReference)
		}
		refs[line.ClientReference] = struct{}{}

		if line.ItemType != models.ItemProduct && line.ItemType != models.ItemCombo {
			return poserr.Validation("item %q: invalid item type %q", line.ClientReference, line.ItemType)
		}
		if line.ItemID == uuid.Nil {
			return poserr.Validation("item %q: item id is required", line.ClientReference)
		}
		if line.Quantity < 1 {
			return poserr.Validation("item %q: quantity must be at least 1", line.ClientReference)
		}
		if line.Quantity > MAX_LINE_QUANTITY {
			return poserr.Validation("item %q: quantity must be at most %d", line.ClientReference, MAX_LINE_QUANTITY)
		}

		seen := make(map[uuid.UUID]struct{}, len(line.Modifiers))
		for _, m := range line.Modifiers {
			if m.ModifierID == uuid.Nil {
				return poserr.Validation("item %q: modifier id is required", line.ClientReference)
			}
			if _, dup := seen[m.ModifierID]; dup {
				return poserr.Validation("item %q: modifier %s selected twice", line.ClientReference, m.ModifierID)
			}
			seen[m.ModifierID] = struct{}{}
			if m.Quantity < 1 {
				return poserr.Validation("item %q: modifier quantity must be at least 1", line.ClientReference)
			}
			if m.Quantity > MAX_MODIFIER_QUANTITY {
				return poserr.Validation("item %q: modifier quantity must be at most %d", line.ClientReference, MAX_MODIFIER_QUANTITY)
			}
		}
	}
	return nil
}

func (c Cart) Refs() Refs {
	var r Refs
	seen := map[uuid.UUID]struct{}{}
	add := func(dst *[]uuid.UUID, id uuid.UUID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		*dst = append(*dst, id)
	}
	for _, line := range c.Items {
		if line.ItemType == models.ItemCombo {
			add(&r.ComboIDs, line.ItemID)
		} else {
			add(&r.ProductIDs, line.ItemID)
		}
		for _, m := range line.Modifiers {
			add(&r.ModifierIDs, m.ModifierID)
		}
	}
	if c.OrderType == models.OrderTable {
		r.TableSessionID = c.TableSessionID
	}
	return r
}
