// Package pricing turns a validated cart and a catalog snapshot into a priced
// order. It performs no I/O.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/money"
	"syntra-pos/internal/poserr"
)

// Snapshot holds the catalog rows a cart references, fetched once per request.
type Snapshot struct {
	Products       map[uuid.UUID]models.Product
	Combos         map[uuid.UUID]models.Combo
	Modifiers      map[uuid.UUID]models.Modifier
	ModifierGroups map[uuid.UUID]models.ModifierGroup
	// ProductGroups lists each product's modifier groups in sort order.
	ProductGroups map[uuid.UUID][]models.ProductModifierGroup
	TableSession  *models.TableSession
}

type PricedModifier struct {
	ModifierID uuid.UUID
	Name       string
	Quantity   int32
	UnitPrice  decimal.Decimal
}

type PricedLine struct {
	ItemType        models.ItemType
	ProductID       *uuid.UUID
	ComboID         *uuid.UUID
	Name            string
	ClientReference string
	Quantity        int32
	UnitPrice       decimal.Decimal
	LineTotal       decimal.Decimal
	Notes           *string
	Modifiers       []PricedModifier
}

type Totals struct {
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	ServiceFeeBase decimal.Decimal
	ServiceFee     decimal.Decimal
	Total          decimal.Decimal
}

type PricedOrder struct {
	Lines           []PricedLine
	Totals          Totals
	OrderType       models.OrderType
	TableSessionID  *uuid.UUID
	TableID         *uuid.UUID
	DiscountType    models.AdjustmentType
	DiscountValue   decimal.Decimal
	ServiceFeeType  models.AdjustmentType
	ServiceFeeValue decimal.Decimal
	Notes           *string
}

// Price validates the cart against snap and computes line prices and totals.
func Price(cart Cart, snap *Snapshot) (*PricedOrder, error) {
	if err := cart.Validate(); err != nil {
		return nil, err
	}

	priced := &PricedOrder{
		OrderType:       cart.OrderType,
		DiscountType:    cart.DiscountType,
		DiscountValue:   cart.DiscountValue,
		ServiceFeeType:  cart.ServiceFeeType,
		ServiceFeeValue: cart.ServiceFeeValue,
		Notes:           cart.Notes,
	}

	subtotal := decimal.Zero
	for _, req := range cart.Items {
		line, err := priceLine(req, snap)
		if err != nil {
			return nil, err
		}
		subtotal = subtotal.Add(line.LineTotal)
		priced.Lines = append(priced.Lines, *line)
	}

	if cart.OrderType == models.OrderTable {
		ts := snap.TableSession
		if ts == nil || ts.ID != *cart.TableSessionID || ts.Status != models.TableSessionOpen {
			return nil, poserr.InvalidTable("table session %s is not open", *cart.TableSessionID)
		}
		sessionID, tableID := ts.ID, ts.TableID
		priced.TableSessionID = &sessionID
		priced.TableID = &tableID
	}

	priced.Totals = ComputeTotals(subtotal, cart.DiscountType, cart.DiscountValue, cart.ServiceFeeType, cart.ServiceFeeValue)
	return priced, nil
}

func priceLine(req LineRequest, snap *Snapshot) (*PricedLine, error) {
	line := &PricedLine{
		ItemType:        req.ItemType,
		ClientReference: req.ClientReference,
		Quantity:        req.Quantity,
		Notes:           req.Notes,
	}

	var base decimal.Decimal
	var allowed map[uuid.UUID]models.ModifierGroup
	switch req.ItemType {
	case models.ItemProduct:
		p, ok := snap.Products[req.ItemID]
		if !ok || !p.Active {
			return nil, poserr.InvalidReference("product %s is unknown or inactive", req.ItemID)
		}
		id := p.ID
		line.ProductID = &id
		line.Name = p.Name
		base = p.Price
		allowed = productGroups(p.ID, snap)
	case models.ItemCombo:
		c, ok := snap.Combos[req.ItemID]
		if !ok || !c.Active {
			return nil, poserr.InvalidReference("combo %s is unknown or inactive", req.ItemID)
		}
		id := c.ID
		line.ComboID = &id
		line.Name = c.Name
		base = c.Price
	}

	selected := make(map[uuid.UUID]int32)
	unit := base
	for _, mr := range req.Modifiers {
		m, ok := snap.Modifiers[mr.ModifierID]
		if !ok || !m.Active {
			return nil, poserr.InvalidReference("modifier %s is unknown or inactive", mr.ModifierID)
		}
		if g, ok := snap.ModifierGroups[m.GroupID]; !ok || !g.Active {
			return nil, poserr.InvalidReference("modifier %s belongs to an inactive group", mr.ModifierID)
		}
		if req.ItemType == models.ItemProduct {
			if _, ok := allowed[m.GroupID]; !ok {
				return nil, poserr.InvalidReference("modifier %s does not apply to %s", m.ID, line.Name)
			}
		}
		selected[m.GroupID] += mr.Quantity
		unit = unit.Add(m.Price.Mul(decimal.NewFromInt32(mr.Quantity)))
		line.Modifiers = append(line.Modifiers, PricedModifier{
			ModifierID: m.ID,
			Name:       m.Name,
			Quantity:   mr.Quantity,
			UnitPrice:  money.Round(m.Price),
		})
	}

	if req.ItemType == models.ItemProduct {
		for _, link := range snap.ProductGroups[*line.ProductID] {
			g, ok := allowed[link.ModifierGroupID]
			if !ok {
				continue
			}
			if err := checkGroup(g, selected[g.ID]); err != nil {
				return nil, err
			}
		}
	}

	line.UnitPrice = money.Round(money.Max(unit, decimal.Zero))
	line.LineTotal = money.Round(line.UnitPrice.Mul(decimal.NewFromInt32(req.Quantity)))
	return line, nil
}

// productGroups returns the active groups associated with a product.
func productGroups(productID uuid.UUID, snap *Snapshot) map[uuid.UUID]models.ModifierGroup {
	out := map[uuid.UUID]models.ModifierGroup{}
	for _, link := range snap.ProductGroups[productID] {
		if g, ok := snap.ModifierGroups[link.ModifierGroupID]; ok && g.Active {
			out[g.ID] = g
		}
	}
	return out
}

func checkGroup(g models.ModifierGroup, count int32) error {
	need := g.MinSelect
	if g.Required && need < 1 {
		need = 1
	}
	if count < need {
		return poserr.ModifierConstraint(g.Name, "select at least %d", need)
	}
	if g.MaxSelect > 0 && count > g.MaxSelect {
		return poserr.ModifierConstraint(g.Name, "select at most %d", g.MaxSelect)
	}
	return nil
}

// ComputeTotals applies discount then service fee to subtotal, rounding each term to the cent.
func ComputeTotals(subtotal decimal.Decimal, discountType models.AdjustmentType, discountValue decimal.Decimal, feeType models.AdjustmentType, feeValue decimal.Decimal) Totals {
	subtotal = money.Round(subtotal)

	discount := decimal.Zero
	switch discountType {
	case models.AdjustmentPercent:
		discount = money.Min(subtotal, money.Percent(subtotal, discountValue))
	case models.AdjustmentFixed:
		discount = money.Min(subtotal, money.Round(discountValue))
	}

	base := money.Max(subtotal.Sub(discount), decimal.Zero)

	fee := decimal.Zero
	switch feeType {
	case models.AdjustmentPercent:
		fee = money.Percent(base, feeValue)
	case models.AdjustmentFixed:
		fee = money.Round(feeValue)
	}

	return Totals{
		Subtotal:       subtotal,
		Discount:       discount,
		ServiceFeeBase: base,
		ServiceFee:     fee,
		Total:          money.Round(money.Max(base.Add(fee), decimal.Zero)),
	}
}
