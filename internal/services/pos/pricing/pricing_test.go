package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/money"
	"syntra-pos/internal/poserr"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	snap    *Snapshot
	fries   models.Product
	burger  models.Product
	combo   models.Combo
	sauces  models.ModifierGroup
	extras  models.ModifierGroup
	cheese  models.Modifier
	bacon   models.Modifier
	ketchup models.Modifier
	mayo    models.Modifier
}

func newFixture() *fixture {
	f := &fixture{}
	f.fries = models.Product{ID: uuid.New(), Name: "Fries", Price: dec("10.00"), Active: true}
	f.burger = models.Product{ID: uuid.New(), Name: "Burger", Price: dec("15.00"), Active: true}
	f.combo = models.Combo{ID: uuid.New(), Name: "Burger Combo", Price: dec("22.50"), Active: true}

	f.extras = models.ModifierGroup{ID: uuid.New(), Name: "Extras", MinSelect: 0, MaxSelect: 2, Active: true}
	f.sauces = models.ModifierGroup{ID: uuid.New(), Name: "Sauces", Required: true, MaxSelect: 1, Active: true}

	f.cheese = models.Modifier{ID: uuid.New(), GroupID: f.extras.ID, Name: "Cheese", Price: dec("2.00"), Active: true}
	f.bacon = models.Modifier{ID: uuid.New(), GroupID: f.extras.ID, Name: "Bacon", Price: dec("3.50"), Active: true}
	f.ketchup = models.Modifier{ID: uuid.New(), GroupID: f.sauces.ID, Name: "Ketchup", Price: dec("0"), Active: true}
	f.mayo = models.Modifier{ID: uuid.New(), GroupID: f.sauces.ID, Name: "Mayo", Price: dec("0.50"), Active: true}

	f.snap = &Snapshot{
		Products: map[uuid.UUID]models.Product{f.fries.ID: f.fries, f.burger.ID: f.burger},
		Combos:   map[uuid.UUID]models.Combo{f.combo.ID: f.combo},
		Modifiers: map[uuid.UUID]models.Modifier{
			f.cheese.ID: f.cheese, f.bacon.ID: f.bacon, f.ketchup.ID: f.ketchup, f.mayo.ID: f.mayo,
		},
		ModifierGroups: map[uuid.UUID]models.ModifierGroup{f.extras.ID: f.extras, f.sauces.ID: f.sauces},
		ProductGroups: map[uuid.UUID][]models.ProductModifierGroup{
			f.burger.ID: {{ProductID: f.burger.ID, ModifierGroupID: f.extras.ID, SortOrder: 1}},
		},
	}
	return f
}

func line(ref string, t models.ItemType, id uuid.UUID, qty int32, mods ...ModifierRequest) LineRequest {
	return LineRequest{ItemType: t, ItemID: id, ClientReference: ref, Quantity: qty, Modifiers: mods}
}

func TestPriceWorkedExample(t *testing.T) {
	f := newFixture()
	cart := Cart{
		Items: []LineRequest{
			line("a", models.ItemProduct, f.fries.ID, 1),
			line("b", models.ItemProduct, f.burger.ID, 1, ModifierRequest{ModifierID: f.cheese.ID, Quantity: 1}),
		},
		DiscountType:    models.AdjustmentFixed,
		DiscountValue:   dec("5.00"),
		ServiceFeeType:  models.AdjustmentPercent,
		ServiceFeeValue: dec("10"),
	}

	priced, err := Price(cart, f.snap)
	require.NoError(t, err)

	assert.Equal(t, models.OrderCounter, priced.OrderType)
	require.Len(t, priced.Lines, 2)
	assert.Equal(t, "17.00", money.String(priced.Lines[1].UnitPrice))
	require.Len(t, priced.Lines[1].Modifiers, 1)
	assert.Equal(t, "Cheese", priced.Lines[1].Modifiers[0].Name)

	assert.Equal(t, "27.00", money.String(priced.Totals.Subtotal))
	assert.Equal(t, "5.00", money.String(priced.Totals.Discount))
	assert.Equal(t, "22.00", money.String(priced.Totals.ServiceFeeBase))
	assert.Equal(t, "2.20", money.String(priced.Totals.ServiceFee))
	assert.Equal(t, "24.20", money.String(priced.Totals.Total))
}

func TestPriceModifierQuantityCountsTowardGroup(t *testing.T) {
	f := newFixture()
	cart := Cart{Items: []LineRequest{
		line("a", models.ItemProduct, f.burger.ID, 2,
			ModifierRequest{ModifierID: f.cheese.ID, Quantity: 2},
			ModifierRequest{ModifierID: f.bacon.ID, Quantity: 1}),
	}}

	_, err := Price(cart, f.snap)
	require.Error(t, err)
	assert.True(t, poserr.HasCode(err, poserr.CodeModifierConstraint))
	assert.Contains(t, err.Error(), "Extras")

	cart.Items[0].Modifiers = []ModifierRequest{{ModifierID: f.cheese.ID, Quantity: 2}}
	priced, err := Price(cart, f.snap)
	require.NoError(t, err)
	assert.Equal(t, "19.00", money.String(priced.Lines[0].UnitPrice))
	assert.Equal(t, "38.00", money.String(priced.Lines[0].LineTotal))
}

func TestPriceRequiredGroup(t *testing.T) {
	f := newFixture()
	f.snap.ProductGroups[f.fries.ID] = []models.ProductModifierGroup{
		{ProductID: f.fries.ID, ModifierGroupID: f.sauces.ID},
	}

	_, err := Price(Cart{Items: []LineRequest{line("a", models.ItemProduct, f.fries.ID, 1)}}, f.snap)
	require.Error(t, err)
	assert.True(t, poserr.HasCode(err, poserr.CodeModifierConstraint))
	assert.Equal(t, poserr.KindValidation, poserr.KindOf(err))

	priced, err := Price(Cart{Items: []LineRequest{
		line("a", models.ItemProduct, f.fries.ID, 1, ModifierRequest{ModifierID: f.mayo.ID, Quantity: 1}),
	}}, f.snap)
	require.NoError(t, err)
	assert.Equal(t, "10.50", money.String(priced.Totals.Total))
}

func TestPriceInvalidReferences(t *testing.T) {
	f := newFixture()

	inactive := f.fries
	inactive.Active = false
	f.snap.Products[inactive.ID] = inactive

	cases := map[string]Cart{
		"unknown product": {Items: []LineRequest{line("a", models.ItemProduct, uuid.New(), 1)}},
		"inactive product": {Items: []LineRequest{line("a", models.ItemProduct, inactive.ID, 1)}},
		"unknown combo":    {Items: []LineRequest{line("a", models.ItemCombo, uuid.New(), 1)}},
		"unknown modifier": {Items: []LineRequest{
			line("a", models.ItemProduct, f.burger.ID, 1, ModifierRequest{ModifierID: uuid.New(), Quantity: 1}),
		}},
		"modifier from unrelated group": {Items: []LineRequest{
			line("a", models.ItemProduct, f.burger.ID, 1, ModifierRequest{ModifierID: f.ketchup.ID, Quantity: 1}),
		}},
	}

	for name, cart := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Price(cart, f.snap)
			require.Error(t, err)
			assert.True(t, poserr.HasCode(err, poserr.CodeInvalidReference), err.Error())
		})
	}
}

func TestPriceComboAcceptsActiveModifiers(t *testing.T) {
	f := newFixture()
	priced, err := Price(Cart{Items: []LineRequest{
		line("a", models.ItemCombo, f.combo.ID, 2, ModifierRequest{ModifierID: f.bacon.ID, Quantity: 1}),
	}}, f.snap)
	require.NoError(t, err)
	require.NotNil(t, priced.Lines[0].ComboID)
	assert.Equal(t, "26.00", money.String(priced.Lines[0].UnitPrice))
	assert.Equal(t, "52.00", money.String(priced.Totals.Total))
}

func TestPriceTableSession(t *testing.T) {
	f := newFixture()
	sessionID := uuid.New()
	tableID := uuid.New()
	cart := Cart{
		Items:          []LineRequest{line("a", models.ItemProduct, f.fries.ID, 1)},
		OrderType:      models.OrderTable,
		TableSessionID: &sessionID,
	}

	_, err := Price(cart, f.snap)
	assert.True(t, poserr.HasCode(err, poserr.CodeInvalidTable))

	f.snap.TableSession = &models.TableSession{ID: sessionID, TableID: tableID, Status: models.TableSessionClosed}
	_, err = Price(cart, f.snap)
	assert.True(t, poserr.HasCode(err, poserr.CodeInvalidTable))

	f.snap.TableSession.Status = models.TableSessionOpen
	priced, err := Price(cart, f.snap)
	require.NoError(t, err)
	require.NotNil(t, priced.TableID)
	assert.Equal(t, tableID, *priced.TableID)
	assert.Equal(t, sessionID, *priced.TableSessionID)
}

func TestCartValidate(t *testing.T) {
	id := uuid.New()
	sessionID := uuid.New()

	cases := map[string]Cart{
		"empty":             {},
		"blank reference":   {Items: []LineRequest{line("  ", models.ItemProduct, id, 1)}},
		"duplicate ref":     {Items: []LineRequest{line("a", models.ItemProduct, id, 1), line("a", models.ItemProduct, id, 1)}},
		"bad item type":     {Items: []LineRequest{line("a", "SERVICE", id, 1)}},
		"zero quantity":     {Items: []LineRequest{line("a", models.ItemProduct, id, 0)}},
		"huge quantity":     {Items: []LineRequest{line("a", models.ItemProduct, id, MAX_LINE_QUANTITY+1)}},
		"huge modifier qty": {Items: []LineRequest{line("a", models.ItemProduct, id, 1, ModifierRequest{ModifierID: id, Quantity: MAX_MODIFIER_QUANTITY + 1})}},
		"nil item":          {Items: []LineRequest{line("a", models.ItemProduct, uuid.Nil, 1)}},
		"modifier qty":      {Items: []LineRequest{line("a", models.ItemProduct, id, 1, ModifierRequest{ModifierID: id, Quantity: 0})}},
		"table no session":  {Items: []LineRequest{line("a", models.ItemProduct, id, 1)}, OrderType: models.OrderTable},
		"counter session":   {Items: []LineRequest{line("a", models.ItemProduct, id, 1)}, TableSessionID: &sessionID},
		"negative discount": {
			Items:         []LineRequest{line("a", models.ItemProduct, id, 1)},
			DiscountType:  models.AdjustmentFixed,
			DiscountValue: dec("-1"),
		},
		"bad fee type": {Items: []LineRequest{line("a", models.ItemProduct, id, 1)}, ServiceFeeType: "TIP"},
	}

	for name, cart := range cases {
		t.Run(name, func(t *testing.T) {
			err := cart.Validate()
			require.Error(t, err)
			assert.Equal(t, poserr.KindValidation, poserr.KindOf(err))
		})
	}

	ok := Cart{Items: []LineRequest{line(" a ", models.ItemProduct, id, 1)}}
	require.NoError(t, ok.Validate())
	assert.Equal(t, "a", ok.Items[0].ClientReference)
	assert.Equal(t, models.OrderCounter, ok.OrderType)
	assert.Equal(t, models.AdjustmentNone, ok.DiscountType)
	assert.Equal(t, models.AdjustmentNone, ok.ServiceFeeType)
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		subtotal  string
		discType  models.AdjustmentType
		discValue string
		feeType   models.AdjustmentType
		feeValue  string
		discount  string
		fee       string
		total     string
	}{
		{"no adjustments", "27.00", models.AdjustmentNone, "0", models.AdjustmentNone, "0", "0.00", "0.00", "27.00"},
		{"percent discount", "20.00", models.AdjustmentPercent, "15", models.AdjustmentNone, "0", "3.00", "0.00", "17.00"},
		{"percent capped", "20.00", models.AdjustmentPercent, "150", models.AdjustmentNone, "0", "20.00", "0.00", "0.00"},
		{"fixed capped then fee", "8.00", models.AdjustmentFixed, "10", models.AdjustmentFixed, "3.00", "8.00", "3.00", "3.00"},
		{"fee on rounded base", "3.33", models.AdjustmentNone, "0", models.AdjustmentPercent, "10", "0.00", "0.33", "3.66"},
		{"ignores value for none", "5.00", models.AdjustmentNone, "99", models.AdjustmentNone, "99", "0.00", "0.00", "5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(dec(tt.subtotal), tt.discType, dec(tt.discValue), tt.feeType, dec(tt.feeValue))
			assert.Equal(t, tt.discount, money.String(got.Discount))
			assert.Equal(t, tt.fee, money.String(got.ServiceFee))
			assert.Equal(t, tt.total, money.String(got.Total))
		})
	}
}
