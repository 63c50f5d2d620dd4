package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"syntra-pos/internal/database/models"
	"syntra-pos/internal/store/memory"
)

// seedDemo fills an in-memory store with a small burger-bar catalog.
func seedDemo(st *memory.Store) {
	now := time.Now().UTC()
	price := decimal.RequireFromString

	food := models.Category{ID: uuid.New(), Name: "Food", Active: true}
	drinks := models.Category{ID: uuid.New(), Name: "Drinks", Active: true}
	st.PutCategory(food)
	st.PutCategory(drinks)

	fries := models.Product{ID: uuid.New(), Name: "Fries", Price: price("10.00"), CategoryID: &food.ID, Active: true, CreatedAt: now, UpdatedAt: now}
	burger := models.Product{ID: uuid.New(), Name: "Burger", Price: price("15.00"), CategoryID: &food.ID, Active: true,
		TrackStock: true, StockQty: 40, MinStock: 5, CreatedAt: now, UpdatedAt: now}
	soda := models.Product{ID: uuid.New(), Name: "Soda", Price: price("5.00"), CategoryID: &drinks.ID, Active: true,
		TrackStock: true, StockQty: 60, MinStock: 12, CreatedAt: now, UpdatedAt: now}
	for _, p := range []models.Product{fries, burger, soda} {
		st.PutProduct(p)
	}

	combo := models.Combo{ID: uuid.New(), Name: "Burger Combo", Price: price("26.00"), CategoryID: &food.ID, Active: true}
	combo.Items = []models.ComboItem{
		{ID: uuid.New(), ComboID: combo.ID, ProductID: burger.ID, Quantity: 1},
		{ID: uuid.New(), ComboID: combo.ID, ProductID: fries.ID, Quantity: 1},
		{ID: uuid.New(), ComboID: combo.ID, ProductID: soda.ID, Quantity: 1},
	}
	st.PutCombo(combo)

	extras := models.ModifierGroup{ID: uuid.New(), Name: "Extras", MaxSelect: 3, Active: true, Modifiers: []models.Modifier{
		{ID: uuid.New(), Name: "Cheese", Price: price("2.00"), Active: true},
		{ID: uuid.New(), Name: "Bacon", Price: price("3.50"), Active: true},
	}}
	doneness := models.ModifierGroup{ID: uuid.New(), Name: "Doneness", MinSelect: 1, MaxSelect: 1, Required: true, Active: true, Modifiers: []models.Modifier{
		{ID: uuid.New(), Name: "Medium", Price: decimal.Zero, Active: true},
		{ID: uuid.New(), Name: "Well done", Price: decimal.Zero, Active: true},
	}}
	st.PutModifierGroup(extras)
	st.PutModifierGroup(doneness)
	st.LinkModifierGroup(burger.ID, doneness.ID, 1)
	st.LinkModifierGroup(burger.ID, extras.ID, 2)

	for i, name := range []string{"T1", "T2", "T3", "T4"} {
		st.PutTable(models.Table{ID: uuid.New(), Name: name, SortOrder: int32(i + 1), Active: true})
	}

	log.WithFields(log.Fields{
		"products": 3,
		"combos":   1,
		"tables":   4,
	}).Info("demo catalog seeded")
}
