package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-ordering/models"
)

func TestSummarizeCartPartitionsUnavailable(t *testing.T) {
	summary := SummarizeCart([]CartLine{
		{CartItemID: 1, MenuItemID: 10, Name: "Burger", UnitPrice: 10.00, Quantity: 2, IsAvailable: true},
		{CartItemID: 2, MenuItemID: 11, Name: "Soup", UnitPrice: 5.50, Quantity: 1, IsAvailable: false},
	})

	assert.Equal(t, 20.00, summary.Subtotal)
	assert.Equal(t, 2.60, summary.TaxAmount)
	assert.Equal(t, 0.0, summary.DiscountAmount)
	assert.Equal(t, 22.60, summary.TotalAmount)
	assert.Equal(t, 2, summary.ItemCount)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 20.00, summary.Items[0].LineTotal)

	require.Len(t, summary.UnavailableItems, 1)
	assert.Equal(t, uint(11), summary.UnavailableItems[0].MenuItemID)
	assert.Equal(t, "Currently unavailable", summary.UnavailableItems[0].Reason)
}

func TestSummarizeCartEmpty(t *testing.T) {
	for name, lines := range map[string][]CartLine{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			summary := SummarizeCart(lines)
			assert.Zero(t, summary.Subtotal)
			assert.Zero(t, summary.TaxAmount)
			assert.Zero(t, summary.TotalAmount)
			assert.Zero(t, summary.ItemCount)
			assert.NotNil(t, summary.Items)
			assert.Empty(t, summary.Items)
			assert.NotNil(t, summary.UnavailableItems)
		})
	}
}

func TestSummarizeCartRounding(t *testing.T) {
	tests := []struct {
		name     string
		lines    []CartLine
		subtotal float64
		tax      float64
		total    float64
	}{
		// 0.05 * 0.13 = 0.0065 -> 0.01
		{"half up on cent", []CartLine{{UnitPrice: 0.05, Quantity: 1, IsAvailable: true}}, 0.05, 0.01, 0.06},
		// 0.15 * 0.13 = 0.0195 -> 0.02
		{"above half", []CartLine{{UnitPrice: 0.15, Quantity: 1, IsAvailable: true}}, 0.15, 0.02, 0.17},
		// 0.30 * 0.13 = 0.039 -> 0.04
		{"no float drift", []CartLine{
			{UnitPrice: 0.10, Quantity: 1, IsAvailable: true},
			{UnitPrice: 0.20, Quantity: 1, IsAvailable: true},
		}, 0.30, 0.04, 0.34},
		// 3 * 3.35 = 10.05, tax 1.3065 -> 1.31
		{"multiple quantity", []CartLine{{UnitPrice: 3.35, Quantity: 3, IsAvailable: true}}, 10.05, 1.31, 11.36},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := SummarizeCart(tt.lines)
			assert.Equal(t, tt.subtotal, summary.Subtotal)
			assert.Equal(t, tt.tax, summary.TaxAmount)
			assert.Equal(t, tt.total, summary.TotalAmount)
		})
	}
}

func TestLinesFromCart(t *testing.T) {
	assert.Nil(t, LinesFromCart(nil))

	cart := &models.Cart{Items: []models.CartItem{
		{ID: 3, MenuItemID: 9, Quantity: 2, SpecialInstructions: "no onions", MenuItem: models.MenuItem{
			ID: 9, Name: "Pad Thai", Price: 8.25, IsAvailable: true, Station: models.StationKitchen,
		}},
	}}

	lines := LinesFromCart(cart)
	require.Len(t, lines, 1)
	assert.Equal(t, CartLine{
		CartItemID:          3,
		MenuItemID:          9,
		Name:                "Pad Thai",
		Station:             models.StationKitchen,
		Quantity:            2,
		UnitPrice:           8.25,
		IsAvailable:         true,
		SpecialInstructions: "no onions",
	}, lines[0])
}
