package services

import (
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// VATRate is the fixed tax applied to a cart subtotal.
var VATRate = decimal.RequireFromString("0.13")

const UnavailableReason = "Currently unavailable"

// CartLine is a cart item resolved against the current menu.
type CartLine struct {
	CartItemID          uint           `json:"cartItemId"`
	MenuItemID          uint           `json:"menuItemId"`
	Name                string         `json:"name"`
	Station             models.Station `json:"station"`
	Quantity            int            `json:"quantity"`
	UnitPrice           float64        `json:"unitPrice"`
	IsAvailable         bool           `json:"isAvailable"`
	SpecialInstructions string         `json:"specialInstructions,omitempty"`
}

type PricedLine struct {
	CartLine
	LineTotal float64 `json:"lineTotal"`
}

type UnavailableLine struct {
	CartLine
	Reason string `json:"reason"`
}

type CartSummary struct {
	Subtotal         float64           `json:"subtotal"`
	TaxAmount        float64           `json:"taxAmount"`
	DiscountAmount   float64           `json:"discountAmount"`
	TotalAmount      float64           `json:"totalAmount"`
	ItemCount        int               `json:"itemCount"`
	Items            []PricedLine      `json:"items"`
	UnavailableItems []UnavailableLine `json:"unavailableItems"`
}

// EmptySummary is the zero-valued summary with non-nil item lists.
func EmptySummary() CartSummary {
	return CartSummary{
		Items:            []PricedLine{},
		UnavailableItems: []UnavailableLine{},
	}
}

// SummarizeCart prices the available lines and reports the unavailable ones
// separately. Unavailable lines never contribute to amounts or itemCount.
func SummarizeCart(lines []CartLine) CartSummary {
	summary := EmptySummary()
	subtotal := decimal.Zero

	for _, line := range lines {
		if !line.IsAvailable {
			summary.UnavailableItems = append(summary.UnavailableItems, UnavailableLine{
				CartLine: line,
				Reason:   UnavailableReason,
			})
			continue
		}

		lineTotal := decimal.NewFromFloat(line.UnitPrice).Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		summary.ItemCount += line.Quantity
		summary.Items = append(summary.Items, PricedLine{
			CartLine:  line,
			LineTotal: utils.CurrencyFloat(lineTotal),
		})
	}

	subtotal = utils.RoundCurrency(subtotal)
	tax := utils.RoundCurrency(subtotal.Mul(VATRate))
	discount := decimal.Zero // no discount rules yet
	total := subtotal.Add(tax).Sub(discount)

	summary.Subtotal = utils.CurrencyFloat(subtotal)
	summary.TaxAmount = utils.CurrencyFloat(tax)
	summary.DiscountAmount = utils.CurrencyFloat(discount)
	summary.TotalAmount = utils.CurrencyFloat(total)
	return summary
}

// LinesFromCart resolves the cart's items (with MenuItem preloaded) into
// pricing lines.
func LinesFromCart(cart *models.Cart) []CartLine {
	if cart == nil {
		return nil
	}
	lines := make([]CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, CartLine{
			CartItemID:          item.ID,
			MenuItemID:          item.MenuItemID,
			Name:                item.MenuItem.Name,
			Station:             item.MenuItem.Station,
			Quantity:            item.Quantity,
			UnitPrice:           item.MenuItem.Price,
			IsAvailable:         item.MenuItem.IsAvailable,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return lines
}
