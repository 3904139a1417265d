package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/schema"
)

// TaxRate is the flat sales tax applied to every order.
var TaxRate = decimal.RequireFromString("0.08")

// Quote is the priced breakdown of a cart.
type Quote struct {
	// Subtotal is the exact sum of price*quantity, unrounded.
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Price computes subtotal, tax and total for items. Tax and total are
// rounded to cents, half away from zero.
func Price(items []schema.OrderItem) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		price := decimal.NewFromFloat(it.Price)
		qty := decimal.NewFromInt(int64(it.Quantity))
		subtotal = subtotal.Add(price.Mul(qty))
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	return Quote{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Round(2),
	}
}
