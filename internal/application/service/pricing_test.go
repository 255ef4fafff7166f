package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceLine_TwoNotebooks(t *testing.T) {
	line := PriceLine(2, 80)

	assert.Equal(t, "160", line.Subtotal.String())
	assert.Equal(t, "12.8", line.Tax.String())
	assert.Equal(t, "172.8", line.Total.String())
}

func TestPriceLine_RoundsUnitPriceToCents(t *testing.T) {
	line := PriceLine(3, 0.105)

	assert.True(t, line.UnitPrice.Equal(decimal.RequireFromString("0.11")))
	assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("0.33")))
}

func TestPriceCart_TotalEqualsSubtotalPlusTax(t *testing.T) {
	cases := [][]LinePrice{
		{PriceLine(1, 0.01)},
		{PriceLine(3, 0.33), PriceLine(7, 1.99), PriceLine(1, 0.05)},
		{PriceLine(10000, 999999.99)},
		{PriceLine(1, 0.1), PriceLine(1, 0.2)},
	}
	for _, lines := range cases {
		cart := PriceCart(lines)

		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(l.Subtotal)
		}
		assert.True(t, cart.Subtotal.Equal(sum), "subtotal is the sum of line subtotals")
		assert.True(t, cart.Total.Equal(cart.Subtotal.Add(cart.Tax)), "total = subtotal + tax")
		assert.True(t, cart.Tax.Equal(cart.Subtotal.Mul(TaxRate).Round(2)), "tax rounded once")
	}
}

func TestPriceCart_AvoidsCompoundedRounding(t *testing.T) {
	// Each line's tax rounds down (0.0048 -> 0.00) but the cart rounds once on the sum.
	lines := make([]LinePrice, 0, 10)
	for i := 0; i < 10; i++ {
		lines = append(lines, PriceLine(1, 0.06))
	}

	cart := PriceCart(lines)

	assert.Equal(t, "0.6", cart.Subtotal.String())
	assert.Equal(t, "0.05", cart.Tax.String())
	assert.Equal(t, "0.65", cart.Total.String())
}
