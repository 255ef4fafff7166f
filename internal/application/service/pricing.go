package service

import (
	"github.com/shopspring/decimal"
)

// TaxRate is the flat sales tax applied to every line item
var TaxRate = decimal.RequireFromString("0.08")

const currencyPlaces = 2

// LinePrice holds the money columns of one line item
type LinePrice struct {
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// CartPrice holds the header totals and the per-line breakdown
type CartPrice struct {
	Lines    []LinePrice
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// PriceLine prices quantity units at unitPrice. The unit price is taken at currency precision,
// so the subtotal is exact and only the tax needs rounding.
func PriceLine(quantity int, unitPrice float64) LinePrice {
	price := decimal.NewFromFloat(unitPrice).Round(currencyPlaces)
	subtotal := price.Mul(decimal.NewFromInt(int64(quantity)))
	tax := subtotal.Mul(TaxRate).Round(currencyPlaces)
	return LinePrice{
		UnitPrice: price,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
	}
}

// PriceCart sums the raw line subtotals and rounds the header tax once, so
// total == subtotal + tax and tax == round(subtotal * TaxRate) hold exactly.
func PriceCart(lines []LinePrice) CartPrice {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	tax := subtotal.Mul(TaxRate).Round(currencyPlaces)
	return CartPrice{
		Lines:    lines,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
