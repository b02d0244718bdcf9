// Package pos holds the till arithmetic: line totals with GST, invoice
// totals, refunds and invoice numbering. Amounts are computed with decimals
// and rounded to paise only when reported.
package pos

import (
	"errors"
	"fmt"

	"pos-service/pkg/syncapi"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

const (
	InvoicePrefix = "INV"
	invoiceDigits = 6
)

var hundred = decimal.NewFromInt(100)

// Totals are the rounded amounts printed on an invoice
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	TaxTotal float64 `json:"taxTotal"`
	Total    float64 `json:"total"`
}

// LineAmounts returns the net amount and GST of qty units at price
func LineAmounts(price, gstPercent float64, qty int) (net, tax decimal.Decimal) {
	net = decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
	tax = net.Mul(decimal.NewFromFloat(gstPercent)).Div(hundred)
	return net, tax
}

// LineTotal is the GST-inclusive amount of a single line, rounded
func LineTotal(item syncapi.LineItem) float64 {
	net, tax := LineAmounts(item.Price, item.GSTPercent, item.Quantity)
	return round(net.Add(tax))
}

// CalculateTotals sums the lines before rounding so the invoice adds up
func CalculateTotals(items []syncapi.LineItem) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		net, t := LineAmounts(item.Price, item.GSTPercent, item.Quantity)
		subtotal = subtotal.Add(net)
		tax = tax.Add(t)
	}
	return Totals{
		Subtotal: round(subtotal),
		TaxTotal: round(tax),
		Total:    round(subtotal.Add(tax)),
	}
}

// Refund is the GST-inclusive amount returned for qty units
func Refund(price, gstPercent float64, qty int) (float64, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	net, tax := LineAmounts(price, gstPercent, qty)
	return round(net.Add(tax)), nil
}

// SumRefunds adds refund amounts without float drift
func SumRefunds(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return round(sum)
}

// NextInvoiceNumber formats the invoice number following count existing invoices
func NextInvoiceNumber(count int) string {
	return fmt.Sprintf("%s%0*d", InvoicePrefix, invoiceDigits, count+1)
}

func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
