package pos

import (
	"testing"

	"pos-service/pkg/syncapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotals(t *testing.T) {
	items := []syncapi.LineItem{
		{ProductID: "a", Name: "A", Price: 10, GSTPercent: 18, Quantity: 2},
		{ProductID: "b", Name: "B", Price: 5, GSTPercent: 0, Quantity: 1},
	}

	totals := CalculateTotals(items)
	assert.Equal(t, 25.0, totals.Subtotal)
	assert.Equal(t, 3.6, totals.TaxTotal)
	assert.Equal(t, 28.6, totals.Total)

	assert.Equal(t, 23.6, LineTotal(items[0]))
	assert.Equal(t, 5.0, LineTotal(items[1]))
}

func TestTotalsAvoidFloatDrift(t *testing.T) {
	items := []syncapi.LineItem{
		{Price: 0.1, Quantity: 3},
		{Price: 0.2, Quantity: 1},
	}
	assert.Equal(t, 0.5, CalculateTotals(items).Total)
}

func TestEmptyCartTotals(t *testing.T) {
	assert.Equal(t, Totals{}, CalculateTotals(nil))
}

func TestRefund(t *testing.T) {
	amount, err := Refund(10, 18, 1)
	require.NoError(t, err)
	assert.Equal(t, 11.8, amount)

	_, err = Refund(10, 18, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Equal(t, 0.3, SumRefunds(0.1, 0.2))
}

func TestNextInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV000001", NextInvoiceNumber(0))
	assert.Equal(t, "INV000042", NextInvoiceNumber(41))
	assert.Equal(t, "INV1000000", NextInvoiceNumber(999999))
}
