package invoices

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func nullDec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(v))
}

func TestNormalizeFillsDefaults(t *testing.T) {
	out := Normalize([]LineItem{{Quantity: dec("2"), UnitPrice: dec("5")}})

	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Valid)
	assert.True(t, out[0].Amount.Decimal.Equal(dec("10")))
	assert.True(t, out[0].Discount.Valid)
	assert.True(t, out[0].Discount.Decimal.IsZero())
	assert.True(t, out[0].NetPrice.Valid)
	assert.True(t, out[0].NetPrice.Decimal.IsZero())
	assert.False(t, out[0].PromotionPrice.Valid)
}

func TestNormalizeKeepsExplicitAmount(t *testing.T) {
	out := Normalize([]LineItem{{Description: "Ideal 1L", Quantity: dec("2"), UnitPrice: dec("5"), Amount: nullDec("9.50")}})

	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Decimal.Equal(dec("9.50")))
}

func TestNormalizeZeroAmountIsRecomputed(t *testing.T) {
	out := Normalize([]LineItem{{Description: "Vio", Quantity: dec("3"), UnitPrice: dec("1.5"), Amount: nullDec("0")}})

	require.Len(t, out, 1)
	assert.True(t, out[0].Amount.Decimal.Equal(dec("4.5")))
}

func TestFillMissingKeepsExplicitZero(t *testing.T) {
	zero := fillMissing(LineItem{Description: "Vio", Quantity: dec("3"), UnitPrice: dec("1.5"), Amount: nullDec("0")})
	assert.True(t, zero.Amount.Decimal.IsZero())

	absent := fillMissing(LineItem{Description: "Vio", Quantity: dec("3"), UnitPrice: dec("1.5")})
	assert.True(t, absent.Amount.Decimal.Equal(dec("4.5")))
	assert.Equal(t, "Vio", absent.ProductName)
	assert.True(t, absent.Discount.Valid)
}

func TestNormalizeNameFallbacks(t *testing.T) {
	out := Normalize([]LineItem{
		{Description: "Knorr cube"},
		{ProductName: "Danone yogurt"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Knorr cube", out[0].ProductName)
	assert.Equal(t, "Knorr cube", out[0].Description)
	assert.Equal(t, "Danone yogurt", out[1].Description)
}

func TestNormalizeDeduplicatesFirstWins(t *testing.T) {
	out := Normalize([]LineItem{
		{ProductName: "Knorr", UnitPrice: dec("1"), Quantity: dec("1")},
		{ProductName: "Vio", UnitPrice: dec("2"), Quantity: dec("1")},
		{ProductName: "  KNORR ", UnitPrice: dec("9"), Quantity: dec("1")},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "Knorr", out[0].ProductName)
	assert.True(t, out[0].UnitPrice.Equal(dec("1")))
	assert.Equal(t, "Vio", out[1].ProductName)
}

func TestNormalizeKeepsUnnamedItems(t *testing.T) {
	out := Normalize([]LineItem{
		{Quantity: dec("1"), UnitPrice: dec("3")},
		{Quantity: dec("2"), UnitPrice: dec("4")},
	})

	assert.Len(t, out, 2)
}

func TestNormalizeEmptyInput(t *testing.T) {
	out := Normalize(nil)

	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestNormalizeNeverGrows(t *testing.T) {
	in := []LineItem{
		{ProductName: "a"},
		{ProductName: "b"},
		{ProductName: "A"},
		{Description: "c"},
	}
	out := Normalize(in)

	assert.Less(t, len(out), len(in))
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := []LineItem{
		{Description: "Knorr", Quantity: dec("2"), UnitPrice: dec("1.25")},
		{ProductName: "knorr ", Quantity: dec("1"), UnitPrice: dec("7")},
		{Description: "Ideal", Quantity: dec("1"), UnitPrice: dec("3"), Amount: nullDec("2.50"), Discount: nullDec("0.5")},
		{Quantity: dec("4"), UnitPrice: dec("0")},
		{},
	}

	once := Normalize(in)
	twice := Normalize(once)

	assert.Equal(t, once, twice)
}
