package extraction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "12,50", want: "12.5", ok: true},
		{in: "12.50 DH", want: "12.5", ok: true},
		{in: "1 234,50", want: "1234.5", ok: true},
		{in: "1.234,56", want: "1234.56", ok: true},
		{in: "1,234.56", want: "1234.56", ok: true},
		{in: "1,234", want: "1234", ok: true},
		{in: "MAD 99", want: "99", ok: true},
		{in: "-5,00", want: "-5", ok: true},
		{in: "-", ok: false},
		{in: "n/a", ok: false},
		{in: "12-", ok: false},
	}

	for _, tc := range cases {
		got, ok := ParseMoney(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.in)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-03-05":           "2024-03-05",
		"05/03/2024":           "2024-03-05",
		"5/3/2024":             "2024-03-05",
		"05-03-2024":           "2024-03-05",
		"05.03.2024":           "2024-03-05",
		"2024-03-05T10:00:00Z": "2024-03-05",
	}
	for in, want := range cases {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseDate("mars 2024")
	assert.False(t, ok)
}

func TestSanitizeCoercesAndDrops(t *testing.T) {
	raw := []byte(`{
		"invoice_number": 4521,
		"store": "  Marjane Agadir ",
		"date": "05/03/2024",
		"total": "1 234,50 DH",
		"tax_amount": null,
		"discount_amount": 0,
		"currency": "MAD",
		"line_items": [
			{"name": "Knorr Cube", "qty": "2", "price": "6,25", "amount": null, "product_id": 0, "sku_color": "red"}
		]
	}`)

	out, changes, err := Sanitize(raw)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, "4521", got["invoice_number"])
	assert.Equal(t, "Marjane Agadir", got["store_name"])
	assert.Equal(t, "2024-03-05", got["invoice_date"])
	assert.Equal(t, "1234.5", got["total_amount"])
	assert.Equal(t, "0", got["discount_amount"])
	assert.NotContains(t, got, "tax_amount")
	assert.NotContains(t, got, "currency")

	items := got["line_items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Knorr Cube", item["product_name"])
	assert.Equal(t, "2", item["quantity"])
	assert.Equal(t, "6.25", item["unit_price"])
	assert.NotContains(t, item, "amount")
	assert.NotContains(t, item, "product_id")
	assert.NotContains(t, item, "sku_color")

	assert.Contains(t, changes, "currency(unknown)")
	assert.Contains(t, changes, "tax_amount(null)")
	assert.Contains(t, changes, "line_items[0].sku_color(unknown)")
}

func TestSanitizeUnsignsDeductions(t *testing.T) {
	raw := []byte(`{
		"discount_amount": "-5,00",
		"line_items": [
			{"description": "Knorr", "quantity": 1, "unit_price": 10},
			{"description": "Remise", "quantity": 1, "unit_price": "-2"},
			{"description": "Bon", "quantity": -1, "unit_price": 3, "amount": -3}
		]
	}`)

	out, changes, err := Sanitize(raw)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "5", got["discount_amount"])

	items := got["line_items"].([]any)
	require.Len(t, items, 3)
	assert.NotContains(t, items[0].(map[string]any), "amount")

	remise := items[1].(map[string]any)
	assert.Equal(t, "1", remise["quantity"])
	assert.Equal(t, "2", remise["unit_price"])
	assert.Equal(t, "-2", remise["amount"])

	bon := items[2].(map[string]any)
	assert.Equal(t, "1", bon["quantity"])
	assert.Equal(t, "-3", bon["amount"])

	assert.Contains(t, changes, "discount_amount(negative)")
	assert.Contains(t, changes, "line_items[1].unit_price(negative)")
	assert.Contains(t, changes, "line_items[1].amount(derived)")
	assert.Contains(t, changes, "line_items[2].quantity(negative)")
}

func TestSanitizeDefaultsMissingLineItems(t *testing.T) {
	out, _, err := Sanitize([]byte(`{"store_name":"Acima"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"store_name":"Acima","line_items":[]}`, string(out))
}

func TestSanitizeRejectsNonObject(t *testing.T) {
	_, _, err := Sanitize([]byte(`[1,2,3]`))
	require.Error(t, err)

	_, _, err = Sanitize([]byte(`not json`))
	require.Error(t, err)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
}
