package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"pricedigest/internal/catalog"
)

// decodeItem decodes a JSON object the same way the catalog client does.
func decodeItem(t *testing.T, raw string) catalog.Item {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var item catalog.Item
	require.NoError(t, dec.Decode(&item))
	return item
}

func TestQuote_FullRecord(t *testing.T) {
	t.Parallel()

	item := decodeItem(t, `{
		"ASIN": "B000000001",
		"DetailPageURL": "https://www.amazon.com.br/dp/B000000001",
		"ItemInfo": {"Title": {"DisplayValue": "Café especial 250g"}},
		"Offers": {"Listings": [
			{"Price": {"Amount": 19.90, "Currency": "BRL", "DisplayAmount": "R$ 19,90"}},
			{"Price": {"Amount": 5.00, "Currency": "BRL"}}
		]}
	}`)

	q, ok := Quote(item, "café especial")
	require.True(t, ok)
	require.Equal(t, "café especial", q.Keyword)
	require.Equal(t, "Café especial 250g", q.Title)
	require.Equal(t, "https://www.amazon.com.br/dp/B000000001", q.URL)
	require.True(t, q.HasPrice())
	require.Equal(t, "19.9", q.Price.String(), "first listing wins, not the cheapest")
	require.Equal(t, "BRL", q.Currency)
}

func TestQuote_RejectsMissingTitleOrURL(t *testing.T) {
	t.Parallel()

	records := []string{
		`{"DetailPageURL": "https://x/dp/1"}`,
		`{"ItemInfo": {"Title": {"DisplayValue": "Pilhas"}}}`,
		`{"DetailPageURL": "  ", "ItemInfo": {"Title": {"DisplayValue": "Pilhas"}}}`,
		`{"DetailPageURL": "https://x/dp/1", "ItemInfo": {"Title": {"DisplayValue": ""}}}`,
		`{"DetailPageURL": 12, "ItemInfo": {"Title": "flat"}}`,
		`{}`,
	}
	for _, raw := range records {
		item := decodeItem(t, raw)
		// Price data present must not rescue a rejected record.
		item["Offers"] = map[string]any{"Listings": []any{map[string]any{"Price": map[string]any{"Amount": json.Number("1"), "Currency": "BRL"}}}}
		_, ok := Quote(item, "k")
		require.Falsef(t, ok, "record should be rejected: %s", raw)
	}
}

func TestQuote_PriceAbsenceTolerance(t *testing.T) {
	t.Parallel()

	offers := []string{
		``,
		`, "Offers": null`,
		`, "Offers": {}`,
		`, "Offers": {"Listings": []}`,
		`, "Offers": {"Listings": [null]}`,
		`, "Offers": {"Listings": [{}]}`,
		`, "Offers": {"Listings": [{"Price": "R$ 10"}]}`,
		`, "Offers": {"Listings": [{"Price": {"Currency": "BRL"}}]}`,
		`, "Offers": {"Listings": [{"Price": {"Amount": 10}}]}`,
		`, "Offers": {"Listings": [{"Price": {"Amount": 10, "Currency": ""}}]}`,
		`, "Offers": {"Listings": [{"Price": {"Amount": "ten", "Currency": "BRL"}}]}`,
		`, "Offers": {"Listings": [{"Price": {"Amount": -1, "Currency": "BRL"}}]}`,
		`, "Offers": {"Listings": {"0": {}}}`,
		`, "Offers": "unavailable"`,
		`, "OffersV2": {"Listings": [{"Price": {}}]}`,
	}
	for _, o := range offers {
		raw := `{"DetailPageURL": "https://x/dp/1", "ItemInfo": {"Title": {"DisplayValue": "Secante"}}` + o + `}`
		q, ok := Quote(decodeItem(t, raw), "secante")
		require.Truef(t, ok, "record should be kept: %s", raw)
		require.Nilf(t, q.Price, "price should be absent: %s", raw)
		require.Emptyf(t, q.Currency, "currency should be absent: %s", raw)
		require.False(t, q.HasPrice())
	}
}

func TestQuote_OffersV2Fallback(t *testing.T) {
	t.Parallel()

	item := decodeItem(t, `{
		"DetailPageURL": "https://x/dp/2",
		"ItemInfo": {"Title": {"DisplayValue": "Detergente"}},
		"OffersV2": {"Listings": [{"Price": {"Money": {"Amount": 12.5, "Currency": "BRL"}}}]}
	}`)

	q, ok := Quote(item, "detergente")
	require.True(t, ok)
	require.True(t, q.HasPrice())
	require.Equal(t, "12.5", q.Price.String())
}

func TestQuote_ZeroPriceIsAPrice(t *testing.T) {
	t.Parallel()

	item := decodeItem(t, `{
		"DetailPageURL": "https://x/dp/3",
		"ItemInfo": {"Title": {"DisplayValue": "Brinde"}},
		"Offers": {"Listings": [{"Price": {"Amount": 0, "Currency": "BRL"}}]}
	}`)

	q, ok := Quote(item, "brinde")
	require.True(t, ok)
	require.True(t, q.HasPrice())
	require.True(t, q.Price.IsZero())
}

func TestParseAmount_Shapes(t *testing.T) {
	t.Parallel()

	d, ok := parseAmount(json.Number("9.99"))
	require.True(t, ok)
	require.Equal(t, "9.99", d.String())

	d, ok = parseAmount(12.5)
	require.True(t, ok)
	require.Equal(t, "12.5", d.String())

	d, ok = parseAmount(" 3.10 ")
	require.True(t, ok)
	require.Equal(t, "3.1", d.String())

	_, ok = parseAmount(true)
	require.False(t, ok)
}

func TestQuote_TitleLineBreaksFolded(t *testing.T) {
	t.Parallel()

	item := decodeItem(t, `{
		"DetailPageURL": "https://x/dp/4",
		"ItemInfo": {"Title": {"DisplayValue": "Pilhas AA\r\n4 unidades\nalcalinas\rDuracell"}}
	}`)

	q, ok := Quote(item, "pilhas")
	require.True(t, ok)
	require.Equal(t, "Pilhas AA 4 unidades alcalinas Duracell", q.Title)
}
