package normalize

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"pricedigest/internal/catalog"
	"pricedigest/internal/quote"
)

// Field paths into a catalog item. Offers is the classic listing block,
// OffersV2 the newer one where the amount sits under Price.Money.
var (
	titlePath      = []any{"ItemInfo", "Title", "DisplayValue"}
	urlPath        = []any{"DetailPageURL"}
	offersPrice    = []any{"Offers", "Listings", 0, "Price"}
	offersV2Price  = []any{"OffersV2", "Listings", 0, "Price", "Money"}
	offersPresence = []any{"Offers"}
)

// lineBreaks are folded to spaces in titles so every report row is a
// single line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Quote converts one raw catalog item into a ProductQuote for keyword.
// It returns false when the item has no title or no detail page link.
// A missing or malformed price never rejects the item; the quote is
// returned without price and currency instead.
func Quote(item catalog.Item, keyword string) (quote.ProductQuote, bool) {
	title := lineBreaks.Replace(lookupString(item, titlePath))
	url := lookupString(item, urlPath)
	if title == "" || url == "" {
		return quote.ProductQuote{}, false
	}

	q := quote.ProductQuote{Keyword: keyword, Title: title, URL: url}
	if price, currency, ok := firstListingPrice(item); ok {
		q.Price = &price
		q.Currency = currency
	}
	return q, true
}

func firstListingPrice(item catalog.Item) (decimal.Decimal, string, bool) {
	path := offersPrice
	if _, ok := catalog.Lookup(item, offersPresence...); !ok {
		path = offersV2Price
	}
	node, ok := catalog.LookupValue[map[string]any](item, path...)
	if !ok {
		return decimal.Decimal{}, "", false
	}
	amount, ok := parseAmount(node["Amount"])
	if !ok || amount.IsNegative() {
		return decimal.Decimal{}, "", false
	}
	currency, _ := node["Currency"].(string)
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return decimal.Decimal{}, "", false
	}
	return amount, currency, true
}

// parseAmount accepts the shapes a JSON decoder may produce for a number.
func parseAmount(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

func lookupString(item catalog.Item, path []any) string {
	s, _ := catalog.LookupValue[string](item, path...)
	return strings.TrimSpace(s)
}
