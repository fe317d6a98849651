package aggregate

import (
	"pricedigest/internal/quote"
)

// BestByKeyword folds quotes into the cheapest priced quote per keyword.
// Rules:
//   - quotes without price are skipped
//   - the first priced quote for a keyword is inserted
//   - a later quote replaces it only when strictly cheaper, so ties keep
//     the earliest
//
// Prices are compared as plain decimals regardless of currency.
func BestByKeyword(quotes []quote.ProductQuote) *quote.BestQuoteIndex {
	best := quote.NewBestQuoteIndex()
	for _, q := range quotes {
		if !q.HasPrice() {
			continue
		}
		cur, ok := best.Get(q.Keyword)
		if !ok || q.Price.LessThan(*cur.Price) {
			best.Put(q)
		}
	}
	return best
}
