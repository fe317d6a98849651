package quote

import (
	"github.com/shopspring/decimal"
)

// ProductQuote is one normalized offer observation for a search keyword.
// Price and Currency are either both set or both empty.
type ProductQuote struct {
	Keyword  string           `json:"keyword"`
	Title    string           `json:"title"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Currency string           `json:"currency,omitempty"`
	URL      string           `json:"url"`
}

// HasPrice reports whether the quote carries a price and currency.
func (q ProductQuote) HasPrice() bool {
	return q.Price != nil && q.Currency != ""
}

// BestQuoteIndex maps a keyword to the cheapest priced quote seen for it.
// Keywords are iterated in the order they first entered the index.
type BestQuoteIndex struct {
	byKeyword map[string]ProductQuote
	order     []string
}

func NewBestQuoteIndex() *BestQuoteIndex {
	return &BestQuoteIndex{byKeyword: make(map[string]ProductQuote)}
}

// Get returns the stored quote for keyword.
func (x *BestQuoteIndex) Get(keyword string) (ProductQuote, bool) {
	q, ok := x.byKeyword[keyword]
	return q, ok
}

// Put stores q under its keyword, replacing any previous entry.
func (x *BestQuoteIndex) Put(q ProductQuote) {
	if _, ok := x.byKeyword[q.Keyword]; !ok {
		x.order = append(x.order, q.Keyword)
	}
	x.byKeyword[q.Keyword] = q
}

func (x *BestQuoteIndex) Len() int { return len(x.order) }

// Quotes returns the best quotes in keyword first-seen order.
func (x *BestQuoteIndex) Quotes() []ProductQuote {
	out := make([]ProductQuote, 0, len(x.order))
	for _, k := range x.order {
		out = append(out, x.byKeyword[k])
	}
	return out
}
