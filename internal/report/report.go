// Package report serializes best quotes as a ';'-delimited UTF-8 table.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/shopspring/decimal"

	"pricedigest/internal/quote"
)

// DefaultPath is the report file name used when none is configured.
const DefaultPath = "melhores_precos_amazon_br.csv"

// Delimiter separates report fields.
const Delimiter = ';'

// Header is the first row of every report.
var Header = []string{"keyword", "title", "price", "currency", "url"}

var (
	// ErrBadHeader indicates that a report does not start with Header.
	ErrBadHeader = errors.New("report: unexpected header")
	// ErrNoPrice indicates a quote without price passed to the writer.
	ErrNoPrice = errors.New("report: quote has no price")
)

// Write emits the header and one row per quote, in the given order.
// Rows use CRLF line endings, so identical input yields identical bytes.
func Write(w io.Writer, quotes []quote.ProductQuote) error {
	cw := csv.NewWriter(w)
	cw.Comma = Delimiter
	cw.UseCRLF = true

	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, q := range quotes {
		if !q.HasPrice() {
			return fmt.Errorf("%w: %q", ErrNoPrice, q.Keyword)
		}
		row := []string{q.Keyword, q.Title, q.Price.String(), q.Currency, q.URL}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates or truncates path and writes the report into it.
// The file is closed on every path; a close error is returned when
// nothing else failed.
func WriteFile(path string, quotes []quote.ProductQuote) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing report: %w", cerr)
		}
	}()
	if err := Write(f, quotes); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Read parses a report produced by Write.
func Read(r io.Reader) ([]quote.ProductQuote, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = len(Header)

	head, err := cr.Read()
	if err == io.EOF {
		return nil, ErrBadHeader
	}
	if err != nil {
		return nil, err
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, head)
	}

	var out []quote.ProductQuote
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(rec[2])
		if err != nil {
			line, _ := cr.FieldPos(2)
			return nil, fmt.Errorf("report line %d: price %q: %w", line, rec[2], err)
		}
		out = append(out, quote.ProductQuote{
			Keyword:  rec[0],
			Title:    rec[1],
			Price:    &price,
			Currency: rec[3],
			URL:      rec[4],
		})
	}
}

// ReadFile parses the report stored at path.
func ReadFile(path string) ([]quote.ProductQuote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
