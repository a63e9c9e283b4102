package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Property is a hotel listing as returned by the upstream catalog.
// Immutable on our side; it lives for one fetch cycle.
type Property struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"` // 0–10 scale
	Stars       int     `json:"stars"`  // 0–5
	Photo       string  `json:"photo"`
}

// TaxesAndFees are the additive components of a quoted price.
type TaxesAndFees struct {
	Tax       float64 `json:"tax"`
	HotelFees float64 `json:"hotel_fees"`
}

// CompetitorQuote is one third-party seller's price for the same stay.
type CompetitorQuote struct {
	Name  string
	Price float64
}

// CompetitorQuotes keeps the document order of the upstream JSON object.
// Competitor ranking breaks price ties by insertion order, so the order the
// API sent the keys in must survive decoding.
type CompetitorQuotes []CompetitorQuote

func (c *CompetitorQuotes) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // JSON null
		*c = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("competitors: expected object, got %v", tok)
	}

	out := make(CompetitorQuotes, 0, 4)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := kt.(string)

		vt, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := vt.(json.Number)
		if !ok {
			return fmt.Errorf("competitors: price for %q is not a number", name)
		}
		p, err := num.Float64()
		if err != nil {
			return err
		}
		out = append(out, CompetitorQuote{Name: name, Price: p})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return err
	}
	*c = out
	return nil
}

func (c CompetitorQuotes) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, q := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(q.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(q.Price)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PropertyPrice is the quote for one property in one currency. One quote per
// property per (location, currency) fetch is expected; duplicates are a
// data-quality issue and the first match wins on join.
type PropertyPrice struct {
	ID           int64            `json:"id"`
	Price        float64          `json:"price"`
	Competitors  CompetitorQuotes `json:"competitors,omitempty"`
	TaxesAndFees *TaxesAndFees    `json:"taxes_and_fees,omitempty"`
}

// EnrichedProperty is a Property left-joined with at most one quote.
// A nil Quote means "rates unavailable": such entries sort after every
// priced entry regardless of the active sort key.
type EnrichedProperty struct {
	Property
	Quote *PropertyPrice
}

func (e EnrichedProperty) Priced() bool { return e.Quote != nil }
