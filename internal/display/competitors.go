package display

import (
	"math"
	"sort"

	"stays/internal/domain"
)

// SelfLabel is how our own price appears among competitor quotes.
const SelfLabel = "Stays.com"

// competitorLimit caps how many rows render inline before the rest collapse
// behind a "+N more" summary.
const competitorLimit = 3

// RankCompetitors merges our own price with the competitor quotes and sorts
// ascending by price. Self is included only when the property is priced and
// at least one competitor exists. The sort is stable: price ties keep
// insertion order, self first, then quotes in document order.
func RankCompetitors(ownPrice float64, quotes domain.CompetitorQuotes) []domain.CompetitorQuote {
	if len(quotes) == 0 {
		return nil
	}
	entries := make([]domain.CompetitorQuote, 0, len(quotes)+1)
	if ownPrice > 0 {
		entries = append(entries, domain.CompetitorQuote{Name: SelfLabel, Price: ownPrice})
	}
	entries = append(entries, quotes...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Price < entries[j].Price })
	return entries
}

// HighestPrice returns the last (largest) ranked price, or 0 for an empty
// ranking.
func HighestPrice(entries []domain.CompetitorQuote) float64 {
	if len(entries) == 0 {
		return 0
	}
	return entries[len(entries)-1].Price
}

// Savings is the percentage saved against the highest quote:
// round((highest-own)/highest*100). Zero when either side is missing;
// callers hide the badge for anything not strictly positive.
func Savings(ownPrice, highestPrice float64) int {
	if ownPrice <= 0 || highestPrice <= 0 {
		return 0
	}
	return int(math.Round((highestPrice - ownPrice) / highestPrice * 100))
}

// SummaryRow is the collapsed "+N more" row. It reuses the data of the first
// hidden-adjacent entry, which also reappears in the expanded list.
type SummaryRow struct {
	domain.CompetitorQuote
	MoreCount int
}

// CompetitorSplit partitions ranked entries for rendering. With at most
// competitorLimit entries everything is inline. Beyond that, the third slot
// becomes a summary row built from entry index 2, and expanding reveals
// entries [2..end] — index 2 intentionally appears in both.
type CompetitorSplit struct {
	Inline   []domain.CompetitorQuote
	Summary  *SummaryRow
	Expanded []domain.CompetitorQuote
}

func SplitCompetitors(entries []domain.CompetitorQuote) CompetitorSplit {
	if len(entries) <= competitorLimit {
		return CompetitorSplit{Inline: entries}
	}
	return CompetitorSplit{
		Inline: entries[:competitorLimit-1],
		Summary: &SummaryRow{
			CompetitorQuote: entries[competitorLimit-1],
			MoreCount:       len(entries) - competitorLimit,
		},
		Expanded: entries[competitorLimit-1:],
	}
}

// brandAssets maps known competitor identifiers to a logo asset reference.
// Unknown competitors fall back to their plain name.
var brandAssets = map[string]string{
	"Agoda":       "/assets/agoda.png",
	"Agoda.com":   "/assets/agoda.png",
	"Booking":     "/assets/booking.png",
	"Booking.com": "/assets/booking.png",
	"Expedia":     "/assets/expedia.png",
	"Kayak":       "/assets/kayak.png",
	"Prestigia":   "/assets/prestigia.png",
	"Trip":        "/assets/trip.png",
	SelfLabel:     "/assets/stays.png",
}

// BrandAsset looks up the logo asset for a competitor name. ok is false for
// unknown brands, which render as text.
func BrandAsset(name string) (asset string, ok bool) {
	asset, ok = brandAssets[name]
	return
}

// TaxBreakdown decomposes a quoted total into its components. Components are
// trusted as given; nothing validates that they sum to the total.
type TaxBreakdown struct {
	Base      float64
	Tax       float64
	HotelFees float64
	Total     float64
}

func BreakdownTaxes(price float64, tf domain.TaxesAndFees) TaxBreakdown {
	return TaxBreakdown{
		Base:      price - tf.Tax - tf.HotelFees,
		Tax:       tf.Tax,
		HotelFees: tf.HotelFees,
		Total:     price,
	}
}
