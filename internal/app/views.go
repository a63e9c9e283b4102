package app

import (
	"stays/internal/display"
	"stays/internal/domain"
)

// RatesUnavailable is the exact price string for a listing with no quote in
// the active currency.
const RatesUnavailable = "Rates unavailable"

type CompetitorRowView struct {
	Label string `json:"label"`
	Brand string `json:"brand,omitempty"` // logo asset; empty means textual fallback
	Price string `json:"price"`
}

// CompetitorSummaryView is the collapsed "+N more" row. It carries the data
// of the entry that also opens the expanded panel.
type CompetitorSummaryView struct {
	CompetitorRowView
	More int `json:"more"`
}

type CompetitorSectionView struct {
	Inline   []CompetitorRowView    `json:"inline"`
	Summary  *CompetitorSummaryView `json:"summary,omitempty"`
	Expanded []CompetitorRowView    `json:"expanded,omitempty"`
}

type TaxBreakdownView struct {
	Base      string `json:"base"`
	Tax       string `json:"tax"`
	HotelFees string `json:"hotelFees"`
	Total     string `json:"total"`
}

type ListingView struct {
	ID            int64                  `json:"id"`
	Name          string                 `json:"name"`
	Address       string                 `json:"address"`
	Description   string                 `json:"description"`
	Photo         string                 `json:"photo"`
	Stars         int                    `json:"stars"`
	Rating        float64                `json:"rating"`
	RatingLabel   string                 `json:"ratingLabel"`
	ReviewCount   int                    `json:"reviewCount"`
	Price         string                 `json:"price"`
	StayNote      string                 `json:"stayNote,omitempty"` // "1 night, 2 adults" when priced
	SavePercent   int                    `json:"savePercent,omitempty"`
	Strikethrough string                 `json:"strikethrough,omitempty"`
	Competitors   *CompetitorSectionView `json:"competitors,omitempty"`
	TaxesAndFees  *TaxBreakdownView      `json:"taxesAndFees,omitempty"`
}

// BuildViews maps enriched properties to presentation views in the given
// currency, preserving order.
func BuildViews(items []domain.EnrichedProperty, currency domain.Currency) []ListingView {
	out := make([]ListingView, 0, len(items))
	for _, it := range items {
		out = append(out, buildView(it, currency))
	}
	return out
}

func buildView(it domain.EnrichedProperty, currency domain.Currency) ListingView {
	v := ListingView{
		ID:          it.ID,
		Name:        it.Name,
		Address:     it.Address,
		Description: it.Description,
		Photo:       it.Photo,
		Stars:       it.Stars,
		Rating:      it.Rating,
		RatingLabel: display.RatingLabel(it.Rating),
		ReviewCount: reviewCount(it.ID),
		Price:       RatesUnavailable,
	}
	if !it.Priced() {
		return v
	}

	q := it.Quote
	v.Price = display.FormatPrice(q.Price, currency)
	v.StayNote = "1 night, 2 adults"

	ranked := display.RankCompetitors(q.Price, q.Competitors)
	if highest := display.HighestPrice(ranked); highest > q.Price {
		v.Strikethrough = display.FormatPrice(highest, currency)
		if save := display.Savings(q.Price, highest); save > 0 {
			v.SavePercent = save
		}
	}
	if len(ranked) > 0 {
		v.Competitors = competitorSection(ranked, currency)
	}
	if q.TaxesAndFees != nil {
		b := display.BreakdownTaxes(q.Price, *q.TaxesAndFees)
		v.TaxesAndFees = &TaxBreakdownView{
			Base:      display.FormatPrice(b.Base, currency),
			Tax:       display.FormatPrice(b.Tax, currency),
			HotelFees: display.FormatPrice(b.HotelFees, currency),
			Total:     display.FormatPrice(b.Total, currency),
		}
	}
	return v
}

func competitorSection(ranked []domain.CompetitorQuote, currency domain.Currency) *CompetitorSectionView {
	split := display.SplitCompetitors(ranked)
	sec := &CompetitorSectionView{Inline: rows(split.Inline, currency)}
	if split.Summary != nil {
		sec.Summary = &CompetitorSummaryView{
			CompetitorRowView: row(split.Summary.CompetitorQuote, currency),
			More:              split.Summary.MoreCount,
		}
		sec.Expanded = rows(split.Expanded, currency)
	}
	return sec
}

func rows(qs []domain.CompetitorQuote, currency domain.Currency) []CompetitorRowView {
	out := make([]CompetitorRowView, 0, len(qs))
	for _, q := range qs {
		out = append(out, row(q, currency))
	}
	return out
}

func row(q domain.CompetitorQuote, currency domain.Currency) CompetitorRowView {
	r := CompetitorRowView{Label: q.Name, Price: display.FormatPrice(q.Price, currency)}
	if asset, ok := display.BrandAsset(q.Name); ok {
		r.Brand = asset
	}
	return r
}

// reviewCount derives a stable pseudo count from the property id. The
// upstream exposes no review data; a deterministic value keeps responses
// byte-identical across requests so ETag caching works.
func reviewCount(id int64) int {
	return int(id*37%1000) + 100
}
