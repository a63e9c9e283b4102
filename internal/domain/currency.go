package domain

import "fmt"

// Currency is a display currency code. The supported set is fixed by the
// product; the preference defaults to USD.
type Currency string

const (
	USD Currency = "USD"
	SGD Currency = "SGD"
	CNY Currency = "CNY"
	KRW Currency = "KRW"
	JPY Currency = "JPY"
	IDR Currency = "IDR"
)

const DefaultCurrency = USD

// Currencies returns the supported set in display order.
func Currencies() []Currency {
	return []Currency{USD, SGD, CNY, KRW, JPY, IDR}
}

func (c Currency) Valid() bool {
	switch c {
	case USD, SGD, CNY, KRW, JPY, IDR:
		return true
	}
	return false
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

// SortOption selects the ordering of the rendered listing. It is a
// per-request key, never persisted.
type SortOption string

const (
	SortTopPicks   SortOption = "topPicks" // upstream order preserved
	SortPriceLow   SortOption = "priceLow"
	SortPriceHigh  SortOption = "priceHigh"
	SortRatingHigh SortOption = "ratingHigh"
	SortRatingLow  SortOption = "ratingLow"
)

const DefaultSort = SortTopPicks

func (s SortOption) Valid() bool {
	switch s {
	case SortTopPicks, SortPriceLow, SortPriceHigh, SortRatingHigh, SortRatingLow:
		return true
	}
	return false
}

func ParseSortOption(s string) (SortOption, error) {
	if s == "" {
		return DefaultSort, nil
	}
	o := SortOption(s)
	if !o.Valid() {
		return "", fmt.Errorf("unsupported sort option %q", s)
	}
	return o, nil
}
