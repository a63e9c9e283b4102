package display

import (
	"strings"

	"github.com/shopspring/decimal"

	"stays/internal/domain"
)

// currencySigns maps a supported currency to its display prefix. Unknown
// codes render with no prefix at all.
var currencySigns = map[domain.Currency]string{
	domain.USD: "US$",
	domain.SGD: "S$",
	domain.CNY: "CNY",
	domain.KRW: "KRW",
	domain.JPY: "¥",
	domain.IDR: "Rp",
}

// FormatPrice renders an amount in the given currency. Whole-unit currencies
// (USD, SGD, CNY) round to the nearest unit. KRW, JPY and IDR carry no minor
// unit and low per-unit value, so they round to the nearest 100. Anything
// else keeps up to two decimals with trailing zeros trimmed. Output is
// locale-stable: "," thousands grouping, "." decimal point, always.
func FormatPrice(amount float64, currency domain.Currency) string {
	n := roundFor(amount, currency)
	if sign, ok := currencySigns[currency]; ok {
		return sign + " " + group(n)
	}
	return group(n)
}

func roundFor(amount float64, currency domain.Currency) decimal.Decimal {
	d := decimal.NewFromFloat(amount)
	switch currency {
	case domain.USD, domain.SGD, domain.CNY:
		return d.Round(0)
	case domain.KRW, domain.JPY, domain.IDR:
		hundred := decimal.NewFromInt(100)
		return d.Div(hundred).Round(0).Mul(hundred)
	default:
		return d.Round(2)
	}
}

// group inserts thousands separators into the decimal's plain form and trims
// trailing fractional zeros.
func group(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], strings.TrimRight(s[i+1:], "0")
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	n := len(intPart)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
