package qbxml

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout    = "2006-01-02"
	MaxMemoLength = 4095
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five XML special characters with their entities.
func Escape(s string) string {
	return escaper.Replace(s)
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatAmount renders the absolute value with exactly two decimals. The sign
// is never encoded; direction travels with the operation kind.
func FormatAmount(d decimal.Decimal) string {
	return d.Abs().StringFixed(2)
}

// TruncateMemo cuts s to MaxMemoLength runes.
func TruncateMemo(s string) string {
	if len(s) <= MaxMemoLength {
		return s
	}
	runes := []rune(s)
	if len(runes) <= MaxMemoLength {
		return s
	}
	return string(runes[:MaxMemoLength])
}

func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	// qbXML datetimes sometimes omit the zone.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}
