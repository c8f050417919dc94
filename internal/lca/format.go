package lca

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ---------------------------------------------------------------------------
// Currency
// ---------------------------------------------------------------------------

// currencyPrinter is the locale-aware path of formatCurrency. Tests replace it
// to exercise the fallback.
var currencyPrinter = printUSD

func printUSD(amount float64) (string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "", fmt.Errorf("cannot format %v as currency", amount)
	}

	p := message.NewPrinter(language.AmericanEnglish)
	rounded := math.Round(math.Abs(amount))
	s := "$" + p.Sprintf("%v", number.Decimal(rounded, number.MaxFractionDigits(0)))
	if amount < 0 && rounded != 0 {
		s = "-" + s
	}
	return s, nil
}

// formatCurrency renders amount as whole US dollars, e.g. $95,000.
func formatCurrency(amount float64) string {
	if s, err := currencyPrinter(amount); err == nil {
		return s
	}
	return fallbackCurrency(amount)
}

// fallbackCurrency groups digits by hand. It must not fail.
func fallbackCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0"
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatFloat(math.Round(amount), 'f', 0, 64)
	if digits == "0" {
		sign = ""
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteByte('$')
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Dates
// ---------------------------------------------------------------------------

// dateLayouts are tried in order by parseDate.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// parseDate accepts the date notations found in filings. Timestamps keep the
// calendar day as written, independent of the local time zone.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// formatDate renders s as MM/DD/YYYY, or returns it unchanged if it is not a date.
func formatDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return t.Format("01/02/2006")
}

// ---------------------------------------------------------------------------
// Clause Wording
// ---------------------------------------------------------------------------

// workerPhrase returns the grammatical subject and verb for the worker count.
func workerPhrase(n int) string {
	if n == 1 {
		return "One (1) such worker is"
	}
	return fmt.Sprintf("%d such workers are", n)
}

// wageUnit lowercases the pay period for use after a slash, e.g. "/year".
func wageUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
