// Package fund computes fund-wide metrics from contribution and holding
// records and attributes them to individual members pro rata.
//
// Every function in this package is pure: results depend only on the
// records passed in, so callers recompute on each request instead of
// caching.
package fund

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LivePricePlaceholder is stored as a holding's current price when the
// price is supposed to come from a live quote. It coerces to zero.
const LivePricePlaceholder = "Live"

// ContributionRecord is a single logged payment by a member.
type ContributionRecord struct {
	MemberEmail string
	Amount      decimal.Decimal
	Date        time.Time
	Notes       string
	IsMonthly   bool
}

// HoldingRecord is one tracked position. CurrentPrice is kept as text
// because it may hold a placeholder instead of a number.
type HoldingRecord struct {
	StockName     string
	Ticker        string
	Type          string
	Shares        decimal.Decimal
	PurchasePrice decimal.Decimal
	CurrentPrice  string
}

// MemberRecord identifies a member of the club.
type MemberRecord struct {
	Name     string
	Email    string
	JoinDate time.Time
}

var (
	nonNumeric = regexp.MustCompile(`[^0-9.\-]`)
	// A dot that ends a word ("Rs.") or is not followed by a digit is
	// punctuation, not a decimal point.
	wordDot  = regexp.MustCompile(`([A-Za-z])\.`)
	looseDot = regexp.MustCompile(`\.([^0-9]|$)`)
)

// ParseAmount converts a loosely formatted number ("₹1,250.50", "Rs. 42",
// "Live") into a decimal. Letters, currency symbols, separators and
// whitespace are dropped, so "1e3" reads as 13. Anything that is still not
// a number after that becomes zero.
func ParseAmount(raw string) decimal.Decimal {
	raw = wordDot.ReplaceAllString(raw, "$1")
	raw = looseDot.ReplaceAllString(raw, "$1")
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizeEmail is the comparison key for member emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
