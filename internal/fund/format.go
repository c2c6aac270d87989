package fund

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the club's reporting currency.
const DefaultCurrency = money.INR

// SignedAmount is a currency amount split into sign and magnitude so the
// sign can be styled separately.
type SignedAmount struct {
	Sign      string `json:"sign"`
	Magnitude string `json:"magnitude"`
}

func (s SignedAmount) String() string { return s.Sign + s.Magnitude }

// Formatter renders amounts in one currency. Fraction is the number of
// decimal digits shown, independent of the currency's minor unit.
type Formatter struct {
	Currency string
	Fraction int
}

// NewFormatter returns a formatter for the given ISO currency code. An
// unknown code falls back to the default currency.
func NewFormatter(code string, fraction int) Formatter {
	if money.GetCurrency(code) == nil {
		code = DefaultCurrency
	}
	if fraction < 0 {
		fraction = 0
	}
	return Formatter{Currency: code, Fraction: fraction}
}

func (f Formatter) moneyFormatter() *money.Formatter {
	cur := money.GetCurrency(f.Currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	return money.NewFormatter(f.Fraction, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
}

// Amount formats the absolute value of v with currency symbol and
// digit grouping.
func (f Formatter) Amount(v decimal.Decimal) string {
	minor := v.Abs().Shift(int32(f.Fraction)).Round(0).IntPart()
	return f.moneyFormatter().Format(minor)
}

// Signed formats v as sign plus magnitude. Zero counts as positive.
func (f Formatter) Signed(v decimal.Decimal) SignedAmount {
	sign := "+"
	if v.IsNegative() {
		sign = "-"
	}
	return SignedAmount{Sign: sign, Magnitude: f.Amount(v)}
}

// Percent renders a ratio (0.125) as a percentage string ("12.50%") with
// the given number of decimal places.
func Percent(ratio decimal.Decimal, places int32) string {
	return ratio.Shift(2).StringFixed(places) + "%"
}

// SignedPercent is Percent with an explicit sign, using the same sign rule
// as Signed.
func SignedPercent(ratio decimal.Decimal, places int32) string {
	if ratio.IsNegative() {
		return "-" + Percent(ratio.Abs(), places)
	}
	return "+" + Percent(ratio, places)
}
