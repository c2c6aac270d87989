package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is a position in the fund's portfolio. CurrentPrice is raw text
// as entered by an admin; when UseLiveQuote is set it holds the "Live"
// placeholder and LastQuote carries the most recent fetched price.
type Holding struct {
	ID            uint                `json:"id" gorm:"primaryKey;autoIncrement"`
	StockName     string              `json:"stockName" gorm:"not null;uniqueIndex"`
	CompanyName   string              `json:"companyName"`
	Ticker        string              `json:"ticker" gorm:"index"`
	Type          string              `json:"type"`
	Shares        decimal.Decimal     `json:"shares" gorm:"type:text;not null"`
	PurchasePrice decimal.Decimal     `json:"purchasePrice" gorm:"type:text;not null"`
	CurrentPrice  string              `json:"currentPrice"`
	UseLiveQuote  bool                `json:"useLiveQuote"`
	LastQuote     decimal.NullDecimal `json:"lastQuote" gorm:"type:text"`
	QuotedAt      *time.Time          `json:"quotedAt"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// EffectivePrice is the price text used for valuation: the last live
// quote if there is one, otherwise whatever is stored in CurrentPrice.
func (h Holding) EffectivePrice() string {
	if h.UseLiveQuote && h.LastQuote.Valid {
		return h.LastQuote.Decimal.String()
	}
	return h.CurrentPrice
}

// HistoryPoint is one point of the fund value chart.
type HistoryPoint struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Date      time.Time       `json:"-" gorm:"not null;uniqueIndex"`
	Value     decimal.Decimal `json:"value" gorm:"type:text;not null"`
	Automatic bool            `json:"automatic"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DashboardMetric is a named value persisted for the dashboard, either
// recalculated from the records or set by an admin.
type DashboardMetric struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	MetricInvestedInStocks = "Invested in Stocks"
	MetricTotalFundValue   = "Total Fund Value"
	MetricAIInsight        = "aiInsight"
)

// PortfolioHistoryResponse is the chart payload: parallel labels/data
// arrays plus editable points.
type PortfolioHistoryResponse struct {
	Labels []string             `json:"labels"`
	Data   []decimal.Decimal    `json:"data"`
	Points []HistoryPointOutput `json:"points"`
}

type HistoryPointOutput struct {
	ID    uint            `json:"id"`
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
}
