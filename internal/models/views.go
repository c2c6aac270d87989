package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elevatecapital/fundtracker/internal/fund"
)

// Record converts a stored contribution into the arithmetic record type.
func (c Contribution) Record() fund.ContributionRecord {
	return fund.ContributionRecord{
		MemberEmail: c.MemberEmail,
		Amount:      c.Amount,
		Date:        c.Date,
		Notes:       c.Notes,
		IsMonthly:   c.IsMonthly,
	}
}

// Record converts a stored holding into the arithmetic record type, using
// the last live quote when one is available.
func (h Holding) Record() fund.HoldingRecord {
	return fund.HoldingRecord{
		StockName:     h.StockName,
		Ticker:        h.Ticker,
		Type:          h.Type,
		Shares:        h.Shares,
		PurchasePrice: h.PurchasePrice,
		CurrentPrice:  h.EffectivePrice(),
	}
}

// PortfolioHolding is a holding with its valuation resolved.
type PortfolioHolding struct {
	Holding
	Price       decimal.Decimal `json:"price"`
	Invested    decimal.Decimal `json:"invested"`
	MarketValue decimal.Decimal `json:"marketValue"`
	Return      decimal.Decimal `json:"return"`
}

type MyContributionResponse struct {
	Contribution decimal.Decimal `json:"contribution"`
}

// UserDetails is the profile page payload: account fields, contribution
// history and the member's attributed share of the fund.
type UserDetails struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	AccountStatus UserStatus `json:"accountStatus"`
	IsAdmin       bool       `json:"isAdmin"`
	Mobile        string     `json:"mobile"`
	JoinDate      string     `json:"joinDate"`

	TotalContribution      decimal.Decimal           `json:"totalContribution"`
	LastContributionDate   *string                   `json:"lastContributionDate"`
	LastContributionAmount decimal.Decimal           `json:"lastContributionAmount"`
	ContributionHistory    []ContributionHistoryItem `json:"contributionHistory"`

	UserTotalFundValue   decimal.Decimal `json:"userTotalFundValue"`
	UserInvestedInStocks decimal.Decimal `json:"userInvestedInStocks"`
	UserTotalReturn      decimal.Decimal `json:"userTotalReturn"`
	UserReturnPercentage string          `json:"userReturnPercentage"`

	Attribution fund.Attribution `json:"attribution"`
	Formatted   UserFormatted    `json:"formatted"`
}

type UserFormatted struct {
	TotalContribution string            `json:"totalContribution"`
	InvestedShare     string            `json:"investedShare"`
	CurrentValue      string            `json:"currentValue"`
	Return            fund.SignedAmount `json:"return"`
	ReturnPercentage  string            `json:"returnPercentage"`
	OwnershipShare    string            `json:"ownershipShare"`
}

// FundFormatted holds the display strings for a fund summary.
type FundFormatted struct {
	TotalInvested      string            `json:"totalInvested"`
	CurrentValue       string            `json:"currentValue"`
	TotalContributions string            `json:"totalContributions"`
	TotalFundValue     string            `json:"totalFundValue"`
	TotalReturn        fund.SignedAmount `json:"totalReturn"`
	ReturnPercentage   string            `json:"returnPercentage"`
}

type AdminDashboard struct {
	TotalUsers         int64           `json:"totalUsers"`
	PendingApprovals   int64           `json:"pendingApprovals"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalFundValue     decimal.Decimal `json:"totalFundValue"`
	Quotes             *QuoteStatus    `json:"quotes,omitempty"`
}

// Dashboard combines the stored dashboard metrics with the live summary
// computed from the current records.
type Dashboard struct {
	Metrics     map[string]string `json:"metrics"`
	Summary     fund.Summary      `json:"summary"`
	Formatted   FundFormatted     `json:"formatted"`
	MemberCount int               `json:"memberCount"`
}

// QuoteStatus reports the live quote worker's progress.
type QuoteStatus struct {
	Enabled      bool      `json:"enabled"`
	LastRunTime  time.Time `json:"lastRunTime"`
	NextRunTime  time.Time `json:"nextRunTime"`
	LastUpdated  int       `json:"lastUpdated"`
	UpdatedToday int       `json:"updatedToday"`
	LiveHoldings int       `json:"liveHoldings"`
}
