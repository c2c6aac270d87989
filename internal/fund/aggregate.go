package fund

import "github.com/shopspring/decimal"

// Snapshot is the fund-wide view of the portfolio at request time.
type Snapshot struct {
	TotalInvested decimal.Decimal `json:"totalInvested"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	TotalReturn   decimal.Decimal `json:"totalReturn"`
	ReturnRatio   decimal.Decimal `json:"returnRatio"`
}

// Summary combines the portfolio snapshot with the money members put in.
type Summary struct {
	Snapshot
	TotalContributions decimal.Decimal `json:"totalContributions"`
	// TotalFundValue is contributions plus the portfolio's gain or loss.
	TotalFundValue decimal.Decimal `json:"totalFundValue"`
}

// SnapshotOf computes invested capital and current value over all holdings.
func SnapshotOf(holdings []HoldingRecord) Snapshot {
	invested := decimal.Zero
	current := decimal.Zero
	for _, h := range holdings {
		invested = invested.Add(h.PurchasePrice.Mul(h.Shares))
		current = current.Add(ParseAmount(h.CurrentPrice).Mul(h.Shares))
	}

	ret := current.Sub(invested)
	ratio := decimal.Zero
	if invested.IsPositive() {
		ratio = ret.Div(invested)
	}

	return Snapshot{
		TotalInvested: invested,
		CurrentValue:  current,
		TotalReturn:   ret,
		ReturnRatio:   ratio,
	}
}

// TotalContributions sums every contribution regardless of member.
func TotalContributions(records []ContributionRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// MemberContribution sums the contributions logged for one member. The
// email match ignores case and surrounding whitespace.
func MemberContribution(records []ContributionRecord, email string) decimal.Decimal {
	key := NormalizeEmail(email)
	total := decimal.Zero
	for _, r := range records {
		if NormalizeEmail(r.MemberEmail) == key {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// ContributionsByMember groups contribution totals by normalized email.
func ContributionsByMember(records []ContributionRecord) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		key := NormalizeEmail(r.MemberEmail)
		totals[key] = totals[key].Add(r.Amount)
	}
	return totals
}

// Summarize builds the fund summary shown on the dashboard.
func Summarize(contributions []ContributionRecord, holdings []HoldingRecord) Summary {
	snap := SnapshotOf(holdings)
	total := TotalContributions(contributions)
	return Summary{
		Snapshot:           snap,
		TotalContributions: total,
		TotalFundValue:     total.Add(snap.TotalReturn),
	}
}
