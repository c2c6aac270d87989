package fund

import "github.com/shopspring/decimal"

// Attribution is one member's pro-rata slice of the fund. It does not say
// which holdings the member owns, only how much of the aggregate result
// belongs to them.
type Attribution struct {
	Contribution      decimal.Decimal `json:"contribution"`
	OwnershipRatio    decimal.Decimal `json:"ownershipRatio"`
	InvestedShare     decimal.Decimal `json:"investedShare"`
	ReturnShare       decimal.Decimal `json:"returnShare"`
	CurrentValueShare decimal.Decimal `json:"currentValueShare"`
}

// Attribute allocates the snapshot to a member holding memberContribution
// out of totalContributions. A fund without contributions attributes
// nothing.
//
// The attributed return is the member's share of invested capital times
// the fund return ratio.
func Attribute(memberContribution, totalContributions decimal.Decimal, snap Snapshot) Attribution {
	ratio := decimal.Zero
	if totalContributions.IsPositive() {
		ratio = memberContribution.Div(totalContributions)
	}

	invested := snap.TotalInvested.Mul(ratio)
	ret := invested.Mul(snap.ReturnRatio)

	return Attribution{
		Contribution:      memberContribution,
		OwnershipRatio:    ratio,
		InvestedShare:     invested,
		ReturnShare:       ret,
		CurrentValueShare: memberContribution.Add(ret),
	}
}

// AttributeMember is Attribute driven directly by the contribution log.
func AttributeMember(records []ContributionRecord, email string, snap Snapshot) Attribution {
	return Attribute(MemberContribution(records, email), TotalContributions(records), snap)
}
