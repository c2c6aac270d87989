package fund

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain integer", "100", "100"},
		{"decimal", "12.75", "12.75"},
		{"rupee and commas", "₹1,25,000.50", "125000.50"},
		{"dollar", "$ 42", "42"},
		{"negative", "-15.5", "-15.5"},
		{"whitespace", "  7 ", "7"},
		{"empty", "", "0"},
		{"live placeholder", "Live", "0"},
		{"only symbols", "₹-", "0"},
		{"two dots", "1.2.3", "0"},
		{"rupee abbreviation", "Rs. 1,250", "1250"},
		{"abbreviation without space", "Rs.1,250.75", "1250.75"},
		{"trailing dot", "42.", "42"},
		{"leading decimal point", ".5", "0.5"},
		{"exponent letters are dropped", "1e3", "13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, ParseAmount(tt.raw))
		})
	}
}

func TestSnapshotOf_Scenario(t *testing.T) {
	holdings := []HoldingRecord{
		{StockName: "ACME", Shares: d("10"), PurchasePrice: d("10"), CurrentPrice: "15"},
	}

	snap := SnapshotOf(holdings)

	assertDecimal(t, "100", snap.TotalInvested)
	assertDecimal(t, "150", snap.CurrentValue)
	assertDecimal(t, "50", snap.TotalReturn)
	assertDecimal(t, "0.5", snap.ReturnRatio)
}

func TestSnapshotOf_EmptyHoldings(t *testing.T) {
	snap := SnapshotOf(nil)

	assertDecimal(t, "0", snap.TotalInvested)
	assertDecimal(t, "0", snap.CurrentValue)
	assertDecimal(t, "0", snap.TotalReturn)
	assertDecimal(t, "0", snap.ReturnRatio)
}

func TestSnapshotOf_LivePlaceholderCountsAsZero(t *testing.T) {
	holdings := []HoldingRecord{
		{StockName: "Quoted", Shares: d("2"), PurchasePrice: d("50"), CurrentPrice: "60"},
		{StockName: "Pending quote", Shares: d("4"), PurchasePrice: d("25"), CurrentPrice: LivePricePlaceholder},
	}

	snap := SnapshotOf(holdings)

	assertDecimal(t, "200", snap.TotalInvested)
	assertDecimal(t, "120", snap.CurrentValue)
	assertDecimal(t, "-80", snap.TotalReturn)
	assertDecimal(t, "-0.4", snap.ReturnRatio)
}

func TestSnapshotOf_ReturnIsExactDifference(t *testing.T) {
	holdings := []HoldingRecord{
		{Shares: d("3"), PurchasePrice: d("0.1"), CurrentPrice: "0.2"},
		{Shares: d("7.125"), PurchasePrice: d("1234.5678"), CurrentPrice: "₹1,300.01"},
		{Shares: d("0.333"), PurchasePrice: d("99.99"), CurrentPrice: "bogus"},
	}

	snap := SnapshotOf(holdings)

	assert.True(t, snap.CurrentValue.Sub(snap.TotalInvested).Equal(snap.TotalReturn))
}

func TestSnapshotOf_Idempotent(t *testing.T) {
	holdings := []HoldingRecord{
		{Shares: d("10"), PurchasePrice: d("10"), CurrentPrice: "15"},
		{Shares: d("1"), PurchasePrice: d("3"), CurrentPrice: "1"},
	}

	first := SnapshotOf(holdings)
	second := SnapshotOf(holdings)

	assert.True(t, first.TotalInvested.Equal(second.TotalInvested))
	assert.True(t, first.CurrentValue.Equal(second.CurrentValue))
	assert.True(t, first.TotalReturn.Equal(second.TotalReturn))
	assert.True(t, first.ReturnRatio.Equal(second.ReturnRatio))
}

func TestMemberContribution_MatchesEmailLoosely(t *testing.T) {
	records := []ContributionRecord{
		{MemberEmail: "alice@example.com", Amount: d("100")},
		{MemberEmail: "  ALICE@Example.com ", Amount: d("50")},
		{MemberEmail: "bob@example.com", Amount: d("300")},
	}

	assertDecimal(t, "150", MemberContribution(records, "Alice@example.com"))
	assertDecimal(t, "300", MemberContribution(records, "bob@example.com "))
	assertDecimal(t, "0", MemberContribution(records, "carol@example.com"))
	assertDecimal(t, "450", TotalContributions(records))
}

func TestContributionsByMember_SumsToTotal(t *testing.T) {
	records := []ContributionRecord{
		{MemberEmail: "a@x.io", Amount: d("100")},
		{MemberEmail: "B@x.io", Amount: d("12.5")},
		{MemberEmail: "b@x.io ", Amount: d("7.5")},
		{MemberEmail: "c@x.io", Amount: d("0")},
		{MemberEmail: "a@x.io", Amount: d("0.01")},
	}

	byMember := ContributionsByMember(records)

	assert.Len(t, byMember, 3)
	sum := decimal.Zero
	for email, amount := range byMember {
		sum = sum.Add(amount)
		assert.True(t, amount.Equal(MemberContribution(records, email)), email)
	}
	assert.True(t, sum.Equal(TotalContributions(records)))
}

func TestSummarize(t *testing.T) {
	contributions := []ContributionRecord{
		{MemberEmail: "a@x.io", Amount: d("100")},
		{MemberEmail: "b@x.io", Amount: d("300")},
	}
	holdings := []HoldingRecord{
		{Shares: d("10"), PurchasePrice: d("10"), CurrentPrice: "15"},
	}

	summary := Summarize(contributions, holdings)

	assertDecimal(t, "400", summary.TotalContributions)
	assertDecimal(t, "450", summary.TotalFundValue)
	assertDecimal(t, "50", summary.TotalReturn)
}
