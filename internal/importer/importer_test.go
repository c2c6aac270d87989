package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatecapital/fundtracker/internal/fund"
)

func TestContributions(t *testing.T) {
	in := "Email,Amount,Date,Notes,Monthly\n" +
		" A@X.com ,\"₹1,250.50\",2024-01-05,first,yes\n" +
		",,,,\n" +
		"b@x.com,300,10/02/2024,,\n"

	rows, err := Contributions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a@x.com", rows[0].MemberEmail)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(rows[0].Amount))
	assert.True(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC).Equal(rows[0].Date))
	assert.Equal(t, "first", rows[0].Notes)
	assert.True(t, rows[0].IsMonthly)

	assert.True(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC).Equal(rows[1].Date))
	assert.False(t, rows[1].IsMonthly)
}

func TestContributions_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"missing column", "email,amount\na@x.com,1\n", `missing column "date"`},
		{"bad date", "email,amount,date\na@x.com,1,someday\n", "line 2"},
		{"empty email", "email,amount,date\n,1,2024-01-01\n", "email is empty"},
		{"empty input", "", "read header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Contributions(strings.NewReader(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHoldings(t *testing.T) {
	in := "stock name,company name,ticker,shares,purchase price,current price\n" +
		"Infosys,Infosys Ltd,infy,10,1400,live\n" +
		"Gold ETF,,,5,50,\"₹62.5\"\n"

	rows, err := Holdings(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "INFY", rows[0].Ticker)
	assert.True(t, rows[0].UseLiveQuote)
	assert.Equal(t, fund.LivePricePlaceholder, rows[0].CurrentPrice)

	assert.False(t, rows[1].UseLiveQuote)
	assert.Equal(t, "₹62.5", rows[1].CurrentPrice)
	assert.True(t, decimal.NewFromInt(5).Equal(rows[1].Shares))
}

func TestHoldings_LiveWithoutTicker(t *testing.T) {
	_, err := Holdings(strings.NewReader("stock_name,shares,purchase_price,current_price\nX,1,1,Live\n"))
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Line)
}
