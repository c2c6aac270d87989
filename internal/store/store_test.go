package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevatecapital/fundtracker/internal/database"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

func newRepos(t *testing.T) *store.Repositories {
	t.Helper()
	db, err := database.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", "silent")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return store.New(db)
}

func TestUsers_EmailLookupIsCaseInsensitive(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	user := &models.User{Name: "Asha", Email: "  Asha@Example.com ", PasswordHash: "x", Status: models.UserStatusActive}
	require.NoError(t, repos.Users.Create(ctx, user))
	assert.Equal(t, "asha@example.com", user.Email)

	got, err := repos.Users.GetByEmail(ctx, "ASHA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repos.Users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_DuplicateEmail(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &models.User{Name: "A", Email: "a@x.com", PasswordHash: "x"}))
	err := repos.Users.Create(ctx, &models.User{Name: "B", Email: "A@X.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUsers_StatusQueries(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	require.NoError(t, repos.Users.Create(ctx, &models.User{Name: "A", Email: "a@x.com", PasswordHash: "x", Status: models.UserStatusPending}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{Name: "B", Email: "b@x.com", PasswordHash: "x", Status: models.UserStatusPending}))
	require.NoError(t, repos.Users.Create(ctx, &models.User{Name: "C", Email: "c@x.com", PasswordHash: "x", Status: models.UserStatusActive}))

	pending, err := repos.Users.ListByStatus(ctx, models.UserStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	n, err := repos.Users.CountByStatus(ctx, models.UserStatusActive)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repos.Users.Delete(ctx, pending[0].ID))
	assert.ErrorIs(t, repos.Users.Delete(ctx, pending[0].ID), store.ErrNotFound)
}

func TestContributions_NormalizedAndOrdered(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	later := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Contributions.Create(ctx, &models.Contribution{MemberEmail: "B@x.com", Amount: decimal.NewFromInt(300), Date: later}))
	require.NoError(t, repos.Contributions.Create(ctx, &models.Contribution{MemberEmail: "a@x.com", Amount: decimal.NewFromInt(100), Date: earlier}))

	rows, err := repos.Contributions.ListContributions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a@x.com", rows[0].MemberEmail)
	assert.Equal(t, "b@x.com", rows[1].MemberEmail)
	assert.True(t, rows[1].Amount.Equal(decimal.NewFromInt(300)))
}

func TestHoldings_CRUDAndQuotes(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	live := &models.Holding{StockName: "Infosys", Ticker: "INFY", Shares: decimal.NewFromInt(10),
		PurchasePrice: decimal.NewFromInt(1500), CurrentPrice: "Live", UseLiveQuote: true}
	manual := &models.Holding{StockName: "Gold ETF", Shares: decimal.NewFromInt(5),
		PurchasePrice: decimal.NewFromInt(50), CurrentPrice: "55"}
	require.NoError(t, repos.Holdings.Create(ctx, live))
	require.NoError(t, repos.Holdings.Create(ctx, manual))

	liveRows, err := repos.Holdings.ListLive(ctx)
	require.NoError(t, err)
	require.Len(t, liveRows, 1)
	assert.Equal(t, live.ID, liveRows[0].ID)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repos.Holdings.SetQuote(ctx, live.ID, decimal.RequireFromString("1623.5"), at))
	got, err := repos.Holdings.GetByID(ctx, live.ID)
	require.NoError(t, err)
	require.True(t, got.LastQuote.Valid)
	assert.Equal(t, "1623.5", got.EffectivePrice())
	require.NotNil(t, got.QuotedAt)

	byName, err := repos.Holdings.GetByStockName(ctx, " gold etf")
	require.NoError(t, err)
	assert.Equal(t, manual.ID, byName.ID)

	byName.CurrentPrice = "60"
	require.NoError(t, repos.Holdings.Save(ctx, byName))
	got, err = repos.Holdings.GetByID(ctx, manual.ID)
	require.NoError(t, err)
	assert.Equal(t, "60", got.CurrentPrice)

	require.NoError(t, repos.Holdings.Delete(ctx, manual.ID))
	_, err = repos.Holdings.GetByID(ctx, manual.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repos.Holdings.SetQuote(ctx, 999, decimal.Zero, at), store.ErrNotFound)
}

func TestHistory_ExistsForDay(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	day := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)
	require.NoError(t, repos.History.Create(ctx, &models.HistoryPoint{Date: day, Value: decimal.NewFromInt(1000)}))

	ok, err := repos.History.ExistsForDay(ctx, time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.History.ExistsForDay(ctx, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotifications_ActiveForTarget(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	base := time.Now()
	for i, n := range []models.Notification{
		{ID: "n1", Message: "all", TargetEmail: models.NotificationTargetAll, IsActive: true},
		{ID: "n2", Message: "mine", TargetEmail: "a@x.com", IsActive: true},
		{ID: "n3", Message: "other", TargetEmail: "b@x.com", IsActive: true},
		{ID: "n4", Message: "hidden", TargetEmail: models.NotificationTargetAll, IsActive: false},
	} {
		n.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repos.Notifications.Create(ctx, &n))
	}

	rows, err := repos.Notifications.ListActiveFor(ctx, "A@x.com")
	require.NoError(t, err)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"n2", "n1"}, ids)

	require.NoError(t, repos.Notifications.SetActive(ctx, "n4", true))
	require.NoError(t, repos.Notifications.Delete(ctx, "n1"))
	assert.ErrorIs(t, repos.Notifications.Delete(ctx, "n1"), store.ErrNotFound)

	rows, err = repos.Notifications.ListActiveFor(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMetrics_UpsertReportsCreation(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()

	created, err := repos.Metrics.Upsert(ctx, models.MetricAIInsight, "hold steady")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Metrics.Upsert(ctx, models.MetricAIInsight, "buy the dip")
	require.NoError(t, err)
	assert.False(t, created)

	// seeded by migrations
	created, err = repos.Metrics.Upsert(ctx, models.MetricTotalFundValue, "150")
	require.NoError(t, err)
	assert.False(t, created)

	rows, err := repos.Metrics.ListMetrics(ctx)
	require.NoError(t, err)
	values := map[string]string{}
	for _, m := range rows {
		values[m.Name] = m.Value
	}
	assert.Equal(t, "buy the dip", values[models.MetricAIInsight])
	assert.Equal(t, "150", values[models.MetricTotalFundValue])
	assert.Equal(t, "0", values[models.MetricInvestedInStocks])
}

func TestAmounts_RoundTripExactly(t *testing.T) {
	repos := newRepos(t)
	ctx := context.Background()
	big := decimal.RequireFromString("123456789012345.6789")

	require.NoError(t, repos.Contributions.Create(ctx, &models.Contribution{MemberEmail: "a@x.com", Amount: big}))
	h := &models.Holding{StockName: "Big", Shares: decimal.RequireFromString("0.000001"), PurchasePrice: big}
	require.NoError(t, repos.Holdings.Create(ctx, h))
	require.NoError(t, repos.Holdings.SetQuote(ctx, h.ID, big, time.Now()))

	rows, err := repos.Contributions.ListContributions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, big.Equal(rows[0].Amount), "got %s", rows[0].Amount)

	got, err := repos.Holdings.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, big.Equal(got.PurchasePrice), "got %s", got.PurchasePrice)
	assert.Equal(t, "0.000001", got.Shares.String())
	require.True(t, got.LastQuote.Valid)
	assert.True(t, big.Equal(got.LastQuote.Decimal), "got %s", got.LastQuote.Decimal)
}
