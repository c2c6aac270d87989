package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elevatecapital/fundtracker/internal/database"
	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

const testAdmin = "admin@example.com"

type testEnv struct {
	repos     *store.Repositories
	auth      *AuthService
	fund      *FundService
	portfolio *PortfolioService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", "silent")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := store.New(db)
	auth := NewAuthService(repos, []string{testAdmin})
	auth.hashCost = bcrypt.MinCost

	return &testEnv{
		repos:     repos,
		auth:      auth,
		fund:      NewFundService(repos, auth, fund.NewFormatter("INR", 0), 2),
		portfolio: NewPortfolioService(repos),
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

func (e *testEnv) contribute(t *testing.T, email, amount string, date time.Time) {
	t.Helper()
	require.NoError(t, e.repos.Contributions.Create(context.Background(), &models.Contribution{
		MemberEmail: email,
		Amount:      d(amount),
		Date:        date,
	}))
}

func (e *testEnv) hold(t *testing.T, name, shares, purchase, current string) *models.Holding {
	t.Helper()
	h := &models.Holding{
		StockName:     name,
		Shares:        d(shares),
		PurchasePrice: d(purchase),
		CurrentPrice:  current,
	}
	require.NoError(t, e.repos.Holdings.Create(context.Background(), h))
	return h
}

func (e *testEnv) activeUser(t *testing.T, name, email string) {
	t.Helper()
	_, err := e.auth.AddUser(context.Background(), models.AddUserRequest{
		NewName: name, NewEmail: email, NewPassword: "secret",
	})
	require.NoError(t, err)
}
