package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/metrics"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

const dateLayout = "2006-01-02"

// Dashboard metric names written by Recalculate in addition to the seeded
// ones in models.
const (
	MetricTotalReturn        = "Total Return"
	MetricReturnPercentage   = "Return Percentage"
	MetricTotalContributions = "Total Contributions"
)

// FundService serves the computed fund views. Every read loads the full
// current record set and derives the figures from it; nothing is cached.
type FundService struct {
	repos         *store.Repositories
	auth          *AuthService
	format        fund.Formatter
	percentPlaces int32
	now           func() time.Time
}

func NewFundService(repos *store.Repositories, auth *AuthService, format fund.Formatter, percentPlaces int) *FundService {
	if percentPlaces < 0 {
		percentPlaces = 0
	}
	return &FundService{
		repos:         repos,
		auth:          auth,
		format:        format,
		percentPlaces: int32(percentPlaces),
		now:           time.Now,
	}
}

// records loads contributions and holdings as arithmetic records.
func (s *FundService) records(ctx context.Context) ([]fund.ContributionRecord, []fund.HoldingRecord, error) {
	contribs, err := s.repos.Contributions.ListContributions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list contributions: %w", err)
	}
	holdings, err := s.repos.Holdings.ListHoldings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list holdings: %w", err)
	}
	return contributionRecords(contribs), holdingRecords(holdings), nil
}

func contributionRecords(rows []models.Contribution) []fund.ContributionRecord {
	out := make([]fund.ContributionRecord, len(rows))
	for i, c := range rows {
		out[i] = c.Record()
	}
	return out
}

func holdingRecords(rows []models.Holding) []fund.HoldingRecord {
	out := make([]fund.HoldingRecord, len(rows))
	for i, h := range rows {
		out[i] = h.Record()
	}
	return out
}

// Summary computes the live fund summary.
func (s *FundService) Summary(ctx context.Context) (fund.Summary, error) {
	contribs, holdings, err := s.records(ctx)
	if err != nil {
		return fund.Summary{}, err
	}
	return fund.Summarize(contribs, holdings), nil
}

func (s *FundService) formatSummary(sum fund.Summary) models.FundFormatted {
	return models.FundFormatted{
		TotalInvested:      s.format.Amount(sum.TotalInvested),
		CurrentValue:       s.format.Amount(sum.CurrentValue),
		TotalContributions: s.format.Amount(sum.TotalContributions),
		TotalFundValue:     s.format.Amount(sum.TotalFundValue),
		TotalReturn:        s.format.Signed(sum.TotalReturn),
		ReturnPercentage:   fund.SignedPercent(sum.ReturnRatio, s.percentPlaces),
	}
}

// Dashboard returns the stored metrics alongside the live summary.
func (s *FundService) Dashboard(ctx context.Context) (models.Dashboard, error) {
	stored, err := s.repos.Metrics.ListMetrics(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("list metrics: %w", err)
	}
	sum, err := s.Summary(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	members, err := s.repos.Members.ListMembers(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("list members: %w", err)
	}

	values := make(map[string]string, len(stored))
	for _, m := range stored {
		values[m.Name] = m.Value
	}

	return models.Dashboard{
		Metrics:     values,
		Summary:     sum,
		Formatted:   s.formatSummary(sum),
		MemberCount: len(members),
	}, nil
}

// Portfolio returns every holding with its price and value resolved.
func (s *FundService) Portfolio(ctx context.Context) ([]models.PortfolioHolding, error) {
	holdings, err := s.repos.Holdings.ListHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	out := make([]models.PortfolioHolding, 0, len(holdings))
	for _, h := range holdings {
		price := fund.ParseAmount(h.EffectivePrice())
		invested := h.PurchasePrice.Mul(h.Shares)
		value := price.Mul(h.Shares)
		out = append(out, models.PortfolioHolding{
			Holding:     h,
			Price:       price,
			Invested:    invested,
			MarketValue: value,
			Return:      value.Sub(invested),
		})
	}
	return out, nil
}

// Members returns each member with their contribution total.
func (s *FundService) Members(ctx context.Context) ([]models.MemberWithContribution, error) {
	members, err := s.repos.Members.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	contribs, err := s.repos.Contributions.ListContributions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}

	totals := fund.ContributionsByMember(contributionRecords(contribs))
	out := make([]models.MemberWithContribution, 0, len(members))
	for _, m := range members {
		out = append(out, models.MemberWithContribution{
			Member:       m,
			Contribution: totals[fund.NormalizeEmail(m.Email)],
		})
	}
	return out, nil
}

// MyContribution returns one member's contribution total.
func (s *FundService) MyContribution(ctx context.Context, email string) (models.MyContributionResponse, error) {
	if strings.TrimSpace(email) == "" {
		return models.MyContributionResponse{}, validationf("Email parameter is required.")
	}
	contribs, err := s.repos.Contributions.ListContributions(ctx)
	if err != nil {
		return models.MyContributionResponse{}, fmt.Errorf("list contributions: %w", err)
	}
	return models.MyContributionResponse{
		Contribution: fund.MemberContribution(contributionRecords(contribs), email),
	}, nil
}

// UserDetails builds the profile view: account data, contribution history
// newest first, and the member's attributed share of the live fund.
func (s *FundService) UserDetails(ctx context.Context, email string) (models.UserDetails, error) {
	if strings.TrimSpace(email) == "" {
		return models.UserDetails{}, validationf("Email parameter is required.")
	}

	user, err := s.repos.Users.GetByEmail(ctx, email)
	if err != nil {
		return models.UserDetails{}, storeError(err, fmt.Sprintf("User with email '%s' not found.", email))
	}

	details := models.UserDetails{
		Name:          user.Name,
		Email:         user.Email,
		AccountStatus: user.Status,
		IsAdmin:       s.auth.IsAdmin(user.Email),
		Mobile:        user.Mobile,
		JoinDate:      "N/A",
	}

	member, err := s.repos.Members.GetByEmail(ctx, email)
	switch {
	case err == nil:
		details.JoinDate = member.JoinDate.UTC().Format(dateLayout)
	case !errors.Is(err, store.ErrNotFound):
		return models.UserDetails{}, err
	}

	contribs, holdings, err := s.records(ctx)
	if err != nil {
		return models.UserDetails{}, err
	}

	key := fund.NormalizeEmail(email)
	history := []models.ContributionHistoryItem{}
	var last *fund.ContributionRecord
	for i, c := range contribs {
		if fund.NormalizeEmail(c.MemberEmail) != key {
			continue
		}
		history = append(history, models.ContributionHistoryItem{
			Date:      c.Date.UTC().Format(dateLayout),
			Amount:    c.Amount,
			Status:    "Approved",
			Notes:     c.Notes,
			IsMonthly: c.IsMonthly,
		})
		if last == nil || c.Date.After(last.Date) {
			last = &contribs[i]
		}
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date > history[j].Date })

	details.ContributionHistory = history
	if last != nil {
		date := last.Date.UTC().Format(dateLayout)
		details.LastContributionDate = &date
		details.LastContributionAmount = last.Amount
	}

	snap := fund.SnapshotOf(holdings)
	attr := fund.AttributeMember(contribs, email, snap)

	details.TotalContribution = attr.Contribution
	details.Attribution = attr
	details.UserTotalFundValue = attr.CurrentValueShare
	details.UserInvestedInStocks = attr.InvestedShare
	details.UserTotalReturn = attr.ReturnShare
	details.UserReturnPercentage = fund.Percent(snap.ReturnRatio, s.percentPlaces)
	details.Formatted = models.UserFormatted{
		TotalContribution: s.format.Amount(attr.Contribution),
		InvestedShare:     s.format.Amount(attr.InvestedShare),
		CurrentValue:      s.format.Amount(attr.CurrentValueShare),
		Return:            s.format.Signed(attr.ReturnShare),
		ReturnPercentage:  fund.SignedPercent(snap.ReturnRatio, s.percentPlaces),
		OwnershipShare:    fund.Percent(attr.OwnershipRatio, s.percentPlaces),
	}

	return details, nil
}

// AdminDashboard returns account counts and fund totals for the admin panel.
func (s *FundService) AdminDashboard(ctx context.Context) (models.AdminDashboard, error) {
	active, err := s.repos.Users.CountByStatus(ctx, models.UserStatusActive)
	if err != nil {
		return models.AdminDashboard{}, err
	}
	pending, err := s.repos.Users.CountByStatus(ctx, models.UserStatusPending)
	if err != nil {
		return models.AdminDashboard{}, err
	}
	sum, err := s.Summary(ctx)
	if err != nil {
		return models.AdminDashboard{}, err
	}

	return models.AdminDashboard{
		TotalUsers:         active,
		PendingApprovals:   pending,
		TotalContributions: sum.TotalContributions,
		TotalFundValue:     sum.TotalFundValue,
	}, nil
}

// parseDate accepts an ISO date, or an empty string meaning today.
func parseDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, validationf("Invalid date '%s', expected YYYY-MM-DD.", raw)
}

// AddContribution logs a contribution and recalculates the stored metrics.
func (s *FundService) AddContribution(ctx context.Context, req models.AddContributionRequest) (models.MessageResponse, error) {
	email := fund.NormalizeEmail(req.UserEmail)
	if email == "" {
		return models.MessageResponse{}, validationf("User email is required.")
	}
	date, err := parseDate(req.Date, s.now())
	if err != nil {
		return models.MessageResponse{}, err
	}

	c := &models.Contribution{
		MemberEmail: email,
		Amount:      req.Amount,
		Date:        date,
		Notes:       strings.TrimSpace(req.Notes),
		IsMonthly:   req.IsMonthly,
	}
	if err := s.repos.Contributions.Create(ctx, c); err != nil {
		return models.MessageResponse{}, err
	}

	if _, err := s.Recalculate(ctx); err != nil {
		return models.MessageResponse{}, err
	}

	log.Info().Str("email", email).Str("amount", req.Amount.String()).Msg("contribution logged")
	return models.MessageResponse{Message: fmt.Sprintf("Contribution for '%s' logged successfully.", email)}, nil
}

// Recalculate persists the computed dashboard metrics and publishes them
// to Prometheus.
func (s *FundService) Recalculate(ctx context.Context) (models.MessageResponse, error) {
	sum, err := s.Summary(ctx)
	if err != nil {
		return models.MessageResponse{}, err
	}

	for _, m := range []struct{ name, value string }{
		{models.MetricInvestedInStocks, sum.TotalInvested.String()},
		{models.MetricTotalFundValue, sum.TotalFundValue.String()},
		{MetricTotalContributions, sum.TotalContributions.String()},
		{MetricTotalReturn, sum.TotalReturn.String()},
		{MetricReturnPercentage, fund.Percent(sum.ReturnRatio, s.percentPlaces)},
	} {
		if _, err := s.repos.Metrics.Upsert(ctx, m.name, m.value); err != nil {
			return models.MessageResponse{}, fmt.Errorf("store metric %q: %w", m.name, err)
		}
	}

	members, err := s.repos.Members.ListMembers(ctx)
	if err != nil {
		return models.MessageResponse{}, fmt.Errorf("list members: %w", err)
	}
	metrics.UpdateFundMetrics(sum, len(members))

	return models.MessageResponse{Message: "Dashboard metrics have been recalculated."}, nil
}

// UpdateDashboardMetric sets a named metric, creating it if needed.
func (s *FundService) UpdateDashboardMetric(ctx context.Context, req models.UpdateMetricRequest) (models.MessageResponse, error) {
	name := strings.TrimSpace(req.MetricName)
	if name == "" {
		return models.MessageResponse{}, validationf("Metric name is required.")
	}

	created, err := s.repos.Metrics.Upsert(ctx, name, req.MetricValue)
	if err != nil {
		return models.MessageResponse{}, err
	}
	if created {
		return models.MessageResponse{Message: fmt.Sprintf("Metric '%s' added successfully.", name)}, nil
	}
	return models.MessageResponse{Message: fmt.Sprintf("Metric '%s' updated successfully.", name)}, nil
}
