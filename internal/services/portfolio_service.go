package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
	"github.com/elevatecapital/fundtracker/internal/store"
)

const chartLabelLayout = "Jan 2006"

// PortfolioService edits holdings and the fund value history.
type PortfolioService struct {
	holdings store.HoldingRepository
	history  store.HistoryRepository
	now      func() time.Time
}

func NewPortfolioService(repos *store.Repositories) *PortfolioService {
	return &PortfolioService{
		holdings: repos.Holdings,
		history:  repos.History,
		now:      time.Now,
	}
}

// apply copies the set fields of in onto h.
func apply(h *models.Holding, in models.HoldingInput) {
	if in.StockName != nil {
		h.StockName = strings.TrimSpace(*in.StockName)
	}
	if in.CompanyName != nil {
		h.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.Ticker != nil {
		h.Ticker = strings.ToUpper(strings.TrimSpace(*in.Ticker))
	}
	if in.Type != nil {
		h.Type = strings.TrimSpace(*in.Type)
	}
	if in.Shares != nil {
		h.Shares = *in.Shares
	}
	if in.PurchasePrice != nil {
		h.PurchasePrice = *in.PurchasePrice
	}
	if in.CurrentPrice != nil {
		h.CurrentPrice = strings.TrimSpace(*in.CurrentPrice)
	}
}

// setLive switches a holding between live quotes and a manual price.
func setLive(h *models.Holding, live bool) {
	if live {
		h.UseLiveQuote = true
		h.CurrentPrice = fund.LivePricePlaceholder
		return
	}
	if h.UseLiveQuote {
		h.UseLiveQuote = false
		h.LastQuote = decimal.NullDecimal{}
		h.QuotedAt = nil
		if h.CurrentPrice == fund.LivePricePlaceholder {
			h.CurrentPrice = ""
		}
	}
}

func validateHolding(h *models.Holding) error {
	switch {
	case h.StockName == "":
		return validationf("Stock name is required.")
	case h.UseLiveQuote && h.Ticker == "":
		return validationf("A ticker is required for live quotes.")
	case h.Shares.IsNegative():
		return validationf("Shares cannot be negative.")
	}
	return nil
}

// AddHolding appends a holding. With useLiveQuote the current price is the
// live placeholder until the quote worker fills in a price.
func (s *PortfolioService) AddHolding(ctx context.Context, req models.AddHoldingRequest) (models.MessageResponse, error) {
	h := &models.Holding{}
	apply(h, req.Holding)
	setLive(h, req.UseLiveQuote)
	if err := validateHolding(h); err != nil {
		return models.MessageResponse{}, err
	}

	if err := s.holdings.Create(ctx, h); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("Holding '%s' already exists.", h.StockName))
	}

	log.Info().Str("stock", h.StockName).Bool("live", h.UseLiveQuote).Msg("holding added")
	return models.MessageResponse{Message: fmt.Sprintf("Holding '%s' added successfully.", h.StockName)}, nil
}

// UpdateHolding changes the fields present in the request. Live mode only
// changes when the request sets it; a holding that stays on live quotes
// keeps the placeholder regardless of any price sent.
func (s *PortfolioService) UpdateHolding(ctx context.Context, req models.UpdateHoldingRequest) (models.MessageResponse, error) {
	h, err := s.holdings.GetByID(ctx, req.ID)
	if err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("Holding %d not found.", req.ID))
	}

	apply(h, req.Holding)
	if req.UseLiveQuote != nil {
		setLive(h, *req.UseLiveQuote)
	} else if h.UseLiveQuote {
		h.CurrentPrice = fund.LivePricePlaceholder
	}
	if err := validateHolding(h); err != nil {
		return models.MessageResponse{}, err
	}

	if err := s.holdings.Save(ctx, h); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("Holding '%s' already exists.", h.StockName))
	}
	return models.MessageResponse{Message: fmt.Sprintf("Holding '%s' updated successfully.", h.StockName)}, nil
}

// DeleteHolding removes a holding by id, or by stock name when no id is
// given.
func (s *PortfolioService) DeleteHolding(ctx context.Context, req models.DeleteHoldingRequest) (models.MessageResponse, error) {
	var (
		h   *models.Holding
		err error
	)
	switch {
	case req.ID != 0:
		h, err = s.holdings.GetByID(ctx, req.ID)
	case strings.TrimSpace(req.StockName) != "":
		h, err = s.holdings.GetByStockName(ctx, req.StockName)
	default:
		return models.MessageResponse{}, validationf("A holding id or stock name is required.")
	}
	if err != nil {
		return models.MessageResponse{}, storeError(err, "Holding not found.")
	}

	if err := s.holdings.Delete(ctx, h.ID); err != nil {
		return models.MessageResponse{}, storeError(err, "Holding not found.")
	}

	log.Info().Str("stock", h.StockName).Msg("holding deleted")
	return models.MessageResponse{Message: fmt.Sprintf("Holding '%s' deleted successfully.", h.StockName)}, nil
}

// History returns the chart series with month labels and the editable
// points in date order.
func (s *PortfolioService) History(ctx context.Context) (models.PortfolioHistoryResponse, error) {
	points, err := s.history.ListHistory(ctx)
	if err != nil {
		return models.PortfolioHistoryResponse{}, fmt.Errorf("list history: %w", err)
	}

	resp := models.PortfolioHistoryResponse{
		Labels: make([]string, 0, len(points)),
		Data:   make([]decimal.Decimal, 0, len(points)),
		Points: make([]models.HistoryPointOutput, 0, len(points)),
	}
	for _, p := range points {
		date := p.Date.UTC()
		resp.Labels = append(resp.Labels, date.Format(chartLabelLayout))
		resp.Data = append(resp.Data, p.Value)
		resp.Points = append(resp.Points, models.HistoryPointOutput{
			ID:    p.ID,
			Date:  date.Format(dateLayout),
			Value: p.Value,
		})
	}
	return resp, nil
}

func (s *PortfolioService) AddHistoryPoint(ctx context.Context, in models.HistoryPointInput) (models.MessageResponse, error) {
	if strings.TrimSpace(in.Date) == "" {
		return models.MessageResponse{}, validationf("Date is required.")
	}
	date, err := parseDate(in.Date, s.now())
	if err != nil {
		return models.MessageResponse{}, err
	}

	p := &models.HistoryPoint{Date: date, Value: in.Value}
	if err := s.history.Create(ctx, p); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("A history point for '%s' already exists.", in.Date))
	}
	return models.MessageResponse{Message: fmt.Sprintf("Portfolio history for '%s' added.", in.Date)}, nil
}

func (s *PortfolioService) UpdateHistoryPoint(ctx context.Context, req models.UpdateHistoryRequest) (models.MessageResponse, error) {
	p, err := s.history.GetByID(ctx, req.ID)
	if err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("History point %d not found.", req.ID))
	}

	if strings.TrimSpace(req.Point.Date) != "" {
		date, err := parseDate(req.Point.Date, s.now())
		if err != nil {
			return models.MessageResponse{}, err
		}
		p.Date = date
	}
	p.Value = req.Point.Value
	p.Automatic = false

	if err := s.history.Save(ctx, p); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("A history point for '%s' already exists.", req.Point.Date))
	}
	return models.MessageResponse{Message: "Chart data point updated successfully."}, nil
}

func (s *PortfolioService) DeleteHistoryPoint(ctx context.Context, id uint) (models.MessageResponse, error) {
	if err := s.history.Delete(ctx, id); err != nil {
		return models.MessageResponse{}, storeError(err, fmt.Sprintf("History point %d not found.", id))
	}
	return models.MessageResponse{Message: "Chart data point deleted successfully."}, nil
}
