// Package importer loads contribution and holding rows from CSV exports
// of the club's old spreadsheet. Columns are matched by header name, case
// insensitively, so column order does not matter.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/elevatecapital/fundtracker/internal/fund"
	"github.com/elevatecapital/fundtracker/internal/models"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2 Jan 2006", time.RFC3339}

// RowError reports a row that could not be read. Line is 1-based and
// counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *RowError) Unwrap() error { return e.Err }

type table struct {
	reader *csv.Reader
	index  map[string]int
	line   int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{reader: cr, index: make(map[string]int, len(header)), line: 1}
	for i, name := range header {
		t.index[normalizeHeader(name)] = i
	}
	for _, name := range required {
		if _, ok := t.index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return t, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// next returns the following row, or io.EOF. Blank rows are skipped.
func (t *table) next() ([]string, error) {
	for {
		row, err := t.reader.Read()
		t.line++
		if err != nil {
			return nil, err
		}
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return row, nil
			}
		}
	}
}

func (t *table) get(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "yes", "y":
		return true
	}
	b, _ := strconv.ParseBool(raw)
	return b
}

// Contributions reads rows with the columns email, amount, date and
// optionally notes and monthly.
func Contributions(r io.Reader) ([]models.Contribution, error) {
	t, err := newTable(r, "email", "amount", "date")
	if err != nil {
		return nil, err
	}

	var out []models.Contribution
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, &RowError{Line: t.line, Err: err}
		}

		email := fund.NormalizeEmail(t.get(row, "email"))
		if email == "" {
			return nil, &RowError{Line: t.line, Err: errors.New("email is empty")}
		}
		date, err := parseDate(t.get(row, "date"))
		if err != nil {
			return nil, &RowError{Line: t.line, Err: err}
		}
		out = append(out, models.Contribution{
			MemberEmail: email,
			Amount:      fund.ParseAmount(t.get(row, "amount")),
			Date:        date,
			Notes:       t.get(row, "notes"),
			IsMonthly:   parseBool(t.get(row, "monthly")),
		})
	}
}

// Holdings reads rows with the columns stock_name, shares and
// purchase_price, and optionally company_name, ticker, type and
// current_price. A current price of "Live" marks the holding for live
// quotes.
func Holdings(r io.Reader) ([]models.Holding, error) {
	t, err := newTable(r, "stock_name", "shares", "purchase_price")
	if err != nil {
		return nil, err
	}

	var out []models.Holding
	for {
		row, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, &RowError{Line: t.line, Err: err}
		}

		h := models.Holding{
			StockName:     t.get(row, "stock_name"),
			CompanyName:   t.get(row, "company_name"),
			Ticker:        strings.ToUpper(t.get(row, "ticker")),
			Type:          t.get(row, "type"),
			Shares:        fund.ParseAmount(t.get(row, "shares")),
			PurchasePrice: fund.ParseAmount(t.get(row, "purchase_price")),
			CurrentPrice:  t.get(row, "current_price"),
		}
		if h.StockName == "" {
			return nil, &RowError{Line: t.line, Err: errors.New("stock name is empty")}
		}
		if strings.EqualFold(h.CurrentPrice, fund.LivePricePlaceholder) {
			if h.Ticker == "" {
				return nil, &RowError{Line: t.line, Err: fmt.Errorf("live holding %q has no ticker", h.StockName)}
			}
			h.CurrentPrice = fund.LivePricePlaceholder
			h.UseLiveQuote = true
		}
		out = append(out, h)
	}
}
