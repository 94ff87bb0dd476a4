package report

import (
	"context"
	"time"

	"github.com/estudio/backend/internal/domain/report"
	"github.com/estudio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReportService provides read-only reporting over the cash ledger
type ReportService struct {
	reportRepo report.Repository
	clock      shared.Clock
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo report.Repository, clock shared.Clock) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		clock:      clock,
	}
}

// DailyCashPointResponse is one day of the cash evolution report
type DailyCashPointResponse struct {
	Date    string          `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// CashEvolutionResponse is the cash evolution report for a date range
type CashEvolutionResponse struct {
	From   string                   `json:"from"`
	To     string                   `json:"to"`
	Points []DailyCashPointResponse `json:"points"`
}

// ConceptSpendResponse is one row of the top expense concepts report
type ConceptSpendResponse struct {
	Description string          `json:"description"`
	Total       decimal.Decimal `json:"total"`
	Count       int64           `json:"count"`
}

// RangeFilter bounds a report to a date range. An empty range defaults
// to the last 30 days.
type RangeFilter struct {
	From *time.Time `form:"from"`
	To   *time.Time `form:"to"`
}

func (s *ReportService) resolveRange(f RangeFilter) (time.Time, time.Time) {
	to := s.clock.Today()
	if f.To != nil {
		to = *f.To
	}
	from := to.AddDate(0, 0, -30)
	if f.From != nil {
		from = *f.From
	}
	return from, to
}

// CashEvolution returns per-day inflow, outflow and net over a range
func (s *ReportService) CashEvolution(ctx context.Context, filter RangeFilter) (*CashEvolutionResponse, error) {
	from, to := s.resolveRange(filter)
	points, err := s.reportRepo.DailyCashEvolution(ctx, from, to)
	if err != nil {
		return nil, err
	}

	responses := make([]DailyCashPointResponse, len(points))
	for i, p := range points {
		responses[i] = DailyCashPointResponse{
			Date:    p.Date.Format("2006-01-02"),
			Inflow:  p.Inflow,
			Outflow: p.Outflow,
			Net:     p.Net,
		}
	}
	return &CashEvolutionResponse{
		From:   from.Format("2006-01-02"),
		To:     to.Format("2006-01-02"),
		Points: responses,
	}, nil
}

// TopExpenseConcepts ranks expense descriptions by total spend
func (s *ReportService) TopExpenseConcepts(ctx context.Context, filter RangeFilter, limit int) ([]ConceptSpendResponse, error) {
	from, to := s.resolveRange(filter)
	spends, err := s.reportRepo.TopExpenseConcepts(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ConceptSpendResponse, len(spends))
	for i, sp := range spends {
		responses[i] = ConceptSpendResponse{
			Description: sp.Description,
			Total:       sp.Total,
			Count:       sp.Count,
		}
	}
	return responses, nil
}
