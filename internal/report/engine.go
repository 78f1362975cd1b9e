// Package report derives point-in-time business metrics from gateway reads.
// It holds no state of its own and never mutates the store.
package report

import (
	"context"
	"time"

	"shopcore/internal/core"
	"shopcore/pkg/domain"
)

// cogsRatio estimates cost of goods as a fixed share of net sales. The output
// of DailySummary must reproduce this heuristic exactly; downstream reports
// compare against it.
const cogsRatio = 0.6

// Summary holds the derived metrics for one calendar day.
type Summary struct {
	Date           time.Time `json:"date"`
	TotalSales     float64   `json:"totalSales"`
	TotalItemsSold int       `json:"totalItemsSold"`
	TaxCollected   float64   `json:"taxCollected"`
	TotalExpenses  float64   `json:"totalExpenses"`
	TotalCashIn    float64   `json:"totalCashIn"`
	TotalCashOut   float64   `json:"totalCashOut"`
	EstimatedCOGS  float64   `json:"estimatedCOGS"`
	GrossProfit    float64   `json:"grossProfit"`
}

// Engine computes summaries through the CRUD gateway.
type Engine struct {
	svc *core.Service
}

// NewEngine constructs an aggregation engine over the gateway.
func NewEngine(svc *core.Service) *Engine {
	return &Engine{svc: svc}
}

// DailySummary reduces the records created on date's calendar day, local to
// date's location. The window is inclusive on both ends.
func (e *Engine) DailySummary(ctx context.Context, date time.Time) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	start, end := core.DayWindow(date)

	summary := Summary{Date: start}
	for _, inv := range e.svc.ListInvoicesBetween(start, end) {
		summary.TotalSales += inv.GrandTotal
		summary.TotalItemsSold += inv.TotalQuantity()
		summary.TaxCollected += inv.TaxAmount
	}
	for _, exp := range e.svc.ListExpensesBetween(start, end) {
		summary.TotalExpenses += exp.Amount
	}

	cashIn := 0.0
	cashOut := 0.0
	for _, entry := range e.svc.ListCashEntriesBetween(start, end) {
		switch entry.Type {
		case domain.CashIn:
			cashIn += entry.Amount
		case domain.CashOut:
			cashOut += entry.Amount
		}
	}
	summary.TotalCashIn = summary.TotalSales + cashIn
	summary.TotalCashOut = summary.TotalExpenses + cashOut

	summary.EstimatedCOGS = (summary.TotalSales - summary.TaxCollected) * cogsRatio
	summary.GrossProfit = summary.TotalSales - summary.TaxCollected - summary.EstimatedCOGS
	return summary, nil
}

// RangeSummaries computes one summary per calendar day from first through
// last, inclusive.
func (e *Engine) RangeSummaries(ctx context.Context, first, last time.Time) ([]Summary, error) {
	firstStart, _ := core.DayWindow(first)
	lastStart, _ := core.DayWindow(last)
	var out []Summary
	for day := firstStart; !day.After(lastStart); day = day.AddDate(0, 0, 1) {
		s, err := e.DailySummary(ctx, day)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
