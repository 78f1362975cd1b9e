package core

import (
	"context"
	"fmt"
	"math"

	"shopcore/pkg/domain"
)

// invoiceTotalsTolerance absorbs binary float rounding in computed totals.
const invoiceTotalsTolerance = 0.01

// InvoiceTotalsRule blocks invoices whose grand total disagrees with
// subtotal + tax - discount.
type InvoiceTotalsRule struct{}

// Name identifies the rule in violation reports.
func (InvoiceTotalsRule) Name() string { return "invoice-totals" }

// Evaluate checks every created invoice in the change set.
func (InvoiceTotalsRule) Evaluate(ctx context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	for _, change := range changes {
		if change.Table != domain.TableInvoices || change.Action != domain.ActionCreate {
			continue
		}
		inv, ok := change.After.(domain.Invoice)
		if !ok {
			continue
		}
		expected := inv.Subtotal + inv.TaxAmount - inv.Discount
		if math.Abs(inv.GrandTotal-expected) > invoiceTotalsTolerance {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     InvoiceTotalsRule{}.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("grand total %.2f does not match subtotal %.2f + tax %.2f - discount %.2f", inv.GrandTotal, inv.Subtotal, inv.TaxAmount, inv.Discount),
				Table:    change.Table,
				RecordID: change.RecordID,
			})
		}
	}
	return res, nil
}

// LowStockWarningRule surfaces a warning, never a block, when an inventory
// change leaves an item at or below its reorder threshold.
type LowStockWarningRule struct{}

// Name identifies the rule in violation reports.
func (LowStockWarningRule) Name() string { return "low-stock" }

// Evaluate inspects inventory writes in the change set.
func (LowStockWarningRule) Evaluate(ctx context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	for _, change := range changes {
		if change.Table != domain.TableInventory || change.Action == domain.ActionDelete {
			continue
		}
		item, ok := change.After.(domain.InventoryItem)
		if !ok {
			continue
		}
		if item.IsLowStock() {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     LowStockWarningRule{}.Name(),
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("%s stock %d is at or below threshold %d", item.Name, item.TotalStock(), item.LowStockThreshold),
				Table:    change.Table,
				RecordID: change.RecordID,
			})
		}
	}
	return res, nil
}

// NewDefaultRulesEngine returns the engine wired with the standard rule set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(InvoiceTotalsRule{})
	engine.Register(LowStockWarningRule{})
	return engine
}
