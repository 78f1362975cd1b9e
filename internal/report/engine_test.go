package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"shopcore/internal/core"
	"shopcore/internal/infra/persistence/memory"
	"shopcore/pkg/domain"
)

func seedDay(t *testing.T, store *memory.Store, day time.Time) *core.Service {
	t.Helper()
	svc := core.NewService(store)
	ctx := context.Background()

	store.SetNowFunc(func() time.Time { return day.Add(10 * time.Hour) })
	item, _, err := svc.CreateItem(ctx, core.InventoryItem{
		Name:         "Shirt",
		SellingPrice: 100,
		Variants:     []core.Variant{{Size: "m", Color: "white", Stock: 20}},
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	// two invoices: 2x100+20 tax, 1x100+10 tax
	if _, _, err := svc.RecordSale(ctx, core.SaleInput{
		InvoiceNumber: "D-1",
		Lines:         []core.SaleLine{{ItemID: item.ID, Size: "m", Color: "white", Quantity: 2}},
		TaxAmount:     20,
		AmountPaid:    220,
	}); err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	if _, _, err := svc.RecordSale(ctx, core.SaleInput{
		InvoiceNumber: "D-2",
		Lines:         []core.SaleLine{{ItemID: item.ID, Size: "m", Color: "white", Quantity: 1}},
		TaxAmount:     10,
		AmountPaid:    110,
	}); err != nil {
		t.Fatalf("seed sale: %v", err)
	}
	if _, _, err := svc.CreateExpense(ctx, core.Expense{Amount: 40, Category: "rent"}); err != nil {
		t.Fatalf("seed expense: %v", err)
	}
	if _, _, err := svc.CreateCashEntry(ctx, core.CashEntry{Amount: 25, Type: domain.CashIn}); err != nil {
		t.Fatalf("seed cash in: %v", err)
	}
	if _, _, err := svc.CreateCashEntry(ctx, core.CashEntry{Amount: 5, Type: domain.CashOut}); err != nil {
		t.Fatalf("seed cash out: %v", err)
	}

	// records on the next day must not leak into the summary
	store.SetNowFunc(func() time.Time { return day.Add(24*time.Hour + time.Minute) })
	if _, _, err := svc.RecordSale(ctx, core.SaleInput{
		InvoiceNumber: "D-3",
		Lines:         []core.SaleLine{{ItemID: item.ID, Size: "m", Color: "white", Quantity: 5}},
		AmountPaid:    500,
	}); err != nil {
		t.Fatalf("seed next-day sale: %v", err)
	}
	return svc
}

func TestDailySummary(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	svc := seedDay(t, store, day)
	engine := NewEngine(svc)

	s, err := engine.DailySummary(context.Background(), day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("daily summary: %v", err)
	}

	if s.TotalSales != 330 {
		t.Fatalf("totalSales: want 330, got %v", s.TotalSales)
	}
	if s.TotalItemsSold != 3 {
		t.Fatalf("totalItemsSold: want 3, got %d", s.TotalItemsSold)
	}
	if s.TaxCollected != 30 {
		t.Fatalf("taxCollected: want 30, got %v", s.TaxCollected)
	}
	if s.TotalExpenses != 40 {
		t.Fatalf("totalExpenses: want 40, got %v", s.TotalExpenses)
	}
	if s.TotalCashIn != 355 { // 330 sales + 25 manual cash in
		t.Fatalf("totalCashIn: want 355, got %v", s.TotalCashIn)
	}
	if s.TotalCashOut != 45 { // 40 expenses + 5 manual cash out
		t.Fatalf("totalCashOut: want 45, got %v", s.TotalCashOut)
	}
	if want := (330.0 - 30.0) * 0.6; s.EstimatedCOGS != want {
		t.Fatalf("estimatedCOGS: want %v, got %v", want, s.EstimatedCOGS)
	}
	if want := 330.0 - 30.0 - (330.0-30.0)*0.6; s.GrossProfit != want {
		t.Fatalf("grossProfit: want %v, got %v", want, s.GrossProfit)
	}
}

func TestDailySummaryEmptyDay(t *testing.T) {
	store := memory.NewStore(nil)
	engine := NewEngine(core.NewService(store))
	s, err := engine.DailySummary(context.Background(), time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("daily summary: %v", err)
	}
	if s.TotalSales != 0 || s.GrossProfit != 0 || s.TotalCashIn != 0 || s.TotalCashOut != 0 {
		t.Fatalf("expected zeroed summary, got %+v", s)
	}
}

func TestRangeSummaries(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	svc := seedDay(t, store, day)
	engine := NewEngine(svc)

	summaries, err := engine.RangeSummaries(context.Background(), day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("range summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 days, got %d", len(summaries))
	}
	if summaries[0].TotalSales != 330 || summaries[1].TotalSales != 500 {
		t.Fatalf("unexpected per-day sales: %v and %v", summaries[0].TotalSales, summaries[1].TotalSales)
	}
}

func TestWriteExcel(t *testing.T) {
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	svc := seedDay(t, store, day)
	engine := NewEngine(svc)

	summaries, err := engine.RangeSummaries(context.Background(), day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("range summaries: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteExcel(&buf, summaries); err != nil {
		t.Fatalf("write excel: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 { // header + two days
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "date" || rows[1][0] != "2026-03-14" {
		t.Fatalf("unexpected sheet contents: %v", rows[:2])
	}
}
