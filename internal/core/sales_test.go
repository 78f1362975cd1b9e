package core

import (
	"context"
	"errors"
	"testing"

	"shopcore/internal/infra/persistence/memory"
	"shopcore/pkg/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewStore(NewDefaultRulesEngine()))
}

func seedItem(t *testing.T, svc *Service, item InventoryItem) InventoryItem {
	t.Helper()
	created, _, err := svc.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return created
}

func TestRecordSaleWalkIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, InventoryItem{
		Name:              "Denim Jacket",
		SellingPrice:      50,
		Variants:          []Variant{{Size: "M", Color: "blue", Stock: 10}},
		LowStockThreshold: 2,
	})
	queueBase := len(svc.PendingMutations())

	invoice, _, err := svc.RecordSale(ctx, SaleInput{
		InvoiceNumber: "INV-001",
		Lines:         []SaleLine{{ItemID: item.ID, Size: "M", Color: "blue", Quantity: 3}},
		TaxAmount:     15,
		PaymentMode:   "cash",
		AmountPaid:    165,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}

	if invoice.Subtotal != 150 || invoice.GrandTotal != 165 || invoice.DueAmount != 0 {
		t.Fatalf("unexpected totals: %+v", invoice)
	}
	if invoice.Status != domain.InvoiceStatusPaid {
		t.Fatalf("expected paid status, got %s", invoice.Status)
	}
	if invoice.CustomerID != nil {
		t.Fatalf("expected walk-in invoice")
	}

	got, _ := svc.GetItem(item.ID)
	if got.Variants[0].Stock != 7 {
		t.Fatalf("expected stock 7, got %d", got.Variants[0].Stock)
	}
	if got.SalesCount != 3 {
		t.Fatalf("expected salesCount 3, got %d", got.SalesCount)
	}

	pending := svc.PendingMutations()[queueBase:]
	if len(pending) != 2 {
		t.Fatalf("expected exactly 2 queue items for walk-in sale, got %d", len(pending))
	}
	if pending[0].Table != domain.TableInventory || pending[0].Action != ActionUpdate {
		t.Fatalf("expected item update first, got %+v", pending[0])
	}
	if pending[1].Table != domain.TableInvoices || pending[1].Action != ActionCreate {
		t.Fatalf("expected invoice create second, got %+v", pending[1])
	}
	if len(svc.ListStockAdjustments()) != 0 {
		t.Fatalf("sale must not write stock adjustments")
	}
}

func TestRecordSaleUpdatesCustomerRunningTotals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, InventoryItem{
		Name:         "Scarf",
		SellingPrice: 20,
		Variants:     []Variant{{Size: "one", Color: "red", Stock: 5}},
	})
	customer, _, err := svc.CreateCustomer(ctx, Customer{Name: "Asha", Phone: "111"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	invoice, _, err := svc.RecordSale(ctx, SaleInput{
		InvoiceNumber: "INV-002",
		CustomerID:    &customer.ID,
		Lines:         []SaleLine{{ItemID: item.ID, Size: "one", Color: "red", Quantity: 2}},
		PaymentMode:   "credit",
		AmountPaid:    10,
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusPartial || invoice.DueAmount != 30 {
		t.Fatalf("unexpected invoice: %+v", invoice)
	}

	got, _ := svc.GetCustomer(customer.ID)
	if got.TotalPurchases != 40 {
		t.Fatalf("expected totalPurchases 40, got %v", got.TotalPurchases)
	}
	if got.OutstandingCredit != 30 {
		t.Fatalf("expected outstandingCredit 30, got %v", got.OutstandingCredit)
	}

	byCustomer := svc.ListInvoicesByCustomer(customer.ID)
	if len(byCustomer) != 1 || byCustomer[0].ID != invoice.ID {
		t.Fatalf("expected invoice listed for customer")
	}
}

func TestRecordSaleUnknownItem(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.RecordSale(context.Background(), SaleInput{
		InvoiceNumber: "INV-003",
		Lines:         []SaleLine{{ItemID: "missing", Quantity: 1}},
	})
	var notFound domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(svc.ListInvoices()) != 0 || len(svc.PendingMutations()) != 0 {
		t.Fatalf("failed sale must leave no state")
	}
}

func TestRecordSaleClampsOversell(t *testing.T) {
	svc := newTestService(t)
	item := seedItem(t, svc, InventoryItem{
		Name:         "Cap",
		SellingPrice: 10,
		Variants:     []Variant{{Size: "one", Color: "black", Stock: 2}},
	})
	if _, _, err := svc.RecordSale(context.Background(), SaleInput{
		InvoiceNumber: "INV-004",
		Lines:         []SaleLine{{ItemID: item.ID, Size: "one", Color: "black", Quantity: 5}},
		AmountPaid:    50,
	}); err != nil {
		t.Fatalf("record sale: %v", err)
	}
	got, _ := svc.GetItem(item.ID)
	if got.Variants[0].Stock != 0 {
		t.Fatalf("expected clamped stock 0, got %d", got.Variants[0].Stock)
	}
	if got.SalesCount != 5 {
		t.Fatalf("salesCount follows quantity sold, got %d", got.SalesCount)
	}
}

func TestSettleInvoicePayment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, InventoryItem{
		Name:         "Boots",
		SellingPrice: 100,
		Variants:     []Variant{{Size: "42", Color: "brown", Stock: 4}},
	})
	customer, _, err := svc.CreateCustomer(ctx, Customer{Name: "Ravi"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	invoice, _, err := svc.RecordSale(ctx, SaleInput{
		InvoiceNumber: "INV-005",
		CustomerID:    &customer.ID,
		Lines:         []SaleLine{{ItemID: item.ID, Size: "42", Color: "brown", Quantity: 1}},
		PaymentMode:   "credit",
	})
	if err != nil {
		t.Fatalf("record sale: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusUnpaid {
		t.Fatalf("expected unpaid invoice, got %s", invoice.Status)
	}

	settled, _, err := svc.SettleInvoicePayment(ctx, invoice.ID, 60)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if settled.Status != domain.InvoiceStatusPartial || settled.AmountPaid != 60 || settled.DueAmount != 40 {
		t.Fatalf("unexpected settled invoice: %+v", settled)
	}
	if settled.GrandTotal != invoice.GrandTotal || len(settled.Items) != len(invoice.Items) {
		t.Fatalf("settle must not touch totals or lines")
	}

	settled, _, err = svc.SettleInvoicePayment(ctx, invoice.ID, 500)
	if err != nil {
		t.Fatalf("settle overpay: %v", err)
	}
	if settled.Status != domain.InvoiceStatusPaid || settled.DueAmount != 0 || settled.AmountPaid != 100 {
		t.Fatalf("overpayment must clamp to due amount: %+v", settled)
	}

	got, _ := svc.GetCustomer(customer.ID)
	if got.OutstandingCredit != 0 {
		t.Fatalf("expected cleared credit, got %v", got.OutstandingCredit)
	}
}

func TestAdjustStockWritesAuditRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	item := seedItem(t, svc, InventoryItem{
		Name:     "Gloves",
		Variants: []Variant{{Size: "m", Color: "grey", Stock: 3}},
	})
	queueBase := len(svc.PendingMutations())

	adjusted, _, err := svc.AdjustStock(ctx, item.ID, "m", "grey", -2, "damaged")
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if adjusted.Variants[0].Stock != 1 {
		t.Fatalf("expected stock 1, got %d", adjusted.Variants[0].Stock)
	}

	trail := svc.ListStockAdjustments()
	if len(trail) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(trail))
	}
	if trail[0].ItemID != item.ID || trail[0].Delta != -2 || trail[0].Reason != "damaged" {
		t.Fatalf("unexpected audit record: %+v", trail[0])
	}

	pending := svc.PendingMutations()[queueBase:]
	if len(pending) != 2 {
		t.Fatalf("expected item update + audit create in queue, got %d items", len(pending))
	}

	// positive delta onto a new variant
	adjusted, _, err = svc.AdjustStock(ctx, item.ID, "l", "grey", 4, "restock")
	if err != nil {
		t.Fatalf("adjust stock: %v", err)
	}
	if len(adjusted.Variants) != 2 || adjusted.Variants[1].Stock != 4 {
		t.Fatalf("expected new variant with stock 4: %+v", adjusted.Variants)
	}
}
