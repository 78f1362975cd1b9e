package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"shopcore/pkg/domain"
)

func TestRunInTransactionCommitsRecordAndQueueTogether(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	created, err := createItem(t, store, domain.InventoryItem{
		Name:         "Denim Jacket",
		Category:     "outerwear",
		SellingPrice: 59.99,
		Variants:     []domain.Variant{{Size: "M", Color: "blue", Stock: 10}},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be stamped")
	}

	got, ok := store.GetItem(created.ID)
	if !ok {
		t.Fatalf("expected committed item")
	}
	if got.Name != "Denim Jacket" {
		t.Fatalf("unexpected item name %q", got.Name)
	}

	pending := store.PendingMutations()
	if len(pending) != 1 {
		t.Fatalf("expected 1 queue item, got %d", len(pending))
	}
	m := pending[0]
	if m.Table != domain.TableInventory || m.RecordID != created.ID || m.Action != domain.ActionCreate {
		t.Fatalf("unexpected queue item %+v", m)
	}
	var payload domain.InventoryItem
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Name != "Denim Jacket" {
		t.Fatalf("payload mismatch: %+v", payload)
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateItem(created.ID, func(it *domain.InventoryItem) error {
			it.SellingPrice = 49.99
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteItem(created.ID)
	}); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	pending = store.PendingMutations()
	if len(pending) != 3 {
		t.Fatalf("expected 3 queue items, got %d", len(pending))
	}
	actions := []domain.Action{domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete}
	for i, want := range actions {
		if pending[i].Action != want {
			t.Fatalf("queue item %d: want action %s, got %s", i, want, pending[i].Action)
		}
	}
	var deletePayload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(pending[2].Data, &deletePayload); err != nil {
		t.Fatalf("decode delete payload: %v", err)
	}
	if deletePayload.ID != created.ID {
		t.Fatalf("delete payload id %q, want %q", deletePayload.ID, created.ID)
	}
}

func TestFailedTransactionLeavesNoTrace(t *testing.T) {
	store := NewStore(nil)
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateCustomer(domain.Customer{Name: "Asha"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected propagated error, got %v", err)
	}
	if len(store.ListCustomers()) != 0 {
		t.Fatalf("expected no committed customer")
	}
	if len(store.PendingMutations()) != 0 {
		t.Fatalf("expected empty queue after aborted transaction")
	}
}

func TestVariantStockClampsAtZero(t *testing.T) {
	store := NewStore(nil)
	item, err := createItem(t, store, domain.InventoryItem{
		Name:     "Scarf",
		Variants: []domain.Variant{{Size: "one", Color: "red", Stock: 2}},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateItem(item.ID, func(it *domain.InventoryItem) error {
			it.Variants[0].Stock -= 5
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	got, _ := store.GetItem(item.ID)
	if got.Variants[0].Stock != 0 {
		t.Fatalf("expected clamped stock 0, got %d", got.Variants[0].Stock)
	}
}

func TestListLowStockItemsInclusiveBoundary(t *testing.T) {
	store := NewStore(nil)
	atThreshold, err := createItem(t, store, domain.InventoryItem{
		Name:              "At",
		Variants:          []domain.Variant{{Size: "s", Color: "x", Stock: 3}, {Size: "m", Color: "x", Stock: 2}},
		LowStockThreshold: 5,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := createItem(t, store, domain.InventoryItem{
		Name:              "Above",
		Variants:          []domain.Variant{{Size: "s", Color: "x", Stock: 6}},
		LowStockThreshold: 5,
	}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	low := store.ListLowStockItems()
	if len(low) != 1 {
		t.Fatalf("expected 1 low-stock item, got %d", len(low))
	}
	if low[0].ID != atThreshold.ID {
		t.Fatalf("expected item at threshold to be low stock")
	}
}

func TestDayWindowBoundariesAreInclusive(t *testing.T) {
	store := NewStore(nil)
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		day,                                       // first instant of the day
		day.Add(24*time.Hour - time.Millisecond),  // 23:59:59.999
		day.Add(24 * time.Hour),                   // next day, excluded
		day.Add(-time.Millisecond),                // previous day, excluded
	}
	for i, ts := range stamps {
		store.SetNowFunc(func() time.Time { return ts })
		_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
			_, err := tx.CreateInvoice(domain.Invoice{InvoiceNumber: string(rune('A' + i))})
			return err
		})
		if err != nil {
			t.Fatalf("create invoice %d: %v", i, err)
		}
	}

	end := day.Add(24*time.Hour - time.Millisecond)
	got := store.ListInvoicesBetween(day, end)
	if len(got) != 2 {
		t.Fatalf("expected 2 invoices inside window, got %d", len(got))
	}
	for _, inv := range got {
		if inv.CreatedAt.Before(day) || inv.CreatedAt.After(end) {
			t.Fatalf("invoice %s outside window: %v", inv.InvoiceNumber, inv.CreatedAt)
		}
	}
}

func TestQueueAcknowledgeAndAttempts(t *testing.T) {
	store := NewStore(nil)
	if _, err := createItem(t, store, domain.InventoryItem{Name: "A"}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	if _, err := createItem(t, store, domain.InventoryItem{Name: "B"}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	pending := store.PendingMutations()
	if len(pending) != 2 {
		t.Fatalf("expected 2 queue items, got %d", len(pending))
	}

	if err := store.MarkMutationAttempt(pending[0].ID); err != nil {
		t.Fatalf("mark attempt: %v", err)
	}
	after := store.PendingMutations()
	if after[0].Attempts != 1 {
		t.Fatalf("expected attempts 1, got %d", after[0].Attempts)
	}

	if err := store.AcknowledgeMutation(pending[0].ID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	remaining := store.PendingMutations()
	if len(remaining) != 1 || remaining[0].ID != pending[1].ID {
		t.Fatalf("expected only second item to remain, got %+v", remaining)
	}

	var notFound domain.ErrNotFound
	if err := store.AcknowledgeMutation("missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.MarkMutationAttempt("missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPendingMutationsReturnsClones(t *testing.T) {
	store := NewStore(nil)
	if _, err := createItem(t, store, domain.InventoryItem{Name: "A"}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	first := store.PendingMutations()
	first[0].Attempts = 99
	first[0].Data[0] = 'x'
	second := store.PendingMutations()
	if second[0].Attempts != 0 || second[0].Data[0] == 'x' {
		t.Fatalf("queue state leaked through returned slice")
	}
}

func TestReplaceTablesPreservesQueue(t *testing.T) {
	store := NewStore(nil)
	if _, err := createItem(t, store, domain.InventoryItem{Name: "Old"}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	queueBefore := store.PendingMutations()

	err := store.ReplaceTables(domain.TableSet{
		Inventory: []domain.InventoryItem{{Base: domain.Base{ID: "imported"}, Name: "New"}},
		Customers: []domain.Customer{{Base: domain.Base{ID: "c1"}, Name: "Asha", Phone: "111"}},
	})
	if err != nil {
		t.Fatalf("replace tables: %v", err)
	}

	if _, ok := store.GetItem("imported"); !ok {
		t.Fatalf("expected imported item")
	}
	if len(store.ListItems()) != 1 {
		t.Fatalf("expected old inventory replaced")
	}
	if _, ok := store.FindCustomerByPhone("111"); !ok {
		t.Fatalf("expected imported customer via phone index")
	}

	queueAfter := store.PendingMutations()
	if len(queueAfter) != len(queueBefore) || queueAfter[0].ID != queueBefore[0].ID {
		t.Fatalf("expected queue untouched by restore")
	}
}

func TestAttendanceKeyedByStaffAndDate(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateAttendance(domain.Attendance{StaffID: "s1", Date: "2026-03-14", Status: domain.AttendancePresent})
		return err
	})
	if err != nil {
		t.Fatalf("create attendance: %v", err)
	}
	got, ok := store.GetAttendance(domain.AttendanceKey("s1", "2026-03-14"))
	if !ok || got.Status != domain.AttendancePresent {
		t.Fatalf("expected attendance by derived key")
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateAttendance(domain.Attendance{StaffID: "s1", Date: "2026-03-14", Status: domain.AttendanceAbsent})
		return err
	})
	var dup domain.ErrDuplicateKey
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate key for same staff/day, got %v", err)
	}
}

func TestPutSettingUpserts(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	for _, value := range []string{"dark", "light"} {
		_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			_, err := tx.PutSetting(domain.Setting{Key: "theme", Value: value})
			return err
		})
		if err != nil {
			t.Fatalf("put setting: %v", err)
		}
	}
	got, ok := store.GetSetting("theme")
	if !ok || got.Value != "light" {
		t.Fatalf("expected upserted value, got %+v", got)
	}
	pending := store.PendingMutations()
	if len(pending) != 2 {
		t.Fatalf("expected 2 queue items, got %d", len(pending))
	}
	if pending[0].Action != domain.ActionCreate || pending[1].Action != domain.ActionUpdate {
		t.Fatalf("expected create then update, got %s then %s", pending[0].Action, pending[1].Action)
	}
}

func TestRuleViolationAbortsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockEverything{})
	store := NewStore(engine)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateExpense(domain.Expense{Amount: 10})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if len(store.ListExpenses()) != 0 || len(store.PendingMutations()) != 0 {
		t.Fatalf("expected aborted commit to leave no state")
	}
}

type blockEverything struct{}

func (blockEverything) Name() string { return "block-everything" }

func (blockEverything) Evaluate(ctx context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{Rule: "block-everything", Severity: domain.SeverityBlock, Message: "no"}}}, nil
}

func createItem(t *testing.T, store *Store, item domain.InventoryItem) (domain.InventoryItem, error) {
	t.Helper()
	var created domain.InventoryItem
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var txErr error
		created, txErr = tx.CreateItem(item)
		return txErr
	})
	return created, err
}
