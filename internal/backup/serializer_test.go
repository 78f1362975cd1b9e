package backup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shopcore/internal/infra/persistence/memory"
	"shopcore/pkg/domain"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateItem(domain.InventoryItem{
			Name:         "Shirt",
			SellingPrice: 25,
			Variants:     []domain.Variant{{Size: "m", Color: "white", Stock: 8}},
		}); err != nil {
			return err
		}
		if _, err := tx.CreateCustomer(domain.Customer{Name: "Asha", Phone: "111"}); err != nil {
			return err
		}
		_, err := tx.PutSetting(domain.Setting{Key: "currency", Value: "INR"})
		return err
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func TestExportRestoreRoundTrip(t *testing.T) {
	source := seedStore(t)
	doc := Export(source)
	if doc.Version != domain.SchemaVersion {
		t.Fatalf("expected version %d, got %d", domain.SchemaVersion, doc.Version)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	target := memory.NewStore(nil)
	if err := Restore(target, decoded); err != nil {
		t.Fatalf("restore: %v", err)
	}

	items := target.ListItems()
	if len(items) != 1 || items[0].Name != "Shirt" || items[0].Variants[0].Stock != 8 {
		t.Fatalf("items did not round-trip: %+v", items)
	}
	if _, ok := target.FindCustomerByPhone("111"); !ok {
		t.Fatalf("customer index did not round-trip")
	}
	if got, ok := target.GetSetting("currency"); !ok || got.Value != "INR" {
		t.Fatalf("settings did not round-trip")
	}
}

func TestRestoreRejectsNewerVersionUntouched(t *testing.T) {
	store := seedStore(t)
	before := store.ExportTables()

	doc := Document{Version: domain.SchemaVersion + 1, ExportedAt: time.Now()}
	err := Restore(store, doc)
	var restoreErr domain.ErrRestoreFailed
	if !errors.As(err, &restoreErr) {
		t.Fatalf("expected restore failure, got %v", err)
	}

	after := store.ExportTables()
	if len(after.Inventory) != len(before.Inventory) || len(after.Customers) != len(before.Customers) {
		t.Fatalf("rejected restore must leave state untouched")
	}
}

func TestDecodeRejectsMalformedDocument(t *testing.T) {
	var restoreErr domain.ErrRestoreFailed
	if _, err := Decode(strings.NewReader("{not json")); !errors.As(err, &restoreErr) {
		t.Fatalf("expected restore failure for malformed input, got %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"exportedAt":"2026-01-01T00:00:00Z","data":{}}`)); !errors.As(err, &restoreErr) {
		t.Fatalf("expected restore failure for missing version, got %v", err)
	}
}

func TestRestorePreservesMutationQueue(t *testing.T) {
	store := seedStore(t)
	queueBefore := store.PendingMutations()
	if len(queueBefore) == 0 {
		t.Fatalf("expected seeded queue")
	}

	if err := Restore(store, Export(memory.NewStore(nil))); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(store.ListItems()) != 0 {
		t.Fatalf("expected emptied tables")
	}
	queueAfter := store.PendingMutations()
	if len(queueAfter) != len(queueBefore) {
		t.Fatalf("restore must not touch the queue: %d vs %d", len(queueAfter), len(queueBefore))
	}
}
