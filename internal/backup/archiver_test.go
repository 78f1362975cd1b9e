package backup

import (
	"context"
	"errors"
	"testing"
	"time"

	blobmem "shopcore/internal/infra/blob/memory"
	"shopcore/internal/infra/persistence/memory"
	"shopcore/pkg/domain"
)

func TestArchiverUploadAndRestoreLatest(t *testing.T) {
	ctx := context.Background()
	source := seedStore(t)
	blobs := blobmem.New()
	archiver := NewArchiver(source, blobs, nil)

	base := time.Date(2026, time.April, 1, 9, 0, 0, 0, time.UTC)
	archiver.SetNowFunc(func() time.Time { return base })
	if _, err := archiver.Upload(ctx); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	// mutate, then upload a second archive with a later key
	_, err := source.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateExpense(domain.Expense{Amount: 12, Category: "tea"})
		return err
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	archiver.SetNowFunc(func() time.Time { return base.Add(time.Hour) })
	if _, err := archiver.Upload(ctx); err != nil {
		t.Fatalf("second upload: %v", err)
	}

	infos, err := archiver.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 archives, got %d", len(infos))
	}
	if !(infos[0].Key < infos[1].Key) {
		t.Fatalf("archives must sort chronologically: %v", infos)
	}

	target := memory.NewStore(nil)
	restorer := NewArchiver(target, blobs, nil)
	if err := restorer.RestoreLatest(ctx); err != nil {
		t.Fatalf("restore latest: %v", err)
	}
	if len(target.ListExpenses()) != 1 {
		t.Fatalf("expected latest archive with the expense")
	}
	if len(target.ListItems()) != 1 {
		t.Fatalf("expected seeded inventory restored")
	}
}

func TestRestoreLatestWithoutArchives(t *testing.T) {
	archiver := NewArchiver(memory.NewStore(nil), blobmem.New(), nil)
	err := archiver.RestoreLatest(context.Background())
	var restoreErr domain.ErrRestoreFailed
	if !errors.As(err, &restoreErr) {
		t.Fatalf("expected restore failure, got %v", err)
	}
}
