package backup

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	blobcore "shopcore/internal/blob/core"
	"shopcore/pkg/domain"
)

const (
	archivePrefix      = "backups/"
	archiveContentType = "application/json"
	archiveTimeLayout  = "20060102T150405.000Z"
)

// Archiver ships backup documents to blob storage and restores from it.
type Archiver struct {
	store domain.PersistentStore
	blobs blobcore.Store
	log   *slog.Logger
	nowFn func() time.Time
}

// NewArchiver wires a store to an archive backend.
func NewArchiver(store domain.PersistentStore, blobs blobcore.Store, log *slog.Logger) *Archiver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Archiver{store: store, blobs: blobs, log: log, nowFn: time.Now}
}

// SetNowFunc overrides the clock, for tests.
func (a *Archiver) SetNowFunc(fn func() time.Time) { a.nowFn = fn }

// ArchiveKey builds the timestamped object key for an upload at t. Keys sort
// lexicographically in chronological order.
func ArchiveKey(t time.Time) string {
	return archivePrefix + t.UTC().Format(archiveTimeLayout) + ".json"
}

// Upload exports the store and writes the document to blob storage under a
// timestamped key.
func (a *Archiver) Upload(ctx context.Context) (blobcore.Info, error) {
	doc := Export(a.store)
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return blobcore.Info{}, err
	}
	key := ArchiveKey(a.nowFn())
	info, err := a.blobs.Put(ctx, key, &buf, blobcore.PutOptions{
		ContentType: archiveContentType,
		Metadata:    map[string]string{"schemaVersion": fmt.Sprintf("%d", doc.Version)},
	})
	if err != nil {
		return blobcore.Info{}, fmt.Errorf("upload backup: %w", err)
	}
	a.log.Info("backup uploaded", "key", info.Key, "bytes", info.Size)
	return info, nil
}

// List returns stored archives in chronological order.
func (a *Archiver) List(ctx context.Context) ([]blobcore.Info, error) {
	return a.blobs.List(ctx, archivePrefix)
}

// RestoreFrom downloads the named archive and restores the store from it.
func (a *Archiver) RestoreFrom(ctx context.Context, key string) error {
	_, rc, err := a.blobs.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch backup %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()
	doc, err := Decode(rc)
	if err != nil {
		return err
	}
	if err := Restore(a.store, doc); err != nil {
		return err
	}
	a.log.Info("backup restored", "key", key, "exportedAt", doc.ExportedAt)
	return nil
}

// RestoreLatest restores from the most recent archive.
func (a *Archiver) RestoreLatest(ctx context.Context) error {
	infos, err := a.List(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return domain.ErrRestoreFailed{Reason: "no archives found"}
	}
	return a.RestoreFrom(ctx, infos[len(infos)-1].Key)
}
