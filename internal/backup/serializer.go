// Package backup serializes full store state to a portable JSON document and
// restores it atomically. The document shape is the interchange contract:
// {"version": N, "exportedAt": ..., "data": {table: [records...]}}.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"shopcore/pkg/domain"
)

// Document is one exported backup. Data holds every table in full; the
// mutation queue is deliberately excluded, backups describe state, not
// pending replication.
type Document struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	Data       domain.TableSet `json:"data"`
}

// Export reads every table through the store and stamps the document with the
// current schema version.
func Export(store domain.PersistentStore) Document {
	return Document{
		Version:    domain.SchemaVersion,
		ExportedAt: time.Now().UTC(),
		Data:       store.ExportTables(),
	}
}

// Encode writes the document as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode parses a backup document. Malformed input or a missing version field
// is reported as ErrRestoreFailed; nothing has touched the store yet.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, domain.ErrRestoreFailed{Reason: fmt.Sprintf("malformed document: %v", err)}
	}
	if doc.Version <= 0 {
		return Document{}, domain.ErrRestoreFailed{Reason: "document missing version"}
	}
	return doc, nil
}

// Restore validates the document and atomically replaces every table. The
// version gate runs before any state changes: a document produced by a newer
// schema than this build understands is rejected outright, leaving the store
// untouched. The mutation queue survives the swap.
func Restore(store domain.PersistentStore, doc Document) error {
	if doc.Version <= 0 {
		return domain.ErrRestoreFailed{Reason: "document missing version"}
	}
	if doc.Version > domain.SchemaVersion {
		return domain.ErrRestoreFailed{Reason: fmt.Sprintf("document version %d newer than supported %d", doc.Version, domain.SchemaVersion)}
	}
	if err := store.ReplaceTables(doc.Data); err != nil {
		return domain.ErrRestoreFailed{Reason: err.Error()}
	}
	return nil
}
