package domain

import (
	"encoding/json"
	"time"
)

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the CRUD operations captured in the mutation queue.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Change describes one record mutation inside a transaction. Before/After hold
// entity snapshots; deletes carry only Before.
type Change struct {
	Table    string
	RecordID string
	Action   Action
	Before   any
	After    any
}

// MutationRecord is one pending entry in the mutation queue, durably written
// in the same atomic commit as the record change it describes. Records are
// append-only; only Attempts is ever incremented afterwards. The JSON shape is
// the interchange contract consumed by the external remote-sync component.
type MutationRecord struct {
	ID        string          `json:"id" db:"id"`
	Seq       uint64          `json:"-" db:"seq"`
	Table     string          `json:"table" db:"table_name"`
	RecordID  string          `json:"recordId" db:"record_id"`
	Action    Action          `json:"action" db:"action"`
	Data      json.RawMessage `json:"data" db:"payload"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	Attempts  int             `json:"attempts" db:"attempts"`
}

// Clone returns a deep copy safe for callers to retain.
func (m MutationRecord) Clone() MutationRecord {
	cp := m
	if m.Data != nil {
		cp.Data = make(json.RawMessage, len(m.Data))
		copy(cp.Data, m.Data)
	}
	return cp
}
