// Package sqlite provides the embedded on-device store. It layers durable
// SQLite persistence over the in-memory transactional store: record buckets
// are snapshotted as JSON and the mutation queue lives in its own table, all
// written inside a single SQL transaction per commit.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"shopcore/internal/infra/persistence/memory"
	"shopcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const defaultPath = "shopcore.db"

// Store persists the in-memory state to SQLite. A commit swaps the in-memory
// state and then writes the table buckets and any new queue entries in one
// SQL transaction; if that write fails, the in-memory commit is rolled back
// so the mutation fails as a unit.
type Store struct {
	*memory.Store
	db           *sqlx.DB
	mu           sync.Mutex
	path         string
	persistedSeq uint64
}

// NewStore opens (or creates) the embedded database at path, runs pending
// schema migrations, and hydrates the in-memory store. Any failure surfaces
// as ErrStoreUnavailable; no partial handle is returned.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("create dirs: %w", err)}
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("open sqlite: %w", err)}
	}
	if err := runMigrations(db.DB); err != nil {
		_ = db.Close()
		return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("migrate: %w", err)}
	}
	ms := memory.NewStore(engine)
	s := &Store{Store: ms, db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, domain.ErrStoreUnavailable{Err: err}
	}
	return s, nil
}

// runMigrations applies the embedded, versioned schema steps. Goose records
// each applied version and never re-runs one, so migration is idempotent
// across opens.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

const metaBucket = "meta"

type metaPayload struct {
	Seq uint64 `json:"seq"`
}

// outboxRow mirrors the outbox table. Timestamps are stored as unix
// milliseconds to keep scanning driver-independent.
type outboxRow struct {
	Seq       uint64 `db:"seq"`
	ID        string `db:"id"`
	Table     string `db:"table_name"`
	RecordID  string `db:"record_id"`
	Action    string `db:"action"`
	Payload   []byte `db:"payload"`
	CreatedAt int64  `db:"created_at_ms"`
	Attempts  int    `db:"attempts"`
}

func rowFromMutation(m domain.MutationRecord) outboxRow {
	return outboxRow{
		Seq:       m.Seq,
		ID:        m.ID,
		Table:     m.Table,
		RecordID:  m.RecordID,
		Action:    string(m.Action),
		Payload:   m.Data,
		CreatedAt: m.CreatedAt.UnixMilli(),
		Attempts:  m.Attempts,
	}
}

func (r outboxRow) toMutation() domain.MutationRecord {
	return domain.MutationRecord{
		ID:        r.ID,
		Seq:       r.Seq,
		Table:     r.Table,
		RecordID:  r.RecordID,
		Action:    domain.Action(r.Action),
		Data:      json.RawMessage(r.Payload),
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
		Attempts:  r.Attempts,
	}
}

func (s *Store) load() error {
	rows, err := s.db.Queryx(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	seen := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		seen = true
		if err := decodeBucket(&snapshot, bucket, payload); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}

	var outbox []outboxRow
	if err := s.db.Select(&outbox, `SELECT seq, id, table_name, record_id, action, payload, created_at_ms, attempts FROM outbox ORDER BY seq`); err != nil {
		return fmt.Errorf("select outbox: %w", err)
	}
	for _, r := range outbox {
		snapshot.Outbox = append(snapshot.Outbox, r.toMutation())
	}

	if !seen && len(outbox) == 0 {
		return nil
	}
	s.Store.ImportState(snapshot)
	s.persistedSeq = snapshot.Seq
	return nil
}

func decodeBucket(snapshot *memory.Snapshot, bucket string, payload []byte) error {
	var err error
	switch bucket {
	case domain.TableInventory:
		err = json.Unmarshal(payload, &snapshot.Inventory)
	case domain.TableCustomers:
		err = json.Unmarshal(payload, &snapshot.Customers)
	case domain.TableInvoices:
		err = json.Unmarshal(payload, &snapshot.Invoices)
	case domain.TablePurchases:
		err = json.Unmarshal(payload, &snapshot.Purchases)
	case domain.TableExpenses:
		err = json.Unmarshal(payload, &snapshot.Expenses)
	case domain.TableCashEntries:
		err = json.Unmarshal(payload, &snapshot.CashEntries)
	case domain.TableStaff:
		err = json.Unmarshal(payload, &snapshot.Staff)
	case domain.TableAttendance:
		err = json.Unmarshal(payload, &snapshot.Attendance)
	case domain.TableStockAdjustments:
		err = json.Unmarshal(payload, &snapshot.StockAdjustments)
	case domain.TableReminders:
		err = json.Unmarshal(payload, &snapshot.Reminders)
	case domain.TableSettings:
		err = json.Unmarshal(payload, &snapshot.Settings)
	case metaBucket:
		var meta metaPayload
		if err = json.Unmarshal(payload, &meta); err == nil {
			snapshot.Seq = meta.Seq
		}
	}
	if err != nil {
		return fmt.Errorf("decode bucket %s: %w", bucket, err)
	}
	return nil
}

func encodeBucket(snapshot memory.Snapshot, bucket string) ([]byte, error) {
	switch bucket {
	case domain.TableInventory:
		return json.Marshal(snapshot.Inventory)
	case domain.TableCustomers:
		return json.Marshal(snapshot.Customers)
	case domain.TableInvoices:
		return json.Marshal(snapshot.Invoices)
	case domain.TablePurchases:
		return json.Marshal(snapshot.Purchases)
	case domain.TableExpenses:
		return json.Marshal(snapshot.Expenses)
	case domain.TableCashEntries:
		return json.Marshal(snapshot.CashEntries)
	case domain.TableStaff:
		return json.Marshal(snapshot.Staff)
	case domain.TableAttendance:
		return json.Marshal(snapshot.Attendance)
	case domain.TableStockAdjustments:
		return json.Marshal(snapshot.StockAdjustments)
	case domain.TableReminders:
		return json.Marshal(snapshot.Reminders)
	case domain.TableSettings:
		return json.Marshal(snapshot.Settings)
	case metaBucket:
		return json.Marshal(metaPayload{Seq: snapshot.Seq})
	}
	return nil, fmt.Errorf("unknown bucket %s", bucket)
}

// persist writes the table buckets and any queue entries appended since the
// last persisted sequence in one SQL transaction.
func (s *Store) persist() (retErr error) {
	snapshot := s.Store.ExportState()
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	buckets := append(domain.Tables(), metaBucket)
	for _, bucket := range buckets {
		data, err := encodeBucket(snapshot, bucket)
		if err != nil {
			retErr = fmt.Errorf("encode %s: %w", bucket, err)
			return retErr
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	for _, m := range s.Store.OutboxSince(s.persistedSeq) {
		row := rowFromMutation(m)
		if _, err := tx.NamedExec(`INSERT INTO outbox(seq, id, table_name, record_id, action, payload, created_at_ms, attempts)
			VALUES(:seq, :id, :table_name, :record_id, :action, :payload, :created_at_ms, :attempts)`, row); err != nil {
			retErr = fmt.Errorf("append outbox %s: %w", m.ID, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.persistedSeq = snapshot.Seq
	return nil
}

// RunInTransaction applies fn transactionally and persists the result. When
// the durable write fails the in-memory commit is rolled back, so a record
// and its queue entry either both persist or neither does.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(); err != nil {
		s.Store.ImportState(prev)
		return domain.Result{}, fmt.Errorf("persist transaction: %w", err)
	}
	return res, nil
}

// AcknowledgeMutation removes a replayed queue item durably, then mirrors the
// removal in memory.
func (s *Store) AcknowledgeMutation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM outbox WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("acknowledge %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound{Table: "outbox", ID: id}
	}
	return s.Store.AcknowledgeMutation(id)
}

// MarkMutationAttempt durably increments a queue item's attempt counter.
func (s *Store) MarkMutationAttempt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`UPDATE outbox SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark attempt %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound{Table: "outbox", ID: id}
	}
	return s.Store.MarkMutationAttempt(id)
}

// ReplaceTables swaps in replacement table contents and persists the whole
// state in one SQL transaction. On persist failure the previous state is
// restored, so a failed restore never leaves mixed table contents.
func (s *Store) ReplaceTables(set domain.TableSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	if err := s.Store.ReplaceTables(set); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		s.Store.ImportState(prev)
		return fmt.Errorf("persist restore: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for integration testing hooks.
func (s *Store) DB() *sqlx.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
