// Package postgres provides a Postgres-backed store for deployments that
// share one back-office database. It mirrors the embedded driver's semantics
// by snapshotting the in-memory state, queue included, after each commit.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"shopcore/internal/infra/persistence/memory"
	"shopcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	snapshotKey   = "shopcore"
)

// Store persists full state snapshots to Postgres while reusing the in-memory
// implementation for transactions.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN, ensures the
// snapshot table exists, and hydrates the in-memory store from any existing
// snapshot. Failures surface as ErrStoreUnavailable.
func NewStore(dsn string, engine *domain.RulesEngine) (*Store, error) {
	if dsn == "" {
		return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("postgres dsn required")}
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("open postgres: %w", err)}
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("ping postgres: %w", err)}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS shopcore_state (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, domain.ErrStoreUnavailable{Err: fmt.Errorf("create state table: %w", err)}
	}
	ms := memory.NewStore(engine)
	s := &Store{Store: ms, db: db}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, domain.ErrStoreUnavailable{Err: err}
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM shopcore_state WHERE key = $1`, snapshotKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select snapshot: %w", err)
	}
	var snapshot memory.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	s.Store.ImportState(snapshot)
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	snapshot := s.Store.ExportState()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO shopcore_state(key, payload) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET payload = excluded.payload`, snapshotKey, payload); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// RunInTransaction applies fn transactionally, then snapshots to Postgres.
// A failed snapshot rolls the in-memory commit back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(ctx); err != nil {
		s.Store.ImportState(prev)
		return domain.Result{}, fmt.Errorf("persist transaction: %w", err)
	}
	return res, nil
}

// AcknowledgeMutation removes a replayed queue item and persists the change.
func (s *Store) AcknowledgeMutation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	if err := s.Store.AcknowledgeMutation(id); err != nil {
		return err
	}
	if err := s.persist(context.Background()); err != nil {
		s.Store.ImportState(prev)
		return fmt.Errorf("persist acknowledge: %w", err)
	}
	return nil
}

// MarkMutationAttempt increments a queue item's attempt counter durably.
func (s *Store) MarkMutationAttempt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	if err := s.Store.MarkMutationAttempt(id); err != nil {
		return err
	}
	if err := s.persist(context.Background()); err != nil {
		s.Store.ImportState(prev)
		return fmt.Errorf("persist attempt: %w", err)
	}
	return nil
}

// ReplaceTables swaps in replacement table contents and snapshots the result.
func (s *Store) ReplaceTables(set domain.TableSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.Store.ExportState()
	if err := s.Store.ReplaceTables(set); err != nil {
		return err
	}
	if err := s.persist(context.Background()); err != nil {
		s.Store.ImportState(prev)
		return fmt.Errorf("persist restore: %w", err)
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
