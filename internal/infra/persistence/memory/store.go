// Package memory provides the in-memory transactional store that every
// durable driver builds on. Commits swap a cloned state, so a mutation and
// its mutation-queue entry land in the same atomic state transition.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store provides an in-memory transactional store for the retail schema.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// mutationID builds a time-ordered queue item id: unix-milli prefix for
// ordering, uuid suffix for uniqueness under concurrent commits.
func (s *Store) mutationID(now time.Time) string {
	return fmt.Sprintf("%013d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// SetNowFunc overrides the time provider. Intended for tests that need
// deterministic createdAt stamps.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RulesEngine exposes the configured engine for integration points.
func (s *Store) RulesEngine() *domain.RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// RunInTransaction executes fn within a transactional copy of the store state.
// On success the copy replaces the live state in one swap; the change set is
// materialized into mutation-queue entries inside that same swap, so a record
// write can never commit without its queue entry or vice versa.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	if err := s.appendMutations(tx); err != nil {
		return domain.Result{}, err
	}

	s.state = tx.state
	return result, nil
}

// appendMutations converts the transaction change set into queue entries on
// the transactional state. Create/update entries snapshot the full record;
// deletes carry a minimal {id} payload.
func (s *Store) appendMutations(tx *transaction) error {
	for _, change := range tx.changes {
		var payload any
		switch change.Action {
		case domain.ActionDelete:
			payload = struct {
				ID string `json:"id"`
			}{ID: change.RecordID}
		default:
			payload = change.After
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode mutation payload for %s %s: %w", change.Table, change.RecordID, err)
		}
		tx.state.seq++
		tx.state.outbox = append(tx.state.outbox, domain.MutationRecord{
			ID:        s.mutationID(tx.now),
			Seq:       tx.state.seq,
			Table:     change.Table,
			RecordID:  change.RecordID,
			Action:    change.Action,
			Data:      data,
			CreatedAt: tx.now,
			Attempts:  0,
		})
	}
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.RuleView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	view := newTransactionView(&snapshot)
	return fn(view)
}

// ExportState clones the full store state, mutation queue included, for
// driver-level persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// ExportTables reads every record collection in full, independent of queue state.
func (s *Store) ExportTables() domain.TableSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tableSetFromState(s.state)
}

// ReplaceTables swaps in a complete replacement for every record collection in
// one atomic state transition. The mutation queue and its sequence counter are
// preserved untouched: a restore is a state replacement, not a set of new
// local mutations.
func (s *Store) ReplaceTables(set domain.TableSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := stateFromTableSet(set)
	next.outbox = s.state.outbox
	next.seq = s.state.seq
	s.state = next
	return nil
}
