package memory

import (
	"shopcore/pkg/domain"
)

// Mutation queue access. Entries are created only by transaction commits; the
// operations here are the interface points for the external replay consumer.

// PendingMutations returns all queue items in insertion order without
// removing them.
func (s *Store) PendingMutations() []domain.MutationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MutationRecord, 0, len(s.state.outbox))
	for _, m := range s.state.outbox {
		out = append(out, m.Clone())
	}
	return out
}

// AcknowledgeMutation deletes a queue item after successful remote replay.
func (s *Store) AcknowledgeMutation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.state.outbox {
		if m.ID == id {
			s.state.outbox = append(s.state.outbox[:i:i], s.state.outbox[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound{Table: "outbox", ID: id}
}

// MarkMutationAttempt increments a queue item's attempt counter after a
// failed replay. Retry policy belongs to the consumer.
func (s *Store) MarkMutationAttempt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.outbox {
		if s.state.outbox[i].ID == id {
			s.state.outbox[i].Attempts++
			return nil
		}
	}
	return domain.ErrNotFound{Table: "outbox", ID: id}
}

// OutboxSince returns queue items with a sequence strictly greater than seq,
// in insertion order. Durable drivers use it to persist only the entries a
// commit appended.
func (s *Store) OutboxSince(seq uint64) []domain.MutationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.MutationRecord
	for _, m := range s.state.outbox {
		if m.Seq > seq {
			out = append(out, m.Clone())
		}
	}
	return out
}

// LastSeq returns the highest mutation sequence issued so far.
func (s *Store) LastSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.seq
}
