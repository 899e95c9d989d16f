// Package memstore provides an in-memory SessionStore for tests and
// examples. Records are copied on the way in and out so callers cannot
// mutate stored checkpoints.
package memstore

import (
	"context"
	"sync"

	"github.com/wilhg/trackbot/pkg/store"
)

// Store implements store.SessionStore with a mutex-guarded map.
type Store struct {
	mu   sync.RWMutex
	data map[string]store.CheckpointRecord
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{data: map[string]store.CheckpointRecord{}}
}

func (s *Store) Save(ctx context.Context, rec store.CheckpointRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[rec.SessionID] = copyRecord(rec)
	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (store.CheckpointRecord, error) {
	if err := ctx.Err(); err != nil {
		return store.CheckpointRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[sessionID]
	if !ok {
		return store.CheckpointRecord{}, store.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (s *Store) Drop(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Len reports the number of stored checkpoints. Test helper.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func copyRecord(rec store.CheckpointRecord) store.CheckpointRecord {
	out := rec
	out.Transcript = append([]byte(nil), rec.Transcript...)
	out.ToolsCalled = append([]byte(nil), rec.ToolsCalled...)
	return out
}
