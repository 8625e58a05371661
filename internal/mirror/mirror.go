// Package mirror keeps the per-subject local copy of punch history,
// independent of remote sync state. Each subject's punches live as one
// serialized array in the key-value store, appended in call order and
// never mutated afterwards.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"worklog-backend/internal/kv"
	"worklog-backend/internal/model"
)

// Store is the append-only punch mirror.
type Store struct {
	store kv.Store
	mu    sync.Mutex // serializes the append read-modify-write
}

// New creates a mirror over the given key-value store.
func New(store kv.Store) *Store {
	return &Store{store: store}
}

func subjectKey(subject model.SubjectType, subjectID int64) string {
	return fmt.Sprintf("worklog:punches:%s:%d", subject, subjectID)
}

// Append adds one punch to the subject's history.
func (s *Store) Append(ctx context.Context, subject model.SubjectType, subjectID int64, row model.PunchRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := subjectKey(subject, subjectID)
	punches, err := s.load(ctx, key)
	if err != nil {
		return err
	}
	punches = append(punches, row)

	raw, err := json.Marshal(punches)
	if err != nil {
		return fmt.Errorf("failed to marshal punch mirror: %w", err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write punch mirror for %s %d: %w", subject, subjectID, err)
	}
	return nil
}

// List returns the subject's punches in append order. An empty mirror
// yields an empty slice.
func (s *Store) List(ctx context.Context, subject model.SubjectType, subjectID int64) ([]model.PunchRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, subjectKey(subject, subjectID))
}

func (s *Store) load(ctx context.Context, key string) ([]model.PunchRow, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read punch mirror: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var punches []model.PunchRow
	if err := json.Unmarshal(raw, &punches); err != nil {
		// A corrupt mirror entry is treated as empty rather than
		// poisoning every read.
		return nil, nil
	}
	return punches, nil
}
