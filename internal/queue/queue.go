// Package queue implements the durable FIFO of remote write operations
// awaiting delivery. The queue is the sole source of truth for which
// remote writes are still owed: the full list lives under one key in
// the key-value store and every mutation is a read-modify-write guarded
// by an in-process mutex, so an enqueue during a running flush is never
// lost to a stale write-back.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"worklog-backend/internal/kv"
)

const (
	pendingKey = "repo:pending_ops"
	deadKey    = "repo:dead_ops"
)

// Table names an operation's remote destination table.
type Table string

const (
	TablePunches  Table = "punches"
	TableProjects Table = "projects"
)

// Operation is a deferred remote insert. Payload is the row intended
// for the destination table. LocalProjectID carries the provisional
// local id of a fallback-created project so the row can be replaced
// once the remote insert succeeds.
type Operation struct {
	ID             string          `json:"id"`
	Table          Table           `json:"table"`
	Payload        json.RawMessage `json:"payload"`
	Attempts       int             `json:"attempts,omitempty"`
	LocalProjectID int64           `json:"local_project_id,omitempty"`
}

// NewOperation wraps a row payload into a queueable operation with a
// fresh id (millisecond timestamp plus random suffix).
func NewOperation(table Table, payload any) (Operation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Operation{}, fmt.Errorf("failed to marshal pending payload: %w", err)
	}
	return Operation{
		ID:      fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8]),
		Table:   table,
		Payload: raw,
	}, nil
}

// Result reports one flush: ok operations were delivered and removed,
// failed ones stay queued, dead ones exceeded the attempt cap and were
// moved to the dead-letter list.
type Result struct {
	OK     int `json:"ok"`
	Failed int `json:"failed"`
	Dead   int `json:"dead"`
}

// Service is the queue over a kv.Store. maxAttempts of 0 disables the
// dead-letter cap and retries failed operations indefinitely.
type Service struct {
	store       kv.Store
	logger      *logrus.Logger
	maxAttempts int

	mu      sync.Mutex // serializes queue read-modify-writes
	flushMu sync.Mutex // at most one drain in flight
}

// NewService creates a queue service.
func NewService(store kv.Store, logger *logrus.Logger, maxAttempts int) *Service {
	return &Service{store: store, logger: logger, maxAttempts: maxAttempts}
}

func (s *Service) loadList(ctx context.Context, key string) ([]Operation, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	var ops []Operation
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return ops, nil
}

func (s *Service) saveList(ctx context.Context, key string, ops []Operation) error {
	raw, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.store.Set(ctx, key, raw)
}

// Enqueue appends op to the end of the persisted list.
func (s *Service) Enqueue(ctx context.Context, op Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ops, err := s.loadList(ctx, pendingKey)
	if err != nil {
		return err
	}
	ops = append(ops, op)
	if err := s.saveList(ctx, pendingKey, ops); err != nil {
		return err
	}
	s.logger.Infof("queued pending %s operation %s (depth now %d)", op.Table, op.ID, len(ops))
	return nil
}

// Depth returns the number of queued operations.
func (s *Service) Depth(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops, err := s.loadList(ctx, pendingKey)
	return len(ops), err
}

// DeadCount returns the number of dead-lettered operations.
func (s *Service) DeadCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops, err := s.loadList(ctx, deadKey)
	return len(ops), err
}

// DrainAndRetry attempts delivery of every queued operation in FIFO
// order. Delivery errors are swallowed: a failed operation is retained
// in its original relative position (with its attempt count bumped)
// and only surfaces through the failed count. The write-back is
// computed against the then-current list, so operations enqueued while
// delivery was running are preserved untouched.
func (s *Service) DrainAndRetry(ctx context.Context, deliver func(context.Context, Operation) error) (Result, error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	snapshot, err := s.loadList(ctx, pendingKey)
	s.mu.Unlock()
	if err != nil {
		return Result{}, err
	}
	if len(snapshot) == 0 {
		return Result{}, nil
	}

	delivered := make(map[string]bool, len(snapshot))
	failed := make(map[string]bool)
	for _, op := range snapshot {
		if err := deliver(ctx, op); err != nil {
			s.logger.Warnf("pending %s operation %s failed again (attempt %d): %v", op.Table, op.ID, op.Attempts+1, err)
			failed[op.ID] = true
			continue
		}
		delivered[op.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadList(ctx, pendingKey)
	if err != nil {
		return Result{}, err
	}

	var retained, dead []Operation
	for _, op := range current {
		if delivered[op.ID] {
			continue
		}
		if failed[op.ID] {
			op.Attempts++
			if s.maxAttempts > 0 && op.Attempts >= s.maxAttempts {
				dead = append(dead, op)
				continue
			}
		}
		retained = append(retained, op)
	}

	if err := s.saveList(ctx, pendingKey, retained); err != nil {
		return Result{}, err
	}
	if len(dead) > 0 {
		existing, err := s.loadList(ctx, deadKey)
		if err != nil {
			return Result{}, err
		}
		if err := s.saveList(ctx, deadKey, append(existing, dead...)); err != nil {
			return Result{}, err
		}
		s.logger.Errorf("moved %d operations to the dead-letter list after %d attempts", len(dead), s.maxAttempts)
	}

	return Result{OK: len(delivered), Failed: len(failed), Dead: len(dead)}, nil
}
