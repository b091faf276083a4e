// Package memstore provides an in-memory ports.StateStore used by tests and
// local single-process play. It mirrors the shared-store semantics: one JSON
// value per path, last writer wins, and subscribers observe writes in the
// order they were applied.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"sevens/internal/ports"
)

type subscriber struct {
	id int
	fn func([]byte)
}

// Store is a concurrency-safe in-memory key/value store keyed by slash paths.
type Store struct {
	mu     sync.Mutex
	values map[string][]byte
	subs   map[string][]subscriber
	nextID int

	// notifyMu serializes callback dispatch so subscribers see writes in
	// apply order even when writers race.
	notifyMu sync.Mutex
}

// New returns an empty store.
func New() *Store {
	return &Store{
		values: make(map[string][]byte),
		subs:   make(map[string][]subscriber),
	}
}

// Read returns the raw JSON at path, or ports.ErrNotFound.
func (s *Store) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[path]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Write stores value at path, replacing any previous value. A nil value
// deletes the path.
func (s *Store) Write(_ context.Context, path string, value any) error {
	s.mu.Lock()
	notify, err := s.applyLocked(path, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.dispatch(notify)
	return nil
}

// AtomicIncrement adds delta to the integer at path, treating a missing path
// as zero, and returns the new value.
func (s *Store) AtomicIncrement(_ context.Context, path string, delta int64) (int64, error) {
	s.mu.Lock()
	cur, err := s.intAtLocked(path)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}
	cur += delta
	notify, err := s.applyLocked(path, cur)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	s.dispatch(notify)
	return cur, nil
}

// MultiPathUpdate applies all entries under a single lock so readers never
// observe a partially applied batch. ports.Delta values increment, nil
// values delete.
func (s *Store) MultiPathUpdate(_ context.Context, updates map[string]any) error {
	s.mu.Lock()
	var notify []func()
	for path, value := range updates {
		if d, ok := value.(ports.Delta); ok {
			cur, err := s.intAtLocked(path)
			if err != nil {
				s.mu.Unlock()
				return err
			}
			value = cur + int64(d)
		}
		n, err := s.applyLocked(path, value)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		notify = append(notify, n...)
	}
	s.mu.Unlock()
	s.dispatch(notify)
	return nil
}

// Subscribe registers fn for writes at path. If the path already holds a
// value, fn is invoked with it before Subscribe returns.
func (s *Store) Subscribe(_ context.Context, path string, fn func([]byte)) (ports.Subscription, error) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[path] = append(s.subs[path], subscriber{id: id, fn: fn})
	var initial []byte
	if v, ok := s.values[path]; ok {
		initial = make([]byte, len(v))
		copy(initial, v)
	}
	s.mu.Unlock()

	if initial != nil {
		s.notifyMu.Lock()
		fn(initial)
		s.notifyMu.Unlock()
	}

	return &subscription{store: s, path: path, id: id}, nil
}

type subscription struct {
	store *Store
	path  string
	id    int
}

func (sub *subscription) Unsubscribe() {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	entries := sub.store.subs[sub.path]
	for i, e := range entries {
		if e.id == sub.id {
			sub.store.subs[sub.path] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func (s *Store) dispatch(notify []func()) {
	if len(notify) == 0 {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	for _, fn := range notify {
		fn()
	}
}

func (s *Store) applyLocked(path string, value any) ([]func(), error) {
	if value == nil {
		delete(s.values, path)
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	s.values[path] = raw

	entries := s.subs[path]
	if len(entries) == 0 {
		return nil, nil
	}
	snapshot := make([]byte, len(raw))
	copy(snapshot, raw)
	notify := make([]func(), 0, len(entries))
	for _, e := range entries {
		fn := e.fn
		notify = append(notify, func() { fn(snapshot) })
	}
	return notify, nil
}

func (s *Store) intAtLocked(path string) (int64, error) {
	raw, ok := s.values[path]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("path %s does not hold an integer: %w", path, err)
	}
	return n, nil
}
