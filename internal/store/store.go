// Package store is the persistent key-value store backing every collection.
// Each collection is a JSON array under its own key; all keys live in one
// versioned snapshot file committed by atomic rename, so a multi-key Update
// either lands completely or not at all. Single logical writer: access is
// serialized by a mutex, there is no cross-process coordination.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// SchemaVersion is written into every snapshot. Opening a snapshot with a
// newer version refuses to load rather than risk silently corrupting data
// written by a newer build.
const SchemaVersion = 1

var ErrKeyNotFound = errors.New("store: key not found")

type snapshot struct {
	Version int                        `json:"version"`
	Data    map[string]json.RawMessage `json:"data"`
}

type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage

	subMu  sync.Mutex
	subs   map[string]map[int]func()
	nextID int
}

// Open loads (or initializes) the snapshot file <dir>/<namespace>.json.
func Open(dir, namespace string) (*Store, error) {
	s := &Store{
		path: filepath.Join(dir, namespace+".json"),
		data: make(map[string]json.RawMessage),
		subs: make(map[string]map[int]func()),
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", s.path).Msg("store: no snapshot, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("store: corrupt snapshot %s: %w", s.path, err)
	}
	if snap.Version > SchemaVersion {
		return nil, fmt.Errorf("store: snapshot version %d newer than supported %d", snap.Version, SchemaVersion)
	}
	if snap.Data != nil {
		s.data = snap.Data
	}
	log.Debug().Str("path", s.path).Int("keys", len(s.data)).Msg("store: opened")
	return s, nil
}

// Get unmarshals the value stored under key into out.
// Returns ErrKeyNotFound when the key has never been written.
func (s *Store) Get(key string, out any) error {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(raw, out)
}

// Set writes a single key. Equivalent to an Update staging one write.
func (s *Store) Set(key string, v any) error {
	return s.Update(func(tx *Tx) error {
		return tx.Set(key, v)
	})
}

// Tx is a staged view of the store inside an Update. Reads see staged writes;
// nothing is visible to other readers or the disk until the Update commits.
type Tx struct {
	store  *Store
	staged map[string]json.RawMessage
}

func (tx *Tx) Get(key string, out any) error {
	raw, ok := tx.staged[key]
	if !ok {
		raw, ok = tx.store.data[key]
	}
	if !ok {
		return ErrKeyNotFound
	}
	return json.Unmarshal(raw, out)
}

func (tx *Tx) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tx.staged[key] = raw
	return nil
}

// Update runs fn with a staged transaction and commits all staged writes as
// one unit: the snapshot is rewritten once and swapped in by rename. If fn or
// the commit fails, neither memory nor disk changes. Subscribers of changed
// keys are notified after the commit, outside the lock.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	tx := &Tx{store: s, staged: make(map[string]json.RawMessage)}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(tx.staged) == 0 {
		s.mu.Unlock()
		return nil
	}

	next := make(map[string]json.RawMessage, len(s.data)+len(tx.staged))
	for k, v := range s.data {
		next[k] = v
	}
	changed := make([]string, 0, len(tx.staged))
	for k, v := range tx.staged {
		next[k] = v
		changed = append(changed, k)
	}
	sort.Strings(changed)

	if err := s.persist(next); err != nil {
		s.mu.Unlock()
		log.Error().Err(err).Str("path", s.path).Msg("store: commit failed")
		return err
	}
	s.data = next
	s.mu.Unlock()

	s.notify(changed)
	return nil
}

// Subscribe registers fn to run after any committed change to key.
// The returned function unsubscribes.
func (s *Store) Subscribe(key string, fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextID++
	id := s.nextID
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func())
	}
	s.subs[key][id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs[key], id)
	}
}

func (s *Store) notify(keys []string) {
	var fns []func()
	s.subMu.Lock()
	for _, key := range keys {
		ids := make([]int, 0, len(s.subs[key]))
		for id := range s.subs[key] {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fns = append(fns, s.subs[key][id])
		}
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Store) persist(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(snapshot{Version: SchemaVersion, Data: data}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
