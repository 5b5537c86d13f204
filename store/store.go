// Package store persists issuance engine state.
//
// An engine writes one Snapshot per committed call. Snapshots are complete,
// so a Save either replaces the previous state or leaves it untouched.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"sync"

	"github.com/bitfsorg/libmint-go/actor"
)

// Store saves and loads engine snapshots by engine name.
type Store interface {
	// Save replaces the snapshot stored under snap.Name.
	Save(snap *Snapshot) error

	// Load returns the snapshot stored under name, or ErrSnapshotNotFound.
	Load(name string) (*Snapshot, error)
}

// Snapshot is the full persisted state of one engine.
type Snapshot struct {
	Name          string
	Variant       string
	Version       uint64 // incremented on every commit
	Administrator actor.Actor
	BaseURI       string
	HiddenURI     string
	Revealed      bool
	Flags         []uint8 // indexed by access.Phase
	Whitelist     []actor.Actor
	Batches       []BatchRecord
	Minted        []MintRecord
	RetainedWei   string // decimal
}

// BatchRecord is one issuance batch.
type BatchRecord struct {
	Start    uint64
	Quantity uint64
	Owner    actor.Actor
}

// MintRecord is one per-phase mint counter.
type MintRecord struct {
	Phase uint8
	Owner actor.Actor
	Count uint64
}

func validateSnapshot(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParam)
	}
	if snap.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// MemStore is an in-memory Store for testing.
type MemStore struct {
	mu     sync.RWMutex
	byName map[string][]byte
	saves  int
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byName: make(map[string][]byte)}
}

// Save stores a deep copy of snap.
func (s *MemStore) Save(snap *Snapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return err
	}
	data, err := encodeGob(snap)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[snap.Name] = data
	s.saves++
	return nil
}

// Load returns a copy of the snapshot stored under name.
func (s *MemStore) Load(name string) (*Snapshot, error) {
	s.mu.RLock()
	data, ok := s.byName[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSnapshotNotFound, name)
	}

	var snap Snapshot
	if err := decodeGob(data, &snap); err != nil {
		return nil, fmt.Errorf("store: decode snapshot: %w", err)
	}
	return &snap, nil
}

// Names returns the stored engine names in sorted order.
func (s *MemStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byName))
	for name := range s.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Saves returns how many snapshots have been written.
func (s *MemStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
