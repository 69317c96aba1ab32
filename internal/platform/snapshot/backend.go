// Package snapshot is the shared key/value slot store that carries values
// from one form section to another (pre-op vitals into the intra-op grid,
// patient info into pre-op vitals, pre-op blood pressure into discharge
// scoring).
package snapshot

import (
	"context"
	"errors"
	"sync"
)

// Well-known slots.
const (
	KeyPreOpVitals = "preOpVitalsSnapshot"
	KeyPatientInfo = "patientInfo"
)

// ErrNotFound is returned by a Backend when the key has no value.
var ErrNotFound = errors.New("snapshot not found")

// Backend stores raw JSON documents under string keys. Implementations must be
// safe for concurrent use.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// MemoryBackend keeps slots in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.data[key] = v
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
