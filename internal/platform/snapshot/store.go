package snapshot

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

// Recorder counts store outcomes. *metrics.Collector satisfies it.
type Recorder interface {
	SnapshotOp(op, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) SnapshotOp(string, string) {}

// Store is a best-effort JSON view over a Backend. Reads of a missing,
// malformed or unreachable slot report absence; failed writes are logged
// and dropped. Callers never see an error.
type Store struct {
	backend  Backend
	logger   zerolog.Logger
	recorder Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithRecorder attaches an outcome counter.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewStore(backend Backend, logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		logger:   logger.With().Str("component", "snapshot").Logger(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordKey scopes a slot to one record.
func RecordKey(recordID, slot string) string {
	return recordID + ":" + slot
}

// Raw returns the stored bytes for key.
func (s *Store) Raw(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.backend.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.recorder.SnapshotOp("get", "miss")
		return nil, false
	case err != nil:
		s.logger.Debug().Err(err).Str("key", key).Msg("snapshot read failed")
		s.recorder.SnapshotOp("get", "error")
		return nil, false
	}
	s.recorder.SnapshotOp("get", "hit")
	return b, true
}

// Load decodes key into dst and reports whether a usable value was present.
// dst may be partially written when false is returned for malformed JSON.
func (s *Store) Load(ctx context.Context, key string, dst any) bool {
	b, ok := s.Raw(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("snapshot malformed")
		s.recorder.SnapshotOp("get", "malformed")
		return false
	}
	return true
}

// Get is a typed Load.
func Get[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var v T
	if !s.Load(ctx, key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

// Save encodes v as JSON under key.
func (s *Store) Save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("snapshot encode failed")
		s.recorder.SnapshotOp("set", "error")
		return
	}
	if err := s.backend.Set(ctx, key, b); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("snapshot write failed")
		s.recorder.SnapshotOp("set", "error")
		return
	}
	s.recorder.SnapshotOp("set", "ok")
}

// Merge overlays fields onto the JSON object stored under key, keeping keys
// it does not mention. An absent or non-object slot starts empty.
func (s *Store) Merge(ctx context.Context, key string, fields map[string]any) {
	current := map[string]json.RawMessage{}
	if !s.Load(ctx, key, &current) || current == nil {
		current = map[string]json.RawMessage{}
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			s.logger.Debug().Err(err).Str("key", key).Str("field", k).Msg("snapshot encode failed")
			s.recorder.SnapshotOp("set", "error")
			return
		}
		current[k] = b
	}
	s.Save(ctx, key, current)
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) {
	if err := s.backend.Remove(ctx, key); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("snapshot remove failed")
		s.recorder.SnapshotOp("remove", "error")
		return
	}
	s.recorder.SnapshotOp("remove", "ok")
}
