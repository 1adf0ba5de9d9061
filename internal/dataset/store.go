package dataset

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hyperjump/hikari/internal/models"
)

// Store holds the current snapshot. Readers never block; Reload swaps the pointer.
type Store struct {
	path    string
	fields  []models.Field
	current atomic.Pointer[Snapshot]
	logger  *zap.Logger

	mu        sync.Mutex
	listeners []func(*Snapshot)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Open loads the dataset at path and returns a store serving it.
func Open(path string, fields []models.Field, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:   path,
		fields: append([]models.Field(nil), fields...),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	snap, err := Load(path, s.fields)
	if err != nil {
		return nil, err
	}
	s.current.Store(snap)
	s.logger.Info("dataset loaded", zap.String("path", displayPath(path)), zap.Int("records", snap.Len()))
	return s, nil
}

// NewStore wraps an already built snapshot.
func NewStore(snap *Snapshot) *Store {
	s := &Store{path: snap.source, fields: snap.Fields(), logger: zap.NewNop()}
	s.current.Store(snap)
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Path returns the dataset path ("" for the sample dataset).
func (s *Store) Path() string { return s.path }

// OnReload registers fn to be called with each new snapshot after a successful reload.
func (s *Store) OnReload(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload re-reads the dataset. On error the current snapshot is kept.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := Load(s.path, s.fields)
	if err != nil {
		s.logger.Warn("dataset reload failed", zap.String("path", displayPath(s.path)), zap.Error(err))
		return err
	}
	s.current.Store(snap)
	s.logger.Info("dataset reloaded", zap.String("path", displayPath(s.path)), zap.Int("records", snap.Len()))
	for _, fn := range s.listeners {
		fn(snap)
	}
	return nil
}

func displayPath(p string) string {
	if p == "" {
		return "<sample>"
	}
	return p
}
