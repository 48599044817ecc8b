// Package record composes the slug, sequence, template, status and index
// editors into the operations offered to callers: create a record, bootstrap
// a decision log, change a status and list records.
//
// Every operation is a single read, transform, write pass over whole files.
// Nothing is cached between calls; the filesystem is the only state.
package record

import (
	"log/slog"
	"time"

	"github.com/starford/adrkit/internal/storage"
)

// Event kinds passed to a Hook.
const (
	EventCreated = "created"
	EventUpdated = "updated"
)

// Hook is called after a record or index file has been written. path is
// relative to the repository root.
type Hook func(kind, path string)

// Service runs record operations against one repository.
type Service struct {
	store  storage.Provider
	logger *slog.Logger
	now    func() time.Time
	hooks  []Hook
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for operation traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock overrides the clock used for default record dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithHook registers a hook called after every write.
func WithHook(h Hook) Option {
	return func(s *Service) {
		s.hooks = append(s.hooks, h)
	}
}

// NewService creates a record service on top of store.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

func (s *Service) emit(kind, path string) {
	for _, h := range s.hooks {
		h(kind, path)
	}
}

// write stores content at path and notifies hooks.
func (s *Service) write(kind, path string, content []byte) error {
	if err := s.store.Write(path, content); err != nil {
		return err
	}
	s.emit(kind, path)
	return nil
}
