package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Service owns the catalog for the lifetime of the process. It is
// filled once by Load; until then every query fails with ErrNotLoaded.
type Service struct {
	source Source
	logger *zap.Logger

	mu      sync.Mutex
	catalog atomic.Pointer[Catalog]
	loadErr atomic.Pointer[LoadError]
}

func NewService(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// Load fetches and indexes the catalog. Once it has succeeded further
// calls do nothing. Failures are not retried by the service.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog.Load() != nil {
		return nil
	}

	books, err := s.source.Load(ctx)
	if err != nil {
		loadErr := &LoadError{Source: s.source.String(), Err: err}
		s.loadErr.Store(loadErr)
		s.logger.Error("failed to load catalog", zap.String("source", s.source.String()), zap.Error(err))
		return loadErr
	}

	c := New(books)
	s.catalog.Store(c)
	s.loadErr.Store(nil)

	opts := c.Options()
	s.logger.Info("catalog loaded",
		zap.String("source", s.source.String()),
		zap.Int("books", c.Len()),
		zap.Int("authors", len(opts.Authors)),
		zap.Int("categories", len(opts.Categories)),
	)
	return nil
}

func (s *Service) Loaded() bool {
	return s.catalog.Load() != nil
}

// LoadErr returns the failure of the last Load attempt, if any.
func (s *Service) LoadErr() *LoadError {
	return s.loadErr.Load()
}

func (s *Service) Catalog() (*Catalog, error) {
	c := s.catalog.Load()
	if c == nil {
		if le := s.loadErr.Load(); le != nil {
			return nil, errors.Join(ErrNotLoaded, le)
		}
		return nil, ErrNotLoaded
	}
	return c, nil
}

func (s *Service) Options() (Options, error) {
	c, err := s.Catalog()
	if err != nil {
		return Options{}, err
	}
	return c.Options(), nil
}

// Search runs q against the catalog and describes the matches.
func (s *Service) Search(q Query) (Results, error) {
	c, err := s.Catalog()
	if err != nil {
		return Results{}, err
	}
	return Describe(c.Query(q)), nil
}
