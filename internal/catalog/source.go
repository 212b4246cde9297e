package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"bookcatalog/internal/platform/librosjson"

	"go.uber.org/zap"
)

// Source yields the raw records of a catalog.
type Source interface {
	Load(ctx context.Context) ([]Book, error)
	String() string
}

// Fetcher retrieves the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DecodeBooks parses a JSON array of book objects. Only a document that
// is not a JSON array fails; odd records decode as far as they can.
func DecodeBooks(data []byte) ([]Book, error) {
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

// FileSource reads the catalog from a local JSON file. When Logger is
// set the raw file is dumped at debug level.
type FileSource struct {
	Path   string
	Logger *zap.Logger
}

func (s FileSource) Load(ctx context.Context) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	librosjson.LogDocument(s.Logger, s.Path, data)
	return DecodeBooks(data)
}

func (s FileSource) String() string {
	return s.Path
}

// HTTPSource downloads the catalog from a URL.
type HTTPSource struct {
	URL     string
	Fetcher Fetcher
}

func (s HTTPSource) Load(ctx context.Context) ([]Book, error) {
	data, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	return DecodeBooks(data)
}

func (s HTTPSource) String() string {
	return s.URL
}

// IsHTTPLocation reports whether loc names a remote catalog.
func IsHTTPLocation(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// IsPostgresLocation reports whether loc is a Postgres DSN.
func IsPostgresLocation(loc string) bool {
	return strings.HasPrefix(loc, "postgres://") || strings.HasPrefix(loc, "postgresql://")
}
