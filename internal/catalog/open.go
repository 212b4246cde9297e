package catalog

import (
	"context"
	"time"

	"bookcatalog/internal/platform/librosjson"
	"bookcatalog/internal/platform/pgdb"

	"go.uber.org/zap"
)

// SourceOptions tune the sources built by OpenSource.
type SourceOptions struct {
	UserAgent string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// OpenSource picks a source from the shape of loc: an http(s) URL, a
// Postgres DSN, or otherwise a file path. The returned close function
// releases whatever the source holds open.
func OpenSource(ctx context.Context, loc string, opts SourceOptions) (Source, func(), error) {
	switch {
	case IsHTTPLocation(loc):
		client := librosjson.NewClient(opts.UserAgent, opts.Timeout, opts.Logger)
		return HTTPSource{URL: loc, Fetcher: client}, func() {}, nil
	case IsPostgresLocation(loc):
		pool, err := pgdb.Open(ctx, loc)
		if err != nil {
			return nil, nil, &LoadError{Source: pgdb.RedactDSN(loc), Err: err}
		}
		return NewPostgresSource(pool, loc), pool.Close, nil
	default:
		return FileSource{Path: loc, Logger: opts.Logger}, func() {}, nil
	}
}
