package catalog

import (
	"context"
	"fmt"

	"bookcatalog/internal/platform/pgdb"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads the catalog from the libros table. Rows come back
// in the order they were inserted.
type PostgresSource struct {
	db  *pgxpool.Pool
	dsn string
}

func NewPostgresSource(db *pgxpool.Pool, dsn string) *PostgresSource {
	return &PostgresSource{db: db, dsn: dsn}
}

func (s *PostgresSource) Load(ctx context.Context) ([]Book, error) {
	const query = `
		SELECT titulo, autor, ubicacion, portada, categoria
		FROM libros
		ORDER BY position ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query libros: %w", err)
	}
	return pgx.CollectRows(rows, scanBook)
}

func (s *PostgresSource) String() string {
	return pgdb.RedactDSN(s.dsn)
}

func scanBook(row pgx.CollectableRow) (Book, error) {
	var (
		b        Book
		title    *string
		author   *string
		location *string
		cover    *string
		category []byte
	)
	if err := row.Scan(&title, &author, &location, &cover, &category); err != nil {
		return Book{}, err
	}
	b.Title = deref(title)
	b.Author = deref(author)
	b.Location = deref(location)
	b.Cover = deref(cover)
	if len(category) > 0 {
		if err := b.Categories.UnmarshalJSON(category); err != nil {
			return Book{}, err
		}
	}
	return b, nil
}

// InsertBooks appends books to the libros table in one transaction,
// keeping their order.
func InsertBooks(ctx context.Context, db *pgxpool.Pool, books []Book) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertSQL = `
		INSERT INTO libros (titulo, autor, ubicacion, portada, categoria)
		VALUES ($1, $2, $3, $4, $5)`

	batch := &pgx.Batch{}
	for _, b := range books {
		category, err := b.Categories.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode categories of %q: %w", b.Title, err)
		}
		batch.Queue(insertSQL, nullable(b.Title), nullable(b.Author), nullable(b.Location), nullable(b.Cover), string(category))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert books: %w", err)
	}
	return tx.Commit(ctx)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
