package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"fromage/internal/composer"
	"fromage/internal/fromage"
	"fromage/internal/parser"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	source      TEXT        NOT NULL,
	position    INTEGER     NOT NULL,
	kind        TEXT        NOT NULL,
	string_id   BIGINT,
	value       TEXT        NOT NULL,
	ignored     BOOLEAN     NOT NULL DEFAULT FALSE,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (source, position)
);
CREATE INDEX IF NOT EXISTS catalog_entries_string_id_idx ON catalog_entries (kind, string_id);
`

var columns = []string{"source", "position", "kind", "string_id", "value", "ignored"}

// ErrIDOutOfRange is returned for identifiers that do not fit a BIGINT column.
var ErrIDOutOfRange = errors.New("identifier exceeds BIGINT range")

// Store keeps imported string catalogs in PostgreSQL, one row per entry.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a catalog store backed by PostgreSQL.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the catalog table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// Import streams every entry of p into the catalog under source, replacing a
// previous import of the same source. Rejected lines are skipped and passed
// to onSkip. Nothing is stored if the import fails.
func (s *Store) Import(ctx context.Context, source string, p parser.Process, onSkip composer.SkipFunc) (composer.Stats, error) {
	var stats composer.Stats

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return stats, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM catalog_entries WHERE source = $1`, source); err != nil {
		return stats, fmt.Errorf("clear previous import: %w", err)
	}

	next := func() ([]any, error) {
		for {
			e, err := p.Next()
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			if parser.IsLineError(err) {
				stats.Skipped++
				if onSkip != nil {
					onSkip(err)
				}
				continue
			}
			if err != nil {
				return nil, err
			}
			stats.Entries++
			return entryRow(source, stats.Entries, e)
		}
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"catalog_entries"}, columns, pgx.CopyFromFunc(next))
	if err != nil {
		return stats, fmt.Errorf("copy entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return stats, fmt.Errorf("commit import: %w", err)
	}

	log.Info().Str("source", source).Int64("rows", n).Int("skipped", stats.Skipped).Msg("Imported catalog")
	return stats, nil
}

// Entries returns the stored entries of source, in their original order.
// The caller must Close the result.
func (s *Store) Entries(ctx context.Context, source string) (*Rows, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT kind, string_id, value, ignored FROM catalog_entries WHERE source = $1 ORDER BY position`,
		source)
	if err != nil {
		return nil, fmt.Errorf("query catalog entries: %w", err)
	}
	return &Rows{rows: rows}, nil
}

// Source summarizes one imported catalog.
type Source struct {
	Name       string
	Entries    int
	Strings    int
	Messages   int
	ImportedAt time.Time
}

// Sources lists every imported catalog.
func (s *Store) Sources(ctx context.Context) ([]Source, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source,
		       count(*),
		       count(*) FILTER (WHERE kind = 'str'),
		       count(*) FILTER (WHERE kind = 'msg'),
		       max(imported_at)
		FROM catalog_entries
		GROUP BY source
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query catalog sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Name, &src.Entries, &src.Strings, &src.Messages, &src.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan catalog source: %w", err)
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog sources: %w", err)
	}
	return out, nil
}

// Rows is a parser.Process over stored catalog entries.
type Rows struct {
	rows pgx.Rows
}

// Next returns the next stored entry, or io.EOF after the last one.
func (r *Rows) Next() (fromage.Entry, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return fromage.Entry{}, fmt.Errorf("read catalog entries: %w", err)
		}
		return fromage.Entry{}, io.EOF
	}

	var (
		kind    string
		id      *int64
		value   string
		ignored bool
	)
	if err := r.rows.Scan(&kind, &id, &value, &ignored); err != nil {
		return fromage.Entry{}, fmt.Errorf("scan catalog entry: %w", err)
	}
	return rowEntry(kind, id, value, ignored)
}

// Close releases the underlying query.
func (r *Rows) Close() { r.rows.Close() }

func entryRow(source string, position int, e fromage.Entry) ([]any, error) {
	var id *int64
	if e.IsResource() {
		if e.ID > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d", ErrIDOutOfRange, e.ID)
		}
		v := int64(e.ID)
		id = &v
	}
	return []any{source, position, e.Kind.String(), id, e.Text, e.Ignored}, nil
}

func rowEntry(kind string, id *int64, value string, ignored bool) (fromage.Entry, error) {
	switch kind {
	case fromage.KindEmpty.String():
		return fromage.Empty(), nil
	case fromage.KindComment.String():
		return fromage.Comment(value), nil
	}

	if id == nil || *id < 0 {
		return fromage.Entry{}, fmt.Errorf("catalog %s entry without a valid id", kind)
	}

	var e fromage.Entry
	switch kind {
	case fromage.KindStr.String():
		e = fromage.Str(uint64(*id), value)
	case fromage.KindMsg.String():
		e = fromage.Msg(uint64(*id), value)
	default:
		return fromage.Entry{}, fmt.Errorf("unknown catalog entry kind %q", kind)
	}
	if ignored {
		e = fromage.Ignore(e)
	}
	return e, nil
}
