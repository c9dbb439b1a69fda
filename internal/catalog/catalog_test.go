package catalog

import (
	"bytes"
	"context"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromage/internal/composer"
	"fromage/internal/fromage"
	"fromage/internal/parser"
)

func TestEntryRowRoundTrip(t *testing.T) {
	tests := []fromage.Entry{
		fromage.Empty(),
		fromage.Comment("a note"),
		fromage.Str(1, "Hello"),
		fromage.Msg(2, "World"),
		fromage.Ignore(fromage.Str(3, "off")),
		fromage.Ignore(fromage.Msg(4, "off")),
		fromage.Str(math.MaxInt64, "max"),
	}

	for _, e := range tests {
		t.Run(e.Kind.String(), func(t *testing.T) {
			row, err := entryRow("ui.txt", 7, e)
			require.NoError(t, err)
			require.Len(t, row, len(columns))
			assert.Equal(t, "ui.txt", row[0])
			assert.Equal(t, 7, row[1])

			got, err := rowEntry(row[2].(string), row[3].(*int64), row[4].(string), row[5].(bool))
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

func TestEntryRow_NoIDForComments(t *testing.T) {
	row, err := entryRow("x", 1, fromage.Comment("c"))
	require.NoError(t, err)
	assert.Nil(t, row[3].(*int64))
}

func TestEntryRow_IDOutOfRange(t *testing.T) {
	_, err := entryRow("x", 1, fromage.Str(math.MaxInt64+1, "big"))
	assert.ErrorIs(t, err, ErrIDOutOfRange)
}

func TestRowEntry_Invalid(t *testing.T) {
	id := int64(1)
	neg := int64(-1)

	_, err := rowEntry("str", nil, "x", false)
	assert.Error(t, err)
	_, err = rowEntry("msg", &neg, "x", false)
	assert.Error(t, err)
	_, err = rowEntry("banana", &id, "x", false)
	assert.Error(t, err)
}

// newTestStore connects to FROMAGE_TEST_DATABASE_URL or skips the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("FROMAGE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FROMAGE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewStore(pool)
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func TestStore_ImportExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	source := "test/" + t.Name()

	input := "s[1] = \"Hello\"\n;m[2] = \"Off\"\nbroken\n; a note\n\ns[1] = \"Again\"\n"

	var skipped []error
	stats, err := s.Import(ctx, source, parser.NewAToolsParser(strings.NewReader(input)),
		func(err error) { skipped = append(skipped, err) })
	require.NoError(t, err)
	assert.Equal(t, composer.Stats{Entries: 5, Skipped: 1}, stats)
	assert.Len(t, skipped, 1)

	// A second import replaces the first.
	_, err = s.Import(ctx, source, parser.NewAToolsParser(strings.NewReader(input)), nil)
	require.NoError(t, err)

	rows, err := s.Entries(ctx, source)
	require.NoError(t, err)
	defer rows.Close()

	var out bytes.Buffer
	stats, err = composer.CSVComposer{Sep: ','}.Compose(&out, rows)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Entries)
	assert.Equal(t, "KIND,ID,ORIGINAL\nstr,1,\"Hello\"\nmsg,2,\"Off\"\ncom,###,\"a note\"\n\n(str),1,\"Again\"\n", out.String())

	sources, err := s.Sources(ctx)
	require.NoError(t, err)
	var found bool
	for _, src := range sources {
		if src.Name == source {
			found = true
			assert.Equal(t, 5, src.Entries)
			assert.Equal(t, 2, src.Strings)
			assert.Equal(t, 1, src.Messages)
		}
	}
	assert.True(t, found)
}
