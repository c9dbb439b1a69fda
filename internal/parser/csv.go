package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"fromage/internal/fromage"
)

// firstContentColumn is the first column after KIND and ID. Comments are
// always read from it.
const firstContentColumn = 2

var (
	errMissingID         = errors.New("id is missing")
	errMissingText       = errors.New("text is missing")
	errUnterminatedQuote = errors.New("string literal ending '\"' is missing")
	errUnknownKind       = errors.New("unknown CSV kind")
)

// CSVParser reads a separator-delimited table whose rows are
// KIND,ID,<content columns...>. The value of each entry is taken from the
// translation column located by name in the header.
type CSVParser struct {
	src    *lineSource
	sep    rune
	column int
}

// NewCSVParser consumes the header line of r and locates the column named
// translationColumn. It returns ErrBadTranslationColumn when no header field
// has that name or the field is one of the reserved KIND/ID columns.
func NewCSVParser(r io.Reader, sep rune, translationColumn string) (*CSVParser, error) {
	src := newLineSource(r)

	header, err := src.next()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	column := headerColumn(header, sep, translationColumn)
	if column < firstContentColumn {
		return nil, fmt.Errorf("%w: %q", ErrBadTranslationColumn, translationColumn)
	}

	return &CSVParser{src: src, sep: sep, column: column}, nil
}

// Column returns the zero-based index of the translation column.
func (p *CSVParser) Column() int { return p.column }

// Next parses the next data row.
func (p *CSVParser) Next() (fromage.Entry, error) {
	line, err := p.src.next()
	if err != nil {
		return fromage.Entry{}, err
	}

	e, err := parseCSVLine(line, p.sep, p.column)
	if err != nil {
		return fromage.Entry{}, p.src.reject(line, err)
	}
	return e, nil
}

// headerColumn returns the index of the first header field equal to name,
// or -1.
func headerColumn(header string, sep rune, name string) int {
	for i, field := range strings.Split(header, string(sep)) {
		if field == name {
			return i
		}
	}
	return -1
}

func parseCSVLine(line string, sep rune, column int) (fromage.Entry, error) {
	if line == "" {
		return fromage.Empty(), nil
	}

	kind, rest, ok := strings.Cut(line, string(sep))
	if !ok {
		return fromage.Entry{}, errMissingID
	}
	if kind == "com" {
		column = firstContentColumn
	}

	rawID, rest, ok := strings.Cut(rest, string(sep))
	if !ok {
		return fromage.Entry{}, errMissingText
	}

	val, err := scanColumn(rest, sep, column)
	if err != nil {
		return fromage.Entry{}, err
	}

	switch kind {
	case "com":
		return fromage.Comment(val), nil
	case "str", "(str)", "msg":
	default:
		return fromage.Entry{}, errUnknownKind
	}

	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil {
		return fromage.Entry{}, errBadID
	}

	switch kind {
	case "str":
		return fromage.Str(id, val), nil
	case "(str)":
		return fromage.Ignore(fromage.Str(id, val)), nil
	default:
		return fromage.Msg(id, val), nil
	}
}

// scanColumn walks the content columns of a row, starting at index 2, and
// returns the text of column target. Quotes are consumed and make the
// separator literal until the closing quote. Scanning stops at the separator
// that ends the target column.
func scanColumn(rest string, sep rune, target int) (string, error) {
	var b strings.Builder
	current := firstContentColumn
	quoted := false

	// Copy source bytes rather than decoded runes so invalid UTF-8 survives.
	for i := 0; i < len(rest); {
		c, size := utf8.DecodeRuneInString(rest[i:])
		raw := rest[i : i+size]
		i += size

		switch {
		case quoted:
			if c == '"' {
				quoted = false
			} else if current == target {
				b.WriteString(raw)
			}
		case c == '"':
			quoted = true
		case c == sep:
			if current == target {
				return b.String(), nil
			}
			current++
		case current == target:
			b.WriteString(raw)
		}
	}

	if quoted {
		return "", errUnterminatedQuote
	}
	return b.String(), nil
}
