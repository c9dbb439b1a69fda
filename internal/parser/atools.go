package parser

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"fromage/internal/fromage"
)

var (
	errMissingOpenBracket  = errors.New("expected '[' but reached end of line")
	errMissingCloseBracket = errors.New("found '[' but there is no matching ']'")
	errBadID               = errors.New("identifier is not an unsigned integer")
	errMissingOpenQuote    = errors.New("no opening '\"' found")
	errMissingCloseQuote   = errors.New("no closing '\"' found")
	errUnknownTag          = errors.New("unknown type tag")
)

// AToolsParser reads the line-oriented ATools resource format:
//
//	s[1] = "Hello"
//	m[2] = "World"
//	;s[3] = "disabled"
//	; a comment
type AToolsParser struct {
	src *lineSource
}

// NewAToolsParser starts an ATools parsing process over r.
func NewAToolsParser(r io.Reader) *AToolsParser {
	return &AToolsParser{src: newLineSource(r)}
}

// Next parses the next input line.
func (p *AToolsParser) Next() (fromage.Entry, error) {
	line, err := p.src.next()
	if err != nil {
		return fromage.Entry{}, err
	}

	e, err := parseAToolsLine(line)
	if err != nil {
		return fromage.Entry{}, p.src.reject(line, err)
	}
	return e, nil
}

func parseAToolsLine(line string) (fromage.Entry, error) {
	if line == "" {
		return fromage.Empty(), nil
	}

	if line[0] != ';' {
		return parseAToolsResource(line)
	}

	// A ';' directly followed by a tag disables that resource; anything else
	// after ';' is comment text.
	if len(line) == 1 {
		return fromage.Comment(""), nil
	}
	switch line[1] {
	case ' ':
		return fromage.Comment(line[2:]), nil
	case 's', 'm':
		e, err := parseAToolsResource(line[1:])
		if err != nil {
			return fromage.Entry{}, err
		}
		return fromage.Ignore(e), nil
	default:
		return fromage.Comment(line[1:]), nil
	}
}

// parseAToolsResource matches <tag>...[<id>]..."<val>".
func parseAToolsResource(line string) (fromage.Entry, error) {
	tag, size := utf8.DecodeRuneInString(line)
	rest := line[size:]

	i := strings.IndexByte(rest, '[')
	if i < 0 {
		return fromage.Entry{}, errMissingOpenBracket
	}
	rest = rest[i+1:]

	i = strings.IndexByte(rest, ']')
	if i < 0 {
		return fromage.Entry{}, errMissingCloseBracket
	}
	id, err := strconv.ParseUint(rest[:i], 10, 64)
	if err != nil {
		return fromage.Entry{}, errBadID
	}
	rest = rest[i+1:]

	i = strings.IndexByte(rest, '"')
	if i < 0 {
		return fromage.Entry{}, errMissingOpenQuote
	}
	rest = rest[i+1:]

	i = strings.IndexByte(rest, '"')
	if i < 0 {
		return fromage.Entry{}, errMissingCloseQuote
	}
	val := rest[:i]

	switch tag {
	case 's':
		return fromage.Str(id, val), nil
	case 'm':
		return fromage.Msg(id, val), nil
	default:
		return fromage.Entry{}, errUnknownTag
	}
}
