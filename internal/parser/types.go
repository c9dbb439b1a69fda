package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"fromage/internal/fromage"
)

// maxLineSize bounds a single input line. Longer lines surface as I/O errors.
const maxLineSize = 4 * 1024 * 1024

// ErrBadTranslationColumn is returned when a CSV header has no usable
// translation column.
var ErrBadTranslationColumn = errors.New("bad translation column")

// Process is a lazy, forward-only sequence of entries, one per input line.
//
// Next returns io.EOF once the input is exhausted. A *LineError means only the
// current line was rejected and Next may be called again for the following
// line. Any other error comes from the underlying reader and is fatal.
type Process interface {
	Next() (fromage.Entry, error)
}

// LineError describes an input line that could not be parsed.
type LineError struct {
	// Line is the 1-based line number in the input.
	Line int
	// Text is the whole offending line.
	Text string
	// Err is the reason the line was rejected.
	Err error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("bad line %d: %s", e.Line, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

// IsLineError reports whether err only rejects a single line.
func IsLineError(err error) bool {
	var le *LineError
	return errors.As(err, &le)
}

// lineSource hands out input lines without their terminators, counting them.
type lineSource struct {
	scanner *bufio.Scanner
	n       int
}

func newLineSource(r io.Reader) *lineSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineSource{scanner: scanner}
}

func (s *lineSource) next() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", fmt.Errorf("read line %d: %w", s.n+1, err)
		}
		return "", io.EOF
	}
	s.n++
	return s.scanner.Text(), nil
}

func (s *lineSource) reject(line string, err error) *LineError {
	return &LineError{Line: s.n, Text: line, Err: err}
}
