package composer

import (
	"errors"
	"fmt"
	"io"

	"fromage/internal/fromage"
	"fromage/internal/parser"
)

// Stats summarizes one composing pass.
type Stats struct {
	// Entries is the number of entries written.
	Entries int
	// Skipped is the number of input lines the parser rejected.
	Skipped int
}

// SkipFunc receives every per-line parse failure. The line is not written.
type SkipFunc func(err error)

// drain pulls entries from p one at a time and hands each to write until the
// input is exhausted. Line errors are reported to onSkip; any other error
// from p or from write stops the pass.
func drain(p parser.Process, onSkip SkipFunc, write func(fromage.Entry) error) (Stats, error) {
	var stats Stats
	for {
		e, err := p.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if parser.IsLineError(err) {
			stats.Skipped++
			if onSkip != nil {
				onSkip(err)
			}
			continue
		}
		if err != nil {
			return stats, err
		}

		if err := write(e); err != nil {
			return stats, fmt.Errorf("write entry %d: %w", stats.Entries+1, err)
		}
		stats.Entries++
	}
}
