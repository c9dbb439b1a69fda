package convert

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/transform"

	"fromage/internal/composer"
	"fromage/internal/format"
	"fromage/internal/parser"
)

var (
	// ErrUnsupportedConversion rejects format pairs other than ATools to CSV
	// and CSV to ATools.
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	// ErrSameFile rejects converting a file onto itself.
	ErrSameFile = errors.New("input file can't be the same as output file")
	// ErrBadSeparator rejects separators that would break line or quote handling.
	ErrBadSeparator = errors.New("invalid CSV separator")
)

// Options selects the parser/composer pair and their settings.
type Options struct {
	Input  format.Format
	Output format.Format
	// Separator is the CSV column separator.
	Separator rune
	// TranslationColumn names the CSV column read when parsing CSV.
	TranslationColumn string
	// LineEnding terminates ATools output lines.
	LineEnding string
	// OnSkip receives every rejected input line.
	OnSkip composer.SkipFunc
}

// Validate checks the static configuration before any input is read.
func (o Options) Validate() error {
	if err := CheckSeparator(o.Separator); err != nil {
		return err
	}

	switch {
	case o.Input == format.ATools && o.Output == format.CSV:
	case o.Input == format.CSV && o.Output == format.ATools:
	default:
		return fmt.Errorf("%w: %s => %s", ErrUnsupportedConversion, o.Input, o.Output)
	}

	if o.LineEnding != "" && o.LineEnding != composer.CRLF && o.LineEnding != composer.LF {
		return fmt.Errorf("invalid line ending %q", o.LineEnding)
	}
	return nil
}

// CheckSeparator rejects separators that would break line or quote handling.
// '#' is refused because it would run into the "###" comment ID.
func CheckSeparator(sep rune) error {
	switch sep {
	case 0, '"', '#', '\n', '\r', utf8.RuneError:
		return fmt.Errorf("%w: %q", ErrBadSeparator, sep)
	}
	return nil
}

// Run converts everything read from in and writes it to out in a single
// pass. Rejected lines are skipped and reported to opts.OnSkip.
func Run(in io.Reader, out io.Writer, opts Options) (composer.Stats, error) {
	if err := opts.Validate(); err != nil {
		return composer.Stats{}, err
	}

	p, err := NewParser(in, opts)
	if err != nil {
		return composer.Stats{}, err
	}
	return Compose(out, p, opts)
}

// NewParser starts the parsing process for opts.Input over in.
func NewParser(in io.Reader, opts Options) (parser.Process, error) {
	switch opts.Input {
	case format.ATools:
		return parser.NewAToolsParser(in), nil
	case format.CSV:
		p, err := parser.NewCSVParser(in, opts.Separator, opts.TranslationColumn)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("separator", string(opts.Separator)).
			Str("column", opts.TranslationColumn).
			Int("index", p.Column()).
			Msg("CSV parser ready")
		return p, nil
	default:
		return nil, fmt.Errorf("%w: input format %s", ErrUnsupportedConversion, opts.Input)
	}
}

// Compose renders every entry of p to out in opts.Output.
func Compose(out io.Writer, p parser.Process, opts Options) (composer.Stats, error) {
	switch opts.Output {
	case format.ATools:
		return composer.AToolsComposer{LineEnding: opts.LineEnding, OnSkip: opts.OnSkip}.Compose(out, p)
	case format.CSV:
		return composer.CSVComposer{Sep: opts.Separator, OnSkip: opts.OnSkip}.Compose(out, p)
	default:
		return composer.Stats{}, fmt.Errorf("%w: output format %s", ErrUnsupportedConversion, opts.Output)
	}
}

var utf8BOM = []byte("\ufeff")

// bomStripper drops a leading UTF-8 byte order mark and passes every other
// byte through unchanged.
type bomStripper struct {
	checked bool
}

func (t *bomStripper) Reset() { t.checked = false }

func (t *bomStripper) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	if !t.checked {
		if !atEOF && len(src) < len(utf8BOM) {
			if len(src) == 0 {
				return 0, 0, nil
			}
			if bytes.HasPrefix(utf8BOM, src) {
				return 0, 0, transform.ErrShortSrc
			}
		}
		if bytes.HasPrefix(src, utf8BOM) {
			nSrc = len(utf8BOM)
			src = src[len(utf8BOM):]
		}
		t.checked = true
	}

	n := copy(dst, src)
	if n < len(src) {
		err = transform.ErrShortDst
	}
	return n, nSrc + n, err
}

type inputFile struct {
	io.Reader
	f *os.File
}

func (i inputFile) Close() error { return i.f.Close() }

// OpenInput opens path for buffered reading with a leading UTF-8 byte order
// mark removed. No other decoding is applied.
func OpenInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r := transform.NewReader(bufio.NewReader(f), &bomStripper{})
	return inputFile{Reader: r, f: f}, nil
}

// Result reports one file conversion.
type Result struct {
	composer.Stats
	Elapsed time.Duration
}

// File converts inputPath into outputPath, creating or truncating the output.
// A leading byte order mark on the input is dropped. The output is left
// untouched when the input format cannot be read, such as a CSV header without
// the translation column.
func File(inputPath, outputPath string, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	same, err := samePath(inputPath, outputPath)
	if err != nil {
		return Result{}, err
	}
	if same {
		return Result{}, ErrSameFile
	}

	in, err := OpenInput(inputPath)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	start := time.Now()
	p, err := NewParser(in, opts)
	if err != nil {
		return Result{}, err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return Result{}, fmt.Errorf("create output: %w", err)
	}

	log.Info().
		Str("input", inputPath).
		Str("input_format", opts.Input.String()).
		Str("output", outputPath).
		Str("output_format", opts.Output.String()).
		Msg("Converting")

	w := bufio.NewWriter(out)

	stats, err := Compose(w, p, opts)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close output: %w", closeErr)
	}
	res := Result{Stats: stats, Elapsed: time.Since(start)}
	if err != nil {
		return res, err
	}

	log.Info().
		Int("entries", res.Entries).
		Int("skipped", res.Skipped).
		Int64("ms", res.Elapsed.Milliseconds()).
		Msgf("done in %dms", res.Elapsed.Milliseconds())

	return res, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolve input path: %w", err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolve output path: %w", err)
	}
	if absA == absB {
		return true, nil
	}

	// Different spellings of the same existing file.
	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA == nil && errB == nil {
		return os.SameFile(infoA, infoB), nil
	}
	return false, nil
}
