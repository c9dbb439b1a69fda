package composer

import (
	"fmt"
	"io"

	"fromage/internal/fromage"
	"fromage/internal/parser"
)

// Line terminators for ATools output.
const (
	CRLF = "\r\n"
	LF   = "\n"
)

// AToolsComposer renders entries as ATools lines.
type AToolsComposer struct {
	// LineEnding terminates every line. Defaults to CRLF.
	LineEnding string
	// OnSkip is called for each input line the parser rejected.
	OnSkip SkipFunc
}

// Compose writes one line per entry pulled from p.
func (c AToolsComposer) Compose(w io.Writer, p parser.Process) (Stats, error) {
	eol := c.LineEnding
	if eol == "" {
		eol = CRLF
	}

	return drain(p, c.OnSkip, func(e fromage.Entry) error {
		_, err := io.WriteString(w, formatATools(e)+eol)
		return err
	})
}

func formatATools(e fromage.Entry) string {
	prefix := ""
	if e.Ignored {
		prefix = ";"
	}

	switch e.Kind {
	case fromage.KindComment:
		return "; " + e.Text
	case fromage.KindStr:
		return fmt.Sprintf(`%ss[%d] = "%s"`, prefix, e.ID, e.Text)
	case fromage.KindMsg:
		return fmt.Sprintf(`%sm[%d] = "%s"`, prefix, e.ID, e.Text)
	default:
		return ""
	}
}
