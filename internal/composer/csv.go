package composer

import (
	"fmt"
	"io"

	"fromage/internal/fromage"
	"fromage/internal/parser"
)

// commentID fills the ID column of comment rows.
const commentID = "###"

// CSVComposer renders entries as KIND,ID,ORIGINAL rows.
type CSVComposer struct {
	// Sep separates columns.
	Sep rune
	// OnSkip is called for each input line the parser rejected.
	OnSkip SkipFunc
}

// Compose writes the header followed by one row per entry pulled from p.
// The first occurrence of a string id is written as "str"; later ones are
// written as "(str)". Message ids are never deduplicated.
func (c CSVComposer) Compose(w io.Writer, p parser.Process) (Stats, error) {
	if _, err := fmt.Fprintf(w, "KIND%cID%cORIGINAL\n", c.Sep, c.Sep); err != nil {
		return Stats{}, fmt.Errorf("write CSV header: %w", err)
	}

	seen := make(map[uint64]struct{})

	return drain(p, c.OnSkip, func(e fromage.Entry) error {
		var err error
		switch e.Kind {
		case fromage.KindComment:
			_, err = fmt.Fprintf(w, "com%c%s%c\"%s\"\n", c.Sep, commentID, c.Sep, e.Text)
		case fromage.KindStr:
			kind := "str"
			if _, dup := seen[e.ID]; dup {
				kind = "(str)"
			} else {
				seen[e.ID] = struct{}{}
			}
			_, err = fmt.Fprintf(w, "%s%c%d%c\"%s\"\n", kind, c.Sep, e.ID, c.Sep, e.Text)
		case fromage.KindMsg:
			_, err = fmt.Fprintf(w, "msg%c%d%c\"%s\"\n", c.Sep, e.ID, c.Sep, e.Text)
		default:
			_, err = io.WriteString(w, "\n")
		}
		return err
	})
}
