package fromage

import "fmt"

// Kind identifies what a single resource line holds.
type Kind int

const (
	// KindEmpty is a blank line.
	KindEmpty Kind = iota
	// KindComment is free-form comment text.
	KindComment
	// KindStr is a plain string resource.
	KindStr
	// KindMsg is a message resource. It has the same shape as KindStr but is
	// never interchangeable with it downstream.
	KindMsg
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindComment:
		return "comment"
	case KindStr:
		return "str"
	case KindMsg:
		return "msg"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry is the intermediate representation of one logical resource unit,
// shared by every parser and composer.
type Entry struct {
	// Kind selects which of the fields below are meaningful.
	Kind Kind
	// ID is the resource identifier of KindStr and KindMsg entries.
	ID uint64
	// Text is the comment text of KindComment or the value of KindStr/KindMsg.
	Text string
	// Ignored marks a resource present in the source but disabled.
	// It is always false for KindEmpty and KindComment.
	Ignored bool
}

func Empty() Entry { return Entry{Kind: KindEmpty} }

func Comment(text string) Entry { return Entry{Kind: KindComment, Text: text} }

func Str(id uint64, val string) Entry { return Entry{Kind: KindStr, ID: id, Text: val} }

func Msg(id uint64, val string) Entry { return Entry{Kind: KindMsg, ID: id, Text: val} }

// Ignore returns a copy of e marked as ignored. Only resource entries carry
// the flag, so Empty and Comment entries are returned unchanged.
func Ignore(e Entry) Entry {
	if e.IsResource() {
		e.Ignored = true
	}
	return e
}

// IsResource reports whether e is a string or message resource.
func (e Entry) IsResource() bool {
	return e.Kind == KindStr || e.Kind == KindMsg
}
