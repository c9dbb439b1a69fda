package format

import (
	"errors"
	"fmt"
	"strings"
)

// Format is a supported resource file format.
type Format int

const (
	ATools Format = iota + 1
	CSV
)

// ErrUnknownFormat is returned by Parse for unsupported names.
var ErrUnknownFormat = errors.New("invalid format name; available formats are: atools, csv")

// Parse resolves a format name, ignoring case.
func Parse(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "atools":
		return ATools, nil
	case "csv":
		return CSV, nil
	default:
		return 0, fmt.Errorf("%w (got %q)", ErrUnknownFormat, name)
	}
}

func (f Format) String() string {
	switch f {
	case ATools:
		return "atools"
	case CSV:
		return "csv"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext is the file extension used for the format in batch mode.
func (f Format) Ext() string {
	switch f {
	case ATools:
		return ".txt"
	case CSV:
		return ".csv"
	default:
		return ""
	}
}

// Set implements pflag.Value so a Format can back a command-line flag.
func (f *Format) Set(name string) error {
	v, err := Parse(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }
