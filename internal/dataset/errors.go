package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumns is wrapped by a LoadError when the header lacks
	// one or more required columns.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrMalformedRow is wrapped by a LoadError when a row cannot be parsed
	// and the load runs with PolicyFail.
	ErrMalformedRow = errors.New("malformed row")
)

// LoadError reports why a dataset could not be loaded. No partial table is
// ever returned alongside it.
type LoadError struct {
	// Path is the source file, empty when loading from a reader.
	Path string

	// Line is the 1-based file line of a malformed row (the header is line 1).
	// Zero when the failure is not tied to a row.
	Line int

	// Column names the offending column of a malformed row.
	Column string

	// Missing lists absent required columns.
	Missing []string

	Err error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("load dataset")
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ": column %q", e.Column)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": %v [%s]", e.Err, strings.Join(e.Missing, ", "))
		return b.String()
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// rowError is the internal cause of a malformed row.
type rowError struct {
	column string
	err    error
}

func (e *rowError) Error() string {
	return fmt.Sprintf("%s: %v", e.column, e.err)
}

func (e *rowError) Unwrap() error {
	return e.err
}
