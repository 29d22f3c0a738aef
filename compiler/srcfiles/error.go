package srcfiles

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorList is a list of Errors.
type ErrorList []*Error

// Append appends an error located at [pos, end) of list to e.
func (e *ErrorList) Append(list *List, err error, pos, end int) {
	*e = append(*e, &Error{Err: err, Pos: pos, End: end, list: list})
}

// Bind points errors that were located elsewhere back at list.
func (e ErrorList) Bind(list *List) {
	for i := range e {
		e[i].list = list
	}
}

// Error concatenates the errors in e with a newline between each.
func (e ErrorList) Error() string {
	var b strings.Builder
	for i, err := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the underlying errors to errors.Is and errors.As.
func (e ErrorList) Unwrap() []error {
	out := make([]error, len(e))
	for i, err := range e {
		out[i] = err
	}
	return out
}

// Error attaches a source location to an error.
type Error struct {
	Err  error
	Pos  int
	End  int
	list *List
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	if e.list == nil || e.Pos < 0 || len(e.list.Files) == 0 {
		return e.Err.Error()
	}
	file := e.list.FileOf(e.Pos)
	start := file.Position(e.Pos)
	end := file.Position(e.End - 1)
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if file.Name != "" {
		fmt.Fprintf(&b, " in %s", file.Name)
	}
	line := file.LineOfPos(e.list.Text, e.Pos)
	fmt.Fprintf(&b, " at line %d, column %d:\n%s\n", start.Line, start.Column, line)
	if e.End > e.Pos && end.IsValid() {
		formatSpanError(&b, line, start, end)
	} else {
		formatPointError(&b, start)
	}
	return b.String()
}

// Position returns the line and column of the error's start.
func (e *Error) Position() Position {
	if e.list == nil || e.Pos < 0 || len(e.list.Files) == 0 {
		return Position{-1, -1, -1, -1}
	}
	return e.list.FileOf(e.Pos).Position(e.Pos)
}

// Errorf returns an unlocated Error.
func Errorf(format string, args ...any) *Error {
	return &Error{Err: fmt.Errorf(format, args...), Pos: -1, End: -1}
}

// AsError finds the first located error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func formatSpanError(b *strings.Builder, line string, start, end Position) {
	b.WriteString(strings.Repeat(" ", start.Column-1))
	n := end.Column - start.Column + 1
	if start.Line != end.Line {
		n = len(line) - start.Column + 1
	}
	b.WriteString(strings.Repeat("~", n))
}

func formatPointError(b *strings.Builder, start Position) {
	col := start.Column - 1
	for k := range col {
		if k >= col-4 && k != col-1 {
			b.WriteByte('=')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString("^ ===")
}
