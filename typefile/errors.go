package typefile

import (
	"fmt"
	"strings"
)

// LoadError is returned for any datatype file that is missing, unreadable
// or malformed. Slot and position are filled in when they are known.
type LoadError struct {
	File   string
	Slot   string
	Line   int
	Column int
	Err    error
}

func (e *LoadError) Error() string {

	var sb strings.Builder
	sb.WriteString("datatype file ")
	sb.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&sb, ":%d:%d", e.Line, e.Column)
	}
	if e.Slot != "" {
		fmt.Fprintf(&sb, ": slot %s", e.Slot)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
