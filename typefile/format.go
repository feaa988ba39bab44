package typefile

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

// WriteTo writes r in datatype file syntax. Every slot is written, empty
// ones included, so the output reloads to the same registry.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {

	var total int64
	for _, c := range Categories() {
		n, err := io.WriteString(w, formatSlot(c, r.Slot(c)))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Marshal returns r in datatype file syntax.
func (r *Registry) Marshal() []byte {

	var buf bytes.Buffer
	_, _ = r.WriteTo(&buf)
	return buf.Bytes()
}

func formatSlot(c Category, tokens []string) string {

	var sb strings.Builder
	sb.WriteString(c.FileName())
	sb.WriteString(" = [")
	for i, t := range tokens {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quote(t))
	}
	sb.WriteString("]\n")
	return sb.String()
}

// quote is strconv.Quote except that bytes outside valid UTF-8 are written
// raw: a \x escape would reload as a code point, not the original byte.
func quote(s string) string {

	if utf8.ValidString(s) {
		return strconv.Quote(s)
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			sb.WriteByte(s[0])
		} else {
			q := strconv.Quote(s[:size])
			sb.WriteString(q[1 : len(q)-1])
		}
		s = s[size:]
	}
	sb.WriteByte('"')
	return sb.String()
}
