package typefile

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Registry holds the type name aliases of a datatype file, one ordered
// slot per category. A loaded Registry is never mutated and may be shared
// between goroutines.
type Registry struct {
	Boolean       []string
	Integer       []string
	Serial        []string
	FloatingPoint []string
	Text          []string
	Blob          []string
	Date          []string
	DateTime      []string
	Time          []string

	// defined records which slots the source file assigned.
	defined [numCategories]bool
}

func (r *Registry) slotPtr(c Category) *[]string {

	switch c {
	case Boolean:
		return &r.Boolean
	case Integer:
		return &r.Integer
	case Serial:
		return &r.Serial
	case FloatingPoint:
		return &r.FloatingPoint
	case Text:
		return &r.Text
	case Blob:
		return &r.Blob
	case Date:
		return &r.Date
	case DateTime:
		return &r.DateTime
	case Time:
		return &r.Time
	}
	panic(fmt.Errorf("invalid category %d", int(c)))
}

// Slot returns the tokens of category c in file order. A slot the file
// didn't define is empty.
func (r *Registry) Slot(c Category) []string {
	return *r.slotPtr(c)
}

// Defined reports whether the source file assigned category c.
func (r *Registry) Defined(c Category) bool {
	r.slotPtr(c) // validates c
	return r.defined[c]
}

// Lookup reports whether token is one of the aliases of category c,
// ignoring case.
func (r *Registry) Lookup(c Category, token string) bool {
	return lo.ContainsBy(r.Slot(c), func(item string) bool {
		return strings.EqualFold(item, token)
	})
}

// Find returns the first category, in canonical order, that lists token.
func (r *Registry) Find(token string) (Category, bool) {
	for _, c := range Categories() {
		if r.Lookup(c, token) {
			return c, true
		}
	}
	return 0, false
}

// Len is the total number of tokens across all slots.
func (r *Registry) Len() int {
	n := 0
	for _, c := range Categories() {
		n += len(r.Slot(c))
	}
	return n
}
