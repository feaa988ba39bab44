package typemap

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexrjones/ddltypes/typefile"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ErrUnknownType is wrapped by Classify when no table lists a type.
var ErrUnknownType = errors.New("unknown column type")

// Classifier maps column types to categories. Aliases from a datatype file
// take precedence over the built-in tables; within one table the first
// category in canonical order wins.
type Classifier struct {
	extended *typefile.Registry
}

// NewClassifier returns a Classifier that consults extended before the
// built-in tables. extended may be nil.
func NewClassifier(extended *typefile.Registry) *Classifier {
	if extended == nil {
		extended = &typefile.Registry{}
	}
	return &Classifier{extended: extended}
}

// Extended is the datatype file registry the classifier was built with.
func (c *Classifier) Extended() *typefile.Registry {
	return c.extended
}

// Classify resolves sqlType, trying it verbatim and then in normalised
// form against each table. Unresolvable types wrap ErrUnknownType.
func (c *Classifier) Classify(sqlType string) (typefile.Category, error) {

	names := lo.Uniq([]string{strings.TrimSpace(sqlType), NormalizeTypeName(sqlType)})
	for _, name := range names {
		if cat, ok := c.extended.Find(name); ok {
			log.Debug().Str("type", sqlType).Stringer("category", cat).Msg("type resolved by datatype file")
			return cat, nil
		}
	}
	for _, name := range names {
		if cat, ok := Builtin.Find(name); ok {
			return cat, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownType, sqlType)
}

var (
	typeArgs   = regexp.MustCompile(`\s*\([^)]*\)`)
	modifiers  = []string{"signed", "unsigned", "zerofill"}
	schemaPart = "pg_catalog."
)

// NormalizeTypeName lowercases a column type and strips what doesn't
// change its category: the pg_catalog qualifier, length/precision
// arguments and MySQL sign modifiers. "INT(11) UNSIGNED" becomes "int",
// "timestamp(3) with time zone" becomes "timestamp with time zone".
func NormalizeTypeName(s string) string {

	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, schemaPart)
	s = typeArgs.ReplaceAllString(s, " ")
	return strings.Join(lo.Without(strings.Fields(s), modifiers...), " ")
}
