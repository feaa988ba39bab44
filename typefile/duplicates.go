package typefile

import (
	"fmt"
	"strings"

	"github.com/alexrjones/ddltypes/collections"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

// DuplicateError reports a token listed under more than one category.
type DuplicateError struct {
	Token      string
	Categories []Category
}

func (e *DuplicateError) Error() string {
	names := lo.Map(e.Categories, func(c Category, _ int) string {
		return c.String()
	})
	return fmt.Sprintf("token %q is listed under %s", e.Token, strings.Join(names, ", "))
}

// Duplicates returns a *multierror.Error holding one *DuplicateError per
// token that appears in more than one slot, or nil. Tokens are compared
// ignoring case and reported in sorted order.
func (r *Registry) Duplicates() error {

	byToken := collections.NewMultimap[string, Category]()
	spelling := make(map[string]string)
	for _, c := range Categories() {
		for _, tok := range r.Slot(c) {
			key := strings.ToLower(tok)
			if _, ok := spelling[key]; !ok {
				spelling[key] = tok
			}
			byToken.AddUnique(key, c)
		}
	}

	var result *multierror.Error
	for _, key := range byToken.Keys() {
		cats, _ := byToken.Get(key)
		if len(cats) < 2 {
			continue
		}
		result = multierror.Append(result, &DuplicateError{Token: spelling[key], Categories: cats})
	}
	return result.ErrorOrNil()
}
