package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hasancagrigungor/ravla/internal/domain/frame"
)

// ErrMissingData is returned when a report is requested before any upload.
var ErrMissingData = errors.New("no data uploaded yet")

// UnmappableFieldError reports required fields that have no alias match and
// no explicit binding. It is a soft failure: the report cannot run, the
// session stays usable.
type UnmappableFieldError struct {
	Fields []string
}

func (e *UnmappableFieldError) Error() string {
	return fmt.Sprintf("required fields cannot be mapped: %s", strings.Join(e.Fields, ", "))
}

// Resolve renames the first matching alternate of each canonical field to the
// canonical name. With keepUnmatched=false only canonical columns survive, in
// alias-table order; with keepUnmatched=true every original column is kept so
// platform-specific fields stay available downstream.
//
// The returned map records canonical field -> original header for the columns
// that matched. A file where it is empty contributed nothing usable.
func Resolve(f *frame.Frame, aliases AliasTable, keepUnmatched bool) (*frame.Frame, map[string]string) {
	rename := make(map[string]string)
	matched := make(map[string]string)
	taken := make(map[string]bool)

	for _, fa := range aliases {
		for _, alt := range fa.Alternates {
			if taken[alt] || !f.Has(alt) {
				continue
			}
			rename[alt] = fa.Field
			matched[fa.Field] = alt
			taken[alt] = true
			break // first applicable alternate wins, later ones stay untouched
		}
	}

	out := f.Clone()
	out.Rename(rename)

	if !keepUnmatched {
		order := make([]string, 0, len(matched))
		for _, fa := range aliases {
			if _, ok := matched[fa.Field]; ok {
				order = append(order, fa.Field)
			}
		}
		out = out.Select(order)
	}
	return out, matched
}

// Bindings holds the caller-supplied column assignments for one report page:
// required field -> existing column name. An empty value means the caller was
// asked and declined, so the prompt is not repeated.
type Bindings map[string]string

// Mapping records how each required field of a page was satisfied:
// field -> resolved column name, "" when unbound.
type Mapping map[string]string

// PrepareView projects a raw table for a report page with the given required
// fields. Fields already present pass through; fields covered by a binding
// get an alias column added with the bound column's values; the rest are
// reported in missing and left out of the view. The caller decides whether
// missing fields block the report.
func PrepareView(raw *frame.Frame, required []string, bindings Bindings) (*frame.Frame, Mapping, []string, error) {
	if raw == nil {
		return nil, nil, nil, ErrMissingData
	}

	view := raw.Clone()
	mapping := make(Mapping, len(required))
	var missing []string

	for _, field := range required {
		switch {
		case raw.Has(field):
			mapping[field] = field
		case bindings[field] != "" && raw.Has(bindings[field]):
			bound := bindings[field]
			mapping[field] = bound
			if bound != field {
				view.AppendColumn(field, raw.Column(bound))
			}
		default:
			mapping[field] = ""
			missing = append(missing, field)
		}
	}

	return view, mapping, missing, nil
}
