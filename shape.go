// Result shaping: sort and projection.
package shelf

import (
	"slices"
	"strings"
)

// Sort directions.
const (
	Asc  = 1
	Desc = -1
)

// SortKey orders results by one field.
type SortKey struct {
	Field string
	Dir   int // Asc or Desc
}

// FindOptions shape Find results. Sort applies one stable pass per key
// in slice order; because each pass is stable and later passes dominate
// ties from earlier ones, the last key is the primary sort and earlier
// keys act as tie-breakers. Projection keeps only fields whose flag is
// true.
type FindOptions struct {
	Sort       []SortKey
	Projection map[string]bool
}

// shape applies the sort passes and then the projection.
func shape(docs []Document, opts *FindOptions) []Document {
	if opts == nil {
		return docs
	}

	for _, key := range opts.Sort {
		applySort(docs, key)
	}

	if opts.Projection != nil {
		projected := make([]Document, len(docs))
		for i, doc := range docs {
			projected[i] = project(doc, opts.Projection)
		}
		return projected
	}
	return docs
}

// applySort runs one stable pass over docs for a single key.
func applySort(docs []Document, key SortKey) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		c := compareValues(a[key.Field], b[key.Field])
		if key.Dir < 0 {
			return -c
		}
		return c
	})
}

// compareValues orders two field values: numbers numerically, strings
// lexically. Mixed or unordered types compare as equal, so the stable
// sort preserves their incoming order.
func compareValues(a, b any) int {
	if af, aok := number(a); aok {
		if bf, bok := number(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	return 0
}

// project builds a partial document holding only the fields whose
// projection flag is true. Fields absent from the source document stay
// absent.
func project(doc Document, fields map[string]bool) Document {
	out := make(Document, len(fields))
	for field, keep := range fields {
		if !keep {
			continue
		}
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}
