// Typed access to a store.
//
// Collection[T] wraps a Store with a caller-supplied record shape. The
// untyped layer looks fields up by name and silently mismatches on a
// typo, so the collection validates field names once at the boundary:
// the full-text set at construction, and query/sort/projection fields
// per call — against T's JSON schema rather than per-document at
// evaluation time.
package shelf

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

// Collection is a typed facade over a Store.
type Collection[T any] struct {
	db     *Store
	fields map[string]bool
}

// NewCollection validates the store's full-text field set against T and
// returns a typed facade. When T is not a struct (a map shape, say),
// field validation is disabled and the collection behaves like the
// untyped store.
func NewCollection[T any](db *Store) (*Collection[T], error) {
	fields := fieldNames[T]()
	if fields != nil {
		for _, f := range db.config.FullText {
			if !fields[f] {
				return nil, fmt.Errorf("%w: full-text field %q", ErrUnknownField, f)
			}
		}
	}
	return &Collection[T]{db: db, fields: fields}, nil
}

// fieldNames derives T's JSON property names via schema reflection.
// Returns nil when T has no fixed property set.
func fieldNames[T any]() map[string]bool {
	var zero T
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&zero)
	if schema.Properties == nil || schema.Properties.Len() == 0 {
		return nil
	}
	fields := make(map[string]bool, schema.Properties.Len())
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		fields[pair.Key] = true
	}
	return fields
}

// Insert stores one typed record.
func (c *Collection[T]) Insert(record T) error {
	return c.db.Insert(record)
}

// Find returns matching records decoded into T. Projected-away fields
// decode to their zero values.
func (c *Collection[T]) Find(p Predicate, opts *FindOptions) ([]T, error) {
	if err := c.check(p, opts); err != nil {
		return nil, err
	}

	docs, err := c.db.Find(p, opts)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(docs))
	for i, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Count reports how many live records match the predicate.
func (c *Collection[T]) Count(p Predicate) (int, error) {
	if err := c.checkPredicate(p); err != nil {
		return 0, err
	}
	return c.db.Count(p)
}

// Delete tombstones matching records and returns the count.
func (c *Collection[T]) Delete(p Predicate) (int, error) {
	if err := c.checkPredicate(p); err != nil {
		return 0, err
	}
	return c.db.Delete(p)
}

// check validates every field name mentioned by the predicate and the
// options against T.
func (c *Collection[T]) check(p Predicate, opts *FindOptions) error {
	if err := c.checkPredicate(p); err != nil {
		return err
	}
	if opts == nil || c.fields == nil {
		return nil
	}
	for _, key := range opts.Sort {
		if !c.fields[key.Field] {
			return fmt.Errorf("%w: sort field %q", ErrUnknownField, key.Field)
		}
	}
	for field := range opts.Projection {
		if !c.fields[field] {
			return fmt.Errorf("%w: projection field %q", ErrUnknownField, field)
		}
	}
	return nil
}

// checkPredicate walks the tree checking query field names.
func (c *Collection[T]) checkPredicate(p Predicate) error {
	if c.fields == nil {
		return nil
	}
	for field := range p.query {
		if !c.fields[field] {
			return fmt.Errorf("%w: query field %q", ErrUnknownField, field)
		}
	}
	for _, kid := range p.kids {
		if err := c.checkPredicate(kid); err != nil {
			return err
		}
	}
	return nil
}
