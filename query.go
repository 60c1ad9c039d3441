// Query and predicate tree evaluation.
//
// A Query is the field-to-operator layer; a Predicate combines queries
// with And, Or and Text nodes. Predicates compile to a single evaluator
// closure so Text patterns are built once per operation, not once per
// document.
package shelf

import (
	"fmt"
	"regexp"

	json "github.com/goccy/go-json"
)

// Query maps field names to operators. Every named field must pass its
// operator for a document to match; an empty Query matches everything.
// Document fields not named in the query are ignored.
type Query map[string]Operator

// match reports whether doc satisfies every operator in the query.
func (q Query) match(doc Document) bool {
	for field, op := range q {
		if !op.match(doc[field]) {
			return false
		}
	}
	return true
}

type predKind int

const (
	predQuery predKind = iota
	predAnd
	predOr
	predText
)

// Predicate is the recursive filter evaluated by Find, Count and Delete.
// It is a closed variant built by And, Or, Text and Where. The zero
// Predicate is Where(nil): an empty query matching every document.
type Predicate struct {
	kind  predKind
	kids  []Predicate
	query Query
	text  string
}

// And matches when every child matches. And() with no children matches
// everything.
func And(ps ...Predicate) Predicate { return Predicate{kind: predAnd, kids: ps} }

// Or matches when any child matches. Or() with no children matches
// nothing.
func Or(ps ...Predicate) Predicate { return Predicate{kind: predOr, kids: ps} }

// Text matches when s appears as a whole word, case-insensitively, in
// any of the store's configured full-text fields. s is spliced verbatim
// into the compiled pattern, so regex metacharacters in untrusted input
// must be sanitized by the caller.
func Text(s string) Predicate { return Predicate{kind: predText, text: s} }

// Where wraps a Query as a Predicate leaf.
func Where(q Query) Predicate { return Predicate{kind: predQuery, query: q} }

// compile turns a predicate into an evaluator closure.
func (p Predicate) compile(fulltext []string) (func(Document) bool, error) {
	switch p.kind {
	case predAnd:
		kids, err := compileAll(p.kids, fulltext)
		if err != nil {
			return nil, err
		}
		return func(doc Document) bool {
			for _, kid := range kids {
				if !kid(doc) {
					return false
				}
			}
			return true
		}, nil
	case predOr:
		kids, err := compileAll(p.kids, fulltext)
		if err != nil {
			return nil, err
		}
		return func(doc Document) bool {
			for _, kid := range kids {
				if kid(doc) {
					return true
				}
			}
			return false
		}, nil
	case predText:
		re, err := regexp.Compile(`(?i)\b` + p.text + `\b`)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		return func(doc Document) bool {
			for _, field := range fulltext {
				v, ok := doc[field]
				if !ok {
					continue
				}
				if re.MatchString(stringify(v)) {
					return true
				}
			}
			return false
		}, nil
	default:
		q := p.query
		return q.match, nil
	}
}

func compileAll(ps []Predicate, fulltext []string) ([]func(Document) bool, error) {
	kids := make([]func(Document) bool, len(ps))
	for i, p := range ps {
		kid, err := p.compile(fulltext)
		if err != nil {
			return nil, err
		}
		kids[i] = kid
	}
	return kids, nil
}

// stringify renders a field value for text search. Strings pass through
// unchanged; everything else takes its default formatting.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ParsePredicate decodes the JSON query syntax into a Predicate:
//
//	{"$and":[...]}
//	{"$or":[...]}
//	{"$text":"word"}
//	{"field":{"$eq":1},"other":{"$in":[2,3]}}
//
// A node carrying more than one combinator resolves in fixed priority
// order: $and, $or, $text, then plain query. Operator objects with no
// recognized key become fail-closed operators that match nothing, while
// structurally malformed nodes (a non-array combinator, a non-string
// $text, a non-object operator) are reported as ErrInvalidQuery.
func ParsePredicate(data []byte) (Predicate, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Predicate{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return parsePredicate(raw)
}

func parsePredicate(raw map[string]any) (Predicate, error) {
	if v, ok := raw["$and"]; ok {
		return parseCombinator(v, And)
	}
	if v, ok := raw["$or"]; ok {
		return parseCombinator(v, Or)
	}
	if v, ok := raw["$text"]; ok {
		s, ok := v.(string)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: $text wants a string", ErrInvalidQuery)
		}
		return Text(s), nil
	}

	q := make(Query, len(raw))
	for field, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: operator for %q is not an object", ErrInvalidQuery, field)
		}
		q[field] = parseOperator(obj)
	}
	return Where(q), nil
}

func parseCombinator(v any, combine func(...Predicate) Predicate) (Predicate, error) {
	list, ok := v.([]any)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: combinator wants an array", ErrInvalidQuery)
	}
	kids := make([]Predicate, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: combinator child is not an object", ErrInvalidQuery)
		}
		kid, err := parsePredicate(obj)
		if err != nil {
			return Predicate{}, err
		}
		kids = append(kids, kid)
	}
	return combine(kids...), nil
}
