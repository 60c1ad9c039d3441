// Field-level comparison operators.
//
// Operator is a closed variant: exactly one kind per value, built by the
// Eq, Lt, Gt and In constructors. The zero Operator has no kind and
// matches nothing, which is also how unrecognized operator objects in
// the JSON query syntax behave (fail closed rather than error).
package shelf

import (
	"reflect"

	json "github.com/goccy/go-json"
)

type opKind int

const (
	opNone opKind = iota
	opEq
	opLt
	opGt
	opIn
)

// Operator tests a single field value.
type Operator struct {
	kind  opKind
	value any
	set   []any
}

// Eq matches values strictly equal to v. Numbers compare by value across
// int/float representations.
func Eq(v any) Operator { return Operator{kind: opEq, value: v} }

// Lt matches numeric values less than v. Non-numeric field values never
// match.
func Lt(v any) Operator { return Operator{kind: opLt, value: v} }

// Gt matches numeric values greater than v. Non-numeric field values
// never match.
func Gt(v any) Operator { return Operator{kind: opGt, value: v} }

// In matches values equal to any of the candidates.
func In(vs ...any) Operator { return Operator{kind: opIn, set: vs} }

// match reports whether a field value passes the operator.
func (op Operator) match(v any) bool {
	switch op.kind {
	case opEq:
		return equate(v, op.value)
	case opLt:
		a, aok := number(v)
		b, bok := number(op.value)
		return aok && bok && a < b
	case opGt:
		a, aok := number(v)
		b, bok := number(op.value)
		return aok && bok && a > b
	case opIn:
		for _, c := range op.set {
			if equate(v, c) {
				return true
			}
		}
	}
	return false
}

// parseOperator resolves a JSON operator object. When more than one
// recognized key is present the first in priority order wins: $eq, $lt,
// $gt, $in. An object with no recognized key (or a malformed $in) yields
// the zero Operator.
func parseOperator(raw map[string]any) Operator {
	if v, ok := raw["$eq"]; ok {
		return Eq(v)
	}
	if v, ok := raw["$lt"]; ok {
		return Lt(v)
	}
	if v, ok := raw["$gt"]; ok {
		return Gt(v)
	}
	if v, ok := raw["$in"]; ok {
		if vs, ok := v.([]any); ok {
			return In(vs...)
		}
	}
	return Operator{}
}

// number coerces the numeric types produced by JSON decoding and by
// literal Go values into float64.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// equate is strict equality with one concession: numbers compare by
// value regardless of Go representation, since a decoded document holds
// float64 where the caller may have supplied int.
func equate(a, b any) bool {
	if af, ok := number(a); ok {
		bf, bok := number(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}
