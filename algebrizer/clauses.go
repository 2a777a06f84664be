// Package algebrizer turns parsed query arguments into type-checked
// values.  ConjoiningClauses accumulates per-variable constraints while
// a query is compiled; the conversion in convert.go resolves each
// argument against those constraints, producing either a TypedValue or
// a structured reason why the clause can never match.
package algebrizer

import (
	"github.com/pombredanne/mentat"
	"github.com/pombredanne/mentat/query"
)

// ConjoiningClauses tracks, for one query being algebrized: the set of
// types each variable is known to admit, which variables are declared
// query inputs, and the values bound to inputs before planning.  It is
// owned by a single algebrization pass and is not safe for concurrent
// mutation.
type ConjoiningClauses struct {
	knownTypes    map[query.Variable]mentat.ValueTypeSet
	inputVars     map[query.Variable]struct{}
	valueBindings map[query.Variable]mentat.TypedValue

	// emptyBecause holds the first reason this clause set was proven
	// unsatisfiable, if any.
	emptyBecause EmptyBecause
}

func NewConjoiningClauses() *ConjoiningClauses {
	return &ConjoiningClauses{
		knownTypes:    make(map[query.Variable]mentat.ValueTypeSet),
		inputVars:     make(map[query.Variable]struct{}),
		valueBindings: make(map[query.Variable]mentat.TypedValue),
	}
}

// DeclareInput marks v as a query input (an `:in` parameter).
func (cc *ConjoiningClauses) DeclareInput(v query.Variable) {
	cc.inputVars[v] = struct{}{}
}

// IsInputVariable reports whether v was declared as a query input.
func (cc *ConjoiningClauses) IsInputVariable(v query.Variable) bool {
	_, ok := cc.inputVars[v]
	return ok
}

// BindValue supplies the value for an input variable and narrows its
// admissible types to the value's type.
func (cc *ConjoiningClauses) BindValue(v query.Variable, value mentat.TypedValue) {
	cc.valueBindings[v] = value
	cc.ConstrainVarToTypes(v, mentat.OfOne(value.Type()))
}

// BoundValue returns the value bound to v, if any.
func (cc *ConjoiningClauses) BoundValue(v query.Variable) (mentat.TypedValue, bool) {
	value, ok := cc.valueBindings[v]
	return value, ok
}

// KnownTypes returns the set of types currently admissible for v.  A
// variable with no recorded constraint admits any type.
func (cc *ConjoiningClauses) KnownTypes(v query.Variable) mentat.ValueTypeSet {
	if types, ok := cc.knownTypes[v]; ok {
		return types
	}
	return mentat.AnyValueType
}

// KnownType returns the single type v is known to have, once narrowing
// has reduced its admissible set to exactly one member.
func (cc *ConjoiningClauses) KnownType(v query.Variable) (mentat.ValueType, bool) {
	return cc.KnownTypes(v).Exemplar()
}

// ConstrainVarToTypes intersects v's admissible types with types.  If
// the intersection is empty the whole clause set is marked known-empty.
func (cc *ConjoiningClauses) ConstrainVarToTypes(v query.Variable, types mentat.ValueTypeSet) {
	narrowed := cc.KnownTypes(v).Intersect(types)
	cc.knownTypes[v] = narrowed
	if narrowed.IsEmpty() {
		cc.MarkKnownEmpty(NoValidTypes{Var: v})
	}
}

// MarkKnownEmpty records that this clause set can never match.  The
// first reason wins; later reasons are redundant.
func (cc *ConjoiningClauses) MarkKnownEmpty(reason EmptyBecause) {
	if cc.emptyBecause == nil {
		cc.emptyBecause = reason
	}
}

// IsKnownEmpty reports whether the clause set has been proven
// unsatisfiable.
func (cc *ConjoiningClauses) IsKnownEmpty() bool {
	return cc.emptyBecause != nil
}

// EmptyReason returns the first recorded emptiness reason, or nil.
func (cc *ConjoiningClauses) EmptyReason() EmptyBecause {
	return cc.emptyBecause
}
