// Package mentat provides the shared value and type model used by the
// query algebrizer: the closed set of primitive value types, compact
// type sets for tracking per-variable type constraints, and the tagged
// TypedValue representation handed to the query compiler.
package mentat

import "strings"

// ValueType is one of the closed set of primitive types a value in the
// store may have.
type ValueType int

const (
	TypeRef ValueType = iota
	TypeLong
	TypeDouble
	TypeString
	TypeBoolean
	TypeInstant
	TypeUuid
	TypeKeyword

	numValueTypes
)

func (t ValueType) String() string {
	switch t {
	case TypeRef:
		return "ref"
	case TypeLong:
		return "long"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypeInstant:
		return "instant"
	case TypeUuid:
		return "uuid"
	case TypeKeyword:
		return "keyword"
	}
	return "unknown"
}

// ValueTypeByName maps the lowercase name of a value type (as produced
// by ValueType.String and as written in schema files) back to the type.
func ValueTypeByName(name string) (ValueType, bool) {
	for t := ValueType(0); t < numValueTypes; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// AccommodatesInteger reports whether the integer literal x can denote a
// value of type t without loss or reinterpretation.  Entids occupy the
// non-negative half of the int64 space, so only non-negative literals
// can be refs.
func (t ValueType) AccommodatesInteger(x int64) bool {
	switch t {
	case TypeRef:
		return x >= 0
	case TypeLong:
		return true
	case TypeBoolean:
		return x == 0 || x == 1
	default:
		return false
	}
}

// ValueTypeSet is an immutable set of ValueTypes, one bit per type.
// The zero value is the empty set, which means no type is admissible:
// a contradiction, not an absence of constraint.  AnyValueType is the
// unconstrained set.
type ValueTypeSet uint16

const (
	EmptyValueTypeSet ValueTypeSet = 0
	AnyValueType      ValueTypeSet = 1<<numValueTypes - 1
)

// OfOne returns the set containing exactly t.
func OfOne(t ValueType) ValueTypeSet {
	return 1 << t
}

// SetOf returns the set containing each of the given types.
func SetOf(types ...ValueType) ValueTypeSet {
	var s ValueTypeSet
	for _, t := range types {
		s |= OfOne(t)
	}
	return s
}

// OfLongs returns the two types an integer literal can denote.
func OfLongs() ValueTypeSet {
	return SetOf(TypeRef, TypeLong)
}

// OfKeywords returns the two types a symbolic literal can denote.
func OfKeywords() ValueTypeSet {
	return SetOf(TypeRef, TypeKeyword)
}

func (s ValueTypeSet) Contains(t ValueType) bool {
	return s&OfOne(t) != 0
}

func (s ValueTypeSet) Union(other ValueTypeSet) ValueTypeSet {
	return s | other
}

func (s ValueTypeSet) Intersect(other ValueTypeSet) ValueTypeSet {
	return s & other
}

func (s ValueTypeSet) IsEmpty() bool {
	return s == 0
}

// IsUnit reports whether the set contains exactly one type.
func (s ValueTypeSet) IsUnit() bool {
	return s != 0 && s&(s-1) == 0
}

// Exemplar returns the sole member of a unit set.
func (s ValueTypeSet) Exemplar() (ValueType, bool) {
	if !s.IsUnit() {
		return 0, false
	}
	for t := ValueType(0); t < numValueTypes; t++ {
		if s.Contains(t) {
			return t, true
		}
	}
	return 0, false
}

func (s ValueTypeSet) String() string {
	var names []string
	for t := ValueType(0); t < numValueTypes; t++ {
		if s.Contains(t) {
			names = append(names, t.String())
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}
