package algebrizer

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pombredanne/mentat"
	"github.com/pombredanne/mentat/query"
)

// Catalog is the slice of the schema the conversion needs: resolving an
// ident to its entid.  Lookups must be read-only and idempotent within
// one algebrization pass.
type Catalog interface {
	LookupEntid(ident *mentat.Keyword) (int64, bool)
}

// ValueConversion is the outcome of converting one argument: either a
// resolved value or a structured reason the clause can never match.
// Impossible is an expected planning outcome, not an error; callers
// must branch on the variant before treating conversion as successful.
type ValueConversion interface {
	valueConversion()
}

// Val carries a successfully resolved value.
type Val struct {
	Value mentat.TypedValue
}

// Impossible carries the reason no value can satisfy the constraints.
type Impossible struct {
	Reason EmptyBecause
}

func (Val) valueConversion()        {}
func (Impossible) valueConversion() {}

// TypedValueFromArg converts arg to a TypedValue for binding to v.
// The conversion depends on, and can fail because of:
// - the types v is already known to admit, and
// - existing bindings when arg references another variable.
// knownTypes is read, never narrowed; acting on the result is the
// caller's job.
func (cc *ConjoiningClauses) TypedValueFromArg(catalog Catalog, v query.Variable, arg query.FnArg, knownTypes mentat.ValueTypeSet) (ValueConversion, error) {
	if knownTypes.IsEmpty() {
		// The pattern has already failed; don't do any more work.
		return Impossible{Reason: TypeMismatch{
			Var:      v,
			Existing: knownTypes,
			Desired:  mentat.AnyValueType,
		}}, nil
	}

	switch arg := arg.(type) {
	// Integer literals are potentially ambiguous: they might be longs
	// or entids.
	case query.EntidOrInteger:
		x := int64(arg)
		plausibleRef := mentat.TypeRef.AccommodatesInteger(x)
		hasRef := knownTypes.Contains(mentat.TypeRef)
		hasLong := knownTypes.Contains(mentat.TypeLong)
		switch {
		case plausibleRef && hasRef && hasLong:
			// Ambiguous; default to long.
			return Val{Value: mentat.Long(x)}, nil
		case plausibleRef && hasRef:
			// This can only be a ref.
			return Val{Value: mentat.Ref(x)}, nil
		case !hasRef && hasLong:
			// This can only be a long.
			return Val{Value: mentat.Long(x)}, nil
		default:
			// Either the literal isn't a valid ref but a ref is
			// required, or the known types don't overlap the integer
			// types at all.
			return Impossible{Reason: TypeMismatch{
				Var:      v,
				Existing: knownTypes,
				Desired:  mentat.OfLongs(),
			}}, nil
		}

	// If you definitely want an ident resolved, do it before running
	// the query.
	case query.IdentOrKeyword:
		hasRef := knownTypes.Contains(mentat.TypeRef)
		hasKeyword := knownTypes.Contains(mentat.TypeKeyword)
		switch {
		case hasKeyword:
			// Keyword wins when ambiguous, and no lookup is needed.
			return Val{Value: arg.Ident}, nil
		case hasRef:
			entid, ok := catalog.LookupEntid(arg.Ident)
			if !ok {
				return Impossible{Reason: UnresolvedIdent{Ident: arg.Ident}}, nil
			}
			return Val{Value: mentat.Ref(entid)}, nil
		default:
			return Impossible{Reason: TypeMismatch{
				Var:      v,
				Existing: knownTypes,
				Desired:  mentat.OfKeywords(),
			}}, nil
		}

	case query.VariableArg:
		if !cc.IsInputVariable(arg.Var) {
			return nil, fmt.Errorf("%w: %s", ErrUnboundVariable, arg.Var)
		}
		if value, ok := cc.BoundValue(arg.Var); ok {
			return Val{Value: value}, nil
		}
		// The variable is a declared input, but its value hasn't been
		// provided yet.  Values contributed by computed tables or
		// substitution aren't supported at this stage.
		return nil, fmt.Errorf("%w: %s", ErrUnboundVariable, arg.Var)

	case query.BigIntegerConstant:
		return nil, ErrBigIntUnsupported

	// These don't make sense here.
	case query.Vector, query.SrcVar:
		return nil, ErrInvalidGroundConstant

	// The rest are straightforward.
	case query.BooleanConstant:
		return coerce(v, knownTypes, mentat.TypeBoolean, mentat.Boolean(arg)), nil
	case query.InstantConstant:
		return coerce(v, knownTypes, mentat.TypeInstant, mentat.Instant(time.Time(arg))), nil
	case query.UuidConstant:
		return coerce(v, knownTypes, mentat.TypeUuid, mentat.Uuid(uuid.UUID(arg))), nil
	case query.FloatConstant:
		return coerce(v, knownTypes, mentat.TypeDouble, mentat.Double(arg)), nil
	case query.TextConstant:
		return coerce(v, knownTypes, mentat.TypeString, mentat.String(arg)), nil
	}
	return nil, fmt.Errorf("unhandled argument %T", arg)
}

// coerce accepts value if its type is admissible for v and reports a
// type mismatch otherwise.
func coerce(v query.Variable, knownTypes mentat.ValueTypeSet, t mentat.ValueType, value mentat.TypedValue) ValueConversion {
	if !knownTypes.Contains(t) {
		return Impossible{Reason: TypeMismatch{
			Var:      v,
			Existing: knownTypes,
			Desired:  mentat.OfOne(t),
		}}
	}
	return Val{Value: value}
}
