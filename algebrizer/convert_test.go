package algebrizer_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pombredanne/mentat"
	"github.com/pombredanne/mentat/algebrizer"
	"github.com/pombredanne/mentat/query"
)

// countingCatalog counts lookups so tests can assert that the keyword
// fast path never touches the catalog.
type countingCatalog struct {
	entids  map[*mentat.Keyword]int64
	lookups int
}

func (c *countingCatalog) LookupEntid(ident *mentat.Keyword) (int64, bool) {
	c.lookups++
	entid, ok := c.entids[ident]
	return entid, ok
}

func newCatalog(entids map[*mentat.Keyword]int64) *countingCatalog {
	if entids == nil {
		entids = make(map[*mentat.Keyword]int64)
	}
	return &countingCatalog{entids: entids}
}

func resolve(t *testing.T, catalog algebrizer.Catalog, arg query.FnArg, types mentat.ValueTypeSet) algebrizer.ValueConversion {
	t.Helper()
	cc := algebrizer.NewConjoiningClauses()
	conversion, err := cc.TypedValueFromArg(catalog, query.Variable("?x"), arg, types)
	require.NoError(t, err)
	return conversion
}

func TestEmptyKnownTypesShortCircuits(t *testing.T) {
	catalog := newCatalog(nil)
	args := []query.FnArg{
		query.EntidOrInteger(42),
		query.IdentOrKeyword{Ident: mentat.NewKeyword("", "foo")},
		query.TextConstant("s"),
		query.Vector{},
	}
	for _, arg := range args {
		conversion := resolve(t, catalog, arg, mentat.EmptyValueTypeSet)
		assert.Equal(t, algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
			Var:      query.Variable("?x"),
			Existing: mentat.EmptyValueTypeSet,
			Desired:  mentat.AnyValueType,
		}}, conversion)
	}
	// The short circuit happens before any catalog access, even for
	// arguments that would otherwise be looked up.
	assert.Zero(t, catalog.lookups)
}

func TestEntidOrInteger(t *testing.T) {
	cases := []struct {
		name  string
		x     int64
		types mentat.ValueTypeSet
		want  algebrizer.ValueConversion
	}{
		{
			// Scenario A: ambiguous in-range literal defaults to long.
			name:  "ambiguous defaults to long",
			x:     42,
			types: mentat.OfLongs(),
			want:  algebrizer.Val{Value: mentat.Long(42)},
		},
		{
			name:  "ref only",
			x:     42,
			types: mentat.OfOne(mentat.TypeRef),
			want:  algebrizer.Val{Value: mentat.Ref(42)},
		},
		{
			name:  "long only",
			x:     -5,
			types: mentat.OfOne(mentat.TypeLong),
			want:  algebrizer.Val{Value: mentat.Long(-5)},
		},
		{
			// Scenario B: out of entid range but a ref is required.
			name:  "out of ref range",
			x:     -5,
			types: mentat.OfOne(mentat.TypeRef),
			want: algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
				Var:      query.Variable("?x"),
				Existing: mentat.OfOne(mentat.TypeRef),
				Desired:  mentat.OfLongs(),
			}},
		},
		{
			// A ref constraint on an implausible literal loses even
			// when long would otherwise fit.
			name:  "out of ref range with long admissible",
			x:     -5,
			types: mentat.OfLongs(),
			want: algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
				Var:      query.Variable("?x"),
				Existing: mentat.OfLongs(),
				Desired:  mentat.OfLongs(),
			}},
		},
		{
			name:  "non-overlapping types",
			x:     42,
			types: mentat.OfOne(mentat.TypeString),
			want: algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
				Var:      query.Variable("?x"),
				Existing: mentat.OfOne(mentat.TypeString),
				Desired:  mentat.OfLongs(),
			}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			conversion := resolve(t, newCatalog(nil), query.EntidOrInteger(c.x), c.types)
			assert.Equal(t, c.want, conversion)
		})
	}
}

func TestIdentOrKeyword(t *testing.T) {
	foo := mentat.NewKeyword("", "foo")
	bar := mentat.NewKeyword("", "bar")

	t.Run("ambiguous defaults to keyword without lookup", func(t *testing.T) {
		catalog := newCatalog(map[*mentat.Keyword]int64{foo: 100})
		conversion := resolve(t, catalog, query.IdentOrKeyword{Ident: foo}, mentat.OfKeywords())
		assert.Equal(t, algebrizer.Val{Value: foo}, conversion)
		assert.Zero(t, catalog.lookups)
	})

	t.Run("keyword only", func(t *testing.T) {
		// Scenario C.
		catalog := newCatalog(nil)
		conversion := resolve(t, catalog, query.IdentOrKeyword{Ident: foo}, mentat.OfOne(mentat.TypeKeyword))
		assert.Equal(t, algebrizer.Val{Value: foo}, conversion)
		assert.Zero(t, catalog.lookups)
	})

	t.Run("ref resolves through catalog", func(t *testing.T) {
		catalog := newCatalog(map[*mentat.Keyword]int64{foo: 100})
		conversion := resolve(t, catalog, query.IdentOrKeyword{Ident: foo}, mentat.OfOne(mentat.TypeRef))
		assert.Equal(t, algebrizer.Val{Value: mentat.Ref(100)}, conversion)
		assert.Equal(t, 1, catalog.lookups)
	})

	t.Run("catalog miss is impossible, not an error", func(t *testing.T) {
		// Scenario D.
		conversion := resolve(t, newCatalog(nil), query.IdentOrKeyword{Ident: bar}, mentat.OfOne(mentat.TypeRef))
		assert.Equal(t, algebrizer.Impossible{Reason: algebrizer.UnresolvedIdent{Ident: bar}}, conversion)
	})

	t.Run("neither ref nor keyword admissible", func(t *testing.T) {
		conversion := resolve(t, newCatalog(nil), query.IdentOrKeyword{Ident: foo}, mentat.OfOne(mentat.TypeString))
		assert.Equal(t, algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
			Var:      query.Variable("?x"),
			Existing: mentat.OfOne(mentat.TypeString),
			Desired:  mentat.OfKeywords(),
		}}, conversion)
	})
}

func TestVariableArg(t *testing.T) {
	in := query.Variable("?in")
	arg := query.VariableArg{Var: in}
	catalog := newCatalog(nil)

	t.Run("undeclared variable is a hard error", func(t *testing.T) {
		cc := algebrizer.NewConjoiningClauses()
		_, err := cc.TypedValueFromArg(catalog, query.Variable("?x"), arg, mentat.AnyValueType)
		assert.ErrorIs(t, err, algebrizer.ErrUnboundVariable)
	})

	t.Run("declared but unbound is a hard error", func(t *testing.T) {
		cc := algebrizer.NewConjoiningClauses()
		cc.DeclareInput(in)
		_, err := cc.TypedValueFromArg(catalog, query.Variable("?x"), arg, mentat.AnyValueType)
		assert.ErrorIs(t, err, algebrizer.ErrUnboundVariable)
	})

	t.Run("bound input resolves to its value", func(t *testing.T) {
		cc := algebrizer.NewConjoiningClauses()
		cc.DeclareInput(in)
		cc.BindValue(in, mentat.String("bound"))
		conversion, err := cc.TypedValueFromArg(catalog, query.Variable("?x"), arg, mentat.AnyValueType)
		require.NoError(t, err)
		assert.Equal(t, algebrizer.Val{Value: mentat.String("bound")}, conversion)
	})
}

func TestConstants(t *testing.T) {
	u := uuid.MustParse("4cb3f828-752d-497a-90c9-b1fd516d5644")
	now := time.Now()
	cases := []struct {
		name string
		arg  query.FnArg
		typ  mentat.ValueType
		want mentat.TypedValue
	}{
		{"boolean", query.BooleanConstant(true), mentat.TypeBoolean, mentat.Boolean(true)},
		{"instant", query.InstantConstant(now), mentat.TypeInstant, mentat.Instant(now)},
		{"uuid", query.UuidConstant(u), mentat.TypeUuid, mentat.Uuid(u)},
		{"float", query.FloatConstant(1.5), mentat.TypeDouble, mentat.Double(1.5)},
		{"text", query.TextConstant("hi"), mentat.TypeString, mentat.String("hi")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			// With exactly the matching type, the payload passes
			// through unchanged.
			conversion := resolve(t, newCatalog(nil), c.arg, mentat.OfOne(c.typ))
			assert.Equal(t, algebrizer.Val{Value: c.want}, conversion)

			// With a disjoint type, the mismatch names the type the
			// constant would need.
			disjoint := mentat.OfOne(mentat.TypeString)
			if c.typ == mentat.TypeString {
				disjoint = mentat.OfOne(mentat.TypeBoolean)
			}
			conversion = resolve(t, newCatalog(nil), c.arg, disjoint)
			assert.Equal(t, algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
				Var:      query.Variable("?x"),
				Existing: disjoint,
				Desired:  mentat.OfOne(c.typ),
			}}, conversion)
		})
	}
}

func TestBooleanAgainstString(t *testing.T) {
	// Scenario E.
	conversion := resolve(t, newCatalog(nil), query.BooleanConstant(true), mentat.OfOne(mentat.TypeString))
	assert.Equal(t, algebrizer.Impossible{Reason: algebrizer.TypeMismatch{
		Var:      query.Variable("?x"),
		Existing: mentat.OfOne(mentat.TypeString),
		Desired:  mentat.OfOne(mentat.TypeBoolean),
	}}, conversion)
}

func TestBigIntegerIsUnimplemented(t *testing.T) {
	cc := algebrizer.NewConjoiningClauses()
	arg := query.BigIntegerConstant{Int: big.NewInt(1)}
	_, err := cc.TypedValueFromArg(newCatalog(nil), query.Variable("?x"), arg, mentat.AnyValueType)
	assert.ErrorIs(t, err, algebrizer.ErrBigIntUnsupported)
}

func TestStructurallyInvalidArgs(t *testing.T) {
	cc := algebrizer.NewConjoiningClauses()
	for _, arg := range []query.FnArg{
		query.Vector{query.EntidOrInteger(1)},
		query.SrcVar("$db"),
	} {
		_, err := cc.TypedValueFromArg(newCatalog(nil), query.Variable("?x"), arg, mentat.AnyValueType)
		assert.ErrorIs(t, err, algebrizer.ErrInvalidGroundConstant)
	}
}

func TestConversionNeverMutatesState(t *testing.T) {
	catalog := newCatalog(nil)
	cc := algebrizer.NewConjoiningClauses()
	v := query.Variable("?x")
	cc.ConstrainVarToTypes(v, mentat.OfLongs())

	_, err := cc.TypedValueFromArg(catalog, v, query.TextConstant("s"), cc.KnownTypes(v))
	require.NoError(t, err)

	// An impossible conversion is the caller's signal; the state is
	// only narrowed by the caller afterwards.
	assert.Equal(t, mentat.OfLongs(), cc.KnownTypes(v))
	assert.False(t, cc.IsKnownEmpty())
}
