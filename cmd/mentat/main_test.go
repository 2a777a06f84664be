package main

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pombredanne/mentat"
	"github.com/pombredanne/mentat/algebrizer"
	"github.com/pombredanne/mentat/query"
	"github.com/pombredanne/mentat/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s := schema.New()
	require.NoError(t, s.DefineAttribute(mentat.NewKeyword("person", "name"), 65, mentat.TypeString))
	require.NoError(t, s.DefineAttribute(mentat.NewKeyword("person", "friend"), 67, mentat.TypeRef))
	require.NoError(t, s.Define(mentat.NewKeyword("label", "blue"), 100))
	return s
}

func TestConstrainToAttribute(t *testing.T) {
	s := testSchema(t)
	cc := algebrizer.NewConjoiningClauses()
	v := query.Variable("?x")
	require.NoError(t, constrainToAttribute(cc, s, v, ":person/name"))
	assert.Equal(t, mentat.OfOne(mentat.TypeString), cc.KnownTypes(v))

	typ, ok := cc.KnownType(v)
	require.True(t, ok)
	assert.Equal(t, mentat.TypeString, typ)
}

func TestConstrainToAttributeErrors(t *testing.T) {
	s := testSchema(t)
	v := query.Variable("?x")
	cases := map[string]string{
		"unknown attribute": ":person/missing",
		"no declared type":  ":label/blue",
		"not an ident":      "42",
		"unparsable":        "[",
	}
	for name, attr := range cases {
		t.Run(name, func(t *testing.T) {
			cc := algebrizer.NewConjoiningClauses()
			assert.Error(t, constrainToAttribute(cc, s, v, attr))
		})
	}
}

func TestAttributeSeedingDrivesResolution(t *testing.T) {
	// With types seeded from a ref-valued attribute, an integer
	// literal resolves as a ref rather than defaulting to long.
	s := testSchema(t)
	cc := algebrizer.NewConjoiningClauses()
	v := query.Variable("?friend")
	require.NoError(t, constrainToAttribute(cc, s, v, ":person/friend"))

	conversion, err := cc.TypedValueFromArg(s, v, query.EntidOrInteger(65), cc.KnownTypes(v))
	require.NoError(t, err)
	assert.Equal(t, algebrizer.Val{Value: mentat.Ref(65)}, conversion)
}

func TestAttributeSeedingIntersectsDeclaredTypes(t *testing.T) {
	// A --types constraint disjoint from the attribute's declared type
	// leaves nothing admissible.
	s := testSchema(t)
	cc := algebrizer.NewConjoiningClauses()
	v := query.Variable("?x")
	cc.ConstrainVarToTypes(v, mentat.OfOne(mentat.TypeLong))
	require.NoError(t, constrainToAttribute(cc, s, v, ":person/name"))
	assert.True(t, cc.KnownTypes(v).IsEmpty())
	assert.True(t, cc.IsKnownEmpty())
}

func TestFormatValueAnnotatesKnownRefs(t *testing.T) {
	s := testSchema(t)
	assert.Equal(t, "ref: 65 (:person/name)", formatValue(s, mentat.Ref(65)))
	assert.Equal(t, "ref: 999", formatValue(s, mentat.Ref(999)))
	assert.Equal(t, "long: 65", formatValue(s, mentat.Long(65)))
}

func TestConstantValue(t *testing.T) {
	value, err := constantValue(query.EntidOrInteger(7))
	require.NoError(t, err)
	assert.Equal(t, mentat.Long(7), value)

	kw := mentat.NewKeyword("db", "ident")
	value, err = constantValue(query.IdentOrKeyword{Ident: kw})
	require.NoError(t, err)
	assert.Same(t, kw, value)

	value, err = constantValue(query.BooleanConstant(true))
	require.NoError(t, err)
	assert.Equal(t, mentat.Boolean(true), value)

	value, err = constantValue(query.TextConstant("s"))
	require.NoError(t, err)
	assert.Equal(t, mentat.String("s"), value)

	for _, arg := range []query.FnArg{
		query.Vector{query.EntidOrInteger(1)},
		query.SrcVar("$db"),
		query.BigIntegerConstant{Int: big.NewInt(1)},
	} {
		_, err := constantValue(arg)
		assert.Error(t, err)
	}
}

func TestParseTypesDefaultsToAny(t *testing.T) {
	set, err := parseTypes(nil)
	require.NoError(t, err)
	assert.Equal(t, mentat.AnyValueType, set)

	set, err = parseTypes([]string{"ref", " long"})
	require.NoError(t, err)
	assert.Equal(t, mentat.OfLongs(), set)

	_, err = parseTypes([]string{"bignum"})
	assert.Error(t, err)
}
