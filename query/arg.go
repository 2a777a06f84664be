// Package query holds the parser-facing representation of query
// arguments: variables, source variables, and the FnArg union of
// syntactic forms a function argument may take before the algebrizer
// resolves it to a TypedValue.
package query

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pombredanne/mentat"
)

// Variable is a query variable name, including the leading "?".  It is
// used directly as a map key.
type Variable string

// NewVariable validates name as a variable reference.
func NewVariable(name string) (Variable, error) {
	if !strings.HasPrefix(name, "?") || len(name) < 2 {
		return "", fmt.Errorf("invalid variable name %q", name)
	}
	return Variable(name), nil
}

func (v Variable) String() string { return string(v) }

// Name returns the variable name without the leading "?".
func (v Variable) Name() string { return strings.TrimPrefix(string(v), "?") }

// FnArg is one function argument as produced by the parser.  Several
// variants are ambiguous on their own: an integer literal might be an
// entid or a long, and a keyword literal might name an ident or stand
// for itself.  The algebrizer resolves the ambiguity from the type
// constraints accumulated for the destination variable.
type FnArg interface {
	fmt.Stringer
	fnArg()
}

// EntidOrInteger is an integer literal: either an entity reference or a
// plain long.
type EntidOrInteger int64

// IdentOrKeyword is a keyword literal: either an ident to resolve
// through the schema or a keyword value proper.
type IdentOrKeyword struct {
	Ident *mentat.Keyword
}

// VariableArg references another query variable.
type VariableArg struct {
	Var Variable
}

// SrcVar is a source variable marker like $db.
type SrcVar string

// Vector is a nested list of arguments.
type Vector []FnArg

// Constant marks the unambiguous, non-integer constant variants.
type Constant interface {
	FnArg
	constant()
}

type (
	BooleanConstant bool
	InstantConstant time.Time
	UuidConstant    uuid.UUID
	FloatConstant   float64
	TextConstant    string
)

// BigIntegerConstant is an arbitrary-precision integer literal.
type BigIntegerConstant struct {
	Int *big.Int
}

func (EntidOrInteger) fnArg()     {}
func (IdentOrKeyword) fnArg()     {}
func (VariableArg) fnArg()        {}
func (SrcVar) fnArg()             {}
func (Vector) fnArg()             {}
func (BooleanConstant) fnArg()    {}
func (InstantConstant) fnArg()    {}
func (UuidConstant) fnArg()       {}
func (FloatConstant) fnArg()      {}
func (TextConstant) fnArg()       {}
func (BigIntegerConstant) fnArg() {}

func (BooleanConstant) constant()    {}
func (InstantConstant) constant()    {}
func (UuidConstant) constant()       {}
func (FloatConstant) constant()      {}
func (TextConstant) constant()       {}
func (BigIntegerConstant) constant() {}

func (a EntidOrInteger) String() string { return fmt.Sprintf("%d", int64(a)) }
func (a IdentOrKeyword) String() string { return a.Ident.String() }
func (a VariableArg) String() string    { return a.Var.String() }
func (a SrcVar) String() string         { return string(a) }

func (a Vector) String() string {
	elems := make([]string, len(a))
	for i, e := range a {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, " ") + "]"
}

func (a BooleanConstant) String() string { return fmt.Sprintf("%t", bool(a)) }
func (a InstantConstant) String() string {
	return fmt.Sprintf("#inst %q", time.Time(a).Format(time.RFC3339Nano))
}
func (a UuidConstant) String() string    { return fmt.Sprintf("#uuid %q", uuid.UUID(a).String()) }
func (a FloatConstant) String() string   { return fmt.Sprintf("%g", float64(a)) }
func (a TextConstant) String() string    { return fmt.Sprintf("%q", string(a)) }
func (a BigIntegerConstant) String() string { return a.Int.String() + "N" }
