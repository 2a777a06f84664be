package algebrizer

import (
	"fmt"

	"github.com/pombredanne/mentat"
	"github.com/pombredanne/mentat/query"
)

// EmptyBecause explains why a clause can never match.  It is carried as
// data, not raised as an error: the enclosing algebrizer prunes the
// affected clause and may aggregate reasons for diagnostics.
type EmptyBecause interface {
	fmt.Stringer
	emptyBecause()
}

// TypeMismatch records that the types already admissible for a variable
// do not overlap the types an argument requires.
type TypeMismatch struct {
	Var      query.Variable
	Existing mentat.ValueTypeSet
	Desired  mentat.ValueTypeSet
}

// UnresolvedIdent records an ident that has no entid in the schema.
type UnresolvedIdent struct {
	Ident *mentat.Keyword
}

// NoValidTypes records that narrowing left a variable with no
// admissible types at all.
type NoValidTypes struct {
	Var query.Variable
}

func (TypeMismatch) emptyBecause()    {}
func (UnresolvedIdent) emptyBecause() {}
func (NoValidTypes) emptyBecause()    {}

func (e TypeMismatch) String() string {
	return fmt.Sprintf("%s is constrained to %s but must be %s", e.Var, e.Existing, e.Desired)
}

func (e UnresolvedIdent) String() string {
	return fmt.Sprintf("no entid for ident %s", e.Ident)
}

func (e NoValidTypes) String() string {
	return fmt.Sprintf("no valid types for %s", e.Var)
}
