// Package schema implements the catalog consumed by the algebrizer: the
// mapping from symbolic idents to entids and the declared value type of
// each attribute.  A Schema is built once and then read concurrently
// without locking for the duration of an algebrization pass.
package schema

import (
	"fmt"

	"github.com/pombredanne/mentat"
)

// Schema maps idents to entids and records attribute value types.
type Schema struct {
	entids     map[*mentat.Keyword]int64
	idents     map[int64]*mentat.Keyword
	valueTypes map[int64]mentat.ValueType
}

func New() *Schema {
	return &Schema{
		entids:     make(map[*mentat.Keyword]int64),
		idents:     make(map[int64]*mentat.Keyword),
		valueTypes: make(map[int64]mentat.ValueType),
	}
}

// Define maps ident to entid.  Redefining an ident to a different entid
// is an error; defining the same pair twice is a no-op.
func (s *Schema) Define(ident *mentat.Keyword, entid int64) error {
	if existing, ok := s.entids[ident]; ok {
		if existing == entid {
			return nil
		}
		return fmt.Errorf("ident %s already mapped to %d", ident, existing)
	}
	s.entids[ident] = entid
	s.idents[entid] = ident
	return nil
}

// DefineAttribute maps ident to entid and declares the value type of
// the attribute it names.
func (s *Schema) DefineAttribute(ident *mentat.Keyword, entid int64, t mentat.ValueType) error {
	if err := s.Define(ident, entid); err != nil {
		return err
	}
	s.valueTypes[entid] = t
	return nil
}

// LookupEntid returns the entid for ident.  Keywords are interned, so
// the map lookup is by pointer.
func (s *Schema) LookupEntid(ident *mentat.Keyword) (int64, bool) {
	entid, ok := s.entids[ident]
	return entid, ok
}

// LookupIdent is the reverse mapping, entid to ident.
func (s *Schema) LookupIdent(entid int64) (*mentat.Keyword, bool) {
	ident, ok := s.idents[entid]
	return ident, ok
}

// AttributeType returns the declared value type of the attribute with
// the given entid.
func (s *Schema) AttributeType(entid int64) (mentat.ValueType, bool) {
	t, ok := s.valueTypes[entid]
	return t, ok
}

// Attributes calls f for each defined ident in unspecified order.  An
// attribute with no declared value type is reported with ok == false.
func (s *Schema) Attributes(f func(ident *mentat.Keyword, entid int64, t mentat.ValueType, ok bool)) {
	for ident, entid := range s.entids {
		t, ok := s.valueTypes[entid]
		f(ident, entid, t, ok)
	}
}
