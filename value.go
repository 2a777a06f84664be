package mentat

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TypedValue is a concrete value paired with its resolved type.  It is
// the output currency of argument resolution: once an ambiguous literal
// has been narrowed to a single interpretation, it becomes one of these
// and never changes again.
type TypedValue interface {
	Type() ValueType
	Equal(TypedValue) bool
	fmt.Stringer
	typedValue()
}

type (
	// Ref is an entity reference by entid.
	Ref int64
	// Long is a 64-bit integer.
	Long int64
	// Double is a 64-bit float.
	Double float64
	// String is a text value.
	String string
	// Boolean is a boolean value.
	Boolean bool
	// Instant is a point in time.
	Instant time.Time
	// Uuid is a 128-bit identifier.
	Uuid uuid.UUID
)

func (Ref) Type() ValueType      { return TypeRef }
func (Long) Type() ValueType     { return TypeLong }
func (Double) Type() ValueType   { return TypeDouble }
func (String) Type() ValueType   { return TypeString }
func (Boolean) Type() ValueType  { return TypeBoolean }
func (Instant) Type() ValueType  { return TypeInstant }
func (Uuid) Type() ValueType     { return TypeUuid }
func (*Keyword) Type() ValueType { return TypeKeyword }

func (v Ref) Equal(other TypedValue) bool {
	o, ok := other.(Ref)
	return ok && v == o
}

func (v Long) Equal(other TypedValue) bool {
	o, ok := other.(Long)
	return ok && v == o
}

func (v Double) Equal(other TypedValue) bool {
	o, ok := other.(Double)
	return ok && v == o
}

func (v String) Equal(other TypedValue) bool {
	o, ok := other.(String)
	return ok && v == o
}

func (v Boolean) Equal(other TypedValue) bool {
	o, ok := other.(Boolean)
	return ok && v == o
}

// Equal compares instants as points in time, so two representations of
// one instant in different zones are equal.
func (v Instant) Equal(other TypedValue) bool {
	o, ok := other.(Instant)
	return ok && time.Time(v).Equal(time.Time(o))
}

func (v Uuid) Equal(other TypedValue) bool {
	o, ok := other.(Uuid)
	return ok && v == o
}

// Equal on keywords is pointer equality: keywords are interned.
func (v *Keyword) Equal(other TypedValue) bool {
	o, ok := other.(*Keyword)
	return ok && v == o
}

func (v Ref) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Long) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Double) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) String() string  { return strconv.Quote(string(v)) }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }
func (v Instant) String() string { return time.Time(v).Format(time.RFC3339Nano) }
func (v Uuid) String() string    { return uuid.UUID(v).String() }

func (Ref) typedValue()      {}
func (Long) typedValue()     {}
func (Double) typedValue()   {}
func (String) typedValue()   {}
func (Boolean) typedValue()  {}
func (Instant) typedValue()  {}
func (Uuid) typedValue()     {}
func (*Keyword) typedValue() {}

// A Keyword is a namespaced symbolic name like :db/ident.  Keywords are
// interned so that the same literal recurring across many clauses of a
// query shares one allocation and compares by pointer.
type Keyword struct {
	namespace string
	name      string
}

// The interning table maps a keyword's printed form to its single
// shared instance.
var keywords struct {
	mu    sync.RWMutex
	table map[string]*Keyword
}

// NewKeyword returns the interned keyword for the given namespace and
// name.  The namespace may be empty.
func NewKeyword(namespace, name string) *Keyword {
	key := printKeyword(namespace, name)
	keywords.mu.RLock()
	kw, ok := keywords.table[key]
	keywords.mu.RUnlock()
	if ok {
		return kw
	}
	keywords.mu.Lock()
	defer keywords.mu.Unlock()
	if kw, ok := keywords.table[key]; ok {
		return kw
	}
	if keywords.table == nil {
		keywords.table = make(map[string]*Keyword)
	}
	kw = &Keyword{namespace: namespace, name: name}
	keywords.table[key] = kw
	return kw
}

func (k *Keyword) Namespace() string { return k.namespace }
func (k *Keyword) Name() string      { return k.name }

func (k *Keyword) String() string {
	return printKeyword(k.namespace, k.name)
}

func printKeyword(namespace, name string) string {
	if namespace == "" {
		return ":" + name
	}
	return ":" + namespace + "/" + name
}
