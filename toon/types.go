package toon

import "math"

// A Type represents the type of a TOON Value.
type Type uint8

const (
	// NoType is the zero Type; no Value has it.
	NoType Type = iota

	// NullType is the type of the null value.
	NullType

	// BoolType is the type of a boolean, true or false.
	BoolType

	// IntType is the type of a signed 64-bit integer. Integers round-trip
	// through text exactly.
	IntType

	// FloatType is the type of a 64-bit floating-point number. Floats
	// round-trip through their shortest decimal representation.
	FloatType

	// StringType is the type of a Unicode string.
	StringType

	// ListType is the type of an ordered sequence of Values.
	ListType

	// ObjectType is the type of an ordered sequence of named Values with
	// unique names.
	ObjectType
)

// String implements fmt.Stringer for Type.
func (t Type) String() string {
	switch t {
	case NoType:
		return "<no type>"
	case NullType:
		return "null"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case FloatType:
		return "float"
	case StringType:
		return "string"
	case ListType:
		return "list"
	case ObjectType:
		return "object"
	default:
		return "<unknown type>"
	}
}

// A Value is a node in a TOON document tree. The concrete types are Null,
// Bool, Int, Float, String, List, and Object; the set is closed and every
// encoder and decoder branch is an exhaustive switch over it. Encoding a
// Value of any other dynamic type fails with an UnsupportedTypeError.
type Value interface {
	// Type returns the Type of the Value.
	Type() Type
}

// Null is the null value.
type Null struct{}

// Type satisfies Value.
func (Null) Type() Type { return NullType }

// Bool is a boolean value.
type Bool struct {
	value bool
}

// NewBool creates a boolean value.
func NewBool(v bool) Bool { return Bool{value: v} }

// Value returns the boolean.
func (b Bool) Value() bool { return b.value }

// Type satisfies Value.
func (Bool) Type() Type { return BoolType }

// Int is a signed 64-bit integer value.
type Int struct {
	value int64
}

// NewInt creates an integer value.
func NewInt(v int64) Int { return Int{value: v} }

// Value returns the integer.
func (i Int) Value() int64 { return i.value }

// Type satisfies Value.
func (Int) Type() Type { return IntType }

// Float is a 64-bit floating-point value.
type Float struct {
	value float64
}

// NewFloat creates a floating-point value.
func NewFloat(v float64) Float { return Float{value: v} }

// Value returns the float.
func (f Float) Value() float64 { return f.value }

// Type satisfies Value.
func (Float) Type() Type { return FloatType }

// String is a string value.
type String struct {
	value string
}

// NewString creates a string value.
func NewString(v string) String { return String{value: v} }

// Value returns the string.
func (s String) Value() string { return s.value }

// Type satisfies Value.
func (String) Type() Type { return StringType }

// List is an ordered sequence of Values. Order is significant and is
// preserved exactly by encode and decode.
type List struct {
	values []Value
}

// NewList creates a list from the given elements.
func NewList(values ...Value) List { return List{values: values} }

// Len returns the number of elements.
func (l List) Len() int { return len(l.values) }

// Index returns the i-th element.
func (l List) Index(i int) Value { return l.values[i] }

// Values returns the elements in order. The returned slice is shared with
// the List and must not be modified.
func (l List) Values() []Value { return l.values }

// Type satisfies Value.
func (List) Type() Type { return ListType }

// A Field is a single name/value entry of an Object.
type Field struct {
	Name  string
	Value Value
}

// NewField creates an Object field.
func NewField(name string, value Value) Field {
	return Field{Name: name, Value: value}
}

// Object is an ordered sequence of named Values. Insertion order is
// preserved; names must be unique within one Object (a duplicate is a decode
// error, and encoding an Object with duplicate names produces text that will
// not decode).
type Object struct {
	fields []Field
}

// NewObject creates an object from the given fields.
func NewObject(fields ...Field) Object { return Object{fields: fields} }

// Len returns the number of fields.
func (o Object) Len() int { return len(o.fields) }

// Fields returns the fields in order. The returned slice is shared with the
// Object and must not be modified.
func (o Object) Fields() []Field { return o.fields }

// Get returns the value of the named field.
func (o Object) Get(name string) (Value, bool) {
	for _, f := range o.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.Name
	}
	return keys
}

// Type satisfies Value.
func (Object) Type() Type { return ObjectType }

// Equal reports whether two Values are structurally equal. Ints and Floats
// compare numerically, so NewInt(42) equals NewFloat(42.0); the two share
// the textual form "42", and the decoder always reads it back as an Int.
// NaN floats compare equal to each other.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, aok := numericValue(a); aok {
		bn, bok := numericValue(b)
		if !bok {
			return false
		}
		if math.IsNaN(an) && math.IsNaN(bn) {
			return true
		}
		return an == bn
	}

	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok

	case Bool:
		bv, ok := b.(Bool)
		return ok && av.value == bv.value

	case String:
		bv, ok := b.(String)
		return ok && av.value == bv.value

	case List:
		bv, ok := b.(List)
		if !ok || len(av.values) != len(bv.values) {
			return false
		}
		for i := range av.values {
			if !Equal(av.values[i], bv.values[i]) {
				return false
			}
		}
		return true

	case Object:
		bv, ok := b.(Object)
		if !ok || len(av.fields) != len(bv.fields) {
			return false
		}
		for i := range av.fields {
			if av.fields[i].Name != bv.fields[i].Name {
				return false
			}
			if !Equal(av.fields[i].Value, bv.fields[i].Value) {
				return false
			}
		}
		return true
	}

	return false
}

func numericValue(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n.value), true
	case Float:
		return n.value, true
	}
	return 0, false
}

func isScalar(v Value) bool {
	switch v.(type) {
	case Null, Bool, Int, Float, String:
		return true
	}
	return false
}
