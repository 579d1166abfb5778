package gather

import (
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Kind is the type tag of a Value.  The numeric order of the kinds is the
// order of values of different kinds:
// null < bool < number < string < array < object.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Field is an attribute of an object value.
type Field struct {
	Name  string
	Value Value
}

// A Value is a document value.  The zero Value is null.  Values are
// immutable: the slices returned by Array and Fields must not be modified.
type Value struct {
	kind Kind
	num  float64
	str  string
	arr  []Value
	obj  []Field
}

var (
	Null  = Value{}
	True  = Value{kind: KindBool, num: 1}
	False = Value{kind: KindBool}
)

func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

func NewNumber(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		// Documents cannot hold non-finite numbers.
		return Null
	}
	return Value{kind: KindNumber, num: f}
}

func NewInt[T constraints.Integer](i T) Value {
	return Value{kind: KindNumber, num: float64(i)}
}

func NewString(s string) Value {
	return Value{kind: KindString, str: s}
}

// NewArray returns an array value holding vals.  The caller must not
// modify vals after the call.
func NewArray(vals []Value) Value {
	if vals == nil {
		vals = []Value{}
	}
	return Value{kind: KindArray, arr: vals}
}

// NewObject returns an object value holding fields.  If a name appears
// more than once, the last occurrence wins.  The caller must not modify
// fields after the call.
func NewObject(fields []Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	for i := 1; i < len(fields); i++ {
		for j := range i {
			if fields[j].Name == fields[i].Name {
				return Value{kind: KindObject, obj: dedupFields(fields)}
			}
		}
	}
	return Value{kind: KindObject, obj: fields}
}

func dedupFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	index := make(map[string]int, len(fields))
	for _, f := range fields {
		if k, ok := index[f.Name]; ok {
			out[k].Value = f.Value
			continue
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsArray() bool   { return v.kind == KindArray }
func (v Value) IsObject() bool  { return v.kind == KindObject }
func (v Value) Bool() bool      { return v.kind == KindBool && v.num != 0 }
func (v Value) Number() float64 { return v.num }
func (v Value) Str() string     { return v.str }
func (v Value) Array() []Value  { return v.arr }
func (v Value) Fields() []Field { return v.obj }

// Len returns the number of elements of an array, the number of attributes
// of an object, or the number of characters of a string.  Len is zero for
// all other values.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	case KindString:
		var n int
		for range v.str {
			n++
		}
		return n
	}
	return 0
}

// Get returns the value of the named attribute of an object.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.obj {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Null, false
}

// Attr returns the named attribute of an object or null if v is not an
// object or has no such attribute.
func (v Value) Attr(name string) Value {
	val, _ := v.Get(name)
	return val
}

// Index returns the i'th element of an array, counting from the end for
// negative i, or null when out of range or when v is not an array.
func (v Value) Index(i int) Value {
	if v.kind != KindArray {
		return Null
	}
	if i < 0 {
		i += len(v.arr)
	}
	if i < 0 || i >= len(v.arr) {
		return Null
	}
	return v.arr[i]
}

// Truthy converts v to a boolean.  Null, false, zero and the empty string
// are false; everything else, including empty arrays and objects, is true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool, KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindArray, KindObject:
		return true
	}
	return false
}

// ToNumber converts v to a number.  Null and false convert to 0, true to 1,
// numeric strings to their value, and single-element arrays to the number
// of their element.  ToNumber reports false for everything else.
func (v Value) ToNumber() (float64, bool) {
	switch v.kind {
	case KindNull:
		return 0, true
	case KindBool, KindNumber:
		return v.num, true
	case KindString:
		return parseNumber(v.str)
	case KindArray:
		switch len(v.arr) {
		case 0:
			return 0, true
		case 1:
			return v.arr[0].ToNumber()
		}
	}
	return 0, false
}

var valueSize = int(unsafe.Sizeof(Value{}))
var fieldSize = int(unsafe.Sizeof(Field{}))

// Size returns an estimate of the number of bytes of memory held by v.
func (v Value) Size() int {
	n := valueSize + len(v.str)
	for _, elem := range v.arr {
		n += elem.Size()
	}
	for _, f := range v.obj {
		n += fieldSize - valueSize + len(f.Name) + f.Value.Size()
	}
	return n
}
