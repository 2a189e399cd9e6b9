// Package value implements the runtime value model: the tagged Value union,
// the heap Object header and its variants (String, Function, Native,
// Closure, Upvalue, Class, Instance, BoundMethod), the bytecode Chunk, and
// the open-addressed Table used for string interning, globals, class
// methods and instance fields.
package value

import (
	"fmt"
	"strconv"
)

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union holding one of: nil, a bool, an IEEE-754 float64,
// or a reference to a heap Object. The zero Value is KindNil.
type Value struct {
	kind Kind
	b    bool
	n    float64
	obj  Obj
}

// Nil is the singular nil value.
var Nil = Value{kind: KindNil}

// Bool returns a Value wrapping b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a Value wrapping n.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// FromObj returns a Value referencing the heap object o.
func FromObj(o Obj) Value { return Value{kind: KindObj, obj: o} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObj() bool    { return v.kind == KindObj }

// AsBool returns false if v is not a bool; callers check IsBool first.
func (v Value) AsBool() bool { return v.b }

// AsNumber returns 0 if v is not a number; callers check IsNumber first.
func (v Value) AsNumber() float64 { return v.n }

// AsObj returns nil if v is not an object, so a comma-ok type assertion on
// its result fails cleanly for non-object values.
func (v Value) AsObj() Obj { return v.obj }

// IsFalsey implements Lox truthiness: nil and false are falsey, everything
// else (including 0 and the empty string) is truthy.
func (v Value) IsFalsey() bool {
	return v.kind == KindNil || (v.kind == KindBool && !v.b)
}

// Equal implements value equality: numbers compare by ==, bools and nil
// structurally, and objects by identity. Interned strings are therefore
// identity-comparable too, since equal content always shares one object.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindObj:
		return a.obj == b.obj
	default:
		return false
	}
}

// String renders v the way the PRINT opcode and error messages do.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindObj:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// TypeName returns a short human-readable description of v's type, used in
// runtime error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObj:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.ObjKind().String()
	default:
		return fmt.Sprintf("unknown(%d)", v.kind)
	}
}

// AsString reports whether v holds a *ObjString and returns it.
func (v Value) AsString() (*ObjString, bool) {
	if v.kind != KindObj {
		return nil, false
	}
	s, ok := v.obj.(*ObjString)
	return s, ok
}

// IsString reports whether v holds a string object.
func (v Value) IsString() bool {
	_, ok := v.AsString()
	return ok
}
