package value

import "fmt"

// ObjFunction is the compile-time product of compiling a single function
// body (or, for the top-level script, a nameless implicit function). It is
// immutable once the compiler finishes with it.
type ObjFunction struct {
	Hdr          Header
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *ObjString // nil for the top-level script
}

func (f *ObjFunction) ObjKind() ObjKind { return ObjKindFunction }
func (f *ObjFunction) Header() *Header  { return &f.Hdr }

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// DisplayName returns the function's name for stack traces, or "script" for
// the implicit top-level function.
func (f *ObjFunction) DisplayName() string {
	if f.Name == nil {
		return "script"
	}
	return f.Name.Chars
}

// NativeFn is the Go implementation of a builtin function.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host-implemented function exposed to Lox code, e.g.
// clock().
type ObjNative struct {
	Hdr  Header
	Name string
	Fn   NativeFn
}

func (n *ObjNative) ObjKind() ObjKind { return ObjKindNative }
func (n *ObjNative) Header() *Header  { return &n.Hdr }
func (n *ObjNative) String() string   { return "<native fn>" }
