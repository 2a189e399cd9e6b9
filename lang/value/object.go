package value

// ObjKind discriminates the concrete type of a heap Object.
type ObjKind uint8

const (
	ObjKindString ObjKind = iota
	ObjKindFunction
	ObjKindNative
	ObjKindClosure
	ObjKindUpvalue
	ObjKindClass
	ObjKindInstance
	ObjKindBoundMethod
)

func (k ObjKind) String() string {
	switch k {
	case ObjKindString:
		return "string"
	case ObjKindFunction:
		return "function"
	case ObjKindNative:
		return "native function"
	case ObjKindClosure:
		return "closure"
	case ObjKindUpvalue:
		return "upvalue"
	case ObjKindClass:
		return "class"
	case ObjKindInstance:
		return "instance"
	case ObjKindBoundMethod:
		return "bound method"
	default:
		return "object"
	}
}

// Header is the common prefix of every heap Object: its GC mark bit and its
// link in the VM's intrusive object list. Every heap allocation is reachable
// from exactly one slot in that list, which is what lets sweep free anything
// unmarked without a separate free list.
type Header struct {
	Marked bool
	Next   Obj
}

// Obj is implemented by every heap-allocated runtime value.
type Obj interface {
	// ObjKind identifies the concrete variant.
	ObjKind() ObjKind
	// Header returns the GC bookkeeping header embedded in the object.
	Header() *Header
	// String renders the object as Lox would print it.
	String() string
}
