// Package gc implements the precise, stop-the-world mark-sweep collector
// and the allocator façade that every heap object in package value is
// created through. It cooperates with value.Table for string
// interning (a weak reference from the pool, swept between mark and sweep)
// and with whatever owns the current root set (the VM during execution,
// the compiler chain during compilation) via a caller-supplied root
// marking function.
package gc

import (
	"github.com/mna/loxvm/lang/value"
)

// DefaultGrowFactor is the multiplier applied to bytesAllocated to compute
// the next collection threshold after a cycle completes.
const DefaultGrowFactor = 2.0

// initialNextGC (1 MiB) is the collection threshold of a fresh Heap and the
// floor below which nextGC is never set after a cycle. Small test programs
// stay under it, so they see a collection only in stress mode or through
// an explicit Collect.
const initialNextGC = 1 << 20

// Heap owns every GC-managed object: the intrusive object list, the
// allocation budget, and the interning pool. It has no locking and is not
// safe for concurrent use, matching the single-threaded VM it serves.
type Heap struct {
	objects value.Obj // head of the intrusive object list
	strings *value.Table

	bytesAllocated int64
	nextGC         int64
	growFactor     float64
	stress         bool

	gray []value.Obj

	// MarkRoots is called at the start of every collection to mark the
	// caller's root set (stack slots, call frames, globals, open upvalues,
	// compiler chain, etc). It must call the provided mark function on
	// every root Value. A nil MarkRoots means no external state is rooted
	// yet (e.g. during Heap construction before a VM exists) — sweep would
	// then free everything, so collection never runs in that state.
	MarkRoots func(mark func(value.Value))
}

// Option configures a new Heap.
type Option func(*Heap)

// WithStressGC forces a collection before (conceptually "around") every
// single allocation, a development aid for flushing out missing roots.
func WithStressGC(stress bool) Option {
	return func(h *Heap) { h.stress = stress }
}

// WithGrowFactor overrides DefaultGrowFactor.
func WithGrowFactor(f float64) Option {
	return func(h *Heap) {
		if f > 1 {
			h.growFactor = f
		}
	}
}

// NewHeap returns an empty Heap ready to allocate from.
func NewHeap(opts ...Option) *Heap {
	h := &Heap{
		strings:    value.NewTable(),
		nextGC:     initialNextGC,
		growFactor: DefaultGrowFactor,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Strings returns the interning pool, so the VM can use the same table as
// its "find an already-interned copy of this literal" cache when the
// compiler hands it string constants.
func (h *Heap) Strings() *value.Table { return h.strings }

// BytesAllocated reports the current simulated allocation budget in use,
// exposed mainly for tests asserting that collection reclaims unreachable
// memory rather than leaking it.
func (h *Heap) BytesAllocated() int64 { return h.bytesAllocated }

func (h *Heap) register(o value.Obj, size int64) {
	hdr := o.Header()
	hdr.Next = h.objects
	h.objects = o
	h.bytesAllocated += size
}

func (h *Heap) maybeCollect() {
	if h.MarkRoots == nil {
		return
	}
	if h.stress || h.bytesAllocated > h.nextGC {
		h.Collect()
	}
}

// InternString returns the interned string with the given content,
// allocating a new ObjString only if one doesn't already exist. This is
// the sole path by which strings enter the heap, which is what keeps
// equal content mapped to identical identity.
//
// The caller must push the returned value onto a GC root (typically the
// VM value stack) before making any further allocating call, since this
// call itself may trigger a collection that would otherwise be unable to
// see the string it just made.
func (h *Heap) InternString(chars string) *value.ObjString {
	hash := value.HashString(chars)
	if s := h.strings.FindString(chars, hash); s != nil {
		return s
	}
	s := &value.ObjString{Chars: chars, Hash: hash}
	h.register(s, int64(len(chars))+32)
	h.strings.Set(s, value.Nil)
	h.maybeCollect()
	return s
}

// NewFunction allocates an empty, arity-0 function shell for the compiler
// to fill in as it compiles a function body.
func (h *Heap) NewFunction() *value.ObjFunction {
	fn := &value.ObjFunction{}
	h.register(fn, 64)
	h.maybeCollect()
	return fn
}

// NewNative wraps a Go function as a callable Lox native.
func (h *Heap) NewNative(name string, fn value.NativeFn) *value.ObjNative {
	n := &value.ObjNative{Name: name, Fn: fn}
	h.register(n, 32)
	h.maybeCollect()
	return n
}

// NewClosure allocates a closure over fn, with its upvalues slice sized but
// unpopulated; the CLOSURE instruction fills each slot before the closure
// is considered fully constructed — its upvalue array ends up with exactly
// function.upvalue_count non-null entries once CLOSURE finishes.
func (h *Heap) NewClosure(fn *value.ObjFunction) *value.ObjClosure {
	c := value.NewClosure(fn)
	h.register(c, int64(24+8*len(c.Upvalues)))
	h.maybeCollect()
	return c
}

// NewUpvalue allocates an open upvalue pointing at the given stack slot.
func (h *Heap) NewUpvalue(slot *value.Value) *value.ObjUpvalue {
	u := &value.ObjUpvalue{Location: slot}
	h.register(u, 40)
	h.maybeCollect()
	return u
}

// NewClass allocates a class with an empty method table.
func (h *Heap) NewClass(name *value.ObjString) *value.ObjClass {
	c := value.NewClass(name)
	h.register(c, 48)
	h.maybeCollect()
	return c
}

// NewInstance allocates an instance of class with an empty field table.
func (h *Heap) NewInstance(class *value.ObjClass) *value.ObjInstance {
	i := value.NewInstance(class)
	h.register(i, 48)
	h.maybeCollect()
	return i
}

// NewBoundMethod allocates a bound method pairing receiver with method.
func (h *Heap) NewBoundMethod(receiver value.Value, method *value.ObjClosure) *value.ObjBoundMethod {
	b := &value.ObjBoundMethod{Receiver: receiver, Method: method}
	h.register(b, 40)
	h.maybeCollect()
	return b
}
