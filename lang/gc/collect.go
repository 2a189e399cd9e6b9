package gc

import "github.com/mna/loxvm/lang/value"

// Collect runs one full mark-sweep cycle: mark roots, trace the gray
// worklist to black, drop now-unreachable entries from the string pool,
// then sweep the object list. It is exported so a VM can force a
// collection (e.g. between top-level statements in a REPL, or from a
// test asserting invariant soundness) in addition to the automatic
// triggering every allocator method performs.
func (h *Heap) Collect() {
	h.gray = h.gray[:0]
	if h.MarkRoots != nil {
		h.MarkRoots(h.MarkValue)
	}
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
	h.strings.RemoveWhite()
	h.sweep()
	h.nextGC = int64(float64(h.bytesAllocated) * h.growFactor)
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
}

// MarkValue marks v's underlying object, if it has one. It is the
// function handed to MarkRoots, and blacken also calls it directly for
// any Value fields it finds while tracing.
func (h *Heap) MarkValue(v value.Value) {
	if v.IsObj() {
		h.MarkObject(v.AsObj())
	}
}

// MarkObject marks o gray (queues it for tracing) unless it is already
// marked. Safe to call with a nil interface value.
func (h *Heap) MarkObject(o value.Obj) {
	if o == nil {
		return
	}
	hdr := o.Header()
	if hdr.Marked {
		return
	}
	hdr.Marked = true
	h.gray = append(h.gray, o)
}

// blacken traces the children of a gray object, marking each one gray in
// turn (they get blackened later when popped off the worklist). Leaf
// kinds (strings, natives) have no children and need no case.
func (h *Heap) blacken(o value.Obj) {
	switch t := o.(type) {
	case *value.ObjFunction:
		h.MarkObject(t.Name)
		for _, c := range t.Chunk.Constants {
			h.MarkValue(c)
		}
	case *value.ObjClosure:
		h.MarkObject(t.Function)
		for _, u := range t.Upvalues {
			h.MarkObject(u)
		}
	case *value.ObjUpvalue:
		// An open upvalue's referent lives on the value stack and is
		// reachable (and marked) through that root directly; only the
		// closed-over copy is this object's own responsibility to trace.
		h.MarkValue(t.Closed)
	case *value.ObjClass:
		h.MarkObject(t.Name)
		t.Methods.Each(func(k *value.ObjString, v value.Value) {
			h.MarkObject(k)
			h.MarkValue(v)
		})
	case *value.ObjInstance:
		h.MarkObject(t.Class)
		t.Fields.Each(func(k *value.ObjString, v value.Value) {
			h.MarkObject(k)
			h.MarkValue(v)
		})
	case *value.ObjBoundMethod:
		h.MarkValue(t.Receiver)
		h.MarkObject(t.Method)
	}
}

// sweep walks the intrusive object list, unmarking survivors (readying
// them for the next cycle) and unlinking+freeing everything left white.
func (h *Heap) sweep() {
	var prev value.Obj
	obj := h.objects
	for obj != nil {
		hdr := obj.Header()
		if hdr.Marked {
			hdr.Marked = false
			prev = obj
			obj = hdr.Next
			continue
		}
		unreached := obj
		obj = hdr.Next
		if prev != nil {
			prev.Header().Next = obj
		} else {
			h.objects = obj
		}
		h.bytesAllocated -= objSize(unreached)
	}
}

// FreeAll unconditionally releases every object the heap knows about,
// resets the interning pool, and clears the gray worklist. It is the
// counterpart of clox's free_vm: called once, at interpreter teardown,
// regardless of reachability.
func (h *Heap) FreeAll() {
	obj := h.objects
	for obj != nil {
		next := obj.Header().Next
		h.bytesAllocated -= objSize(obj)
		obj = next
	}
	h.objects = nil
	h.strings = value.NewTable()
	h.gray = nil
}

// objSize estimates the footprint of o for accounting purposes. Go does
// not expose object sizes the way a C allocator's bookkeeping would, so
// this is an approximation — it is self-consistent (the same estimate
// used to grow bytesAllocated in heap.go is reproduced here to shrink
// it), which is all the collection-threshold heuristic requires.
func objSize(o value.Obj) int64 {
	switch t := o.(type) {
	case *value.ObjString:
		return int64(len(t.Chars)) + 32
	case *value.ObjFunction:
		return 64
	case *value.ObjNative:
		return 32
	case *value.ObjClosure:
		return int64(24 + 8*len(t.Upvalues))
	case *value.ObjUpvalue:
		return 40
	case *value.ObjClass:
		return 48
	case *value.ObjInstance:
		return 48
	case *value.ObjBoundMethod:
		return 40
	default:
		return 16
	}
}
