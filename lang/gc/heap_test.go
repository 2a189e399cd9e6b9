package gc

import (
	"testing"

	"github.com/mna/loxvm/lang/value"
	"github.com/stretchr/testify/require"
)

func TestInternStringDeduplicates(t *testing.T) {
	h := NewHeap()
	a := h.InternString("hello")
	b := h.InternString("hello")
	require.Same(t, a, b)

	c := h.InternString("world")
	require.NotSame(t, a, c)
}

func TestCollectFreesUnreachableStrings(t *testing.T) {
	h := NewHeap()
	var root *value.ObjString
	h.MarkRoots = func(mark func(value.Value)) {
		if root != nil {
			mark(value.FromObj(root))
		}
	}

	root = h.InternString("kept")
	h.InternString("garbage")

	h.Collect()

	require.NotNil(t, h.strings.FindString("kept", value.HashString("kept")))
	require.Nil(t, h.strings.FindString("garbage", value.HashString("garbage")))
}

func TestCollectRetracesClosureGraph(t *testing.T) {
	h := NewHeap()
	fn := h.NewFunction()
	fn.Name = h.InternString("outer")
	closure := h.NewClosure(fn)

	var root *value.ObjClosure
	h.MarkRoots = func(mark func(value.Value)) {
		if root != nil {
			mark(value.FromObj(root))
		}
	}
	root = closure

	h.Collect()

	require.False(t, fn.Hdr.Marked) // unmarked again after sweep, ready for next cycle
	require.NotNil(t, h.strings.FindString("outer", value.HashString("outer")))
}

func TestCollectWithNoRootsFreesEverything(t *testing.T) {
	h := NewHeap()
	h.MarkRoots = func(mark func(value.Value)) {}
	h.InternString("anything")
	h.Collect()
	require.Equal(t, int64(0), h.BytesAllocated())
}

func TestStressGCCollectsOnEveryAllocation(t *testing.T) {
	h := NewHeap(WithStressGC(true))
	h.MarkRoots = func(mark func(value.Value)) {}
	h.InternString("a")
	h.InternString("b")
	require.Equal(t, int64(0), h.BytesAllocated())
}

func TestFreeAllClearsHeap(t *testing.T) {
	h := NewHeap()
	h.InternString("a")
	h.NewFunction()
	h.FreeAll()
	require.Equal(t, int64(0), h.BytesAllocated())
	require.Nil(t, h.strings.FindString("a", value.HashString("a")))
}
