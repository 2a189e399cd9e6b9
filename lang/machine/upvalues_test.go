package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/loxvm/lang/gc"
)

func TestCaptureUpvalueMaintainsDescendingAddressOrder(t *testing.T) {
	vm := New()

	// Capture out of ascending order; captureUpvalue must splice each new
	// entry into its descending-address slot rather than just prepending.
	u5 := vm.captureUpvalue(5)
	u2 := vm.captureUpvalue(2)
	u8 := vm.captureUpvalue(8)
	u3 := vm.captureUpvalue(3)

	require.True(t, gc.OpenUpvaluesSorted(openUpvaluesSlice(vm)))
	require.Same(t, u8, vm.openUpvalues)

	// Re-capturing an already-open slot returns the existing upvalue rather
	// than splicing in a duplicate.
	require.Same(t, u5, vm.captureUpvalue(5))
	require.Same(t, u2, vm.captureUpvalue(2))
	require.Same(t, u3, vm.captureUpvalue(3))
	require.True(t, gc.OpenUpvaluesSorted(openUpvaluesSlice(vm)))

	vm.closeUpvalues(3)
	require.True(t, gc.OpenUpvaluesSorted(openUpvaluesSlice(vm)))
	require.False(t, u8.IsOpen())
	require.False(t, u5.IsOpen())
	require.False(t, u3.IsOpen())
	require.True(t, u2.IsOpen())
	require.Nil(t, vm.openUpvalues.NextOpen)
	require.Same(t, u2, vm.openUpvalues)
}
