package gc

import (
	"unsafe"

	"golang.org/x/exp/slices"

	"github.com/mna/loxvm/lang/value"
)

// OpenUpvaluesSorted reports whether list is ordered by strictly descending
// stack address, the invariant the VM's open-upvalues list must maintain so
// captureUpvalue can stop its walk at the first non-matching slot instead of
// scanning the whole list. It exists to let tests assert the invariant
// directly rather than inferring it from observed behavior.
func OpenUpvaluesSorted(list []*value.ObjUpvalue) bool {
	// IsSortedFunc accepts equal neighbours, so shared slots are rejected
	// separately to keep the order strict.
	for i := 1; i < len(list); i++ {
		if list[i].Location == list[i-1].Location {
			return false
		}
	}
	return slices.IsSortedFunc(list, func(a, b *value.ObjUpvalue) int {
		pa, pb := uintptr(unsafe.Pointer(a.Location)), uintptr(unsafe.Pointer(b.Location))
		switch {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		default:
			return 0
		}
	})
}
