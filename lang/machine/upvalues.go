package machine

import (
	"unsafe"

	"github.com/mna/loxvm/lang/value"
)

// addr gives a comparable ordering key for a stack slot's address. The
// value stack is a plain Go slice that never relocates once allocated
// (see VM.stack in machine.go), so pointers into it stay valid and
// comparably ordered for the lifetime of the VM.
func addr(v *value.Value) uintptr { return uintptr(unsafe.Pointer(v)) }

// captureUpvalue returns the open upvalue for the stack slot at index,
// reusing one already in vm.openUpvalues if it exists, otherwise
// allocating a new one and splicing it into the list in descending-
// address order.
func (vm *VM) captureUpvalue(slot int) *value.ObjUpvalue {
	target := &vm.stack[slot]

	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && addr(cur.Location) > addr(target) {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == target {
		return cur
	}

	created := vm.heap.NewUpvalue(target)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues hoists the value out of every open upvalue at or above
// stack index from, redirecting it to point at its own Closed field, and
// unlinks each one from the open list.
func (vm *VM) closeUpvalues(from int) {
	target := &vm.stack[from]
	for vm.openUpvalues != nil && addr(vm.openUpvalues.Location) >= addr(target) {
		u := vm.openUpvalues
		u.Close()
		vm.openUpvalues = u.NextOpen
		u.NextOpen = nil
	}
}
