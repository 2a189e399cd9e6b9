package machine

import (
	"time"

	"github.com/mna/loxvm/lang/value"
)

// processStart anchors clock()'s return value; it is a package-level var
// rather than a VM field since every VM shares the same process clock.
var processStart = time.Now()

// defineNative installs a Go-implemented function as a global, following
// the same allocation-hazard discipline as everywhere else: the native
// object is pushed before the interning/global-table insert that would
// otherwise be the only thing keeping it reachable.
func (vm *VM) defineNative(name string, fn value.NativeFn) {
	nameObj := vm.heap.InternString(name)
	vm.push(value.FromObj(nameObj))
	native := vm.heap.NewNative(name, fn)
	vm.push(value.FromObj(native))
	vm.globals.Set(nameObj, vm.stack[vm.stackTop-1])
	vm.pop()
	vm.pop()
}

// nativeClock returns the number of seconds since the VM's owning
// process started. Precision is whatever the host clock gives us; the
// spec leaves this implementation-defined.
func nativeClock(args []value.Value) (value.Value, error) {
	return value.Number(time.Since(processStart).Seconds()), nil
}
