package machine

import "github.com/mna/loxvm/lang/value"

// markRoots is installed as the heap's MarkRoots callback (see VM.New):
// every place a live Value or Obj can be reached from without going
// through another heap object first.
func (vm *VM) markRoots(mark func(value.Value)) {
	for i := 0; i < vm.stackTop; i++ {
		mark(vm.stack[i])
	}

	for i := 0; i < vm.frameCount; i++ {
		vm.heap.MarkObject(vm.frames[i].closure)
	}

	for u := vm.openUpvalues; u != nil; u = u.NextOpen {
		vm.heap.MarkObject(u)
	}

	vm.globals.Each(func(k *value.ObjString, v value.Value) {
		vm.heap.MarkObject(k)
		mark(v)
	})

	vm.heap.MarkObject(vm.initString)
}
