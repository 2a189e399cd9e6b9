package machine

import "github.com/mna/loxvm/lang/value"

// callValue dispatches a call expression's callee by heap-object kind.
// argc is the number of arguments already on the stack above the callee.
func (vm *VM) callValue(callee value.Value, argc int) bool {
	if !callee.IsObj() {
		vm.runtimeError("Can only call functions and classes.")
		return false
	}

	switch o := callee.AsObj().(type) {
	case *value.ObjClosure:
		return vm.call(o, argc)

	case *value.ObjClass:
		instance := vm.heap.NewInstance(o)
		vm.stack[vm.stackTop-argc-1] = value.FromObj(instance)
		if initializer, ok := o.Methods.Get(vm.initString); ok {
			closure, _ := initializer.AsObj().(*value.ObjClosure)
			return vm.call(closure, argc)
		}
		if argc != 0 {
			vm.runtimeError("Expected 0 arguments but got %d.", argc)
			return false
		}
		return true

	case *value.ObjBoundMethod:
		vm.stack[vm.stackTop-argc-1] = o.Receiver
		return vm.call(o.Method, argc)

	case *value.ObjNative:
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		result, err := o.Fn(args)
		if err != nil {
			vm.runtimeError("%s", err.Error())
			return false
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return true

	default:
		vm.runtimeError("Can only call functions and classes.")
		return false
	}
}

// call pushes a new frame for closure, checking arity and the frame-
// stack limit first.
func (vm *VM) call(closure *value.ObjClosure, argc int) bool {
	if argc != closure.Function.Arity {
		vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
		return false
	}
	if vm.frameCount == len(vm.frames) {
		vm.runtimeError("Stack overflow.")
		return false
	}

	frame := &vm.frames[vm.frameCount]
	vm.frameCount++
	frame.closure = closure
	frame.ip = 0
	frame.slots = vm.stackTop - argc - 1
	return true
}

// invoke is the INVOKE fast path: when the receiver is an instance whose
// own fields don't shadow the name, look the method up on the class and
// call it directly without first materializing a BoundMethod.
func (vm *VM) invoke(name *value.ObjString, argc int) bool {
	receiver := vm.peek(argc)
	instance, ok := receiver.AsObj().(*value.ObjInstance)
	if !ok {
		vm.runtimeError("Only instances have methods.")
		return false
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.ObjClass, name *value.ObjString, argc int) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	closure, _ := method.AsObj().(*value.ObjClosure)
	return vm.call(closure, argc)
}

func (vm *VM) bindMethod(class *value.ObjClass, name *value.ObjString) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		vm.runtimeError("Undefined property '%s'.", name.Chars)
		return false
	}
	closure, _ := method.AsObj().(*value.ObjClosure)
	bound := vm.heap.NewBoundMethod(vm.peek(0), closure)
	vm.pop()
	vm.push(value.FromObj(bound))
	return true
}

func (vm *VM) defineMethod(name *value.ObjString) {
	method := vm.peek(0)
	class, _ := vm.peek(1).AsObj().(*value.ObjClass)
	class.Methods.Set(name, method)
	vm.pop()
}

// getProperty implements GET_PROPERTY: field lookup first, then a bound
// method, erroring if neither exists.
func (vm *VM) getProperty(name *value.ObjString) bool {
	instance, ok := vm.peek(0).AsObj().(*value.ObjInstance)
	if !ok {
		vm.runtimeError("Only instances have properties.")
		return false
	}

	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return true
	}
	return vm.bindMethod(instance.Class, name)
}

// setProperty implements SET_PROPERTY: the assigned value stays on the
// stack afterward as the expression's own value.
func (vm *VM) setProperty(name *value.ObjString) bool {
	instance, ok := vm.peek(1).AsObj().(*value.ObjInstance)
	if !ok {
		vm.runtimeError("Only instances have fields.")
		return false
	}

	instance.Fields.Set(name, vm.peek(0))
	v := vm.pop()
	vm.pop()
	vm.push(v)
	return true
}
