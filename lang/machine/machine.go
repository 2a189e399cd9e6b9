// Package machine implements the stack-based virtual machine: call
// frames, the value stack, upvalue management, property and method
// dispatch, and runtime error reporting. It drives the GC's collection
// cycles by supplying the machine's own state — plus, during compilation,
// the compiler's — as the root set.
package machine

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/opcode"
	"github.com/mna/loxvm/lang/value"
)

// FramesMax bounds the call-frame stack; StackMax follows from it since
// each frame can address up to 256 slots (one-byte local operands).
const (
	FramesMax = 64
	StackMax  = FramesMax * 256
)

// Result is the outcome of a top-level Interpret call.
type Result uint8

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	default:
		return "unknown result"
	}
}

// CallFrame is one activation record: the closure being run, its
// instruction pointer, and the index into the VM's value stack where its
// local slot 0 begins.
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int
}

// VM owns every piece of mutable interpreter state: the value and frame
// stacks, globals, the open-upvalues list, and the heap they all
// allocate through. There is no global/singleton state; a second VM is
// entirely independent.
type VM struct {
	heap *gc.Heap

	stack    []value.Value
	stackTop int

	frames     []CallFrame
	frameCount int

	globals      *value.Table
	openUpvalues *value.ObjUpvalue
	initString   *value.ObjString

	// Stdout/Stderr receive PRINT output and diagnostics respectively,
	// configurable rather than hard-coded to os.Stdout/os.Stderr so tests
	// and embedders can capture them.
	Stdout io.Writer
	Stderr io.Writer

	// TraceExec, if non-nil, receives one line per dispatched instruction
	// naming the opcode and the current frame's ip — opcode names only, no
	// operand decoding table.
	TraceExec io.Writer
}

// Option configures a new VM. The zero-value set of options reproduces the
// compiled-in defaults (FramesMax/StackMax, no stress GC).
type Option func(*vmOptions)

type vmOptions struct {
	maxFrames int
	maxStack  int
	gcOpts    []gc.Option
}

// WithMaxFrames overrides FramesMax, e.g. from LOXVM_MAX_FRAMES.
func WithMaxFrames(n int) Option {
	return func(o *vmOptions) {
		if n > 0 {
			o.maxFrames = n
		}
	}
}

// WithMaxStack overrides the default StackMax derived from FramesMax, e.g.
// from LOXVM_MAX_STACK.
func WithMaxStack(n int) Option {
	return func(o *vmOptions) {
		if n > 0 {
			o.maxStack = n
		}
	}
}

// WithGCOptions forwards gc.Options to the heap this VM allocates through,
// e.g. the stress-GC and grow-factor knobs from internal/config.
func WithGCOptions(opts ...gc.Option) Option {
	return func(o *vmOptions) { o.gcOpts = append(o.gcOpts, opts...) }
}

// New constructs a VM with its own heap and globals table, registers the
// standard library, and wires the heap's GC to mark this VM's roots.
func New(opts ...Option) *VM {
	o := vmOptions{maxFrames: FramesMax, maxStack: StackMax}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxStack < o.maxFrames*256 {
		o.maxStack = o.maxFrames * 256
	}

	vm := &VM{
		heap:    gc.NewHeap(o.gcOpts...),
		stack:   make([]value.Value, o.maxStack),
		frames:  make([]CallFrame, o.maxFrames),
		globals: value.NewTable(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
	vm.heap.MarkRoots = vm.markRoots
	vm.initString = vm.heap.InternString("init")
	vm.defineNative("clock", nativeClock)
	return vm
}

// Interpret compiles and runs source to completion. The source buffer is
// owned by the caller and must outlive this call.
func (vm *VM) Interpret(source string) Result {
	fn, err := compiler.Compile(vm.heap, source)
	vm.heap.MarkRoots = vm.markRoots
	if err != nil {
		if list, ok := err.(compiler.ErrorList); ok {
			for _, e := range list {
				fmt.Fprintf(vm.Stderr, "[line %d] %s\n", e.Pos.Line, e.Msg)
			}
		} else {
			fmt.Fprintln(vm.Stderr, err)
		}
		return ResultCompileError
	}

	// Protect fn on the stack until the closure wrapping it exists and is
	// itself pushed, so no allocation in between can sweep it.
	vm.push(value.FromObj(fn))
	closure := vm.heap.NewClosure(fn)
	vm.pop()
	vm.push(value.FromObj(closure))

	if !vm.call(closure, 0) {
		return ResultRuntimeError
	}
	return vm.run()
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// run is the dispatch loop: read one instruction byte at a time through
// the current frame's ip, acting on it, until a RETURN unwinds the
// outermost frame or a runtime error aborts execution.
func (vm *VM) run() Result {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.closure.Function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := frame.closure.Function.Chunk.Code[frame.ip]
		lo := frame.closure.Function.Chunk.Code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return frame.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *value.ObjString {
		s, _ := readConstant().AsString()
		return s
	}

	for {
		if vm.TraceExec != nil {
			fmt.Fprintf(vm.TraceExec, "%04d %s\n", frame.ip, opcode.Code(frame.closure.Function.Chunk.Code[frame.ip]))
		}
		op := opcode.Code(readByte())
		switch op {
		case opcode.CONSTANT:
			vm.push(readConstant())

		case opcode.NIL:
			vm.push(value.Nil)
		case opcode.TRUE:
			vm.push(value.Bool(true))
		case opcode.FALSE:
			vm.push(value.Bool(false))
		case opcode.POP:
			vm.pop()

		case opcode.GET_LOCAL:
			slot := readByte()
			vm.push(vm.stack[frame.slots+int(slot)])
		case opcode.SET_LOCAL:
			slot := readByte()
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case opcode.GET_GLOBAL:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ResultRuntimeError
			}
			vm.push(v)
		case opcode.SET_GLOBAL:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				vm.runtimeError("Undefined variable '%s'.", name.Chars)
				return ResultRuntimeError
			}
		case opcode.DEFINE_GLOBAL:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case opcode.GET_UPVALUE:
			slot := readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case opcode.SET_UPVALUE:
			slot := readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)
		case opcode.CLOSE_UPVALUE:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case opcode.EQUAL:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case opcode.GREATER:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a > b) }) {
				return ResultRuntimeError
			}
		case opcode.LESS:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.Bool(a < b) }) {
				return ResultRuntimeError
			}

		case opcode.ADD:
			if !vm.add() {
				return ResultRuntimeError
			}
		case opcode.SUBTRACT:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a - b) }) {
				return ResultRuntimeError
			}
		case opcode.MULTIPLY:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a * b) }) {
				return ResultRuntimeError
			}
		case opcode.DIVIDE:
			if !vm.binaryNumberOp(func(a, b float64) value.Value { return value.Number(a / b) }) {
				return ResultRuntimeError
			}

		case opcode.NOT:
			vm.push(value.Bool(vm.pop().IsFalsey()))
		case opcode.NEGATE:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return ResultRuntimeError
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case opcode.PRINT:
			fmt.Fprintln(vm.Stdout, vm.pop().String())

		case opcode.JUMP:
			offset := readShort()
			frame.ip += offset
		case opcode.JUMP_IF_FALSE:
			offset := readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}
		case opcode.LOOP:
			offset := readShort()
			frame.ip -= offset

		case opcode.CALL:
			argc := int(readByte())
			if !vm.callValue(vm.peek(argc), argc) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case opcode.INVOKE:
			name := readString()
			argc := int(readByte())
			if !vm.invoke(name, argc) {
				return ResultRuntimeError
			}
			frame = &vm.frames[vm.frameCount-1]

		case opcode.CLOSURE:
			fn, _ := readConstant().AsObj().(*value.ObjFunction)
			closure := vm.heap.NewClosure(fn)
			vm.push(value.FromObj(closure))
			for i := range closure.Upvalues {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.slots + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case opcode.CLASS:
			name := readString()
			vm.push(value.FromObj(vm.heap.NewClass(name)))
		case opcode.METHOD:
			vm.defineMethod(readString())

		case opcode.GET_PROPERTY:
			if !vm.getProperty(readString()) {
				return ResultRuntimeError
			}
		case opcode.SET_PROPERTY:
			if !vm.setProperty(readString()) {
				return ResultRuntimeError
			}

		case opcode.RETURN:
			result := vm.pop()
			vm.closeUpvalues(frame.slots)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return ResultOK
			}
			vm.stackTop = frame.slots
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]

		default:
			vm.runtimeError("Unknown opcode %d.", op)
			return ResultRuntimeError
		}
	}
}

func (vm *VM) binaryNumberOp(op func(a, b float64) value.Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		vm.runtimeError("Operands must be numbers.")
		return false
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(op(a, b))
	return true
}

func (vm *VM) add() bool {
	a, b := vm.peek(1), vm.peek(0)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return true
	case a.IsString() && b.IsString():
		as, _ := a.AsString()
		bs, _ := b.AsString()
		// The concatenation result isn't yet reachable from any root until
		// InternString returns and we push it, so nothing here may allocate
		// in between.
		result := vm.heap.InternString(as.Chars + bs.Chars)
		vm.pop()
		vm.pop()
		vm.push(value.FromObj(result))
		return true
	default:
		vm.runtimeError("Operands must be two numbers or two strings.")
		return false
	}
}

// runtimeError prints the formatted message followed by a stack trace,
// newest frame first, and resets VM state so a subsequent Interpret call
// (if any) starts clean.
func (vm *VM) runtimeError(format string, args ...interface{}) {
	fmt.Fprintf(vm.Stderr, format+"\n", args...)

	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		line := fn.Chunk.Lines[f.ip-1]
		fmt.Fprintf(vm.Stderr, "[line %d] in %s\n", line, fn.DisplayName())
	}
	vm.resetStack()
}
