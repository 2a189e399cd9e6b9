package compiler

import (
	"testing"

	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/opcode"
	"github.com/stretchr/testify/require"
)

func compileOK(t *testing.T, src string) (*gc.Heap, []byte) {
	t.Helper()
	heap := gc.NewHeap()
	fn, err := Compile(heap, src)
	require.NoError(t, err)
	require.NotNil(t, fn)
	return heap, fn.Chunk.Code
}

func TestCompileArithmeticPrecedence(t *testing.T) {
	_, code := compileOK(t, "print 1 + 2 * 3;")
	// CONSTANT 1, CONSTANT 2, CONSTANT 3, MULTIPLY, ADD, PRINT, NIL, RETURN
	require.Equal(t, []byte{
		byte(opcode.CONSTANT), 0,
		byte(opcode.CONSTANT), 1,
		byte(opcode.CONSTANT), 2,
		byte(opcode.MULTIPLY),
		byte(opcode.ADD),
		byte(opcode.PRINT),
		byte(opcode.NIL),
		byte(opcode.RETURN),
	}, code)
}

func containsOp(code []byte, op opcode.Code) bool {
	for _, b := range code {
		if opcode.Code(b) == op {
			return true
		}
	}
	return false
}

func TestCompileGlobalVarRoundTrip(t *testing.T) {
	_, code := compileOK(t, "var a = 1; print a;")
	require.True(t, containsOp(code, opcode.DEFINE_GLOBAL))
	require.True(t, containsOp(code, opcode.GET_GLOBAL))
}

func TestCompileLocalScopeUsesLocalOps(t *testing.T) {
	_, code := compileOK(t, "{ var a = 1; print a; }")
	require.True(t, containsOp(code, opcode.GET_LOCAL))
	require.False(t, containsOp(code, opcode.GET_GLOBAL))
}

func TestCompileErrorDuplicateLocal(t *testing.T) {
	heap := gc.NewHeap()
	_, err := Compile(heap, "{ var a = 1; var a = 2; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Already a variable with this name in this scope.")
}

func TestCompileErrorReturnFromScript(t *testing.T) {
	heap := gc.NewHeap()
	_, err := Compile(heap, "return 1;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestCompileErrorReadOwnInitializer(t *testing.T) {
	heap := gc.NewHeap()
	_, err := Compile(heap, "{ var a = a; }")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestCompileErrorInvalidAssignmentTarget(t *testing.T) {
	heap := gc.NewHeap()
	_, err := Compile(heap, "1 + 2 = 3;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid assignment target.")
}

func TestCompileClosureEmitsCaptureInfo(t *testing.T) {
	_, code := compileOK(t, `
		fun makeCounter() {
			var n = 0;
			fun inc() { n = n + 1; return n; }
			return inc;
		}
	`)
	require.True(t, containsOp(code, opcode.CLOSURE))
}

func TestCompileClassEmitsClassAndMethod(t *testing.T) {
	_, code := compileOK(t, `
		class Greeter {
			init(who) { this.who = who; }
			hi() { print "hi " + this.who; }
		}
	`)
	require.True(t, containsOp(code, opcode.CLASS))
	require.True(t, containsOp(code, opcode.METHOD))
}

func TestCompileSuperIsRejectedWithoutSuperclass(t *testing.T) {
	heap := gc.NewHeap()
	_, err := Compile(heap, `
		class A {
			m() { super.m(); }
		}
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Can't use 'super' without a superclass.")
}

func TestCompileForLoopDesugarsToJumpsAndLoop(t *testing.T) {
	_, code := compileOK(t, `
		var s = 0;
		for (var i = 0; i < 3; i = i + 1) s = s + i;
	`)
	require.True(t, containsOp(code, opcode.LOOP))
}
