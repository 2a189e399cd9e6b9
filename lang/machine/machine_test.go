package machine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"

	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/value"
)

func openUpvaluesSlice(vm *VM) []*value.ObjUpvalue {
	var list []*value.ObjUpvalue
	for u := vm.openUpvalues; u != nil; u = u.NextOpen {
		list = append(list, u)
	}
	return list
}

func run(t *testing.T, src string) (string, string, Result) {
	t.Helper()
	vm := New()
	var out, errOut bytes.Buffer
	vm.Stdout = &out
	vm.Stderr = &errOut
	res := vm.Interpret(src)
	return out.String(), errOut.String(), res
}

func requireOutput(t *testing.T, src, want string) {
	t.Helper()
	out, errOut, res := run(t, src)
	require.Equal(t, ResultOK, res, "stderr: %s", errOut)
	if diff := pretty.Compare(strings.TrimRight(out, "\n"), want); diff != "" {
		t.Fatalf("output mismatch (-got +want):\n%s", diff)
	}
}

func TestArithmeticPrecedence(t *testing.T) {
	requireOutput(t, "print 1 + 2 * 3 - 4 / 2;", "5")
}

func TestGlobalsAndBlockScoping(t *testing.T) {
	requireOutput(t, `
		var a = "outer";
		{ var a = "inner"; print a; }
		print a;
	`, "inner\nouter")
}

func TestControlFlowForLoop(t *testing.T) {
	requireOutput(t, `
		var s = 0;
		for (var i = 1; i <= 5; i = i + 1) s = s + i;
		print s;
	`, "15")
}

func TestClosuresCaptureUpvalues(t *testing.T) {
	requireOutput(t, `
		fun makeCounter() {
			var n = 0;
			fun inc() { n = n + 1; return n; }
			return inc;
		}
		var c = makeCounter();
		print c();
		print c();
		print c();
	`, "1\n2\n3")
}

func TestClassesWithInitAndMethods(t *testing.T) {
	requireOutput(t, `
		class Greeter {
			init(who) { this.who = who; }
			hi() { print "hi " + this.who; }
		}
		Greeter("world").hi();
	`, "hi world")
}

func TestRuntimeErrorOnMixedAddOperands(t *testing.T) {
	_, errOut, res := run(t, `print 1 + "a";`)
	require.Equal(t, ResultRuntimeError, res)
	require.Contains(t, errOut, "Operands must be two numbers or two strings.")
	require.Contains(t, errOut, "[line 1] in script")
}

func TestBalancedStackAfterSuccessfulRun(t *testing.T) {
	vm := New()
	var out bytes.Buffer
	vm.Stdout = &out
	res := vm.Interpret(`var a = 1; { var b = 2; print a + b; }`)
	require.Equal(t, ResultOK, res)
	require.Equal(t, 0, vm.stackTop)
	require.Equal(t, 0, vm.frameCount)
}

func TestStringEqualityAndConcatenation(t *testing.T) {
	requireOutput(t, `print "foo" + "bar" == "foobar";`, "true")
}

func TestRoundTripVarVsLiteral(t *testing.T) {
	out1, _, res1 := run(t, `print 1 + 2;`)
	out2, _, res2 := run(t, `var x = 1 + 2; print x;`)
	require.Equal(t, res1, res2)
	require.Equal(t, out1, out2)
	require.Equal(t, "3", strings.TrimRight(out2, "\n"))
}

func TestRepeatedInterpretOnFreshVMsAreIdentical(t *testing.T) {
	src := `print 2 * (3 + 4);`
	out1, _, res1 := run(t, src)
	out2, _, res2 := run(t, src)
	require.Equal(t, res1, res2)
	require.Equal(t, out1, out2)
}

func TestTraceExecEmitsOneLinePerInstruction(t *testing.T) {
	vm := New()
	var out, trace bytes.Buffer
	vm.Stdout = &out
	vm.TraceExec = &trace
	res := vm.Interpret(`print 1 + 2;`)
	require.Equal(t, ResultOK, res)
	require.Contains(t, trace.String(), "OP_ADD")
	require.Contains(t, trace.String(), "OP_PRINT")
}

func TestCollectionDuringExecutionPreservesReachableObjects(t *testing.T) {
	// Stress mode makes every allocation collect; the default threshold is
	// far above what this program allocates.
	vm := New(WithGCOptions(gc.WithStressGC(true)))
	var out bytes.Buffer
	vm.Stdout = &out
	res := vm.Interpret(`
		var total = "";
		for (var i = 0; i < 50; i = i + 1) {
			total = total + "x";
		}
		print total;
	`)
	require.Equal(t, ResultOK, res)
	require.Equal(t, strings.Repeat("x", 50), strings.TrimRight(out.String(), "\n"))
}
