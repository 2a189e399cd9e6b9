package interpcmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/loxvm/internal/config"
	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/machine"
)

// Exit codes follow the sysexits.h convention github.com/mna/mainer
// expects its callers to return.
const (
	ExitOK           = 0
	ExitUsage        = 64
	ExitCompileError = 65
	ExitRuntimeError = 70
	ExitIOError      = 74
)

// Run reads source from path (or stdin if path is empty), compiles and
// executes it against a freshly constructed VM, and returns the process
// exit code for the outcome. ctx is accepted for symmetry with other
// mainer-dispatched subcommands but unused here: a single Interpret call
// runs to completion with no natural cancellation point, since the VM is
// single-threaded and has no background work to cancel.
func Run(_ context.Context, stdio mainer.Stdio, cfg config.Config, path string) int {
	source, err := readSource(stdio.Stdin, path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
		return ExitIOError
	}

	vm := machine.New(
		machine.WithMaxFrames(cfg.MaxFrames),
		machine.WithMaxStack(cfg.MaxStack),
		machine.WithGCOptions(
			gc.WithStressGC(cfg.GCStress),
			gc.WithGrowFactor(cfg.GCGrowFactor),
		),
	)
	vm.Stdout = stdio.Stdout
	vm.Stderr = stdio.Stderr

	switch result := vm.Interpret(source); result {
	case machine.ResultOK:
		return ExitOK
	case machine.ResultCompileError:
		return ExitCompileError
	case machine.ResultRuntimeError:
		return ExitRuntimeError
	default:
		return ExitRuntimeError
	}
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}
