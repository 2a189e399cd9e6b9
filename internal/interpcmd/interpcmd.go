// Package interpcmd wires command-line argument parsing to the VM: a thin
// shell around machine.Interpret, built as a Cmd struct with flag-tagged
// fields dispatched through github.com/mna/mainer.
package interpcmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/loxvm/internal/config"
)

const binName = "loxvm"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>
       %[1]s -h|--help
       %[1]s -v|--version

Single-pass bytecode compiler and VM for the Lox scripting language.

With <path>, compiles and runs the named source file. With no <path>,
reads source from stdin.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Cmd is the loxvm command line: built-in help/version flags plus whatever
// exit-code behavior the run path needs. The GC tunables are not flags —
// they come from the environment via internal/config, keeping a line
// between flags (CLI-facing) and env vars (operational tuning a script
// author never sees).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one source file may be specified")
	}
	return nil
}

// Main is the process entry point's counterpart: parse flags, dispatch to
// Run, and translate the result into a mainer.ExitCode.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.ExitCode(ExitUsage)
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid configuration: %s\n", err)
		return mainer.ExitCode(ExitUsage)
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	var path string
	if len(c.args) == 1 {
		path = c.args[0]
	}
	return mainer.ExitCode(Run(ctx, stdio, cfg, path))
}
