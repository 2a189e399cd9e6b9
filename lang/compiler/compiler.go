// Package compiler implements the single-pass Pratt-style compiler: it
// parses a token stream and emits bytecode in the same forward pass,
// with no intermediate parse tree. It resolves lexical scopes, locals,
// and upvalues as it goes, and hands the VM a single top-level Function
// once parsing reaches EOF without error.
package compiler

import (
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/dolthub/swiss"
	"github.com/mna/loxvm/lang/gc"
	"github.com/mna/loxvm/lang/opcode"
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

// ErrorList aggregates compile diagnostics using the same machinery the
// standard library's own parser uses to report multiple errors from one
// pass. It implements error; its Error() string holds the first entry and
// a count of the rest, so callers wanting every entry range over the list.
type ErrorList = goscanner.ErrorList

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxJumpLen  = 1<<16 - 1
)

// FunctionKind distinguishes the handful of ways a Compiler frame came to
// exist, since return semantics and slot-0 naming differ across them.
type FunctionKind uint8

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
)

type local struct {
	name       string
	depth      int // -1 is the "declared but not yet initialized" sentinel
	isCaptured bool
}

type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcState is one frame of the compiler's function stack: the state
// needed to compile a single function body, threaded to its lexically
// enclosing frame so upvalue resolution can walk outward.
type funcState struct {
	enclosing *funcState

	fn   *value.ObjFunction
	kind FunctionKind

	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	// constCache deduplicates string constants (identifier names, string
	// literals) within this function's own chunk, so that e.g. three
	// reads of the same global share one constant-pool slot instead of
	// three. The constant pool is indexed by a single byte, so this
	// matters most for pathological functions with many repeated names.
	constCache *swiss.Map[string, uint8]
}

// classState tracks the class currently being compiled, so method bodies
// can recognize `this` and so a future `super` could find its enclosing
// class; chained the same way funcState is, for nested classes.
type classState struct {
	enclosing *classState
}

// Compiler drives one compilation of a source buffer to a top-level
// Function. It is single-use: construct one with New per call to Compile.
type Compiler struct {
	heap *gc.Heap
	scan scanner.Scanner

	cur  token.Token
	prev token.Token

	hadError  bool
	panicMode bool
	errs      ErrorList

	fn    *funcState
	class *classState
}

// New returns a Compiler that allocates heap objects (function shells,
// interned strings) through heap.
func New(heap *gc.Heap) *Compiler {
	return &Compiler{heap: heap}
}

// Compile parses and compiles source in its entirety, returning the
// implicit top-level script Function. A non-nil error means compilation
// failed — the parser still ran to end of input, collecting every
// diagnostic it could, but the returned Function must not be executed.
func Compile(heap *gc.Heap, source string) (*value.ObjFunction, error) {
	c := New(heap)
	return c.compile(source)
}

// markRoots marks every Function still under construction, walking the
// enclosing chain of Compiler frames — the compile-time root set the GC
// needs while an allocation mid-compilation triggers a collection (spec
// §4.6). compile installs it on the heap alongside the root marker the
// heap already had (the owning VM's), and the VM restores its own
// afterward.
func (c *Compiler) markRoots(mark func(value.Value)) {
	for fs := c.fn; fs != nil; fs = fs.enclosing {
		c.heap.MarkObject(fs.fn)
	}
}

func (c *Compiler) compile(source string) (*value.ObjFunction, error) {
	ownerRoots := c.heap.MarkRoots
	c.heap.MarkRoots = func(mark func(value.Value)) {
		if ownerRoots != nil {
			ownerRoots(mark)
		}
		c.markRoots(mark)
	}
	c.scan.Init(source)
	c.fn = &funcState{
		fn:   c.heap.NewFunction(),
		kind: KindScript,
		// Slot 0 is reserved for the callee/this even in the top-level
		// script, where nothing ever reads it.
		locals:     []local{{name: "", depth: 0}},
		constCache: swiss.NewMap[string, uint8](8),
	}

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")

	fn := c.endFunction()
	if c.hadError {
		return nil, c.errs.Err()
	}
	return fn, nil
}

// endFunction emits the implicit trailing return and pops the current
// function frame off the compiler's stack, returning the Function that
// frame built.
func (c *Compiler) endFunction() *value.ObjFunction {
	c.emitReturn()
	fn := c.fn.fn
	c.fn = c.fn.enclosing
	return fn
}

func (c *Compiler) currentChunk() *value.Chunk { return &c.fn.fn.Chunk }

// --- token stream plumbing -------------------------------------------------

func (c *Compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.scan.Scan()
		if c.cur.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool { return c.cur.Kind == k }

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.cur.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) { c.errorAt(c.cur, msg) }
func (c *Compiler) error(msg string)          { c.errorAt(c.prev, msg) }

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	where := ""
	switch tok.Kind {
	case token.EOF:
		where = " at end"
	case token.ILLEGAL:
		// the lexeme already holds the scanner's own diagnostic
	default:
		where = " at '" + tok.Lexeme + "'"
	}
	c.errs.Add(gotoken.Position{Line: tok.Line}, "Error"+where+": "+msg)
}

// synchronize discards tokens until it reaches a plausible statement
// boundary, so one reported error doesn't cascade into a flood of bogus
// follow-on errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

// --- scope management -------------------------------------------------

func (c *Compiler) beginScope() { c.fn.scopeDepth++ }

func (c *Compiler) endScope() {
	c.fn.scopeDepth--
	fs := c.fn
	for len(fs.locals) > 0 && fs.locals[len(fs.locals)-1].depth > fs.scopeDepth {
		last := fs.locals[len(fs.locals)-1]
		if last.isCaptured {
			c.emitByte(byte(opcode.CLOSE_UPVALUE))
		} else {
			c.emitByte(byte(opcode.POP))
		}
		fs.locals = fs.locals[:len(fs.locals)-1]
	}
}
