package compiler

import (
	"github.com/dolthub/swiss"
	"github.com/mna/loxvm/lang/opcode"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(opcode.PRINT)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(opcode.POP)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LEFT_PAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.statement()

	elseJump := c.emitJump(opcode.JUMP)
	c.patchJump(thenJump)
	c.emitOp(opcode.POP)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(token.LEFT_PAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(opcode.POP)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LEFT_PAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(opcode.JUMP_IF_FALSE)
		c.emitOp(opcode.POP)
	}

	if !c.match(token.RIGHT_PAREN) {
		bodyJump := c.emitJump(opcode.JUMP)
		incrStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(opcode.POP)
		c.consume(token.RIGHT_PAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(opcode.POP)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	if c.fn.kind == KindScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}
	if c.fn.kind == KindInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(opcode.RETURN)
}

// parseVariable consumes an identifier, declares it as a local if in a
// local scope, and returns the constant-pool index to use with
// DEFINE_GLOBAL if it turns out to be global (the index is wasted, but
// harmless, for locals).
func (c *Compiler) parseVariable(errMsg string) uint8 {
	c.consume(token.IDENTIFIER, errMsg)
	name := c.prev.Lexeme
	c.declareVariable(name)
	if c.fn.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(name)
}

func (c *Compiler) defineVariable(global uint8) {
	if c.fn.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(opcode.DEFINE_GLOBAL), global)
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(opcode.NIL)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(KindFunction)
	c.defineVariable(global)
}

// function compiles one function's parameter list and body in a fresh
// Compiler frame, then emits the CLOSURE instruction (plus one
// (is_local, index) pair per captured upvalue) into the *enclosing*
// frame's chunk.
func (c *Compiler) function(kind FunctionKind) {
	name := c.prev.Lexeme
	enclosing := c.fn
	slot0Name := ""
	if kind == KindMethod || kind == KindInitializer {
		slot0Name = "this"
	}
	c.fn = &funcState{
		enclosing:  enclosing,
		fn:         c.heap.NewFunction(),
		kind:       kind,
		locals:     []local{{name: slot0Name, depth: 0}},
		constCache: swiss.NewMap[string, uint8](8),
	}
	c.fn.fn.Name = c.heap.InternString(name)

	c.beginScope()
	c.consume(token.LEFT_PAREN, "Expect '(' after function name.")
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.fn.fn.Arity++
			if c.fn.fn.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConst := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConst)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after parameters.")
	c.consume(token.LEFT_BRACE, "Expect '{' before function body.")
	c.block()

	upvalues := c.fn.upvalues
	fn := c.endFunction()

	c.emitBytes(byte(opcode.CLOSURE), c.makeConstant(value.FromObj(fn)))
	for _, up := range upvalues {
		isLocal := byte(0)
		if up.isLocal {
			isLocal = 1
		}
		c.emitBytes(isLocal, up.index)
	}
}

func (c *Compiler) classDeclaration() {
	c.consume(token.IDENTIFIER, "Expect class name.")
	name := c.prev.Lexeme
	nameConstant := c.identifierConstant(name)
	c.declareVariable(name)

	c.emitBytes(byte(opcode.CLASS), nameConstant)
	c.defineVariable(nameConstant)

	c.class = &classState{enclosing: c.class}
	defer func() { c.class = c.class.enclosing }()

	// Re-read the class as a variable so its methods can be installed on
	// it via METHOD while it sits on top of the stack.
	c.namedVariable(name, false)

	c.consume(token.LEFT_BRACE, "Expect '{' before class body.")
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after class body.")
	c.emitOp(opcode.POP) // the class value pushed by namedVariable above
}

func (c *Compiler) method() {
	c.consume(token.IDENTIFIER, "Expect method name.")
	name := c.prev.Lexeme
	constant := c.identifierConstant(name)

	kind := KindMethod
	if name == "init" {
		kind = KindInitializer
	}
	c.function(kind)
	c.emitBytes(byte(opcode.METHOD), constant)
}
