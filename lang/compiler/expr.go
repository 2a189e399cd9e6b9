package compiler

import (
	"strconv"

	"github.com/mna/loxvm/lang/opcode"
	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

// precedence orders binary operators from loosest- to tightest-binding,
// low to high.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix parseFn
	infix  parseFn
	prec   precedence
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LEFT_PAREN:    {prefix: (*Compiler).grouping, infix: (*Compiler).call, prec: precCall},
		token.DOT:           {infix: (*Compiler).dot, prec: precCall},
		token.MINUS:         {prefix: (*Compiler).unary, infix: (*Compiler).binary, prec: precTerm},
		token.PLUS:          {infix: (*Compiler).binary, prec: precTerm},
		token.SLASH:         {infix: (*Compiler).binary, prec: precFactor},
		token.STAR:          {infix: (*Compiler).binary, prec: precFactor},
		token.BANG:          {prefix: (*Compiler).unary},
		token.BANG_EQUAL:    {infix: (*Compiler).binary, prec: precEquality},
		token.EQUAL_EQUAL:   {infix: (*Compiler).binary, prec: precEquality},
		token.GREATER:       {infix: (*Compiler).binary, prec: precComparison},
		token.GREATER_EQUAL: {infix: (*Compiler).binary, prec: precComparison},
		token.LESS:          {infix: (*Compiler).binary, prec: precComparison},
		token.LESS_EQUAL:    {infix: (*Compiler).binary, prec: precComparison},
		token.IDENTIFIER:    {prefix: (*Compiler).variable},
		token.STRING:        {prefix: (*Compiler).stringLit},
		token.NUMBER:        {prefix: (*Compiler).number},
		token.AND:           {infix: (*Compiler).and_, prec: precAnd},
		token.OR:            {infix: (*Compiler).or_, prec: precOr},
		token.FALSE:         {prefix: (*Compiler).literal},
		token.TRUE:          {prefix: (*Compiler).literal},
		token.NIL:           {prefix: (*Compiler).literal},
		token.THIS:          {prefix: (*Compiler).this_},
		token.SUPER:         {prefix: (*Compiler).super_},
	}
}

func getRule(k token.Kind) parseRule { return rules[k] }

func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	rule := getRule(c.prev.Kind)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.cur.Kind).prec {
		c.advance()
		infix := getRule(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.prev.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLit(_ bool) {
	c.emitBytes(byte(opcode.CONSTANT), c.stringConstant(scanner.Unquote(c.prev.Lexeme)))
}

func (c *Compiler) literal(_ bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitOp(opcode.FALSE)
	case token.TRUE:
		c.emitOp(opcode.TRUE)
	case token.NIL:
		c.emitOp(opcode.NIL)
	}
}

func (c *Compiler) unary(_ bool) {
	opKind := c.prev.Kind
	c.parsePrecedence(precUnary)
	switch opKind {
	case token.MINUS:
		c.emitOp(opcode.NEGATE)
	case token.BANG:
		c.emitOp(opcode.NOT)
	}
}

func (c *Compiler) binary(_ bool) {
	opKind := c.prev.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.prec + 1)

	switch opKind {
	case token.BANG_EQUAL:
		c.emitOp(opcode.EQUAL)
		c.emitOp(opcode.NOT)
	case token.EQUAL_EQUAL:
		c.emitOp(opcode.EQUAL)
	case token.GREATER:
		c.emitOp(opcode.GREATER)
	case token.GREATER_EQUAL:
		c.emitOp(opcode.LESS)
		c.emitOp(opcode.NOT)
	case token.LESS:
		c.emitOp(opcode.LESS)
	case token.LESS_EQUAL:
		c.emitOp(opcode.GREATER)
		c.emitOp(opcode.NOT)
	case token.PLUS:
		c.emitOp(opcode.ADD)
	case token.MINUS:
		c.emitOp(opcode.SUBTRACT)
	case token.STAR:
		c.emitOp(opcode.MULTIPLY)
	case token.SLASH:
		c.emitOp(opcode.DIVIDE)
	}
}

func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(opcode.JUMP_IF_FALSE)
	c.emitOp(opcode.POP)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(opcode.JUMP_IF_FALSE)
	endJump := c.emitJump(opcode.JUMP)
	c.patchJump(elseJump)
	c.emitOp(opcode.POP)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

func (c *Compiler) call(_ bool) {
	argc := c.argumentList()
	c.emitBytes(byte(opcode.CALL), argc)
}

func (c *Compiler) argumentList() uint8 {
	var argc int
	if !c.check(token.RIGHT_PAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RIGHT_PAREN, "Expect ')' after arguments.")
	return uint8(argc)
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.IDENTIFIER, "Expect property name after '.'.")
	name := c.identifierConstant(c.prev.Lexeme)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitBytes(byte(opcode.SET_PROPERTY), name)
	case c.match(token.LEFT_PAREN):
		argc := c.argumentList()
		c.emitBytes(byte(opcode.INVOKE), name)
		c.emitByte(argc)
	default:
		c.emitBytes(byte(opcode.GET_PROPERTY), name)
	}
}

func (c *Compiler) this_(_ bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.variable(false)
}

// super_ is reachable only because SUPER is a reserved keyword the
// scanner recognizes; there is no `inherit`/`<` syntax to establish a
// superclass, so any use is necessarily an error.
func (c *Compiler) super_(_ bool) {
	c.error("Can't use 'super' without a superclass.")
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev.Lexeme, canAssign)
}

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp opcode.Code
	slot := c.resolveLocal(c.fn, name)
	switch {
	case slot != -1:
		getOp, setOp = opcode.GET_LOCAL, opcode.SET_LOCAL
	default:
		if up := c.resolveUpvalue(c.fn, name); up != -1 {
			slot = up
			getOp, setOp = opcode.GET_UPVALUE, opcode.SET_UPVALUE
		} else {
			slot = int(c.identifierConstant(name))
			getOp, setOp = opcode.GET_GLOBAL, opcode.SET_GLOBAL
		}
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitBytes(byte(setOp), byte(slot))
		return
	}
	c.emitBytes(byte(getOp), byte(slot))
}
