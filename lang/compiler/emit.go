package compiler

import (
	"github.com/mna/loxvm/lang/opcode"
	"github.com/mna/loxvm/lang/value"
)

func (c *Compiler) emitByte(b byte) {
	c.currentChunk().Write(b, c.prev.Line)
}

func (c *Compiler) emitBytes(a, b byte) {
	c.emitByte(a)
	c.emitByte(b)
}

func (c *Compiler) emitOp(op opcode.Code) { c.emitByte(byte(op)) }

func (c *Compiler) emitReturn() {
	if c.fn.kind == KindInitializer {
		c.emitBytes(byte(opcode.GET_LOCAL), 0)
	} else {
		c.emitOp(opcode.NIL)
	}
	c.emitOp(opcode.RETURN)
}

// makeConstant adds v to the current chunk's constant pool, reporting a
// compile error instead of overflowing the one-byte operand.
func (c *Compiler) makeConstant(v value.Value) uint8 {
	idx, err := c.currentChunk().AddConstant(v)
	if err != nil {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return uint8(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(byte(opcode.CONSTANT), c.makeConstant(v))
}

// identifierConstant interns name and adds it as a string constant,
// returning its index — the representation GET_GLOBAL/SET_GLOBAL and
// friends use to name a variable. Repeated references to the same name
// within one function (every read/write of a given global, every `.foo`
// of the same field) are deduplicated via stringConstant so they share
// one constant-pool slot instead of growing the pool unboundedly.
func (c *Compiler) identifierConstant(name string) uint8 {
	return c.stringConstant(name)
}

// stringConstant returns the constant-pool index holding the interned
// string s, reusing one already emitted in the current function's chunk
// if possible.
func (c *Compiler) stringConstant(s string) uint8 {
	if idx, ok := c.fn.constCache.Get(s); ok {
		return idx
	}
	obj := c.heap.InternString(s)
	idx := c.makeConstant(value.FromObj(obj))
	c.fn.constCache.Put(s, idx)
	return idx
}

// emitJump writes a two-byte placeholder offset after op and returns the
// offset of the placeholder's first byte, for patchJump to fill in once
// the jump target is known.
func (c *Compiler) emitJump(op opcode.Code) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return len(c.currentChunk().Code) - 2
}

func (c *Compiler) patchJump(offset int) {
	chunk := c.currentChunk()
	jump := len(chunk.Code) - offset - 2
	if jump > maxJumpLen {
		c.error("Too much code to jump over.")
		return
	}
	chunk.Code[offset] = byte(jump >> 8)
	chunk.Code[offset+1] = byte(jump)
}

// emitLoop emits a LOOP back to loopStart, the offset of the first
// instruction of the loop condition/body being repeated.
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(opcode.LOOP)
	offset := len(c.currentChunk().Code) - loopStart + 2
	if offset > maxJumpLen {
		c.error("Loop body too large.")
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset))
}
