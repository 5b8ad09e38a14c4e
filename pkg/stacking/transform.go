// Package stacking assigns every pseudo operand a concrete frame slot.
// Slots are handed out lazily in encounter order: the first reference to a
// temporary steps a counter down by the word size and caches the offset, so
// every later reference resolves to the same slot. The absolute value of the
// final counter is the frame size.
package stacking

import (
	"github.com/ulang/ucc/pkg/x64"
)

// wordSize is the slot granularity for the 32-bit integer type
const wordSize = 4

// Allocator owns the name-to-offset map for one compilation
type Allocator struct {
	slots   map[string]int32
	counter int32
}

// NewAllocator creates an empty frame allocator
func NewAllocator() *Allocator {
	return &Allocator{slots: make(map[string]int32)}
}

// Offset returns the frame offset for a temporary, allocating on first use
func (a *Allocator) Offset(name string) int32 {
	if ofs, ok := a.slots[name]; ok {
		return ofs
	}
	a.counter -= wordSize
	a.slots[name] = a.counter
	return a.counter
}

// FrameSize returns the total bytes to reserve
func (a *Allocator) FrameSize() int32 {
	return -a.counter
}

// TransformProgram replaces every pseudo operand with its stack slot and
// records the frame size on the function.
func TransformProgram(prog *x64.Program) *x64.Program {
	a := NewAllocator()
	fn := x64.Function{Name: prog.Function.Name}
	for _, inst := range prog.Function.Body {
		fn.Body = append(fn.Body, a.rewriteInstruction(inst))
	}
	fn.StackSize = a.FrameSize()
	return &x64.Program{Function: fn}
}

// rewriteOperand resolves a pseudo operand; other operands pass through
func (a *Allocator) rewriteOperand(op x64.Operand) x64.Operand {
	if p, ok := op.(x64.Pseudo); ok {
		return x64.Stack{Offset: a.Offset(p.Name)}
	}
	return op
}

// rewriteInstruction visits every operand position that can hold a pseudo
func (a *Allocator) rewriteInstruction(inst x64.Instruction) x64.Instruction {
	switch i := inst.(type) {
	case x64.Mov:
		return x64.Mov{Src: a.rewriteOperand(i.Src), Dst: a.rewriteOperand(i.Dst)}
	case x64.Unary:
		return x64.Unary{Op: i.Op, Operand: a.rewriteOperand(i.Operand)}
	case x64.Binary:
		return x64.Binary{Op: i.Op, Src: a.rewriteOperand(i.Src), Dst: a.rewriteOperand(i.Dst)}
	case x64.Cmp:
		return x64.Cmp{Src: a.rewriteOperand(i.Src), Dst: a.rewriteOperand(i.Dst)}
	case x64.Idiv:
		return x64.Idiv{Operand: a.rewriteOperand(i.Operand)}
	case x64.SetCC:
		return x64.SetCC{Cond: i.Cond, Operand: a.rewriteOperand(i.Operand)}
	default:
		return inst
	}
}
