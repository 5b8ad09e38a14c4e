// Package fixup rewrites instruction forms the target ISA rejects into legal
// sequences and prepends the frame reservation. Each rewrite is self-contained:
// R10 carries legalized memory sources and R11 legalized destinations, and
// neither is live across instructions, so no interference analysis is needed.
// The pass builds a fresh output list in one forward scan.
package fixup

import (
	"github.com/ulang/ucc/pkg/diag"
	"github.com/ulang/ucc/pkg/x64"
)

// TransformProgram legalizes an allocated program. A pseudo operand reaching
// this pass means the stacking pass was skipped or broken.
func TransformProgram(prog *x64.Program) (*x64.Program, error) {
	fn := x64.Function{
		Name:      prog.Function.Name,
		StackSize: prog.Function.StackSize,
	}
	fn.Body = append(fn.Body, x64.AllocateStack{Bytes: prog.Function.StackSize})
	for _, inst := range prog.Function.Body {
		fixed, err := fixInstruction(inst)
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, fixed...)
	}
	return &x64.Program{Function: fn}, nil
}

func isMem(op x64.Operand) bool {
	_, ok := op.(x64.Stack)
	return ok
}

func isImm(op x64.Operand) bool {
	_, ok := op.(x64.Imm)
	return ok
}

func checkResolved(ops ...x64.Operand) error {
	for _, op := range ops {
		if p, ok := op.(x64.Pseudo); ok {
			return diag.Internalf("pseudo operand %s survived past allocation", p.Name)
		}
	}
	return nil
}

func fixInstruction(inst x64.Instruction) ([]x64.Instruction, error) {
	r10 := x64.Register{Reg: x64.R10}
	r11 := x64.Register{Reg: x64.R11}

	switch i := inst.(type) {
	case x64.Mov:
		if err := checkResolved(i.Src, i.Dst); err != nil {
			return nil, err
		}
		// movl cannot take two memory operands
		if isMem(i.Src) && isMem(i.Dst) {
			return []x64.Instruction{
				x64.Mov{Src: i.Src, Dst: r10},
				x64.Mov{Src: r10, Dst: i.Dst},
			}, nil
		}
		return []x64.Instruction{i}, nil

	case x64.Cmp:
		if err := checkResolved(i.Src, i.Dst); err != nil {
			return nil, err
		}
		if isMem(i.Src) && isMem(i.Dst) {
			return []x64.Instruction{
				x64.Mov{Src: i.Src, Dst: r10},
				x64.Cmp{Src: r10, Dst: i.Dst},
			}, nil
		}
		// cmpl cannot take an immediate second operand
		if isImm(i.Dst) {
			return []x64.Instruction{
				x64.Mov{Src: i.Dst, Dst: r11},
				x64.Cmp{Src: i.Src, Dst: r11},
			}, nil
		}
		return []x64.Instruction{i}, nil

	case x64.Binary:
		if err := checkResolved(i.Src, i.Dst); err != nil {
			return nil, err
		}
		// imull cannot write to memory
		if i.Op == x64.Mult && isMem(i.Dst) {
			return []x64.Instruction{
				x64.Mov{Src: i.Dst, Dst: r11},
				x64.Binary{Op: x64.Mult, Src: i.Src, Dst: r11},
				x64.Mov{Src: r11, Dst: i.Dst},
			}, nil
		}
		// addl/subl cannot take two memory operands
		if isMem(i.Src) && isMem(i.Dst) {
			return []x64.Instruction{
				x64.Mov{Src: i.Src, Dst: r10},
				x64.Binary{Op: i.Op, Src: r10, Dst: i.Dst},
			}, nil
		}
		return []x64.Instruction{i}, nil

	case x64.Idiv:
		if err := checkResolved(i.Operand); err != nil {
			return nil, err
		}
		// idivl cannot take an immediate operand
		if isImm(i.Operand) {
			return []x64.Instruction{
				x64.Mov{Src: i.Operand, Dst: r10},
				x64.Idiv{Operand: r10},
			}, nil
		}
		return []x64.Instruction{i}, nil

	case x64.Unary:
		if err := checkResolved(i.Operand); err != nil {
			return nil, err
		}
		return []x64.Instruction{i}, nil

	case x64.SetCC:
		if err := checkResolved(i.Operand); err != nil {
			return nil, err
		}
		return []x64.Instruction{i}, nil

	default:
		return []x64.Instruction{inst}, nil
	}
}
