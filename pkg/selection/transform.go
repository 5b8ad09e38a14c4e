// Package selection maps three-address IR onto x86-64 pseudo-instructions.
// Most IR instructions expand to a short fixed sequence; results still refer
// to temporaries through pseudo operands, which the stacking pass resolves.
package selection

import (
	"github.com/ulang/ucc/pkg/diag"
	"github.com/ulang/ucc/pkg/tacky"
	"github.com/ulang/ucc/pkg/x64"
)

// TransformProgram selects instructions for an IR program
func TransformProgram(prog *tacky.Program) (*x64.Program, error) {
	fn := x64.Function{Name: prog.Function.Name}
	for _, inst := range prog.Function.Body {
		selected, err := selectInstruction(inst)
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, selected...)
	}
	return &x64.Program{Function: fn}, nil
}

// operand converts an IR value to an assembly operand
func operand(v tacky.Value) x64.Operand {
	switch val := v.(type) {
	case tacky.Constant:
		return x64.Imm{Value: val.Value}
	case tacky.Var:
		return x64.Pseudo{Name: val.Name}
	default:
		return x64.Pseudo{Name: "?"}
	}
}

func selectInstruction(inst tacky.Instruction) ([]x64.Instruction, error) {
	switch i := inst.(type) {
	case tacky.Return:
		return []x64.Instruction{
			x64.Mov{Src: operand(i.Value), Dst: x64.Register{Reg: x64.AX}},
			x64.Ret{},
		}, nil

	case tacky.Unary:
		return selectUnary(i)

	case tacky.Binary:
		return selectBinary(i)

	case tacky.Copy:
		return []x64.Instruction{
			x64.Mov{Src: operand(i.Src), Dst: operand(i.Dst)},
		}, nil

	case tacky.Jump:
		return []x64.Instruction{x64.Jmp{Target: i.Target}}, nil

	case tacky.JumpIfZero:
		return []x64.Instruction{
			x64.Cmp{Src: x64.Imm{Value: 0}, Dst: operand(i.Cond)},
			x64.JmpCC{Cond: x64.E, Target: i.Target},
		}, nil

	case tacky.JumpIfNotZero:
		return []x64.Instruction{
			x64.Cmp{Src: x64.Imm{Value: 0}, Dst: operand(i.Cond)},
			x64.JmpCC{Cond: x64.NE, Target: i.Target},
		}, nil

	case tacky.Label:
		return []x64.Instruction{x64.LabelDef{Name: i.Name}}, nil

	default:
		return nil, diag.Internalf("no selection rule for IR instruction %T", inst)
	}
}

func selectUnary(i tacky.Unary) ([]x64.Instruction, error) {
	dst := operand(i.Dst)
	switch i.Op {
	case tacky.Not:
		// Boolean complement is a comparison against zero, not a bitwise op.
		return []x64.Instruction{
			x64.Cmp{Src: x64.Imm{Value: 0}, Dst: operand(i.Src)},
			x64.Mov{Src: x64.Imm{Value: 0}, Dst: dst},
			x64.SetCC{Cond: x64.E, Operand: dst},
		}, nil
	case tacky.Negate:
		return []x64.Instruction{
			x64.Mov{Src: operand(i.Src), Dst: dst},
			x64.Unary{Op: x64.Neg, Operand: dst},
		}, nil
	case tacky.Complement:
		return []x64.Instruction{
			x64.Mov{Src: operand(i.Src), Dst: dst},
			x64.Unary{Op: x64.Not, Operand: dst},
		}, nil
	default:
		return nil, diag.Internalf("no selection rule for unary operator %s", i.Op)
	}
}

func selectBinary(i tacky.Binary) ([]x64.Instruction, error) {
	src1 := operand(i.Src1)
	src2 := operand(i.Src2)
	dst := operand(i.Dst)

	switch i.Op {
	case tacky.Divide, tacky.Remainder:
		// idivl computes DX:AX / operand with the quotient in AX and the
		// remainder in DX; only the copied-out register differs.
		out := x64.Register{Reg: x64.AX}
		if i.Op == tacky.Remainder {
			out = x64.Register{Reg: x64.DX}
		}
		return []x64.Instruction{
			x64.Mov{Src: src1, Dst: x64.Register{Reg: x64.AX}},
			x64.Cdq{},
			x64.Idiv{Operand: src2},
			x64.Mov{Src: out, Dst: dst},
		}, nil

	case tacky.Equal, tacky.NotEqual, tacky.LessThan, tacky.LessOrEqual,
		tacky.GreaterThan, tacky.GreaterOrEqual:
		cc, err := condCode(i.Op)
		if err != nil {
			return nil, err
		}
		// cmpl src2, src1 computes src1 - src2, so the condition code reads
		// in IR operand order.
		return []x64.Instruction{
			x64.Cmp{Src: src2, Dst: src1},
			x64.Mov{Src: x64.Imm{Value: 0}, Dst: dst},
			x64.SetCC{Cond: cc, Operand: dst},
		}, nil

	case tacky.Add, tacky.Subtract, tacky.Multiply:
		op, err := arithOp(i.Op)
		if err != nil {
			return nil, err
		}
		return []x64.Instruction{
			x64.Mov{Src: src1, Dst: dst},
			x64.Binary{Op: op, Src: src2, Dst: dst},
		}, nil

	default:
		return nil, diag.Internalf("no selection rule for binary operator %s", i.Op)
	}
}

func arithOp(op tacky.BinaryOp) (x64.BinaryOp, error) {
	switch op {
	case tacky.Add:
		return x64.Add, nil
	case tacky.Subtract:
		return x64.Sub, nil
	case tacky.Multiply:
		return x64.Mult, nil
	default:
		return 0, diag.Internalf("binary operator %s has no arithmetic instruction", op)
	}
}

// condCode maps an IR comparison to its signed condition code
func condCode(op tacky.BinaryOp) (x64.CondCode, error) {
	switch op {
	case tacky.Equal:
		return x64.E, nil
	case tacky.NotEqual:
		return x64.NE, nil
	case tacky.LessThan:
		return x64.L, nil
	case tacky.LessOrEqual:
		return x64.LE, nil
	case tacky.GreaterThan:
		return x64.G, nil
	case tacky.GreaterOrEqual:
		return x64.GE, nil
	default:
		return 0, diag.Internalf("binary operator %s has no condition code", op)
	}
}
