// Package tackygen lowers the AST into three-address IR.
// Expressions are flattened in post-order: operands are lowered, left before
// right, before the instruction that consumes them. Every destination is a
// fresh temporary named by a counter owned by one Translator, so independent
// compilations never share state.
package tackygen

import (
	"fmt"

	"github.com/ulang/ucc/pkg/cabs"
	"github.com/ulang/ucc/pkg/diag"
	"github.com/ulang/ucc/pkg/tacky"
)

// TranslateProgram lowers a parsed program to IR
func TranslateProgram(prog *cabs.Program) (*tacky.Program, error) {
	tr := &Translator{}
	fn, err := tr.translateFunction(prog.Function)
	if err != nil {
		return nil, err
	}
	return &tacky.Program{Function: *fn}, nil
}

// Translator holds the lowering state for one compilation
type Translator struct {
	tmpCount   int
	labelCount int
	body       []tacky.Instruction
}

func (tr *Translator) emit(inst tacky.Instruction) {
	tr.body = append(tr.body, inst)
}

// newTemp mints a unique temporary. The counter is never reset
// mid-compilation, so names cannot collide.
func (tr *Translator) newTemp() tacky.Var {
	name := fmt.Sprintf("tmp.%d", tr.tmpCount)
	tr.tmpCount++
	return tacky.Var{Name: name}
}

func (tr *Translator) newLabel(prefix string) string {
	name := fmt.Sprintf("%s.%d", prefix, tr.labelCount)
	tr.labelCount++
	return name
}

func (tr *Translator) translateFunction(fn cabs.FunDef) (*tacky.Function, error) {
	tr.body = []tacky.Instruction{}
	for _, stmt := range fn.Body {
		if err := tr.translateStatement(stmt); err != nil {
			return nil, err
		}
	}
	return &tacky.Function{Name: fn.Name, Body: tr.body}, nil
}

func (tr *Translator) translateStatement(stmt cabs.Stmt) error {
	switch s := stmt.(type) {
	case cabs.Return:
		value, err := tr.translateExpression(s.Expr)
		if err != nil {
			return err
		}
		tr.emit(tacky.Return{Value: value})
		return nil
	case cabs.Declare:
		return diag.Unsupportedf("variable declaration of %q is not lowered", s.Name)
	default:
		return diag.Unsupportedf("statement %T is not lowered", stmt)
	}
}

// translateExpression lowers an expression, emitting instructions as a side
// effect, and returns the value holding the result. Constants produce no
// instructions; parentheses are transparent.
func (tr *Translator) translateExpression(expr cabs.Expr) (tacky.Value, error) {
	switch e := expr.(type) {
	case cabs.Constant:
		return tacky.Constant{Value: int32(e.Value)}, nil

	case cabs.Paren:
		return tr.translateExpression(e.Expr)

	case cabs.Unary:
		src, err := tr.translateExpression(e.Expr)
		if err != nil {
			return nil, err
		}
		op, err := unaryOp(e.Op)
		if err != nil {
			return nil, err
		}
		dst := tr.newTemp()
		tr.emit(tacky.Unary{Op: op, Src: src, Dst: dst})
		return dst, nil

	case cabs.Binary:
		switch e.Op {
		case cabs.OpAnd:
			return tr.translateAnd(e)
		case cabs.OpOr:
			return tr.translateOr(e)
		}
		src1, err := tr.translateExpression(e.Left)
		if err != nil {
			return nil, err
		}
		src2, err := tr.translateExpression(e.Right)
		if err != nil {
			return nil, err
		}
		op, err := binaryOp(e.Op)
		if err != nil {
			return nil, err
		}
		dst := tr.newTemp()
		tr.emit(tacky.Binary{Op: op, Src1: src1, Src2: src2, Dst: dst})
		return dst, nil

	default:
		return nil, diag.Unsupportedf("expression %T is not lowered", expr)
	}
}

// translateAnd lowers e1 && e2 with short-circuit evaluation: the right
// operand is evaluated only when the left is nonzero.
func (tr *Translator) translateAnd(e cabs.Binary) (tacky.Value, error) {
	falseLabel := tr.newLabel("and_false")
	endLabel := tr.newLabel("and_end")
	result := tr.newTemp()

	left, err := tr.translateExpression(e.Left)
	if err != nil {
		return nil, err
	}
	tr.emit(tacky.JumpIfZero{Cond: left, Target: falseLabel})

	right, err := tr.translateExpression(e.Right)
	if err != nil {
		return nil, err
	}
	tr.emit(tacky.JumpIfZero{Cond: right, Target: falseLabel})

	tr.emit(tacky.Copy{Src: tacky.Constant{Value: 1}, Dst: result})
	tr.emit(tacky.Jump{Target: endLabel})
	tr.emit(tacky.Label{Name: falseLabel})
	tr.emit(tacky.Copy{Src: tacky.Constant{Value: 0}, Dst: result})
	tr.emit(tacky.Label{Name: endLabel})
	return result, nil
}

// translateOr lowers e1 || e2; the right operand is evaluated only when the
// left is zero.
func (tr *Translator) translateOr(e cabs.Binary) (tacky.Value, error) {
	trueLabel := tr.newLabel("or_true")
	endLabel := tr.newLabel("or_end")
	result := tr.newTemp()

	left, err := tr.translateExpression(e.Left)
	if err != nil {
		return nil, err
	}
	tr.emit(tacky.JumpIfNotZero{Cond: left, Target: trueLabel})

	right, err := tr.translateExpression(e.Right)
	if err != nil {
		return nil, err
	}
	tr.emit(tacky.JumpIfNotZero{Cond: right, Target: trueLabel})

	tr.emit(tacky.Copy{Src: tacky.Constant{Value: 0}, Dst: result})
	tr.emit(tacky.Jump{Target: endLabel})
	tr.emit(tacky.Label{Name: trueLabel})
	tr.emit(tacky.Copy{Src: tacky.Constant{Value: 1}, Dst: result})
	tr.emit(tacky.Label{Name: endLabel})
	return result, nil
}

func unaryOp(op cabs.UnaryOp) (tacky.UnaryOp, error) {
	switch op {
	case cabs.OpNeg:
		return tacky.Negate, nil
	case cabs.OpBitNot:
		return tacky.Complement, nil
	case cabs.OpNot:
		return tacky.Not, nil
	default:
		return 0, diag.Unsupportedf("unary operator %s has no IR form", op)
	}
}

func binaryOp(op cabs.BinaryOp) (tacky.BinaryOp, error) {
	switch op {
	case cabs.OpAdd:
		return tacky.Add, nil
	case cabs.OpSub:
		return tacky.Subtract, nil
	case cabs.OpMul:
		return tacky.Multiply, nil
	case cabs.OpDiv:
		return tacky.Divide, nil
	case cabs.OpMod:
		return tacky.Remainder, nil
	case cabs.OpEq:
		return tacky.Equal, nil
	case cabs.OpNe:
		return tacky.NotEqual, nil
	case cabs.OpLt:
		return tacky.LessThan, nil
	case cabs.OpLe:
		return tacky.LessOrEqual, nil
	case cabs.OpGt:
		return tacky.GreaterThan, nil
	case cabs.OpGe:
		return tacky.GreaterOrEqual, nil
	default:
		return 0, diag.Unsupportedf("binary operator %s has no IR form", op)
	}
}
