package tacky

import (
	"fmt"

	"github.com/ulang/ucc/pkg/diag"
)

// Eval executes a function body with int32 wraparound semantics and returns
// the value of the first Return reached. It is the reference for what the
// emitted assembly must compute and backs the lowering tests.
func Eval(fn *Function) (int32, error) {
	env := map[string]int32{}
	labels := map[string]int{}
	for idx, inst := range fn.Body {
		if l, ok := inst.(Label); ok {
			labels[l.Name] = idx
		}
	}

	load := func(v Value) (int32, error) {
		switch val := v.(type) {
		case Constant:
			return val.Value, nil
		case Var:
			c, ok := env[val.Name]
			if !ok {
				return 0, diag.Internalf("read of unassigned temporary %s", val.Name)
			}
			return c, nil
		default:
			return 0, diag.Internalf("unknown value %T", v)
		}
	}
	store := func(v Value, c int32) error {
		dst, ok := v.(Var)
		if !ok {
			return diag.Internalf("store destination %T is not a temporary", v)
		}
		env[dst.Name] = c
		return nil
	}

	pc := 0
	steps := 0
	for pc < len(fn.Body) {
		steps++
		if steps > 1<<20 {
			return 0, fmt.Errorf("evaluation did not terminate")
		}
		switch inst := fn.Body[pc].(type) {
		case Return:
			return load(inst.Value)
		case Unary:
			src, err := load(inst.Src)
			if err != nil {
				return 0, err
			}
			var out int32
			switch inst.Op {
			case Negate:
				out = -src
			case Complement:
				out = ^src
			case Not:
				if src == 0 {
					out = 1
				}
			default:
				return 0, diag.Internalf("unknown unary operator %d", inst.Op)
			}
			if err := store(inst.Dst, out); err != nil {
				return 0, err
			}
		case Binary:
			a, err := load(inst.Src1)
			if err != nil {
				return 0, err
			}
			b, err := load(inst.Src2)
			if err != nil {
				return 0, err
			}
			out, err := evalBinary(inst.Op, a, b)
			if err != nil {
				return 0, err
			}
			if err := store(inst.Dst, out); err != nil {
				return 0, err
			}
		case Copy:
			src, err := load(inst.Src)
			if err != nil {
				return 0, err
			}
			if err := store(inst.Dst, src); err != nil {
				return 0, err
			}
		case Jump:
			target, ok := labels[inst.Target]
			if !ok {
				return 0, diag.Internalf("jump to undefined label %s", inst.Target)
			}
			pc = target
			continue
		case JumpIfZero:
			cond, err := load(inst.Cond)
			if err != nil {
				return 0, err
			}
			if cond == 0 {
				target, ok := labels[inst.Target]
				if !ok {
					return 0, diag.Internalf("jump to undefined label %s", inst.Target)
				}
				pc = target
				continue
			}
		case JumpIfNotZero:
			cond, err := load(inst.Cond)
			if err != nil {
				return 0, err
			}
			if cond != 0 {
				target, ok := labels[inst.Target]
				if !ok {
					return 0, diag.Internalf("jump to undefined label %s", inst.Target)
				}
				pc = target
				continue
			}
		case Label:
			// fall through
		default:
			return 0, diag.Internalf("unknown instruction %T", fn.Body[pc])
		}
		pc++
	}
	return 0, fmt.Errorf("function %s fell off the end without returning", fn.Name)
}

func evalBinary(op BinaryOp, a, b int32) (int32, error) {
	boolVal := func(cond bool) int32 {
		if cond {
			return 1
		}
		return 0
	}
	switch op {
	case Add:
		return a + b, nil
	case Subtract:
		return a - b, nil
	case Multiply:
		return a * b, nil
	case Divide:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case Remainder:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a % b, nil
	case Equal:
		return boolVal(a == b), nil
	case NotEqual:
		return boolVal(a != b), nil
	case LessThan:
		return boolVal(a < b), nil
	case LessOrEqual:
		return boolVal(a <= b), nil
	case GreaterThan:
		return boolVal(a > b), nil
	case GreaterOrEqual:
		return boolVal(a >= b), nil
	default:
		return 0, diag.Internalf("unknown binary operator %d", op)
	}
}
