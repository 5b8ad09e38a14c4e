package tackygen

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ulang/ucc/pkg/diag"
	"github.com/ulang/ucc/pkg/lexer"
	"github.com/ulang/ucc/pkg/parser"
	"github.com/ulang/ucc/pkg/tacky"
)

func lower(t *testing.T, input string) *tacky.Program {
	t.Helper()
	p := parser.New(lexer.New(input))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors for %q: %v", input, p.Errors())
	}
	ir, err := TranslateProgram(prog)
	if err != nil {
		t.Fatalf("TranslateProgram failed for %q: %v", input, err)
	}
	return ir
}

func lowerExpr(t *testing.T, expr string) *tacky.Function {
	t.Helper()
	ir := lower(t, "int main(void) { return "+expr+"; }")
	return &ir.Function
}

func TestReturnConstantEmitsNoTemporaries(t *testing.T) {
	fn := lowerExpr(t, "2")

	want := []tacky.Instruction{
		tacky.Return{Value: tacky.Constant{Value: 2}},
	}
	if !reflect.DeepEqual(fn.Body, want) {
		t.Errorf("body wrong.\nwant: %#v\ngot:  %#v", want, fn.Body)
	}
}

func TestUnaryChainPostOrder(t *testing.T) {
	fn := lowerExpr(t, "-(~2)")

	want := []tacky.Instruction{
		tacky.Unary{Op: tacky.Complement, Src: tacky.Constant{Value: 2}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Unary{Op: tacky.Negate, Src: tacky.Var{Name: "tmp.0"}, Dst: tacky.Var{Name: "tmp.1"}},
		tacky.Return{Value: tacky.Var{Name: "tmp.1"}},
	}
	if !reflect.DeepEqual(fn.Body, want) {
		t.Errorf("body wrong.\nwant: %#v\ngot:  %#v", want, fn.Body)
	}
}

func TestBinaryLowersLeftBeforeRight(t *testing.T) {
	fn := lowerExpr(t, "(1 + 2) * (3 - 4)")

	want := []tacky.Instruction{
		tacky.Binary{Op: tacky.Add, Src1: tacky.Constant{Value: 1}, Src2: tacky.Constant{Value: 2}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Binary{Op: tacky.Subtract, Src1: tacky.Constant{Value: 3}, Src2: tacky.Constant{Value: 4}, Dst: tacky.Var{Name: "tmp.1"}},
		tacky.Binary{Op: tacky.Multiply, Src1: tacky.Var{Name: "tmp.0"}, Src2: tacky.Var{Name: "tmp.1"}, Dst: tacky.Var{Name: "tmp.2"}},
		tacky.Return{Value: tacky.Var{Name: "tmp.2"}},
	}
	if !reflect.DeepEqual(fn.Body, want) {
		t.Errorf("body wrong.\nwant: %#v\ngot:  %#v", want, fn.Body)
	}
}

func TestPrecedenceFeedsMultiplyIntoAdd(t *testing.T) {
	fn := lowerExpr(t, "1 + 2 * 3")

	// exactly one multiply and one add, with the multiply's result feeding the add
	want := []tacky.Instruction{
		tacky.Binary{Op: tacky.Multiply, Src1: tacky.Constant{Value: 2}, Src2: tacky.Constant{Value: 3}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Binary{Op: tacky.Add, Src1: tacky.Constant{Value: 1}, Src2: tacky.Var{Name: "tmp.0"}, Dst: tacky.Var{Name: "tmp.1"}},
		tacky.Return{Value: tacky.Var{Name: "tmp.1"}},
	}
	if !reflect.DeepEqual(fn.Body, want) {
		t.Errorf("body wrong.\nwant: %#v\ngot:  %#v", want, fn.Body)
	}
}

func TestAndShortCircuitShape(t *testing.T) {
	fn := lowerExpr(t, "1 && 2")

	want := []tacky.Instruction{
		tacky.JumpIfZero{Cond: tacky.Constant{Value: 1}, Target: "and_false.0"},
		tacky.JumpIfZero{Cond: tacky.Constant{Value: 2}, Target: "and_false.0"},
		tacky.Copy{Src: tacky.Constant{Value: 1}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Jump{Target: "and_end.1"},
		tacky.Label{Name: "and_false.0"},
		tacky.Copy{Src: tacky.Constant{Value: 0}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Label{Name: "and_end.1"},
		tacky.Return{Value: tacky.Var{Name: "tmp.0"}},
	}
	if !reflect.DeepEqual(fn.Body, want) {
		t.Errorf("body wrong.\nwant: %#v\ngot:  %#v", want, fn.Body)
	}
}

func TestOrShortCircuitShape(t *testing.T) {
	fn := lowerExpr(t, "0 || 3")

	want := []tacky.Instruction{
		tacky.JumpIfNotZero{Cond: tacky.Constant{Value: 0}, Target: "or_true.0"},
		tacky.JumpIfNotZero{Cond: tacky.Constant{Value: 3}, Target: "or_true.0"},
		tacky.Copy{Src: tacky.Constant{Value: 0}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Jump{Target: "or_end.1"},
		tacky.Label{Name: "or_true.0"},
		tacky.Copy{Src: tacky.Constant{Value: 1}, Dst: tacky.Var{Name: "tmp.0"}},
		tacky.Label{Name: "or_end.1"},
		tacky.Return{Value: tacky.Var{Name: "tmp.0"}},
	}
	if !reflect.DeepEqual(fn.Body, want) {
		t.Errorf("body wrong.\nwant: %#v\ngot:  %#v", want, fn.Body)
	}
}

func TestCountersStartFreshPerCompilation(t *testing.T) {
	first := lowerExpr(t, "-1 && -2")
	second := lowerExpr(t, "-1 && -2")

	if !reflect.DeepEqual(first.Body, second.Body) {
		t.Errorf("independent compilations diverged.\nfirst:  %#v\nsecond: %#v", first.Body, second.Body)
	}
}

func TestDeclarationIsUnsupported(t *testing.T) {
	p := parser.New(lexer.New("int main(void) { int x; return 0; }"))
	prog := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}

	_, err := TranslateProgram(prog)
	if err == nil {
		t.Fatal("expected an error for a variable declaration")
	}
	if !errors.Is(err, diag.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if errors.Is(err, diag.ErrInternal) {
		t.Errorf("declaration is user input, not an internal error: %v", err)
	}
}

func TestAndOrHaveNoBinaryInstruction(t *testing.T) {
	// && and || always lower through jumps, never a Binary instruction
	fn := lowerExpr(t, "1 && 0 || 1")

	for _, inst := range fn.Body {
		if _, ok := inst.(tacky.Binary); ok {
			t.Errorf("logical operators must not produce a Binary instruction, got %#v", inst)
		}
	}
}

func TestDeeplyNestedExpression(t *testing.T) {
	// ((((((1)))))) plus nesting of unaries should not blow the counter
	fn := lowerExpr(t, "-(-(-(-(-(-(1))))))")

	if got := len(fn.Body); got != 7 {
		t.Fatalf("expected 6 unary instructions + return, got %d instructions", got)
	}
	last, ok := fn.Body[6].(tacky.Return)
	if !ok {
		t.Fatalf("expected return last, got %T", fn.Body[6])
	}
	if v, ok := last.Value.(tacky.Var); !ok || v.Name != "tmp.5" {
		t.Errorf("expected return of tmp.5, got %#v", last.Value)
	}
}

func TestEvalProperties(t *testing.T) {
	tests := []struct {
		expr string
		want int32
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 3", 3},
		{"10 % 3", 1},
		{"-10 / 3", -3}, // truncation toward zero
		{"-10 % 3", -1},
		{"1 - 2 - 3", -4},
		{"-(1 + 2)", -3},
		{"~0", -1},
		{"!5", 0},
		{"!0", 1},
		{"!!7", 1},
		{"5 == 5", 1},
		{"5 == 6", 0},
		{"5 != 6", 1},
		{"1 < 2", 1},
		{"2 <= 1", 0},
		{"3 > 2", 1},
		{"2 >= 2", 1},
		{"-1 < 1", 1}, // signed comparison
		{"1 && 2", 1},
		{"1 && 0", 0},
		{"0 || 0", 0},
		{"0 || 3", 1},
		{"0 && 1 / 0", 0}, // short circuit skips the division
		{"1 || 1 / 0", 1},
		{"1 + 2 < 4 == 1", 1},
		{"(1 || 0) && (0 || 1)", 1},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			fn := lowerExpr(t, tc.expr)
			got, err := tacky.Eval(fn)
			if err != nil {
				t.Fatalf("Eval failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("%s = %d, want %d", tc.expr, got, tc.want)
			}
		})
	}
}
