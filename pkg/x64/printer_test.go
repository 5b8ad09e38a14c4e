package x64

import (
	"strings"
	"testing"
)

func render(prog *Program, target Target) string {
	var sb strings.Builder
	NewPrinter(&sb, target).PrintProgram(prog)
	return sb.String()
}

func returnTwo() *Program {
	return &Program{Function: Function{
		Name: "main",
		Body: []Instruction{
			AllocateStack{Bytes: 8},
			Mov{Src: Imm{Value: 2}, Dst: Stack{Offset: -4}},
			Mov{Src: Stack{Offset: -4}, Dst: Register{Reg: AX}},
			Ret{},
		},
	}}
}

func TestLinuxOutput(t *testing.T) {
	out := render(returnTwo(), TargetLinux)

	want := "\t.globl\tmain\n" +
		"main:\n" +
		"\tpushq\t%rbp\n" +
		"\tmovq\t%rsp, %rbp\n" +
		"\tsubq\t$8, %rsp\n" +
		"\tmovl\t$2, -4(%rbp)\n" +
		"\tmovl\t-4(%rbp), %eax\n" +
		"\tmovq\t%rbp, %rsp\n" +
		"\tpopq\t%rbp\n" +
		"\tret\n" +
		"\t.section\t.note.GNU-stack,\"\",@progbits\n"

	if out != want {
		t.Errorf("linux output wrong.\nwant:\n%s\ngot:\n%s", want, out)
	}
}

func TestDarwinPrefixesSymbols(t *testing.T) {
	out := render(returnTwo(), TargetDarwin)

	if !strings.Contains(out, "\t.globl\t_main\n") {
		t.Errorf("expected _main in .globl directive\nGot:\n%s", out)
	}
	if !strings.Contains(out, "_main:\n") {
		t.Errorf("expected _main label\nGot:\n%s", out)
	}
	if strings.Contains(out, ".note.GNU-stack") {
		t.Errorf("darwin output must not carry the GNU-stack trailer\nGot:\n%s", out)
	}
}

func TestBodiesIdenticalAcrossTargets(t *testing.T) {
	// only the symbol name and the trailer may differ between targets
	linux := render(returnTwo(), TargetLinux)
	darwin := render(returnTwo(), TargetDarwin)

	normalized := strings.ReplaceAll(linux, "main", "_main")
	normalized = strings.ReplaceAll(normalized, "\t.section\t.note.GNU-stack,\"\",@progbits\n", "")

	if normalized != darwin {
		t.Errorf("bodies differ beyond symbol prefix and trailer.\nlinux (normalized):\n%s\ndarwin:\n%s", normalized, darwin)
	}
}

func TestOutputIsDeterministic(t *testing.T) {
	first := render(returnTwo(), TargetLinux)
	second := render(returnTwo(), TargetLinux)

	if first != second {
		t.Error("same program rendered differently on repeated runs")
	}
}

func TestImmediatesCarryDollarPrefix(t *testing.T) {
	prog := &Program{Function: Function{
		Name: "main",
		Body: []Instruction{
			Mov{Src: Imm{Value: 0}, Dst: Register{Reg: AX}},
			Cmp{Src: Imm{Value: -1}, Dst: Register{Reg: AX}},
		},
	}}
	out := render(prog, TargetLinux)

	if !strings.Contains(out, "movl\t$0, %eax") {
		t.Errorf("expected $0 immediate\nGot:\n%s", out)
	}
	if !strings.Contains(out, "cmpl\t$-1, %eax") {
		t.Errorf("expected $-1 immediate\nGot:\n%s", out)
	}
}

func TestConditionalsAndLabels(t *testing.T) {
	prog := &Program{Function: Function{
		Name: "main",
		Body: []Instruction{
			Cmp{Src: Imm{Value: 0}, Dst: Stack{Offset: -4}},
			JmpCC{Cond: E, Target: "and_false.0"},
			SetCC{Cond: LE, Operand: Register{Reg: AX}},
			SetCC{Cond: GE, Operand: Stack{Offset: -8}},
			Jmp{Target: "and_end.1"},
			LabelDef{Name: "and_false.0"},
			LabelDef{Name: "and_end.1"},
			Ret{},
		},
	}}
	out := render(prog, TargetLinux)

	for _, want := range []string{
		"\tje\t.Land_false.0\n",
		"\tsetle\t%al\n",      // setcc writes the byte register
		"\tsetge\t-8(%rbp)\n", // memory operands keep their dword form
		"\tjmp\t.Land_end.1\n",
		".Land_false.0:\n",
		".Land_end.1:\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\nGot:\n%s", want, out)
		}
	}
}

func TestDivisionSequence(t *testing.T) {
	prog := &Program{Function: Function{
		Name: "main",
		Body: []Instruction{
			Mov{Src: Stack{Offset: -4}, Dst: Register{Reg: AX}},
			Cdq{},
			Idiv{Operand: Register{Reg: R10}},
			Mov{Src: Register{Reg: DX}, Dst: Stack{Offset: -8}},
		},
	}}
	out := render(prog, TargetLinux)

	for _, want := range []string{
		"\tcdq\n",
		"\tidivl\t%r10d\n",
		"\tmovl\t%edx, -8(%rbp)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\nGot:\n%s", want, out)
		}
	}
}
