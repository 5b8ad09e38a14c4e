package x64

import (
	"fmt"
	"io"
	"runtime"
)

// Printer outputs x86-64 assembly in GNU as AT&T syntax
type Printer struct {
	w      io.Writer
	target Target
}

// NewPrinter creates a new assembly printer for the given target
func NewPrinter(w io.Writer, target Target) *Printer {
	return &Printer{w: w, target: target}
}

// DefaultTarget returns the target matching the host platform
func DefaultTarget() Target {
	if runtime.GOOS == "darwin" {
		return TargetDarwin
	}
	return TargetLinux
}

// symbolName returns the symbol name with platform-appropriate prefix
func (p *Printer) symbolName(name string) string {
	if p.target == TargetDarwin {
		return "_" + name
	}
	return name
}

// PrintProgram outputs an entire program. The instruction list is assumed
// already legal; no validation happens here.
func (p *Printer) PrintProgram(prog *Program) {
	p.printFunction(prog.Function)
	if p.target == TargetLinux {
		fmt.Fprintf(p.w, "\t.section\t.note.GNU-stack,\"\",@progbits\n")
	}
}

func (p *Printer) printFunction(f Function) {
	name := p.symbolName(f.Name)
	fmt.Fprintf(p.w, "\t.globl\t%s\n", name)
	fmt.Fprintf(p.w, "%s:\n", name)
	fmt.Fprintf(p.w, "\tpushq\t%%rbp\n")
	fmt.Fprintf(p.w, "\tmovq\t%%rsp, %%rbp\n")

	for _, inst := range f.Body {
		p.printInstruction(inst)
	}
}

// regName32 returns the 32-bit register name
func regName32(r Reg) string {
	switch r {
	case AX:
		return "%eax"
	case DX:
		return "%edx"
	case R10:
		return "%r10d"
	case R11:
		return "%r11d"
	}
	return "%?"
}

// regName8 returns the 8-bit register name used by setcc
func regName8(r Reg) string {
	switch r {
	case AX:
		return "%al"
	case DX:
		return "%dl"
	case R10:
		return "%r10b"
	case R11:
		return "%r11b"
	}
	return "%?"
}

// operandName renders an operand in AT&T syntax
func operandName(op Operand) string {
	switch o := op.(type) {
	case Register:
		return regName32(o.Reg)
	case Imm:
		return fmt.Sprintf("$%d", o.Value)
	case Stack:
		return fmt.Sprintf("%d(%%rbp)", o.Offset)
	case Pseudo:
		return fmt.Sprintf("PSEUDO(%s)", o.Name)
	default:
		return fmt.Sprintf("?%T", op)
	}
}

// byteOperandName renders an operand as the byte-wide form setcc requires
func byteOperandName(op Operand) string {
	if r, ok := op.(Register); ok {
		return regName8(r.Reg)
	}
	return operandName(op)
}

func localLabel(name string) string {
	return ".L" + name
}

func (p *Printer) printInstruction(inst Instruction) {
	switch i := inst.(type) {
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", localLabel(i.Name))
	case Mov:
		fmt.Fprintf(p.w, "\tmovl\t%s, %s\n", operandName(i.Src), operandName(i.Dst))
	case Unary:
		fmt.Fprintf(p.w, "\t%s\t%s\n", i.Op, operandName(i.Operand))
	case Binary:
		fmt.Fprintf(p.w, "\t%s\t%s, %s\n", i.Op, operandName(i.Src), operandName(i.Dst))
	case Cmp:
		fmt.Fprintf(p.w, "\tcmpl\t%s, %s\n", operandName(i.Src), operandName(i.Dst))
	case Idiv:
		fmt.Fprintf(p.w, "\tidivl\t%s\n", operandName(i.Operand))
	case Cdq:
		fmt.Fprintf(p.w, "\tcdq\n")
	case AllocateStack:
		fmt.Fprintf(p.w, "\tsubq\t$%d, %%rsp\n", i.Bytes)
	case Jmp:
		fmt.Fprintf(p.w, "\tjmp\t%s\n", localLabel(i.Target))
	case JmpCC:
		fmt.Fprintf(p.w, "\tj%s\t%s\n", i.Cond, localLabel(i.Target))
	case SetCC:
		fmt.Fprintf(p.w, "\tset%s\t%s\n", i.Cond, byteOperandName(i.Operand))
	case Ret:
		fmt.Fprintf(p.w, "\tmovq\t%%rbp, %%rsp\n")
		fmt.Fprintf(p.w, "\tpopq\t%%rbp\n")
		fmt.Fprintf(p.w, "\tret\n")
	default:
		fmt.Fprintf(p.w, "\t# unknown instruction: %T\n", inst)
	}
}
