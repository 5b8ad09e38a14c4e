// IR printing for the --tacky stop point
package tacky

import (
	"fmt"
	"io"
)

// Printer outputs the IR in a readable format
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new IR printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram prints a complete IR program
func (p *Printer) PrintProgram(prog *Program) {
	fmt.Fprintf(p.w, "%s() {\n", prog.Function.Name)
	for _, inst := range prog.Function.Body {
		p.printInstruction(inst)
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printInstruction(inst Instruction) {
	switch i := inst.(type) {
	case Return:
		fmt.Fprintf(p.w, "  return %s\n", ValueString(i.Value))
	case Unary:
		fmt.Fprintf(p.w, "  %s = %s %s\n", ValueString(i.Dst), i.Op, ValueString(i.Src))
	case Binary:
		fmt.Fprintf(p.w, "  %s = %s %s %s\n", ValueString(i.Dst), i.Op, ValueString(i.Src1), ValueString(i.Src2))
	case Copy:
		fmt.Fprintf(p.w, "  %s = %s\n", ValueString(i.Dst), ValueString(i.Src))
	case Jump:
		fmt.Fprintf(p.w, "  jump %s\n", i.Target)
	case JumpIfZero:
		fmt.Fprintf(p.w, "  jumpz %s, %s\n", ValueString(i.Cond), i.Target)
	case JumpIfNotZero:
		fmt.Fprintf(p.w, "  jumpnz %s, %s\n", ValueString(i.Cond), i.Target)
	case Label:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	default:
		fmt.Fprintf(p.w, "  ; unknown instruction %T\n", inst)
	}
}

// ValueString renders an IR value
func ValueString(v Value) string {
	switch val := v.(type) {
	case Constant:
		return fmt.Sprintf("%d", val.Value)
	case Var:
		return val.Name
	default:
		return fmt.Sprintf("?%T", v)
	}
}
