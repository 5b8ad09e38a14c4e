// AST printing for the --parse stop point
package cabs

import (
	"fmt"
	"io"
)

// Printer outputs the AST in a human-readable format
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram prints a complete program
func (p *Printer) PrintProgram(prog *Program) {
	p.printFunDef(prog.Function)
}

func (p *Printer) printFunDef(f FunDef) {
	fmt.Fprintf(p.w, "%s %s()\n{\n", f.ReturnType, f.Name)
	for _, stmt := range f.Body {
		p.printStmt(stmt)
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printStmt(stmt Stmt) {
	switch s := stmt.(type) {
	case Return:
		fmt.Fprintf(p.w, "  return %s;\n", exprString(s.Expr))
	case Declare:
		if s.Init != nil {
			fmt.Fprintf(p.w, "  %s %s = %s;\n", s.VarType, s.Name, exprString(s.Init))
		} else {
			fmt.Fprintf(p.w, "  %s %s;\n", s.VarType, s.Name)
		}
	default:
		fmt.Fprintf(p.w, "  /* unknown statement %T */\n", stmt)
	}
}

func exprString(e Expr) string {
	switch ex := e.(type) {
	case Constant:
		return fmt.Sprintf("%d", ex.Value)
	case Unary:
		return fmt.Sprintf("%s%s", ex.Op, exprString(ex.Expr))
	case Binary:
		return fmt.Sprintf("%s %s %s", exprString(ex.Left), ex.Op, exprString(ex.Right))
	case Paren:
		return fmt.Sprintf("(%s)", exprString(ex.Expr))
	default:
		return fmt.Sprintf("/* unknown expression %T */", e)
	}
}
