// Package x64 defines the x86-64 assembly representation.
// Instructions start out carrying pseudo operands that name IR temporaries;
// the stacking pass replaces those with concrete stack slots and the fixup
// pass rewrites operand pairings the ISA forbids. The printer renders the
// final form as AT&T-syntax text.
package x64

// Target selects the assembly dialect details for one platform
type Target int

const (
	// TargetLinux is System V Linux: bare symbol names, a trailing
	// non-executable-stack section note.
	TargetLinux Target = iota
	// TargetDarwin is macOS: underscore-prefixed symbol names, no trailer.
	TargetDarwin
)

func (t Target) String() string {
	if t == TargetDarwin {
		return "darwin"
	}
	return "linux"
}

// Reg is one of the fixed physical registers the backend uses
type Reg int

const (
	AX  Reg = iota // accumulator, return value, dividend low
	DX             // remainder after idiv
	R10            // scratch for legalized memory sources
	R11            // scratch for legalized destinations
)

// Operand is an instruction operand
type Operand interface {
	implX64Operand()
}

// Register is a fixed physical register operand
type Register struct {
	Reg Reg
}

// Imm is an immediate 32-bit integer operand
type Imm struct {
	Value int32
}

// Stack is a frame slot: a signed byte offset from the frame base (%rbp)
type Stack struct {
	Offset int32
}

// Pseudo references an IR temporary by name. None survive past the
// stacking pass.
type Pseudo struct {
	Name string
}

func (Register) implX64Operand() {}
func (Imm) implX64Operand()      {}
func (Stack) implX64Operand()    {}
func (Pseudo) implX64Operand()   {}

// UnaryOp represents in-place unary arithmetic instructions
type UnaryOp int

const (
	Neg UnaryOp = iota // negl
	Not                // notl
)

func (op UnaryOp) String() string {
	if op == Not {
		return "notl"
	}
	return "negl"
}

// BinaryOp represents two-operand arithmetic instructions
type BinaryOp int

const (
	Add  BinaryOp = iota // addl
	Sub                  // subl
	Mult                 // imull
)

func (op BinaryOp) String() string {
	names := []string{"addl", "subl", "imull"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// CondCode represents signed condition codes for SetCC and JmpCC
type CondCode int

const (
	E  CondCode = iota // equal
	NE                 // not equal
	L                  // signed less than
	LE                 // signed less or equal
	G                  // signed greater than
	GE                 // signed greater or equal
)

func (c CondCode) String() string {
	names := []string{"e", "ne", "l", "le", "g", "ge"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Instruction is the interface for assembly instructions
type Instruction interface {
	implX64Instruction()
}

// Mov copies Src into Dst (movl)
type Mov struct {
	Src Operand
	Dst Operand
}

// Unary applies Op to Operand in place
type Unary struct {
	Op      UnaryOp
	Operand Operand
}

// Binary combines Src into Dst in place
type Binary struct {
	Op  BinaryOp
	Src Operand
	Dst Operand
}

// Cmp computes Dst - Src and sets flags (cmpl)
type Cmp struct {
	Src Operand
	Dst Operand
}

// Idiv divides DX:AX by Operand, quotient in AX, remainder in DX
type Idiv struct {
	Operand Operand
}

// Cdq sign-extends AX into DX:AX
type Cdq struct{}

// AllocateStack reserves Bytes of frame space (subq from %rsp)
type AllocateStack struct {
	Bytes int32
}

// Jmp branches unconditionally to a local label
type Jmp struct {
	Target string
}

// JmpCC branches to a local label when Cond holds
type JmpCC struct {
	Cond   CondCode
	Target string
}

// SetCC sets the byte Operand to 1 when Cond holds, 0 otherwise
type SetCC struct {
	Cond    CondCode
	Operand Operand
}

// LabelDef defines a local label
type LabelDef struct {
	Name string
}

// Ret marks the function epilogue
type Ret struct{}

func (Mov) implX64Instruction()           {}
func (Unary) implX64Instruction()         {}
func (Binary) implX64Instruction()        {}
func (Cmp) implX64Instruction()           {}
func (Idiv) implX64Instruction()          {}
func (Cdq) implX64Instruction()           {}
func (AllocateStack) implX64Instruction() {}
func (Jmp) implX64Instruction()           {}
func (JmpCC) implX64Instruction()         {}
func (SetCC) implX64Instruction()         {}
func (LabelDef) implX64Instruction()      {}
func (Ret) implX64Instruction()           {}

// Function is one assembly function
type Function struct {
	Name      string
	Body      []Instruction
	StackSize int32 // frame bytes, filled by the stacking pass
}

// Program is one translation unit: a single function
type Program struct {
	Function Function
}
