// Package tacky defines the three-address intermediate representation.
// Each instruction has at most two source operands and one destination;
// there are no nested sub-expressions. Destinations are freshly minted
// temporaries, so the instruction stream is single-assignment in practice.
package tacky

// Value is an IR operand: an integer constant or a named temporary.
type Value interface {
	implTackyValue()
}

// Constant is an immediate 32-bit integer value
type Constant struct {
	Value int32
}

// Var references a temporary by name
type Var struct {
	Name string
}

func (Constant) implTackyValue() {}
func (Var) implTackyValue()      {}

// UnaryOp represents IR unary operators
type UnaryOp int

const (
	Negate UnaryOp = iota // arithmetic negation
	Complement            // bitwise not
	Not                   // boolean complement
)

func (op UnaryOp) String() string {
	names := []string{"neg", "complement", "not"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// BinaryOp represents IR binary operators
type BinaryOp int

const (
	Add BinaryOp = iota
	Subtract
	Multiply
	Divide
	Remainder
	Equal
	NotEqual
	LessThan
	LessOrEqual
	GreaterThan
	GreaterOrEqual
)

func (op BinaryOp) String() string {
	names := []string{"add", "sub", "mul", "div", "rem", "eq", "ne", "lt", "le", "gt", "ge"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// Instruction is the interface for IR instructions
type Instruction interface {
	implTackyInstruction()
}

// Return ends the function, yielding Value
type Return struct {
	Value Value
}

// Unary computes Dst = Op Src
type Unary struct {
	Op  UnaryOp
	Src Value
	Dst Value
}

// Binary computes Dst = Src1 Op Src2
type Binary struct {
	Op   BinaryOp
	Src1 Value
	Src2 Value
	Dst  Value
}

// Copy moves Src into Dst unchanged
type Copy struct {
	Src Value
	Dst Value
}

// Jump transfers control to Target unconditionally
type Jump struct {
	Target string
}

// JumpIfZero branches to Target when Cond is zero
type JumpIfZero struct {
	Cond   Value
	Target string
}

// JumpIfNotZero branches to Target when Cond is nonzero
type JumpIfNotZero struct {
	Cond   Value
	Target string
}

// Label names a branch target
type Label struct {
	Name string
}

func (Return) implTackyInstruction()        {}
func (Unary) implTackyInstruction()         {}
func (Binary) implTackyInstruction()        {}
func (Copy) implTackyInstruction()          {}
func (Jump) implTackyInstruction()          {}
func (JumpIfZero) implTackyInstruction()    {}
func (JumpIfNotZero) implTackyInstruction() {}
func (Label) implTackyInstruction()         {}

// Function is one function body in three-address form
type Function struct {
	Name string
	Body []Instruction
}

// Program is one translation unit: a single function
type Program struct {
	Function Function
}
