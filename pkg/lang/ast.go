// Package lang defines the decision-language source tree and its
// parser. A program is a closed union of statement and expression
// nodes; lowering walks the tree with one small function per kind.
package lang

import "github.com/aretw0/spool/pkg/machine"

// Program is a parsed source file: the declared input alphabet,
// optional extra tape markers, and the statement list.
type Program struct {
	Alphabet []machine.Symbol
	Markers  []machine.Symbol
	Body     []Stmt
}

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	exprNode()
}

// LetStmt declares a variable: name = expr.
type LetStmt struct {
	Name string
	Init Expr
}

// AssignStmt updates a variable: x = x + y.
type AssignStmt struct {
	Name  string
	Value Expr
}

// ForStmt is the bounded loop: for v in start..end { body }.
type ForStmt struct {
	Var   string
	Start Expr
	End   Expr
	Body  []Stmt
}

// IfStmt branches on an expression condition.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// IfEqStmt branches on equality of two variables: if x == y { ... }.
type IfEqStmt struct {
	A    string
	B    string
	Then []Stmt
	Else []Stmt
}

// ReturnStmt accepts when the condition holds and rejects otherwise.
type ReturnStmt struct {
	Value Expr
}

// AcceptStmt halts accepting.
type AcceptStmt struct{}

// RejectStmt halts rejecting.
type RejectStmt struct{}

// LoopStmt repeats its body until a break, accept or reject.
type LoopStmt struct {
	Body []Stmt
}

// BreakStmt jumps to the exit of the innermost enclosing loop.
type BreakStmt struct{}

// ScanStmt moves the head until a stop symbol is under it.
type ScanStmt struct {
	Move machine.Direction
	Stop []machine.Symbol
}

// WriteStmt writes a symbol at the current cell.
type WriteStmt struct {
	Symbol machine.Symbol
}

// MoveStmt moves the head one cell.
type MoveStmt struct {
	Move machine.Direction
}

// IfCurrentStmt branches on the symbol presently under the head.
type IfCurrentStmt struct {
	Branches []SymbolBranch
	Else     []Stmt
}

// SymbolBranch pairs one symbol with its branch body.
type SymbolBranch struct {
	Symbol machine.Symbol
	Body   []Stmt
}

// IncStmt appends one tally to a variable's region.
type IncStmt struct {
	Var string
}

// AppendStmt copies src's tally onto dst without altering src.
type AppendStmt struct {
	Src string
	Dst string
}

func (*LetStmt) stmtNode()       {}
func (*AssignStmt) stmtNode()    {}
func (*ForStmt) stmtNode()       {}
func (*IfStmt) stmtNode()        {}
func (*IfEqStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()    {}
func (*AcceptStmt) stmtNode()    {}
func (*RejectStmt) stmtNode()    {}
func (*LoopStmt) stmtNode()      {}
func (*BreakStmt) stmtNode()     {}
func (*ScanStmt) stmtNode()      {}
func (*WriteStmt) stmtNode()     {}
func (*MoveStmt) stmtNode()      {}
func (*IfCurrentStmt) stmtNode() {}
func (*IncStmt) stmtNode()       {}
func (*AppendStmt) stmtNode()    {}

// IntLit is an integer literal.
type IntLit struct {
	Value int
}

// VarRef references a declared variable.
type VarRef struct {
	Name string
}

// CountExpr counts occurrences of an input symbol: count(a).
type CountExpr struct {
	Symbol machine.Symbol
}

// BinOp enumerates binary operators.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// BinaryExpr applies a binary operator. Lowering accepts only Add and
// Eq; the rest (Ne included) parse but are rejected at compile time.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

func (*IntLit) exprNode()     {}
func (*VarRef) exprNode()     {}
func (*CountExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
