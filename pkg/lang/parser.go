package lang

import (
	"fmt"
	"strconv"

	"github.com/aretw0/spool/pkg/machine"
)

// ParseError reports a syntax error with its source line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: line %d: %s", e.Line, e.Msg)
}

// Parse parses decision-language source into a Program.
func Parse(source string) (*Program, error) {
	p := newParser(source)
	return p.parseProgram()
}

type parser struct {
	lex  *Lexer
	cur  Token
	peek Token
}

func newParser(source string) *parser {
	p := &parser{lex: NewLexer(source)}
	p.next()
	p.next()
	return p
}

func (p *parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.cur.Line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(t TokenType, what string) (Token, error) {
	if p.cur.Type != t {
		return Token{}, p.errorf("expected %s, got %q", what, p.cur.Literal)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *parser) expectKeyword(word string) error {
	if p.cur.Type != TokenIdent || p.cur.Literal != word {
		return p.errorf("expected %q, got %q", word, p.cur.Literal)
	}
	p.next()
	return nil
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for p.cur.Type != TokenEOF {
		switch {
		case p.cur.Type == TokenIdent && p.cur.Literal == "alphabet":
			if err := p.parseAlphabet(prog); err != nil {
				return nil, err
			}
		case p.cur.Type == TokenIdent && p.cur.Literal == "markers":
			if err := p.parseMarkers(prog); err != nil {
				return nil, err
			}
		default:
			stmt, err := p.parseStmt()
			if err != nil {
				return nil, err
			}
			prog.Body = append(prog.Body, stmt)
		}
	}
	return prog, nil
}

func (p *parser) parseAlphabet(prog *Program) error {
	p.next() // alphabet
	if err := p.expectKeyword("input"); err != nil {
		return err
	}
	if _, err := p.expect(TokenColon, "':'"); err != nil {
		return err
	}
	syms, err := p.parseSymbolList()
	if err != nil {
		return err
	}
	prog.Alphabet = append(prog.Alphabet, syms...)
	return nil
}

func (p *parser) parseMarkers(prog *Program) error {
	p.next() // markers
	if _, err := p.expect(TokenColon, "':'"); err != nil {
		return err
	}
	syms, err := p.parseSymbolList()
	if err != nil {
		return err
	}
	prog.Markers = append(prog.Markers, syms...)
	return nil
}

func (p *parser) parseSymbolList() ([]machine.Symbol, error) {
	if _, err := p.expect(TokenLBracket, "'['"); err != nil {
		return nil, err
	}
	var syms []machine.Symbol
	for p.cur.Type != TokenRBracket {
		if p.cur.Type == TokenEOF {
			return nil, p.errorf("unexpected end of input in symbol list")
		}
		sym, err := p.parseSymbol()
		if err != nil {
			return nil, err
		}
		syms = append(syms, sym)
		if p.cur.Type == TokenComma {
			p.next()
		}
	}
	p.next() // ]
	return syms, nil
}

// parseSymbol reads a single-character symbol token; the identifier _
// denotes the blank.
func (p *parser) parseSymbol() (machine.Symbol, error) {
	switch p.cur.Type {
	case TokenIdent, TokenSymbol, TokenNumber:
		lit := p.cur.Literal
		if len(lit) != 1 {
			return 0, p.errorf("symbol %q must be a single character", lit)
		}
		p.next()
		if lit == "_" {
			return machine.Blank, nil
		}
		return machine.Symbol(lit[0]), nil
	}
	return 0, p.errorf("expected a symbol, got %q", p.cur.Literal)
}

func (p *parser) parseStmt() (Stmt, error) {
	if p.cur.Type != TokenIdent {
		return nil, p.errorf("unexpected token %q", p.cur.Literal)
	}

	switch p.cur.Literal {
	case "return":
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: expr}, nil
	case "accept":
		p.next()
		return &AcceptStmt{}, nil
	case "reject":
		p.next()
		return &RejectStmt{}, nil
	case "for":
		return p.parseFor()
	case "if":
		return p.parseIf()
	case "loop":
		return p.parseLoop()
	case "scan":
		return p.parseScan()
	case "write":
		p.next()
		sym, err := p.parseSymbol()
		if err != nil {
			return nil, err
		}
		return &WriteStmt{Symbol: sym}, nil
	case "left", "L":
		p.next()
		return &MoveStmt{Move: machine.Left}, nil
	case "right", "R":
		p.next()
		return &MoveStmt{Move: machine.Right}, nil
	case "inc":
		p.next()
		name, err := p.expect(TokenIdent, "a variable name")
		if err != nil {
			return nil, err
		}
		return &IncStmt{Var: name.Literal}, nil
	case "append":
		p.next()
		src, err := p.expect(TokenIdent, "a variable name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenArrow, "'->'"); err != nil {
			return nil, err
		}
		dst, err := p.expect(TokenIdent, "a variable name")
		if err != nil {
			return nil, err
		}
		return &AppendStmt{Src: src.Literal, Dst: dst.Literal}, nil
	case "break":
		p.next()
		return &BreakStmt{}, nil
	}

	// Declaration or assignment: name = expr.
	name := p.cur.Literal
	p.next()
	if _, err := p.expect(TokenEquals, "'='"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, ok := expr.(*BinaryExpr); ok {
		return &AssignStmt{Name: name, Value: expr}, nil
	}
	return &LetStmt{Name: name, Init: expr}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	p.next() // for
	name, err := p.expect(TokenIdent, "a loop variable")
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	start, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenDotDot, "'..'"); err != nil {
		return nil, err
	}
	end, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{Var: name.Literal, Start: start, End: end, Body: body}, nil
}

func (p *parser) parseIf() (Stmt, error) {
	p.next() // if

	// A single symbol followed by a brace branches on the cell under
	// the head; anything else is an expression condition.
	if (p.cur.Type == TokenIdent || p.cur.Type == TokenSymbol) && p.peek.Type == TokenLBrace {
		return p.parseIfCurrent()
	}

	cond, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	thenBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []Stmt
	if p.cur.Type == TokenIdent && p.cur.Literal == "else" {
		p.next()
		if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
			return nil, err
		}
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	// Two plain variables compare region to region.
	if bin, ok := cond.(*BinaryExpr); ok && bin.Op == OpEq {
		lv, lok := bin.Left.(*VarRef)
		rv, rok := bin.Right.(*VarRef)
		if lok && rok {
			return &IfEqStmt{A: lv.Name, B: rv.Name, Then: thenBody, Else: elseBody}, nil
		}
	}
	return &IfStmt{Cond: cond, Then: thenBody, Else: elseBody}, nil
}

func (p *parser) parseIfCurrent() (Stmt, error) {
	stmt := &IfCurrentStmt{}

	sym, err := p.parseSymbol()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Branches = append(stmt.Branches, SymbolBranch{Symbol: sym, Body: body})

	for p.cur.Type == TokenIdent && p.cur.Literal == "else" {
		p.next()
		if p.cur.Type == TokenIdent && p.cur.Literal == "if" {
			p.next()
			sym, err := p.parseSymbol()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			stmt.Branches = append(stmt.Branches, SymbolBranch{Symbol: sym, Body: body})
			continue
		}
		if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
			return nil, err
		}
		stmt.Else, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
		break
	}

	return stmt, nil
}

func (p *parser) parseLoop() (Stmt, error) {
	p.next() // loop
	if _, err := p.expect(TokenLBrace, "'{'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &LoopStmt{Body: body}, nil
}

func (p *parser) parseScan() (Stmt, error) {
	p.next() // scan
	dir, err := p.expect(TokenIdent, "a direction")
	if err != nil {
		return nil, err
	}
	move := machine.Right
	if dir.Literal == "left" || dir.Literal == "L" {
		move = machine.Left
	}
	if err := p.expectKeyword("for"); err != nil {
		return nil, err
	}

	stmt := &ScanStmt{Move: move}
	if p.cur.Type == TokenLBracket {
		syms, err := p.parseSymbolList()
		if err != nil {
			return nil, err
		}
		stmt.Stop = syms
		return stmt, nil
	}
	sym, err := p.parseSymbol()
	if err != nil {
		return nil, err
	}
	stmt.Stop = []machine.Symbol{sym}
	return stmt, nil
}

func (p *parser) parseBlock() ([]Stmt, error) {
	var body []Stmt
	for p.cur.Type != TokenRBrace {
		if p.cur.Type == TokenEOF {
			return nil, p.errorf("unexpected end of input in block")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next() // }
	return body, nil
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	var op BinOp
	switch p.cur.Type {
	case TokenEqEq:
		op = OpEq
	case TokenNe:
		op = OpNe
	case TokenLt:
		op = OpLt
	case TokenLe:
		op = OpLe
	case TokenGt:
		op = OpGt
	case TokenGe:
		op = OpGe
	default:
		return left, nil
	}
	p.next()
	right, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	return &BinaryExpr{Op: op, Left: left, Right: right}, nil
}

func (p *parser) parseAddSub() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur.Type {
		case TokenPlus:
			op = OpAdd
		case TokenMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.cur.Type {
	case TokenNumber:
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil {
			return nil, p.errorf("bad number %q", p.cur.Literal)
		}
		p.next()
		return &IntLit{Value: n}, nil
	case TokenIdent:
		name := p.cur.Literal
		p.next()
		if name == "count" {
			if _, err := p.expect(TokenLParen, "'('"); err != nil {
				return nil, err
			}
			sym, err := p.parseSymbol()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRParen, "')'"); err != nil {
				return nil, err
			}
			return &CountExpr{Symbol: sym}, nil
		}
		return &VarRef{Name: name}, nil
	case TokenLParen:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, p.errorf("unexpected token %q in expression", p.cur.Literal)
}
