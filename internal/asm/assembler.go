// Package asm implements a minimal, deterministic assembler from a parsed
// and resolved source file to the flat bytecode internal/runtime executes.
// It is not a general ST-to-bytecode compiler: it covers the statement and
// expression forms needed to run the test-fixture style programs the
// build/test/docs CLI commands operate on (assignment, call statements,
// IF/WHILE, arithmetic/comparison/boolean operators, literals, identifiers,
// and direct I/O addresses) and reports an Unsupported error for anything
// else rather than silently mis-assembling it. A full optimizing backend is
// out of scope (see SPEC_FULL.md's Non-goals).
//
// Grounded on internal/runtime/eval.go's Frame.Step switch, which fixes the
// opcode vocabulary this package must target, and on
// internal/symbols/resolver.go's own two-pass walk of a *syntax.Tree via
// RedNode.Children()/NonTrivia().
package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/syntax"
)

// Unsupported is returned for a syntax form the assembler does not yet
// lower to bytecode.
type Unsupported struct {
	Construct string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("asm: unsupported construct: %s", e.Construct)
}

// assembler accumulates instructions for one POU body.
type assembler struct {
	instrs []runtime.Instr
}

func (a *assembler) emit(i runtime.Instr) int {
	a.instrs = append(a.instrs, i)
	return len(a.instrs) - 1
}

// semantic filters n's non-trivia children down to the ones that are
// themselves syntax constructs (expressions, statement lists, clauses),
// dropping bare keyword/punctuation tokens like IF/THEN/ELSE/:=/;/(/)/,
// that NonTrivia still carries.
func semantic(n *syntax.RedNode) []*syntax.RedNode {
	var out []*syntax.RedNode
	for _, c := range n.NonTrivia() {
		if c.Kind() == syntax.NodeToken {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AssembleFile walks every PROGRAM/FUNCTION/FUNCTION_BLOCK at the top level
// of tree (including those nested in NAMESPACE blocks) and returns one
// runtime.Program per POU, named by its declared identifier. src must be
// the exact text tree was parsed from, since node ranges are byte offsets
// into it.
func AssembleFile(tree *syntax.Tree, src string) ([]runtime.Program, error) {
	var programs []runtime.Program
	if err := walkTopLevel(tree.Red(), src, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func walkTopLevel(n *syntax.RedNode, src string, out *[]runtime.Program) error {
	for _, c := range n.NonTrivia() {
		switch c.Kind() {
		case syntax.NodeNamespace:
			if err := walkTopLevel(c, src, out); err != nil {
				return err
			}
		case syntax.NodeProgram, syntax.NodeFunction, syntax.NodeFunctionBlock:
			prog, err := assemblePou(c, src)
			if err != nil {
				return err
			}
			*out = append(*out, prog)
		}
	}
	return nil
}

func assemblePou(pou *syntax.RedNode, src string) (runtime.Program, error) {
	kids := pou.NonTrivia()
	if len(kids) < 2 || kids[1].Kind() != syntax.NodeToken {
		return runtime.Program{}, &Unsupported{Construct: "POU missing name"}
	}
	name := kids[1].Token().Text

	a := &assembler{}
	for _, c := range kids {
		if c.Kind() == syntax.NodeStatementList {
			if err := a.statementList(c, src); err != nil {
				return runtime.Program{}, err
			}
		}
	}
	return runtime.Program{Name: name, Instructions: a.instrs}, nil
}

func (a *assembler) statementList(n *syntax.RedNode, src string) error {
	for _, c := range n.NonTrivia() {
		if c.Kind() == syntax.NodeToken {
			continue // e.g. a bare ';' empty statement
		}
		if err := a.statement(c, src); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembler) statement(n *syntax.RedNode, src string) error {
	switch n.Kind() {
	case syntax.NodeAssignStmt:
		return a.assignStmt(n, src)
	case syntax.NodeCallStmt:
		return a.callStmt(n, src)
	case syntax.NodeIfStmt:
		return a.ifStmt(n, src)
	case syntax.NodeWhileStmt:
		return a.whileStmt(n, src)
	case syntax.NodeStatementList:
		return a.statementList(n, src)
	case syntax.NodeReturnStmt:
		a.emit(runtime.Instr{Op: runtime.OpReturn})
		return nil
	default:
		return &Unsupported{Construct: fmt.Sprintf("statement kind %d", n.Kind())}
	}
}

func (a *assembler) assignStmt(n *syntax.RedNode, src string) error {
	kids := semantic(n)
	if len(kids) != 2 {
		return &Unsupported{Construct: "malformed assignment"}
	}
	lhs, rhs := kids[0], kids[1]

	if err := a.expr(rhs, src); err != nil {
		return err
	}
	return a.store(lhs, src)
}

// callStmt handles a bare call used as a statement (e.g. ASSERT_TRUE(x);),
// discarding whatever result the call produces since a statement has none.
func (a *assembler) callStmt(n *syntax.RedNode, src string) error {
	kids := semantic(n)
	if len(kids) != 1 || kids[0].Kind() != syntax.NodeCallExpr {
		return &Unsupported{Construct: "call statement body"}
	}
	if err := a.expr(kids[0], src); err != nil {
		return err
	}
	a.emit(runtime.Instr{Op: runtime.OpPop})
	return nil
}

func (a *assembler) ifStmt(n *syntax.RedNode, src string) error {
	kids := semantic(n)
	// cond, then-body, [elsif...], [else-body]
	if len(kids) < 2 {
		return &Unsupported{Construct: "malformed if"}
	}
	cond, thenBody := kids[0], kids[1]
	rest := kids[2:]

	if err := a.expr(cond, src); err != nil {
		return err
	}
	jumpToElse := a.emit(runtime.Instr{Op: runtime.OpJumpIfFalse})
	if err := a.statement(thenBody, src); err != nil {
		return err
	}
	jumpsToEnd := []int{a.emit(runtime.Instr{Op: runtime.OpJump})}
	a.instrs[jumpToElse].Target = len(a.instrs)

	for _, c := range rest {
		switch c.Kind() {
		case syntax.NodeElsifClause:
			j, err := a.elsifClause(c, src)
			if err != nil {
				return err
			}
			jumpsToEnd = append(jumpsToEnd, j)
		case syntax.NodeStatementList:
			if err := a.statementList(c, src); err != nil {
				return err
			}
		}
	}
	for _, j := range jumpsToEnd {
		a.instrs[j].Target = len(a.instrs)
	}
	return nil
}

// elsifClause lowers one ELSIF branch and returns the index of the jump its
// body ends with, which the caller points past the whole IF statement.
func (a *assembler) elsifClause(n *syntax.RedNode, src string) (int, error) {
	kids := semantic(n)
	if len(kids) < 2 {
		return 0, &Unsupported{Construct: "malformed elsif"}
	}
	if err := a.expr(kids[0], src); err != nil {
		return 0, err
	}
	jumpPast := a.emit(runtime.Instr{Op: runtime.OpJumpIfFalse})
	if err := a.statement(kids[1], src); err != nil {
		return 0, err
	}
	jumpToEnd := a.emit(runtime.Instr{Op: runtime.OpJump})
	a.instrs[jumpPast].Target = len(a.instrs)
	return jumpToEnd, nil
}

func (a *assembler) whileStmt(n *syntax.RedNode, src string) error {
	kids := semantic(n)
	if len(kids) != 2 {
		return &Unsupported{Construct: "malformed while"}
	}
	cond, body := kids[0], kids[1]

	top := len(a.instrs)
	if err := a.expr(cond, src); err != nil {
		return err
	}
	exitJump := a.emit(runtime.Instr{Op: runtime.OpJumpIfFalse})
	if err := a.statement(body, src); err != nil {
		return err
	}
	a.emit(runtime.Instr{Op: runtime.OpJump, Target: top})
	a.instrs[exitJump].Target = len(a.instrs)
	return nil
}

// store emits the instruction that writes the top-of-stack value to lhs,
// which must be a plain identifier (a local variable or a direct I/O
// address written as %IX0.0).
func (a *assembler) store(lhs *syntax.RedNode, src string) error {
	if lhs.Kind() != syntax.NodeIdentExpr {
		return &Unsupported{Construct: "assignment target must be a plain identifier"}
	}
	name := identName(lhs)
	if addr, ok := directAddress(name); ok {
		a.emit(runtime.Instr{Op: runtime.OpWriteIO, Addr: addr})
		return nil
	}
	a.emit(runtime.Instr{Op: runtime.OpStoreVar, Name: name})
	return nil
}

func (a *assembler) expr(n *syntax.RedNode, src string) error {
	switch n.Kind() {
	case syntax.NodeParenExpr:
		kids := semantic(n)
		if len(kids) != 1 {
			return &Unsupported{Construct: "parenthesized expression"}
		}
		return a.expr(kids[0], src)

	case syntax.NodeLiteralExpr:
		v, err := literalValue(n)
		if err != nil {
			return err
		}
		a.emit(runtime.Instr{Op: runtime.OpPushConst, Const: v})
		return nil

	case syntax.NodeIdentExpr:
		name := identName(n)
		if addr, ok := directAddress(name); ok {
			a.emit(runtime.Instr{Op: runtime.OpReadIO, Addr: addr})
			return nil
		}
		a.emit(runtime.Instr{Op: runtime.OpLoadVar, Name: name})
		return nil

	case syntax.NodeUnaryExpr:
		return a.unaryExpr(n, src)

	case syntax.NodeBinaryExpr:
		return a.binaryExpr(n, src)

	case syntax.NodeCallExpr:
		return a.callExpr(n, src)

	default:
		return &Unsupported{Construct: fmt.Sprintf("expression kind %d", n.Kind())}
	}
}

func (a *assembler) unaryExpr(n *syntax.RedNode, src string) error {
	kids := n.NonTrivia()
	if len(kids) != 2 {
		return &Unsupported{Construct: "malformed unary expression"}
	}
	opTok := kids[0].Token()
	operand := kids[1]

	switch opTok.Kind {
	case syntax.KindPlus:
		return a.expr(operand, src)
	case syntax.KindMinus:
		a.emit(runtime.Instr{Op: runtime.OpPushConst, Const: runtime.IntValue(0)})
		if err := a.expr(operand, src); err != nil {
			return err
		}
		a.emit(runtime.Instr{Op: runtime.OpCall, Name: "SUB", Arity: 2})
		return nil
	case syntax.KindKwNot:
		if err := a.expr(operand, src); err != nil {
			return err
		}
		a.emit(runtime.Instr{Op: runtime.OpCall, Name: "NOT", Arity: 1})
		return nil
	default:
		return &Unsupported{Construct: "unary operator " + opTok.Text}
	}
}

func (a *assembler) binaryExpr(n *syntax.RedNode, src string) error {
	kids := n.NonTrivia()
	if len(kids) != 3 {
		return &Unsupported{Construct: "malformed binary expression"}
	}
	left, opNode, right := kids[0], kids[1], kids[2]

	builtin, ok := operatorBuiltin(opNode.Token().Kind)
	if !ok {
		return &Unsupported{Construct: "binary operator " + opNode.Token().Text}
	}
	if err := a.expr(left, src); err != nil {
		return err
	}
	if err := a.expr(right, src); err != nil {
		return err
	}
	a.emit(runtime.Instr{Op: runtime.OpCall, Name: builtin, Arity: 2})
	return nil
}

func (a *assembler) callExpr(n *syntax.RedNode, src string) error {
	kids := n.NonTrivia()
	if len(kids) != 2 || kids[0].Kind() != syntax.NodeIdentExpr || kids[1].Kind() != syntax.NodeArgList {
		return &Unsupported{Construct: "call target"}
	}
	callee := strings.ToUpper(identName(kids[0]))

	var args []*syntax.RedNode
	for _, c := range semantic(kids[1]) {
		if c.Kind() == syntax.NodeNamedArg {
			return &Unsupported{Construct: "named arguments in assembled calls"}
		}
		args = append(args, c)
	}
	for _, arg := range args {
		if err := a.expr(arg, src); err != nil {
			return err
		}
	}
	a.emit(runtime.Instr{Op: runtime.OpCall, Name: callee, Arity: len(args)})
	return nil
}

func operatorBuiltin(k syntax.Kind) (string, bool) {
	switch k {
	case syntax.KindPlus:
		return "ADD", true
	case syntax.KindMinus:
		return "SUB", true
	case syntax.KindStar:
		return "MUL", true
	case syntax.KindSlash:
		return "DIV", true
	case syntax.KindKwMod:
		return "MOD", true
	case syntax.KindEquals:
		return "EQ", true
	case syntax.KindNotEquals:
		return "NE", true
	case syntax.KindLess:
		return "LT", true
	case syntax.KindGreater:
		return "GT", true
	case syntax.KindLessEq:
		return "LE", true
	case syntax.KindGreaterEq:
		return "GE", true
	case syntax.KindKwAnd:
		return "AND", true
	case syntax.KindKwOr:
		return "OR", true
	case syntax.KindKwXor:
		return "XOR", true
	default:
		return "", false
	}
}

func identName(n *syntax.RedNode) string {
	kids := n.NonTrivia()
	if len(kids) == 0 {
		return ""
	}
	return kids[0].Token().Text
}

// directAddress reports whether name is a direct I/O address (%IX0.0 etc.)
// rather than a declared local, parsing it via runtime.ParseAddress — the
// same string form internal/controlplane accepts from request parameters.
func directAddress(name string) (runtime.Address, bool) {
	if !strings.HasPrefix(name, "%") {
		return runtime.Address{}, false
	}
	addr, err := runtime.ParseAddress(name)
	if err != nil {
		return runtime.Address{}, false
	}
	return addr, true
}

func literalValue(n *syntax.RedNode) (runtime.Value, error) {
	kids := n.NonTrivia()
	if len(kids) == 0 {
		return runtime.Value{}, &Unsupported{Construct: "empty literal"}
	}
	tok := kids[0].Token()
	switch tok.Kind {
	case syntax.KindIntLiteral:
		i, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return runtime.Value{}, fmt.Errorf("asm: malformed int literal %q: %w", tok.Text, err)
		}
		return runtime.IntValue(i), nil
	case syntax.KindRealLiteral:
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return runtime.Value{}, fmt.Errorf("asm: malformed real literal %q: %w", tok.Text, err)
		}
		return runtime.RealValue(f), nil
	case syntax.KindBoolLiteral:
		return runtime.BoolValue(strings.EqualFold(tok.Text, "TRUE")), nil
	case syntax.KindStringLiteral, syntax.KindWStringLiteral:
		return runtime.StringValue(strings.Trim(tok.Text, "'\"")), nil
	default:
		return runtime.Value{}, &Unsupported{Construct: "literal kind " + tok.Text}
	}
}
