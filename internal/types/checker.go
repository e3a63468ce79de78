package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dekarrin/stlc/internal/diag"
	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/dekarrin/stlc/internal/syntax"
)

// standardFBTimerSignatures lists the timer-typed standard function blocks
// overloaded by their PT argument's time type, per §4.3.
var standardFBTimerSignatures = map[string]ElemKind{
	"TON": ElemTIME, "TOF": ElemTIME, "TP": ElemTIME,
	"TON_LTIME": ElemLTIME, "TOF_LTIME": ElemLTIME, "TP_LTIME": ElemLTIME,
}

// cyclomaticComplexityThreshold is the point past which a POU is flagged
// HighComplexity.
const cyclomaticComplexityThreshold = 10

// Checker type-checks one file's tree against its resolved symbol table and
// emits diagnostics. It does not mutate the tree or the table (besides
// reading Symbol.Used, which the resolver already populated).
type Checker struct {
	file  diag.FileID
	tree  *syntax.Tree
	src   string
	table *symbols.Table

	structTypeNames stringSet
	enumTypeNames   stringSet
	// enumDiscriminants maps an enum type's upper-cased name to its member
	// names, upper-cased, in declaration order.
	enumDiscriminants map[string][]string
}

// NewChecker constructs a Checker for one file.
func NewChecker(file diag.FileID, tree *syntax.Tree, src string, table *symbols.Table) *Checker {
	c := &Checker{
		file:              file,
		tree:              tree,
		src:               src,
		table:             table,
		structTypeNames:   newStringSet(),
		enumTypeNames:     newStringSet(),
		enumDiscriminants: map[string][]string{},
	}
	c.collectNamedTypes()
	return c
}

func (c *Checker) collectNamedTypes() {
	root := c.tree.Red()
	var walk func(n *syntax.RedNode)
	walk = func(n *syntax.RedNode) {
		if n.Kind() == syntax.NodeTypeDecl {
			kids := n.NonTrivia()
			var name string
			for _, k := range kids {
				if k.Kind() == syntax.NodeToken && k.Token().Kind == syntax.KindIdentifier {
					name = k.Token().Text
					break
				}
			}
			for _, k := range kids {
				switch k.Kind() {
				case syntax.NodeStructDecl:
					c.structTypeNames.add(strings.ToUpper(name))
				case syntax.NodeEnumDecl:
					upper := strings.ToUpper(name)
					c.enumTypeNames.add(upper)
					c.enumDiscriminants[upper] = enumMemberNames(k)
				}
			}
		}
		for _, k := range n.NonTrivia() {
			walk(k)
		}
	}
	walk(root)
}

// enumMemberNames extracts, in order, the upper-cased member names declared
// in an enum type.
func enumMemberNames(decl *syntax.RedNode) []string {
	var names []string
	for _, k := range decl.NonTrivia() {
		if k.Kind() != syntax.NodeEnumMember {
			continue
		}
		if tok, ok := topLevelIdent(k); ok {
			names = append(names, strings.ToUpper(tok.Text))
		}
	}
	return names
}

// Check runs every checker rule over the tree and returns the accumulated
// diagnostics, in a deterministic (tree-walk) order.
func (c *Checker) Check() []diag.Diagnostic {
	var out []diag.Diagnostic

	out = append(out, c.symbolIssueDiagnostics()...)
	out = append(out, c.unresolvedRefDiagnostics()...)

	root := c.tree.Red()
	var walk func(n *syntax.RedNode)
	walk = func(n *syntax.RedNode) {
		switch n.Kind() {
		case syntax.NodeSubrangeTypeRef:
			out = append(out, c.checkSubrangeBounds(n)...)
		case syntax.NodeAssignStmt:
			out = append(out, c.checkAssignStmt(n)...)
		case syntax.NodeCaseStmt:
			out = append(out, c.checkCaseStmt(n)...)
		case syntax.NodeCallExpr:
			out = append(out, c.checkCallExpr(n)...)
		case syntax.NodeReturnStmt:
			out = append(out, c.checkUnreachableAfterReturn(n)...)
		case syntax.NodeIfStmt, syntax.NodeElsifClause, syntax.NodeWhileStmt, syntax.NodeRepeatStmt:
			out = append(out, c.checkConditionIsBool(n)...)
		case syntax.NodeIdentExpr:
			out = append(out, c.checkDirectIoAccess(n)...)
		}
		for _, k := range n.NonTrivia() {
			walk(k)
		}
	}
	walk(root)

	out = append(out, c.checkSharedGlobalTaskHazards()...)
	out = append(out, c.checkComplexityForAllPous()...)
	out = append(out, c.unusedSymbolDiagnostics()...)

	return out
}

func (c *Checker) symbolIssueDiagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, iss := range c.table.Issues {
		sym := c.table.Syms[iss.SymbolID]
		out = append(out, diag.New(c.file, sym.DeclRange.Start, sym.DeclRange.End, diag.Code(iss.Code), iss.Message))
	}
	return out
}

func (c *Checker) unresolvedRefDiagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for key, res := range c.table.Refs {
		if res.Err == "" || int(key.File) != int(c.file) {
			continue
		}
		out = append(out, diag.New(c.file, key.Offset, key.Offset, diag.Code(res.Err), "cannot resolve identifier"))
	}
	return out
}

// checkSubrangeBounds implements §8's `INT(10..5) => OutOfRange`
// boundary case: lo must be <= hi, and both must be literal constants (the
// parser already guarantees they are expressions; here we require they be
// plain integer literals since full constant-expression evaluation is out
// of scope for this pass).
func (c *Checker) checkSubrangeBounds(n *syntax.RedNode) []diag.Diagnostic {
	kids := n.NonTrivia()
	var nums []int64
	var rangeStart, rangeEnd int
	for _, k := range kids {
		if k.Kind() == syntax.NodeLiteralExpr {
			tok := firstToken(k)
			if tok.Kind == syntax.KindIntLiteral {
				v, err := strconv.ParseInt(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
				if err == nil {
					nums = append(nums, v)
					if rangeStart == 0 {
						rangeStart = tok.Start
					}
					rangeEnd = tok.End
				}
			}
		}
	}
	if len(nums) == 2 && nums[0] > nums[1] {
		s, e := n.Range()
		if rangeStart != 0 {
			s, e = rangeStart, rangeEnd
		}
		return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeOutOfRange,
			"subrange lower bound must not exceed upper bound")}
	}
	return nil
}

func firstToken(n *syntax.RedNode) syntax.Token {
	if n.Kind() == syntax.NodeToken {
		return n.Token()
	}
	for _, c := range n.Children() {
		if c.Kind() == syntax.NodeToken {
			if !c.Token().IsTrivia() {
				return c.Token()
			}
			continue
		}
		if t := firstToken(c); t.Kind != syntax.KindEOF {
			return t
		}
	}
	return syntax.Token{}
}

// exprChildren returns n's non-trivia children that are not plain tokens —
// the expression/statement-list operands, skipping the keyword and
// punctuation tokens interspersed among them in the concrete tree.
func exprChildren(n *syntax.RedNode) []*syntax.RedNode {
	var out []*syntax.RedNode
	for _, k := range n.NonTrivia() {
		if k.Kind() == syntax.NodeToken {
			continue
		}
		out = append(out, k)
	}
	return out
}

// unwrapParen strips any number of enclosing parenthesized-expression
// wrappers, so callers can inspect the operand underneath (a..b) without
// special-casing it at every call site.
func unwrapParen(n *syntax.RedNode) *syntax.RedNode {
	for n != nil && n.Kind() == syntax.NodeParenExpr {
		kids := exprChildren(n)
		if len(kids) == 0 {
			return n
		}
		n = kids[0]
	}
	return n
}

// operatorToken returns the single operator token of a unary or binary
// expression node.
func operatorToken(n *syntax.RedNode) syntax.Token {
	for _, k := range n.NonTrivia() {
		if k.Kind() == syntax.NodeToken {
			return k.Token()
		}
	}
	return syntax.Token{}
}

// topLevelIdent finds the first direct Identifier-token child of n.
func topLevelIdent(n *syntax.RedNode) (syntax.Token, bool) {
	for _, c := range n.NonTrivia() {
		if c.Kind() == syntax.NodeToken && c.Token().Kind == syntax.KindIdentifier {
			return c.Token(), true
		}
	}
	return syntax.Token{}, false
}

func topLevelIdentText(n *syntax.RedNode) string {
	if tok, ok := topLevelIdent(n); ok {
		return tok.Text
	}
	return ""
}

func isContextualNumericLiteral(n *syntax.RedNode) bool {
	if n == nil || n.Kind() != syntax.NodeLiteralExpr {
		return false
	}
	tok := firstToken(n)
	return tok.Kind == syntax.KindIntLiteral || tok.Kind == syntax.KindRealLiteral
}

// resolveLValueSymbol resolves the symbol named by the root identifier of an
// lvalue expression, descending through member/index access.
func (c *Checker) resolveLValueSymbol(lhs *syntax.RedNode) (*symbols.Symbol, bool) {
	root := lhs
	for root.Kind() == syntax.NodeMemberExpr || root.Kind() == syntax.NodeIndexExpr {
		kids := exprChildren(root)
		if len(kids) == 0 {
			return nil, false
		}
		root = kids[0]
	}
	if root.Kind() != syntax.NodeIdentExpr {
		return nil, false
	}
	ident := firstToken(root)
	key := symbols.RefKey{File: symbols.FileID(c.file), Offset: ident.Start}
	res, ok := c.table.Refs[key]
	if !ok || res.SymbolID < 0 {
		return nil, false
	}
	return c.table.Syms[res.SymbolID], true
}

// checkAssignStmt implements ConstantModification, assignment type
// compatibility (TypeMismatch/ImplicitConversion), and literal-bounds
// OutOfRange for a simple assignment's lvalue.
func (c *Checker) checkAssignStmt(n *syntax.RedNode) []diag.Diagnostic {
	exprs := exprChildren(n)
	if len(exprs) < 2 {
		return nil
	}
	lhs, rhs := exprs[0], exprs[len(exprs)-1]
	sym, ok := c.resolveLValueSymbol(lhs)
	if !ok {
		return nil
	}

	var out []diag.Diagnostic
	if sym.Modifiers.Has(symbols.ModConstant) {
		s, e := n.Range()
		out = append(out, diag.New(c.file, s, e, diag.CodeConstantModification,
			"cannot assign to constant '"+sym.Name+"'"))
	}
	out = append(out, c.checkAssignTypeCompat(sym, rhs)...)
	out = append(out, c.checkAssignLiteralBounds(sym, rhs)...)
	return out
}

// checkAssignTypeCompat implements the TypeMismatch/ImplicitConversion rules
// of §4.3 for simple assignment: a contextual integer or real literal is
// exempt from mismatch-flagging whenever the target itself is numeric
// (the literal just takes the target's type), and otherwise an assignment
// must be between identical, widening, or (with a warning) narrowing or
// signedness-mixing numeric types.
func (c *Checker) checkAssignTypeCompat(sym *symbols.Symbol, rhs *syntax.RedNode) []diag.Diagnostic {
	toElem, ok := ElemKindFromName(sym.TypeRef)
	if !ok {
		return nil
	}
	operand := unwrapParen(rhs)
	if isContextualNumericLiteral(operand) {
		if IsNumericElem(toElem) {
			return nil
		}
		s, e := rhs.Range()
		return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeTypeMismatch,
			"cannot assign a numeric literal to "+string(toElem))}
	}
	fromElem, ok := c.elemKindOfExpr(operand)
	if !ok {
		return nil
	}
	return assignCompatDiagnostics(c.file, rhs, fromElem, toElem)
}

func assignCompatDiagnostics(file diag.FileID, rhs *syntax.RedNode, from, to ElemKind) []diag.Diagnostic {
	if from == to {
		return nil
	}
	s, e := rhs.Range()
	if IsNumericElem(from) && IsNumericElem(to) {
		if WidensTo(from, to) {
			return nil
		}
		if NarrowsOrMixesSignedness(from, to) {
			return []diag.Diagnostic{diag.New(file, s, e, diag.CodeImplicitConversion,
				"implicit conversion from "+string(from)+" to "+string(to))}
		}
	}
	return []diag.Diagnostic{diag.New(file, s, e, diag.CodeTypeMismatch,
		"cannot assign "+string(from)+" to "+string(to))}
}

// elemKindOfExpr infers the elementary type of an expression where that is
// possible without full type inference: literals (other than contextual
// numeric literals, handled by the caller) and identifiers that resolve to a
// symbol with an elementary TypeRef. Member/index/call/deref expressions
// report ok=false — full expression type inference is out of this pass's
// scope.
func (c *Checker) elemKindOfExpr(n *syntax.RedNode) (ElemKind, bool) {
	n = unwrapParen(n)
	if n == nil {
		return "", false
	}
	switch n.Kind() {
	case syntax.NodeLiteralExpr:
		tok := firstToken(n)
		switch tok.Kind {
		case syntax.KindBoolLiteral:
			return ElemBOOL, true
		case syntax.KindStringLiteral:
			return ElemSTRING, true
		case syntax.KindWStringLiteral:
			return ElemWSTRING, true
		case syntax.KindTypedLiteral:
			prefix := strings.ToUpper(strings.SplitN(tok.Text, "#", 2)[0])
			return ElemKindFromName(prefix)
		default:
			return "", false
		}
	case syntax.NodeIdentExpr:
		ident := firstToken(n)
		key := symbols.RefKey{File: symbols.FileID(c.file), Offset: ident.Start}
		res, ok := c.table.Refs[key]
		if !ok || res.SymbolID < 0 {
			return "", false
		}
		sym := c.table.Syms[res.SymbolID]
		return ElemKindFromName(sym.TypeRef)
	default:
		return "", false
	}
}

// checkAssignLiteralBounds implements OutOfRange for a literal assigned
// directly to a subrange- or STRING[N]/WSTRING[N]-typed variable — the
// use-site counterpart to checkSubrangeBounds's declaration-time check.
func (c *Checker) checkAssignLiteralBounds(sym *symbols.Symbol, rhs *syntax.RedNode) []diag.Diagnostic {
	lit := unwrapParen(rhs)
	if lit == nil || lit.Kind() != syntax.NodeLiteralExpr {
		return nil
	}
	tok := firstToken(lit)
	s, e := rhs.Range()

	if lo, hi, ok := SubrangeBoundsFromTypeRef(sym.TypeRef); ok && tok.Kind == syntax.KindIntLiteral {
		v, err := strconv.ParseInt(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
		if err == nil && (v < lo || v > hi) {
			return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeOutOfRange,
				"value "+tok.Text+" is outside the declared range of '"+sym.Name+"'")}
		}
		return nil
	}
	if maxLen, ok := StringMaxLenFromTypeRef(sym.TypeRef); ok {
		var content string
		switch tok.Kind {
		case syntax.KindStringLiteral, syntax.KindWStringLiteral:
			content = stringLiteralContent(tok.Text)
		default:
			return nil
		}
		if len(content) > maxLen {
			return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeOutOfRange,
				"string literal exceeds the declared length of '"+sym.Name+"'")}
		}
	}
	return nil
}

// stringLiteralContent strips a ST string literal's surrounding quote
// delimiters ('...' or "...").
func stringLiteralContent(text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}

// caseLabel is a CASE statement label reduced to either an integer range
// (a discrete literal has lo == hi) or an identifier name (an enum member
// or other named constant).
type caseLabel struct {
	isInt  bool
	lo, hi int64
	name   string // upper-cased, set only when !isInt
	node   *syntax.RedNode
}

// caseLabelsOf extracts the ordered labels of one CASE label group:
// expr (.. expr)? (, expr (.. expr)?)*  :  stmtList
func caseLabelsOf(group *syntax.RedNode) []caseLabel {
	kids := group.NonTrivia()
	var labels []caseLabel
	i := 0
	for i < len(kids) {
		k := kids[i]
		if k.Kind() == syntax.NodeToken {
			if k.Token().Kind == syntax.KindColon {
				break
			}
			i++ // comma, or any other separator token
			continue
		}
		expr1 := k
		i++
		var expr2 *syntax.RedNode
		if i < len(kids) && kids[i].Kind() == syntax.NodeToken && kids[i].Token().Kind == syntax.KindRange {
			i++
			if i < len(kids) && kids[i].Kind() != syntax.NodeToken {
				expr2 = kids[i]
				i++
			}
		}
		labels = append(labels, labelFromExprs(expr1, expr2))
	}
	return labels
}

func labelFromExprs(e1, e2 *syntax.RedNode) caseLabel {
	lbl := caseLabel{node: e1}
	if v, ok := intLiteralValue(e1); ok {
		lbl.isInt = true
		lbl.lo, lbl.hi = v, v
		if e2 != nil {
			if v2, ok2 := intLiteralValue(e2); ok2 {
				lbl.hi = v2
			}
		}
		return lbl
	}
	if e1.Kind() == syntax.NodeIdentExpr {
		lbl.name = strings.ToUpper(firstToken(e1).Text)
	}
	return lbl
}

func intLiteralValue(n *syntax.RedNode) (int64, bool) {
	if n.Kind() != syntax.NodeLiteralExpr {
		return 0, false
	}
	tok := firstToken(n)
	if tok.Kind != syntax.KindIntLiteral {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(tok.Text, "_", ""), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// labelsOverlap reports whether two CASE labels can match the same value.
func labelsOverlap(a, b caseLabel) bool {
	if a.isInt && b.isInt {
		return a.lo <= b.hi && b.lo <= a.hi
	}
	if !a.isInt && !b.isInt {
		return a.name != "" && a.name == b.name
	}
	return false
}

// enumLabelsCoverDiscriminants reports whether every member of discs is
// named, as a bare identifier label, somewhere across groups.
func enumLabelsCoverDiscriminants(groups []*syntax.RedNode, discs []string) bool {
	covered := map[string]bool{}
	for _, g := range groups {
		for _, lbl := range caseLabelsOf(g) {
			if !lbl.isInt && lbl.name != "" {
				covered[lbl.name] = true
			}
		}
	}
	for _, d := range discs {
		if !covered[d] {
			return false
		}
	}
	return true
}

// checkCaseStmt implements: CASE on a struct-typed selector is a
// TypeMismatch; duplicate or overlapping labels within one CASE are flagged;
// and a CASE lacking ELSE with a non-exhaustive label set is MissingElse —
// except when the selector is an enum type whose labels cover every
// discriminant (Open Question (a) in §9, decided: exempt exhaustive enums
// only).
func (c *Checker) checkCaseStmt(n *syntax.RedNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	kids := n.NonTrivia()
	if len(kids) == 0 {
		return nil
	}

	var selector *syntax.RedNode
	var groups []*syntax.RedNode
	hasElse := false
	for _, k := range kids {
		switch {
		case k.Kind() == syntax.NodeToken && k.Token().Kind == syntax.KindKwElse:
			hasElse = true
		case k.Kind() == syntax.NodeToken:
			// CASE, OF, END_CASE — not a label or the selector
		case k.Kind() == syntax.NodeCaseLabelGroup:
			groups = append(groups, k)
		case selector == nil:
			selector = k
		}
	}
	if selector == nil {
		return nil
	}

	enumExhaustive := false
	if selector.Kind() == syntax.NodeIdentExpr {
		ident := firstToken(selector)
		key := symbols.RefKey{File: symbols.FileID(c.file), Offset: ident.Start}
		if res, ok := c.table.Refs[key]; ok && res.SymbolID >= 0 {
			sym := c.table.Syms[res.SymbolID]
			typeName := strings.ToUpper(strings.TrimSpace(sym.TypeRef))
			if c.structTypeNames.has(typeName) {
				s, e := selector.Range()
				out = append(out, diag.New(c.file, s, e, diag.CodeTypeMismatch,
					"CASE selector must not be a struct type"))
			}
			if discs, ok := c.enumDiscriminants[typeName]; ok {
				enumExhaustive = enumLabelsCoverDiscriminants(groups, discs)
			}
		}
	}

	var allLabels []caseLabel
	for _, g := range groups {
		allLabels = append(allLabels, caseLabelsOf(g)...)
	}
	for i := 0; i < len(allLabels); i++ {
		for j := i + 1; j < len(allLabels); j++ {
			if labelsOverlap(allLabels[i], allLabels[j]) {
				s, e := allLabels[j].node.Range()
				out = append(out, diag.New(c.file, s, e, diag.CodeDuplicateDeclaration,
					"CASE label overlaps a previous label in this statement"))
			}
		}
	}

	if !hasElse && !enumExhaustive {
		s, e := n.Range()
		out = append(out, diag.New(c.file, s, e, diag.CodeMissingElse,
			"CASE has no ELSE and its labels may not cover every value"))
	}

	return out
}

// allArgsPositional reports whether none of args is a named argument.
func allArgsPositional(args []*syntax.RedNode) bool {
	for _, a := range args {
		if a.Kind() == syntax.NodeNamedArg {
			return false
		}
	}
	return true
}

// calleeSignatureSymbol resolves callee to the Program/Function/
// FunctionBlock/Method symbol whose parameter list governs its call: either
// the callee's own symbol (a direct POU reference) or, for an FB-instance
// variable, the FunctionBlock type symbol named by its TypeRef.
func (c *Checker) calleeSignatureSymbol(callee *syntax.RedNode) (*symbols.Symbol, bool) {
	if callee.Kind() != syntax.NodeIdentExpr {
		return nil, false
	}
	ident := firstToken(callee)
	key := symbols.RefKey{File: symbols.FileID(c.file), Offset: ident.Start}
	res, ok := c.table.Refs[key]
	if !ok || res.SymbolID < 0 {
		return nil, false
	}
	sym := c.table.Syms[res.SymbolID]
	switch sym.Kind {
	case symbols.KindFunction, symbols.KindProgram, symbols.KindFunctionBlock, symbols.KindMethod:
		return sym, true
	case symbols.KindVariable, symbols.KindParameter:
		typeName := strings.ToUpper(strings.TrimSpace(sym.TypeRef))
		for _, s := range c.table.Syms {
			if s.Kind == symbols.KindFunctionBlock && strings.ToUpper(s.Name) == typeName {
				return s, true
			}
		}
	}
	return nil, false
}

// symbolIsFunctionLocal reports whether sym is declared inside a FUNCTION's
// body scope: functions have no persistent storage, so taking the address
// of a local is meaningless once the call returns.
func (c *Checker) symbolIsFunctionLocal(sym *symbols.Symbol) bool {
	for sid := sym.ScopeID; sid != -1; {
		scope := c.table.Scopes[sid]
		if scope.Kind == symbols.ScopeFunction {
			return true
		}
		sid = scope.Parent
	}
	return false
}

// checkRefOperand implements InvalidOperation for REF/ADR: the operand must
// be an addressable variable, not a constant, a VAR_TEMP, or a
// function-local variable.
func (c *Checker) checkRefOperand(callee *syntax.RedNode, args []*syntax.RedNode) []diag.Diagnostic {
	calleeName := strings.ToUpper(firstToken(callee).Text)
	if len(args) != 1 {
		return nil
	}
	arg := args[0]
	if arg.Kind() == syntax.NodeNamedArg {
		kids := exprChildren(arg)
		if len(kids) == 0 {
			return nil
		}
		arg = kids[len(kids)-1]
	}
	sym, ok := c.resolveLValueSymbol(arg)
	if !ok {
		s, e := arg.Range()
		return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeInvalidOperation,
			calleeName+"() requires a variable operand")}
	}
	reason := ""
	switch {
	case sym.Modifiers.Has(symbols.ModConstant):
		reason = "a constant"
	case sym.Modifiers.Has(symbols.ModTemporary):
		reason = "a VAR_TEMP variable"
	case c.symbolIsFunctionLocal(sym):
		reason = "a function-local variable"
	}
	if reason == "" {
		return nil
	}
	s, e := arg.Range()
	return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeInvalidOperation,
		calleeName+"() cannot take the address of "+reason+" ('"+sym.Name+"')")}
}

// checkCallExpr implements the argument-passing-dialect rules of §4.3: a
// named argument may not be followed by a positional one; TON_LTIME-family
// timers require an LTIME# literal for their PT input; REF/ADR require an
// addressable, non-temporary, non-constant, non-function-local operand;
// a non-formal call with the wrong number of arguments is
// WrongArgumentCount; and TIME()/DATE() called to read the current instant
// is NondeterministicTimeDate.
func (c *Checker) checkCallExpr(n *syntax.RedNode) []diag.Diagnostic {
	var out []diag.Diagnostic
	kids := n.NonTrivia()
	if len(kids) < 2 {
		return nil
	}
	callee := kids[0]
	argList := kids[1]
	if argList.Kind() != syntax.NodeArgList {
		return nil
	}
	var args []*syntax.RedNode
	for _, ck := range argList.NonTrivia() {
		if ck.Kind() == syntax.NodeToken {
			continue // '(', ')', ','
		}
		args = append(args, ck)
	}

	seenNamed := false
	for _, a := range args {
		if a.Kind() == syntax.NodeNamedArg {
			seenNamed = true
			continue
		}
		if seenNamed {
			s, e := a.Range()
			out = append(out, diag.New(c.file, s, e, diag.CodeInvalidArgumentType,
				"positional argument may not follow a named argument"))
		}
	}

	if callee.Kind() == syntax.NodeIdentExpr {
		calleeName := strings.ToUpper(firstToken(callee).Text)

		if calleeName == "REF" || calleeName == "ADR" {
			out = append(out, c.checkRefOperand(callee, args)...)
		}

		if (calleeName == "TIME" || calleeName == "DATE") && len(args) == 0 {
			s, e := callee.Range()
			out = append(out, diag.New(c.file, s, e, diag.CodeNondeterministicTime,
				calleeName+"() reads the system clock and is not deterministic across scan cycles"))
		}

		if want, ok := standardFBTimerSignatures[calleeName]; ok {
			for i, a := range args {
				if i != 0 {
					break
				}
				lit := a
				if lit.Kind() == syntax.NodeNamedArg {
					nk := lit.NonTrivia()
					if len(nk) > 1 {
						lit = nk[len(nk)-1]
					}
				}
				if lit.Kind() != syntax.NodeLiteralExpr {
					continue
				}
				tok := firstToken(lit)
				if tok.Kind != syntax.KindTypedLiteral {
					continue
				}
				prefix := strings.ToUpper(strings.SplitN(tok.Text, "#", 2)[0])
				got := ElemTIME
				if prefix == "LTIME" {
					got = ElemLTIME
				}
				if got != want {
					s, e := tok.Start, tok.End
					out = append(out, diag.New(c.file, s, e, diag.CodeInvalidArgumentType,
						calleeName+" expects a "+string(want)+"# literal"))
				}
			}
		}

		if sigSym, ok := c.calleeSignatureSymbol(callee); ok && allArgsPositional(args) {
			if want, ok := c.table.InputParams(sigSym.ID); ok && len(args) != len(want) {
				s, e := n.Range()
				out = append(out, diag.New(c.file, s, e, diag.CodeWrongArgumentCount,
					"'"+sigSym.Name+"' expects "+strconv.Itoa(len(want))+" argument(s), got "+strconv.Itoa(len(args))))
			}
		}
	}

	return out
}

// checkUnreachableAfterReturn flags statements in the same statement list
// that follow a RETURN.
func (c *Checker) checkUnreachableAfterReturn(n *syntax.RedNode) []diag.Diagnostic {
	parent := n.Parent()
	if parent == nil || parent.Kind() != syntax.NodeStatementList {
		return nil
	}
	siblings := parent.NonTrivia()
	idx := -1
	for i, s := range siblings {
		if s.Index() == n.Index() {
			idx = i
			break
		}
	}
	if idx == -1 || idx == len(siblings)-1 {
		return nil
	}
	next := siblings[idx+1]
	last := siblings[len(siblings)-1]
	s, _ := next.Range()
	_, e := last.Range()
	return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeUnreachableCode,
		"unreachable code after RETURN")}
}

// conditionExprOf returns the condition expression of an IF/ELSIF/WHILE/
// REPEAT statement. IF, ELSIF, and WHILE carry it as their first non-token
// child; REPEAT's body comes first, so its condition follows UNTIL.
func conditionExprOf(n *syntax.RedNode) *syntax.RedNode {
	exprs := exprChildren(n)
	if len(exprs) == 0 {
		return nil
	}
	if n.Kind() == syntax.NodeRepeatStmt {
		if len(exprs) < 2 {
			return nil
		}
		return exprs[1]
	}
	return exprs[0]
}

// exprIsBool classifies an expression as BOOL-valued or not, where that is
// determinable without full type inference. known is false for expressions
// (member/index/call/deref) this pass cannot type without a richer
// expression type inference pass.
func (c *Checker) exprIsBool(n *syntax.RedNode) (isBool bool, known bool) {
	n = unwrapParen(n)
	if n == nil {
		return false, false
	}
	switch n.Kind() {
	case syntax.NodeError:
		return false, true
	case syntax.NodeLiteralExpr:
		tok := firstToken(n)
		return tok.Kind == syntax.KindBoolLiteral, true
	case syntax.NodeUnaryExpr:
		op := operatorToken(n)
		kids := exprChildren(n)
		if len(kids) == 0 {
			return false, false
		}
		if op.Kind == syntax.KindKwNot {
			return c.exprIsBool(kids[len(kids)-1])
		}
		return false, true
	case syntax.NodeBinaryExpr:
		switch operatorToken(n).Kind {
		case syntax.KindKwAnd, syntax.KindKwOr, syntax.KindKwXor,
			syntax.KindEquals, syntax.KindNotEquals,
			syntax.KindLess, syntax.KindGreater, syntax.KindLessEq, syntax.KindGreaterEq:
			return true, true
		default:
			return false, true
		}
	case syntax.NodeIdentExpr:
		ident := firstToken(n)
		key := symbols.RefKey{File: symbols.FileID(c.file), Offset: ident.Start}
		res, ok := c.table.Refs[key]
		if !ok || res.SymbolID < 0 {
			return false, false
		}
		sym := c.table.Syms[res.SymbolID]
		elem, ok := ElemKindFromName(sym.TypeRef)
		if !ok {
			return false, false
		}
		return elem == ElemBOOL, true
	default:
		return false, false
	}
}

// checkConditionIsBool implements §4.3's requirement that IF/ELSIF/WHILE/
// REPEAT conditions be well-formed BOOL expressions.
func (c *Checker) checkConditionIsBool(n *syntax.RedNode) []diag.Diagnostic {
	cond := conditionExprOf(n)
	if cond == nil {
		return nil
	}
	isBool, known := c.exprIsBool(cond)
	if !known || isBool {
		return nil
	}
	s, e := cond.Range()
	return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeTypeMismatch,
		"condition must be BOOL")}
}

// checkDirectIoAccess implements NondeterministicIo: reading a direct %I/%Q
// address inline in an expression observes live process-image state that
// can change between reads within the same scan. No VAR_EXTERNAL/AT-binding
// syntax exists in this implementation, so the "without VAR_EXTERNAL"
// exemption of §4.3 can never apply here; this fires unconditionally on any
// bare direct-address reference instead of only on unbound ones.
func (c *Checker) checkDirectIoAccess(n *syntax.RedNode) []diag.Diagnostic {
	tok := firstToken(n)
	if tok.Kind != syntax.KindIdentifier || len(tok.Text) < 2 || tok.Text[0] != '%' {
		return nil
	}
	switch tok.Text[1] {
	case 'I', 'i', 'Q', 'q':
	default:
		return nil
	}
	s, e := n.Range()
	return []diag.Diagnostic{diag.New(c.file, s, e, diag.CodeNondeterministicIo,
		"direct I/O reference '"+tok.Text+"' may change between reads within one scan cycle")}
}

// programConfigBinding extracts the (program type name, task name) pair
// bound by a PROGRAM instance WITH task : Type; configuration entry.
// taskName is "" if the entry has no WITH clause.
func programConfigBinding(n *syntax.RedNode) (typeName, taskName string, ok bool) {
	var idents []string
	hasWith := false
	for _, k := range n.NonTrivia() {
		if k.Kind() != syntax.NodeToken {
			continue
		}
		switch k.Token().Kind {
		case syntax.KindIdentifier:
			idents = append(idents, k.Token().Text)
		case syntax.KindKwWith:
			hasWith = true
		}
	}
	if hasWith && len(idents) == 3 {
		return strings.ToUpper(idents[2]), strings.ToUpper(idents[1]), true
	}
	if !hasWith && len(idents) == 2 {
		return strings.ToUpper(idents[1]), "", true
	}
	return "", "", false
}

// collectProgramTaskBindings walks the whole tree for PROGRAM...WITH task
// configuration entries, returning program-type-name -> bound task names.
func (c *Checker) collectProgramTaskBindings() map[string][]string {
	bindings := map[string][]string{}
	var walk func(n *syntax.RedNode)
	walk = func(n *syntax.RedNode) {
		if n.Kind() == syntax.NodeProgramConfig {
			if typeName, taskName, ok := programConfigBinding(n); ok && taskName != "" {
				bindings[typeName] = append(bindings[typeName], taskName)
			}
		}
		for _, k := range n.NonTrivia() {
			walk(k)
		}
	}
	walk(c.tree.Red())
	return bindings
}

func (c *Checker) symbolIsGlobal(sym *symbols.Symbol) bool {
	if sym.ScopeID < 0 || sym.ScopeID >= len(c.table.Scopes) {
		return false
	}
	return c.table.Scopes[sym.ScopeID].Kind == symbols.ScopeGlobal
}

// checkSharedGlobalTaskHazards implements SharedGlobalTaskHazard: a global
// variable touched, with at least one write, by programs bound to more than
// one distinct task risks a race between the tasks' execution contexts.
func (c *Checker) checkSharedGlobalTaskHazards() []diag.Diagnostic {
	bindings := c.collectProgramTaskBindings()
	if len(bindings) == 0 {
		return nil
	}

	type access struct {
		task  string
		write bool
	}
	touches := map[int][]access{}

	var walkBody func(n *syntax.RedNode, task string)
	walkBody = func(n *syntax.RedNode, task string) {
		switch n.Kind() {
		case syntax.NodeAssignStmt, syntax.NodeRefAssignStmt:
			exprs := exprChildren(n)
			if len(exprs) > 0 {
				if sym, ok := c.resolveLValueSymbol(exprs[0]); ok && c.symbolIsGlobal(sym) {
					touches[sym.ID] = append(touches[sym.ID], access{task: task, write: true})
				}
			}
		case syntax.NodeIdentExpr:
			ident := firstToken(n)
			key := symbols.RefKey{File: symbols.FileID(c.file), Offset: ident.Start}
			if res, ok := c.table.Refs[key]; ok && res.SymbolID >= 0 {
				sym := c.table.Syms[res.SymbolID]
				if c.symbolIsGlobal(sym) {
					touches[sym.ID] = append(touches[sym.ID], access{task: task, write: false})
				}
			}
		}
		for _, k := range n.NonTrivia() {
			walkBody(k, task)
		}
	}

	for _, top := range exprChildren(c.tree.Red()) {
		if top.Kind() != syntax.NodeProgram {
			continue
		}
		name, ok := topLevelIdent(top)
		if !ok {
			continue
		}
		tasks, ok := bindings[strings.ToUpper(name.Text)]
		if !ok {
			continue
		}
		for _, task := range tasks {
			walkBody(top, task)
		}
	}

	var symIDs []int
	for id := range touches {
		symIDs = append(symIDs, id)
	}
	sort.Ints(symIDs)

	var out []diag.Diagnostic
	for _, id := range symIDs {
		taskSet := map[string]bool{}
		hasWrite := false
		for _, a := range touches[id] {
			taskSet[a.task] = true
			if a.write {
				hasWrite = true
			}
		}
		if len(taskSet) >= 2 && hasWrite {
			sym := c.table.Syms[id]
			out = append(out, diag.New(c.file, sym.DeclRange.Start, sym.DeclRange.End, diag.CodeSharedGlobalTaskHazard,
				"global '"+sym.Name+"' is accessed by multiple tasks with at least one write"))
		}
	}
	return out
}

// cyclomaticComplexity computes McCabe cyclomatic complexity for one POU
// body: one decision point per branching construct and per short-circuit
// boolean operator.
func cyclomaticComplexity(pou *syntax.RedNode) int {
	complexity := 1
	var walk func(n *syntax.RedNode)
	walk = func(n *syntax.RedNode) {
		switch n.Kind() {
		case syntax.NodeIfStmt, syntax.NodeElsifClause, syntax.NodeWhileStmt,
			syntax.NodeRepeatStmt, syntax.NodeForStmt, syntax.NodeCaseLabelGroup:
			complexity++
		case syntax.NodeBinaryExpr:
			switch operatorToken(n).Kind {
			case syntax.KindKwAnd, syntax.KindKwOr, syntax.KindKwXor:
				complexity++
			}
		}
		for _, k := range n.NonTrivia() {
			walk(k)
		}
	}
	walk(pou)
	return complexity
}

// checkComplexityForAllPous implements HighComplexity for every
// program/function/function-block/method in the file.
func (c *Checker) checkComplexityForAllPous() []diag.Diagnostic {
	var out []diag.Diagnostic
	var walk func(n *syntax.RedNode)
	walk = func(n *syntax.RedNode) {
		switch n.Kind() {
		case syntax.NodeProgram, syntax.NodeFunction, syntax.NodeFunctionBlock, syntax.NodeMethod:
			complexity := cyclomaticComplexity(n)
			if complexity > cyclomaticComplexityThreshold {
				s, e := n.Range()
				out = append(out, diag.New(c.file, s, e, diag.CodeHighComplexity,
					fmt.Sprintf("'%s' has cyclomatic complexity %d (threshold %d)",
						topLevelIdentText(n), complexity, cyclomaticComplexityThreshold)))
			}
		}
		for _, k := range n.NonTrivia() {
			walk(k)
		}
	}
	walk(c.tree.Red())
	return out
}

// unusedSymbolDiagnostics implements UnusedVariable/UnusedParameter for any
// symbol the resolver never marked Used.
func (c *Checker) unusedSymbolDiagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, sym := range c.table.Syms {
		if sym.Used || int(sym.File) != int(c.file) {
			continue
		}
		switch sym.Kind {
		case symbols.KindParameter:
			out = append(out, diag.New(c.file, sym.DeclRange.Start, sym.DeclRange.End, diag.CodeUnusedParameter,
				"parameter '"+sym.Name+"' is never used"))
		case symbols.KindVariable:
			out = append(out, diag.New(c.file, sym.DeclRange.Start, sym.DeclRange.End, diag.CodeUnusedVariable,
				"variable '"+sym.Name+"' is never used"))
		case symbols.KindProgram, symbols.KindFunction, symbols.KindFunctionBlock:
			out = append(out, diag.New(c.file, sym.DeclRange.Start, sym.DeclRange.End, diag.CodeUnusedPou,
				"'"+sym.Name+"' is never called or instantiated"))
		}
	}
	return out
}
