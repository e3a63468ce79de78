package symbols

import (
	"sort"
	"strings"

	"github.com/dekarrin/stlc/internal/syntax"
)

// RefKey identifies one identifier occurrence within a file, keyed by the
// byte offset of its first character — the flat side-table shape called
// for in §9 rather than a pointer stored on the tree node.
type RefKey struct {
	File   FileID
	Offset int
}

// Resolution is the outcome of resolving one identifier occurrence.
type Resolution struct {
	SymbolID int
	Err      string // "UndefinedVariable", "CannotResolve", or "" if resolved
}

// Issue is a resolution-time problem that does not fit the (file, offset)
// shape of a Resolution — duplicate declarations and invalid identifiers,
// both keyed to the offending Symbol.
type Issue struct {
	Code     string
	SymbolID int
	Message  string
}

// Table is the resolved scope/symbol/reference model for one or more files.
type Table struct {
	Scopes []*Scope
	Syms   []*Symbol
	Refs   map[RefKey]Resolution
	Issues []Issue
}

func newTable() *Table {
	return &Table{Refs: map[RefKey]Resolution{}}
}

func (t *Table) newScope(parent int, kind ScopeKind) int {
	id := len(t.Scopes)
	t.Scopes = append(t.Scopes, newScope(id, parent, kind))
	return id
}

func (t *Table) declare(scopeID int, sym Symbol) int {
	sym.ID = len(t.Syms)
	sym.ScopeID = scopeID
	s := t.Scopes[scopeID]
	if existingID, dup := s.Symbols[strings.ToUpper(sym.Name)]; dup {
		t.Syms = append(t.Syms, &sym)
		t.Issues = append(t.Issues, Issue{
			Code:     "DuplicateDeclaration",
			SymbolID: sym.ID,
			Message:  "duplicate declaration of '" + sym.Name + "' (previously declared as symbol #" + itoa(existingID) + ")",
		})
		return sym.ID
	}
	t.Syms = append(t.Syms, &sym)
	s.Symbols[strings.ToUpper(sym.Name)] = sym.ID
	if !isValidIdentifier(sym.Name) {
		t.Issues = append(t.Issues, Issue{
			Code:     "InvalidIdentifier",
			SymbolID: sym.ID,
			Message:  "'" + sym.Name + "' is not a valid identifier",
		})
	}
	return sym.ID
}

func isValidIdentifier(name string) bool {
	if strings.HasPrefix(name, "__") {
		return false
	}
	if name == "" {
		return false
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Build constructs a Table for a single file's tree. Names declared in other
// files are not resolved; Merge indexes global declarations across Tables
// without re-running resolution.
func Build(file FileID, tree *syntax.Tree, src string) *Table {
	t := newTable()
	globalID := t.newScope(-1, ScopeGlobal)

	b := &fileBuilder{t: t, file: file, tree: tree, src: src}
	root := tree.Red()
	b.declareTopLevel(root, globalID, "")
	b.resolveTopLevel(root, globalID, "")
	return t
}

type fileBuilder struct {
	t    *Table
	file FileID
	tree *syntax.Tree
	src  string
}

func (b *fileBuilder) tokenText(n *syntax.RedNode) string {
	if n.Kind() != syntax.NodeToken {
		return ""
	}
	return n.Token().Text
}

func (b *fileBuilder) rangeOf(n *syntax.RedNode) Range {
	s, e := n.Range()
	return Range{Start: s, End: e}
}

// firstIdent finds the first Identifier-token child (direct, non-trivia).
func (b *fileBuilder) firstIdent(n *syntax.RedNode) *syntax.RedNode {
	for _, c := range n.NonTrivia() {
		if c.Kind() == syntax.NodeToken && c.Token().Kind == syntax.KindIdentifier {
			return c
		}
	}
	return nil
}

func kindForPou(k syntax.NodeKind) Kind {
	switch k {
	case syntax.NodeProgram:
		return KindProgram
	case syntax.NodeFunction:
		return KindFunction
	case syntax.NodeFunctionBlock:
		return KindFunctionBlock
	case syntax.NodeMethod:
		return KindMethod
	default:
		return KindVariable
	}
}

// declareTopLevel makes a shallow first pass over top-level items (and
// nested namespaces), declaring POU/type/namespace names so that forward
// references across the file — e.g. a call to a POU declared further down —
// resolve correctly.
func (b *fileBuilder) declareTopLevel(n *syntax.RedNode, scopeID int, namespace string) {
	for _, c := range n.NonTrivia() {
		switch c.Kind() {
		case syntax.NodeProgram, syntax.NodeFunction, syntax.NodeFunctionBlock, syntax.NodeMethod:
			ident := b.firstIdent(c)
			if ident == nil {
				continue
			}
			b.t.declare(scopeID, Symbol{
				Name:      ident.Token().Text,
				Kind:      kindForPou(c.Kind()),
				File:      b.file,
				DeclRange: b.rangeOf(ident),
				DefRange:  b.rangeOf(c),
				Namespace: namespace,
			})
		case syntax.NodeTypeDecl:
			ident := b.firstIdent(c)
			if ident == nil {
				continue
			}
			b.t.declare(scopeID, Symbol{
				Name:      ident.Token().Text,
				Kind:      KindType,
				File:      b.file,
				DeclRange: b.rangeOf(ident),
				DefRange:  b.rangeOf(c),
				Namespace: namespace,
			})
		case syntax.NodeNamespace:
			ident := b.firstIdent(c)
			name := ""
			if ident != nil {
				name = ident.Token().Text
			}
			childNamespace := name
			if namespace != "" {
				childNamespace = namespace + "." + name
			}
			nsScope := b.t.newScope(scopeID, ScopeNamespace)
			if ident != nil {
				b.t.declare(scopeID, Symbol{
					Name:      name,
					Kind:      KindNamespace,
					File:      b.file,
					DeclRange: b.rangeOf(ident),
					DefRange:  b.rangeOf(c),
					Namespace: namespace,
				})
			}
			b.declareTopLevel(c, nsScope, childNamespace)
		case syntax.NodeVarSection:
			b.declareVarSection(c, scopeID, namespace, true)
		case syntax.NodeConfiguration, syntax.NodeResource:
			// CONFIGURATION/RESOURCE carry no namespace of their own; their
			// VAR_GLOBAL sections belong in the same global scope as any
			// other top-level global.
			b.declareTopLevel(c, scopeID, namespace)
		}
	}
}

// resolveTopLevel makes the second pass: descend into POU bodies, declare
// local variables and parameters in order, and record resolutions for every
// identifier reference encountered.
func (b *fileBuilder) resolveTopLevel(n *syntax.RedNode, scopeID int, namespace string) {
	for _, c := range n.NonTrivia() {
		switch c.Kind() {
		case syntax.NodeProgram, syntax.NodeFunction, syntax.NodeFunctionBlock, syntax.NodeMethod:
			childScope := b.t.newScope(scopeID, pouScopeKind(c.Kind()))
			if ident := b.firstIdent(c); ident != nil {
				if symID, ok := b.t.Scopes[scopeID].Symbols[strings.ToUpper(ident.Token().Text)]; ok {
					b.t.Scopes[childScope].OwnerSymbolID = symID
				}
			}
			for _, gc := range c.NonTrivia() {
				switch gc.Kind() {
				case syntax.NodeVarSection:
					b.declareVarSection(gc, childScope, namespace, false)
				case syntax.NodeStatementList:
					b.resolveStatementList(gc, childScope)
				}
			}
		case syntax.NodeNamespace:
			ident := b.firstIdent(c)
			name := ""
			if ident != nil {
				name = ident.Token().Text
			}
			childNamespace := name
			if namespace != "" {
				childNamespace = namespace + "." + name
			}
			// namespace scope was already created in declareTopLevel; find
			// it by replaying the same construction order is unnecessary
			// here since we only need a scope id for resolution purposes —
			// create a fresh one chained to the same parent for symmetry.
			nsScope := b.t.newScope(scopeID, ScopeNamespace)
			b.resolveTopLevel(c, nsScope, childNamespace)
		case syntax.NodeConfiguration, syntax.NodeResource:
			b.resolveTopLevel(c, scopeID, namespace)
		}
	}
}

func pouScopeKind(k syntax.NodeKind) ScopeKind {
	switch k {
	case syntax.NodeProgram:
		return ScopeProgram
	case syntax.NodeFunction:
		return ScopeFunction
	case syntax.NodeFunctionBlock:
		return ScopeFunctionBlock
	case syntax.NodeMethod:
		return ScopeMethod
	default:
		return ScopeProgram
	}
}

func sectionModifiers(n *syntax.RedNode) (Modifier, Kind) {
	for _, c := range n.NonTrivia() {
		if c.Kind() != syntax.NodeToken {
			continue
		}
		switch c.Token().Kind {
		case syntax.KindKwVarInput:
			return ModInput, KindParameter
		case syntax.KindKwVarOutput:
			return ModOutput, KindParameter
		case syntax.KindKwVarInOut:
			return ModInOut, KindParameter
		case syntax.KindKwVarTemp:
			return ModTemporary, KindVariable
		case syntax.KindKwVarGlobal:
			return 0, KindVariable
		case syntax.KindKwVarConfig:
			return ModConfigurationBound, KindVariable
		case syntax.KindKwVar:
			return 0, KindVariable
		}
	}
	return 0, KindVariable
}

func (b *fileBuilder) declareVarSection(n *syntax.RedNode, scopeID int, namespace string, _ bool) {
	baseMod, baseKind := sectionModifiers(n)
	for _, decl := range n.NonTrivia() {
		if decl.Kind() != syntax.NodeVarDecl {
			continue
		}
		b.declareVarDecl(decl, scopeID, namespace, baseMod, baseKind)
	}
}

func (b *fileBuilder) declareVarDecl(n *syntax.RedNode, scopeID int, namespace string, baseMod Modifier, baseKind Kind) {
	mod := baseMod
	kind := baseKind
	var nameToks []*syntax.RedNode
	var typeRefText string
	children := n.NonTrivia()
	for i, c := range children {
		if c.Kind() == syntax.NodeToken && c.Token().Kind == syntax.KindKwConstant {
			mod |= ModConstant
			kind = KindConstant
			continue
		}
		if c.Kind() == syntax.NodeToken && c.Token().Kind == syntax.KindIdentifier {
			nameToks = append(nameToks, c)
			continue
		}
		if typeRefText == "" && i > 0 && c.Kind() != syntax.NodeToken {
			s, e := c.Range()
			typeRefText = b.src[s:e]
		}
	}
	for _, nameTok := range nameToks {
		b.t.declare(scopeID, Symbol{
			Name:      nameTok.Token().Text,
			Kind:      kind,
			File:      b.file,
			DeclRange: b.rangeOf(nameTok),
			DefRange:  b.rangeOf(n),
			TypeRef:   typeRefText,
			Visibility: VisibilityPublic,
			Modifiers: mod,
			Namespace: namespace,
		})
	}
}

// resolveStatementList walks statements, descending into nested bodies
// (IF/FOR/WHILE/REPEAT/CASE) and resolving every identifier expression
// found along the way.
func (b *fileBuilder) resolveStatementList(n *syntax.RedNode, scopeID int) {
	for _, c := range n.NonTrivia() {
		b.resolveStmtOrExpr(c, scopeID)
	}
}

func (b *fileBuilder) resolveStmtOrExpr(n *syntax.RedNode, scopeID int) {
	switch n.Kind() {
	case syntax.NodeCallExpr:
		kids := n.NonTrivia()
		if len(kids) >= 2 && kids[0].Kind() == syntax.NodeIdentExpr {
			calleeIdent := b.firstIdent(kids[0])
			if calleeIdent != nil {
				name := strings.ToUpper(calleeIdent.Token().Text)
				if name == "REF" || name == "ADR" {
					// REF/ADR are address-of operators, not callable symbols;
					// their callee name must not be resolved as an identifier
					// reference. The argument list still resolves normally.
					for _, a := range kids[1:] {
						b.resolveStmtOrExpr(a, scopeID)
					}
					return
				}
			}
		}
	case syntax.NodeForStmt:
		forScope := b.t.newScope(scopeID, ScopeForBody)
		kids := n.NonTrivia()
		for _, c := range kids {
			b.resolveStmtOrExpr(c, forScope)
		}
		return
	case syntax.NodeStatementList:
		b.resolveStatementList(n, scopeID)
		return
	case syntax.NodeIdentExpr:
		ident := b.firstIdent(n)
		if ident == nil {
			return
		}
		b.resolveIdent(ident, scopeID)
		return
	}
	for _, c := range n.NonTrivia() {
		b.resolveStmtOrExpr(c, scopeID)
	}
}

func (b *fileBuilder) resolveIdent(ident *syntax.RedNode, scopeID int) {
	name := strings.ToUpper(ident.Token().Text)
	s, _ := ident.Range()
	key := RefKey{File: b.file, Offset: s}

	for sid := scopeID; sid != -1; {
		scope := b.t.Scopes[sid]
		if symID, ok := scope.Symbols[name]; ok {
			b.t.Syms[symID].Used = true
			b.t.Refs[key] = Resolution{SymbolID: symID}
			return
		}
		sid = scope.Parent
	}

	b.t.Refs[key] = Resolution{SymbolID: -1, Err: "UndefinedVariable"}
}

// InputParams returns the VAR_INPUT parameter symbols declared in the body
// scope owned by symID (a Program/Function/FunctionBlock/Method symbol), in
// declaration order. ok is false if no scope in this table is owned by symID.
func (t *Table) InputParams(symID int) ([]*Symbol, bool) {
	var scope *Scope
	for _, s := range t.Scopes {
		if s.OwnerSymbolID == symID {
			scope = s
			break
		}
	}
	if scope == nil {
		return nil, false
	}
	var params []*Symbol
	for _, id := range scope.Symbols {
		sym := t.Syms[id]
		if sym.Kind == KindParameter && sym.Modifiers.Has(ModInput) {
			params = append(params, sym)
		}
	}
	sort.Slice(params, func(i, j int) bool { return params[i].DeclRange.Start < params[j].DeclRange.Start })
	return params, true
}
