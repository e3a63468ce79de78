package symbols

// ScopeKind classifies a scope boundary in the tree. Build creates global,
// namespace, program, function, function-block, method and for-body
// scopes; ScopeConfiguration and ScopeResource are defined but Build does
// not create them, so declarations inside a CONFIGURATION or RESOURCE land
// in the enclosing scope.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeNamespace
	ScopeProgram
	ScopeFunction
	ScopeFunctionBlock
	ScopeMethod
	ScopeForBody
	ScopeConfiguration
	ScopeResource
)

// Scope is one node of the nested scope tree. Child scopes are found by
// scanning Table.Scopes for entries whose Parent equals this scope's ID.
type Scope struct {
	ID      int
	Parent  int // -1 for the root (global) scope
	Kind    ScopeKind
	Symbols map[string]int // declared name -> Symbol.ID, first-declared wins
	Using   []string       // namespace paths named in USING directives, most-recent-first

	// OwnerSymbolID is the Symbol.ID of the POU this scope is the body of,
	// or -1 if this scope has no owning POU (global, namespace, for-body).
	OwnerSymbolID int
}

func newScope(id, parent int, kind ScopeKind) *Scope {
	return &Scope{ID: id, Parent: parent, Kind: kind, Symbols: map[string]int{}, OwnerSymbolID: -1}
}
