package symbols

import "strings"

// Merge combines the global-scope symbols of multiple single-file Tables
// into one project-wide namespace index, per §4.2: "namespaces with
// equal ascii-case-insensitive path accumulate their members. Conflicts are
// flagged as duplicates." It does not re-run resolution; callers that need
// cross-file resolution should resolve against the returned index directly.
type MergedIndex struct {
	// ByQualifiedName maps an uppercased, dot-joined qualified name to every
	// symbol across all files declared under that name.
	ByQualifiedName map[string][]*Symbol
	Conflicts       []Issue
}

// Merge walks the global (and namespace) scope of every table and folds
// same-path declarations together.
func Merge(tables ...*Table) *MergedIndex {
	idx := &MergedIndex{ByQualifiedName: map[string][]*Symbol{}}

	for _, t := range tables {
		for _, sym := range t.Syms {
			if k := t.Scopes[sym.ScopeID].Kind; k != ScopeGlobal && k != ScopeNamespace {
				// only global- and namespace-scope declarations participate in
				// cross-file namespace merge; POU-local variables, parameters
				// and constants stay file-scoped.
				continue
			}
			key := strings.ToUpper(sym.QualifiedName())
			existing := idx.ByQualifiedName[key]
			if len(existing) > 0 && sym.Kind != KindNamespace {
				// a namespace re-opened in another file is not a conflict;
				// anything else reusing the same qualified name is.
				allNamespaces := sym.Kind == KindNamespace
				for _, e := range existing {
					if e.Kind != KindNamespace {
						allNamespaces = false
					}
				}
				if !allNamespaces {
					idx.Conflicts = append(idx.Conflicts, Issue{
						Code:     "DuplicateDeclaration",
						SymbolID: sym.ID,
						Message:  "duplicate declaration of '" + sym.QualifiedName() + "' across files",
					})
				}
			}
			idx.ByQualifiedName[key] = append(idx.ByQualifiedName[key], sym)
		}
	}

	return idx
}

// MarkConfigUsed flags the program-local symbol referenced by a VAR_CONFIG
// entry as used, per §4.2: "VAR_CONFIG entries in a configuration
// mark the referenced program-local symbol as 'used' for the unused-variable
// diagnostic across files."
func MarkConfigUsed(tables []*Table, programName, varName string) {
	for _, t := range tables {
		for _, sym := range t.Syms {
			if sym.Kind != KindVariable && sym.Kind != KindParameter {
				continue
			}
			owner := t.Scopes[sym.ScopeID]
			if owner.Kind != ScopeProgram || owner.OwnerSymbolID < 0 || !strings.EqualFold(t.Syms[owner.OwnerSymbolID].Name, programName) {
				continue
			}
			if strings.EqualFold(sym.Name, varName) {
				sym.Used = true
			}
		}
	}
}
