// Package symbols implements the scope tree, symbol table, and cross-file
// name resolver described in §4.2. It consumes the syntax tree
// produced by internal/syntax and produces a flat side-table mapping
// identifier occurrences to resolved symbols, per the DESIGN NOTES in
// §9 ("implement as a flat side-table keyed by (FileId, offset)
// rather than storing pointers in the tree").
package symbols

// FileID stably identifies a source unit across revisions.
type FileID int

// Kind is the kind of entity a Symbol names.
type Kind int

const (
	KindVariable Kind = iota
	KindParameter
	KindConstant
	KindType
	KindProgram
	KindFunction
	KindFunctionBlock
	KindMethod
	KindProperty
	KindNamespace
	KindInterface
	KindClass
)

// Visibility is the declared access level of a Symbol.
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	VisibilityProtected
	VisibilityInternal
)

// Modifier is a bitmask of declaration modifiers.
type Modifier uint16

const (
	ModConstant Modifier = 1 << iota
	ModTemporary
	ModInput
	ModOutput
	ModInOut
	ModLocatedAtAddress
	ModConfigurationBound
)

func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

// Range is a byte range [Start, End) within a file.
type Range struct {
	Start int
	End   int
}

// Symbol is a named entity declared somewhere in the project.
type Symbol struct {
	ID         int
	Name       string
	Kind       Kind
	File       FileID
	DeclRange  Range // the identifier token's own range
	DefRange   Range // the whole declaration's range
	TypeRef    string // textual type reference, resolved further by internal/types
	Visibility Visibility
	Modifiers  Modifier
	ScopeID    int
	Namespace  string // dot-joined enclosing namespace path, "" if none

	// Used is set by the resolver (Build) once it resolves a reference to this
	// symbol, and by MarkConfigUsed; it backs the UnusedVariable/
	// UnusedParameter/UnusedPou diagnostics.
	Used bool
}

// QualifiedName returns the Namespace-prefixed name used for cross-file
// namespace merging.
func (s Symbol) QualifiedName() string {
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}
