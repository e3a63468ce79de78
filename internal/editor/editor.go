// Package editor implements the editor services described in §4.5:
// rename, move namespace, extract method/POU/property, inline symbol,
// convert function to function-block, and generate interface stubs. Every
// refactor operates purely on the resolved model (internal/symbols,
// internal/syntax) and returns non-overlapping text edits keyed by file,
// never touching a file directly — the same separation
// internal/tunascript/parser.go keeps between building a rosed.Editor and
// calling String() on it.
package editor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// Edit is one non-overlapping text replacement within a file.
type Edit struct {
	File  symbols.FileID
	Start int
	End   int
	Text  string
}

// Source is the byte-for-byte text an Edit's offsets are computed against.
type Source interface {
	Text(file symbols.FileID) string
}

// mapSource is the simplest Source: a plain map of file to its full text.
type mapSource map[symbols.FileID]string

func (m mapSource) Text(file symbols.FileID) string { return m[file] }

// NewSource builds a Source from a file-to-text map.
func NewSource(files map[symbols.FileID]string) Source { return mapSource(files) }

// Apply renders every edit for one file against its source text, in order.
// Edits must be non-overlapping; Apply panics if two edits in the same file
// overlap, since that indicates a bug in the refactor that produced them.
func Apply(src string, edits []Edit) string {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	cursor := 0
	for _, e := range sorted {
		if e.Start < cursor {
			panic(fmt.Sprintf("editor: overlapping edits at offset %d", e.Start))
		}
		b.WriteString(src[cursor:e.Start])
		b.WriteString(e.Text)
		cursor = e.End
	}
	b.WriteString(src[cursor:])
	return b.String()
}

// ByFile groups a flat edit list by the file it applies to, the shape every
// refactor in this package returns.
func ByFile(edits []Edit) map[symbols.FileID][]Edit {
	out := map[symbols.FileID][]Edit{}
	for _, e := range edits {
		out[e.File] = append(out[e.File], e)
	}
	return out
}

// reservedWords mirrors the ST keyword set that Rename and Convert must
// refuse to produce a symbol named after; kept minimal to the keywords that
// would otherwise silently parse as something else.
var reservedWords = map[string]bool{
	"PROGRAM": true, "END_PROGRAM": true, "FUNCTION": true, "END_FUNCTION": true,
	"FUNCTION_BLOCK": true, "END_FUNCTION_BLOCK": true, "VAR": true, "END_VAR": true,
	"IF": true, "THEN": true, "ELSE": true, "ELSIF": true, "END_IF": true,
	"FOR": true, "TO": true, "BY": true, "DO": true, "END_FOR": true,
	"WHILE": true, "END_WHILE": true, "REPEAT": true, "UNTIL": true, "END_REPEAT": true,
	"CASE": true, "OF": true, "END_CASE": true, "RETURN": true, "EXIT": true,
	"CONSTANT": true, "TRUE": true, "FALSE": true,
}

// IsValidNewName reports whether newName is usable as a renamed identifier:
// not empty, not a reserved word, and not already declared in scopeID or any
// ancestor scope (shadowing a name from an enclosing scope is allowed by the
// language but Rename treats it as a conflict per §4.5).
func IsValidNewName(t *symbols.Table, scopeID int, newName string) error {
	if newName == "" {
		return fmt.Errorf("new name must not be empty")
	}
	if reservedWords[strings.ToUpper(newName)] {
		return fmt.Errorf("%q is a reserved word", newName)
	}
	upper := strings.ToUpper(newName)
	for sid := scopeID; sid != -1; {
		scope := t.Scopes[sid]
		if _, exists := scope.Symbols[upper]; exists {
			return fmt.Errorf("%q conflicts with an existing declaration in scope", newName)
		}
		sid = scope.Parent
	}
	return nil
}
