package editor

import (
	"fmt"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// Rename renames the symbol identified by (targetFile, targetSymbolID) and
// every resolved reference to it, across every table passed in, per §4.5:
// "renames a symbol and every resolved reference across files; fails
// when the new name is reserved or produces a conflict." Occurrences are
// matched by qualified name rather than by SymbolID directly, since each
// symbols.Table assigns IDs local to its own file — the same symbol declared
// at namespace scope shows up under a distinct ID in every file that
// references it.
func Rename(tables []*symbols.Table, targetFile symbols.FileID, targetSymbolID int, newName string) (map[symbols.FileID][]Edit, error) {
	target := findSymbol(tables, targetFile, targetSymbolID)
	if target == nil {
		return nil, fmt.Errorf("no symbol #%d in file %d", targetSymbolID, targetFile)
	}
	if strings.EqualFold(target.Name, newName) {
		return nil, fmt.Errorf("new name %q is the same as the current name", newName)
	}
	if err := IsValidNewName(tableFor(tables, targetFile), target.ScopeID, newName); err != nil {
		return nil, err
	}

	qualified := strings.ToUpper(target.QualifiedName())
	var edits []Edit
	for _, t := range tables {
		for _, sym := range t.Syms {
			if strings.ToUpper(sym.QualifiedName()) != qualified || sym.Kind != target.Kind {
				continue
			}
			edits = append(edits, Edit{File: sym.File, Start: sym.DeclRange.Start, End: sym.DeclRange.End, Text: newName})
			for key, res := range t.Refs {
				if res.SymbolID != sym.ID {
					continue
				}
				edits = append(edits, Edit{
					File:  key.File,
					Start: key.Offset,
					End:   key.Offset + len(sym.Name),
					Text:  newName,
				})
			}
		}
	}
	return ByFile(edits), nil
}

func findSymbol(tables []*symbols.Table, file symbols.FileID, id int) *symbols.Symbol {
	t := tableFor(tables, file)
	if t == nil || id < 0 || id >= len(t.Syms) {
		return nil
	}
	return t.Syms[id]
}

func tableFor(tables []*symbols.Table, file symbols.FileID) *symbols.Table {
	for _, t := range tables {
		for _, sym := range t.Syms {
			if sym.File == file {
				return t
			}
		}
	}
	return nil
}
