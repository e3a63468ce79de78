package editor

import (
	"fmt"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// InlineSymbol replaces every reference to a constant or initializer-assigned
// variable with its initializer expression, parenthesized, and removes the
// declaration, per §4.5: "replaces every reference of a constant or
// single-assignment variable with its initializer, parenthesized, and
// removes the declaration." The initializer is read out of the declaration's
// own source text (the `:= expr` clause of its VAR_DECL) rather than off the
// syntax tree directly, since symbols.Table does not retain tree pointers
// past Build — only the declaration's byte range.
func InlineSymbol(tables []*symbols.Table, src Source, targetFile symbols.FileID, targetSymbolID int) (map[symbols.FileID][]Edit, error) {
	target := findSymbol(tables, targetFile, targetSymbolID)
	if target == nil {
		return nil, fmt.Errorf("no symbol #%d in file %d", targetSymbolID, targetFile)
	}
	if target.Kind != symbols.KindConstant && target.Kind != symbols.KindVariable {
		return nil, fmt.Errorf("%q is not a constant or variable", target.Name)
	}

	declText := src.Text(target.File)[target.DefRange.Start:target.DefRange.End]
	init, err := extractInitializer(declText)
	if err != nil {
		return nil, fmt.Errorf("inline %q: %w", target.Name, err)
	}
	replacement := "(" + init + ")"

	var edits []Edit
	// Remove the whole declaration statement. Inlining a symbol declared
	// alongside siblings on the same VAR_DECL ("a, b : INT := 1;") is out of
	// scope here; InlineSymbol requires the declaration to name exactly one
	// variable.
	edits = append(edits, Edit{File: target.File, Start: target.DefRange.Start, End: target.DefRange.End, Text: ""})

	qualified := strings.ToUpper(target.QualifiedName())
	for _, t := range tables {
		for _, sym := range t.Syms {
			if strings.ToUpper(sym.QualifiedName()) != qualified || sym.Kind != target.Kind {
				continue
			}
			for key, res := range t.Refs {
				if res.SymbolID != sym.ID {
					continue
				}
				edits = append(edits, Edit{
					File:  key.File,
					Start: key.Offset,
					End:   key.Offset + len(sym.Name),
					Text:  replacement,
				})
			}
		}
	}
	return ByFile(edits), nil
}

// extractInitializer finds the `:= expr` clause of a VAR_DECL's source text
// and returns expr, trimmed of surrounding whitespace and its trailing ';'.
func extractInitializer(declText string) (string, error) {
	idx := strings.Index(declText, ":=")
	if idx == -1 {
		return "", fmt.Errorf("declaration has no initializer to inline")
	}
	rest := declText[idx+2:]
	semi := strings.LastIndex(rest, ";")
	if semi == -1 {
		return "", fmt.Errorf("declaration is missing its terminating ';'")
	}
	return strings.TrimSpace(rest[:semi]), nil
}
