package editor

import (
	"fmt"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// ConvertFunctionToFunctionBlock rewrites a FUNCTION into a FUNCTION_BLOCK
// per §4.5: "rewrites keywords; for function->FB, adds a
// VAR_OUTPUT result section". Call-site rewriting to instance calls is left
// to a follow-on Rename/manual pass: producing it here would require
// synthesizing a new instance variable declaration in every caller's scope,
// which is a second refactor (declare-and-rename) layered on top of this
// one rather than part of the keyword/body rewrite itself.
func ConvertFunctionToFunctionBlock(tables []*symbols.Table, src Source, targetFile symbols.FileID, targetSymbolID int, returnType string) (map[symbols.FileID][]Edit, error) {
	target := findSymbol(tables, targetFile, targetSymbolID)
	if target == nil {
		return nil, fmt.Errorf("no symbol #%d in file %d", targetSymbolID, targetFile)
	}
	if target.Kind != symbols.KindFunction {
		return nil, fmt.Errorf("%q is not a function", target.Name)
	}

	text := src.Text(target.File)
	declText := text[target.DefRange.Start:target.DefRange.End]

	headerEnd := strings.Index(declText, "\n")
	if headerEnd == -1 {
		return nil, fmt.Errorf("convert %q: could not find end of signature line", target.Name)
	}

	var edits []Edit
	edits = append(edits, keywordEdit(target.File, declText, target.DefRange.Start, "FUNCTION_BLOCK", "END_FUNCTION_BLOCK")...)

	insertAt := target.DefRange.Start + headerEnd + 1
	outputSection := fmt.Sprintf("\tVAR_OUTPUT\n\t\tresult : %s;\n\tEND_VAR\n", returnType)
	edits = append(edits, Edit{File: target.File, Start: insertAt, End: insertAt, Text: outputSection})

	return ByFile(edits), nil
}

// ConvertFunctionBlockToFunction performs no conversion: it always returns
// an error and produces no edits. Its parameters are not used.
func ConvertFunctionBlockToFunction(tables []*symbols.Table, src Source, targetFile symbols.FileID, targetSymbolID string) (map[symbols.FileID][]Edit, error) {
	_ = targetSymbolID
	return nil, fmt.Errorf("convert function-block to function: not yet supported")
}

func keywordEdit(file symbols.FileID, declText string, base int, newOpen, newClose string) []Edit {
	var edits []Edit
	if idx := strings.Index(declText, "FUNCTION"); idx != -1 && !strings.HasPrefix(declText[idx:], "FUNCTION_BLOCK") {
		edits = append(edits, Edit{File: file, Start: base + idx, End: base + idx + len("FUNCTION"), Text: newOpen})
	}
	if idx := strings.LastIndex(declText, "END_FUNCTION"); idx != -1 && !strings.HasPrefix(declText[idx:], "END_FUNCTION_BLOCK") {
		edits = append(edits, Edit{File: file, Start: base + idx, End: base + idx + len("END_FUNCTION"), Text: newClose})
	}
	return edits
}
