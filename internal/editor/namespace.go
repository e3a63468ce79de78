package editor

import (
	"fmt"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// MoveNamespace renames every NAMESPACE declaration of oldPath to newPath,
// segment by segment, leaving the text of unaffected segments as written.
// Only segments that actually differ (case-insensitively) between
// oldPath and newPath produce an edit; a namespace reopened identically in
// several files gets one edit per reopening. References to the old path
// elsewhere in the source (qualified names, USING directives) are not
// edited.
func MoveNamespace(tables []*symbols.Table, oldPath, newPath string) (map[symbols.FileID][]Edit, error) {
	oldSegs := strings.Split(oldPath, ".")
	newSegs := strings.Split(newPath, ".")
	if len(oldSegs) != len(newSegs) {
		return nil, fmt.Errorf("old path %q and new path %q have a different number of segments", oldPath, newPath)
	}

	var edits []Edit
	prefix := ""
	for i, oldSeg := range oldSegs {
		if !strings.EqualFold(oldSeg, newSegs[i]) {
			for _, t := range tables {
				for _, sym := range t.Syms {
					if sym.Kind != symbols.KindNamespace {
						continue
					}
					if strings.EqualFold(sym.Namespace, prefix) && strings.EqualFold(sym.Name, oldSeg) {
						edits = append(edits, Edit{File: sym.File, Start: sym.DeclRange.Start, End: sym.DeclRange.End, Text: newSegs[i]})
					}
				}
			}
		}
		if prefix == "" {
			prefix = oldSeg
		} else {
			prefix = prefix + "." + oldSeg
		}
	}

	if len(edits) == 0 {
		return nil, fmt.Errorf("namespace %q was not found in the given tables", oldPath)
	}
	return ByFile(edits), nil
}
