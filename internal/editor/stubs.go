package editor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// InterfaceMember is one METHOD or PROPERTY signature declared by an
// interface body.
type InterfaceMember struct {
	Kind      string // "METHOD" or "PROPERTY"
	Name      string
	Signature string // the full header line, e.g. "METHOD Move : BOOL"
}

var memberHeaderPattern = regexp.MustCompile(`(?m)^\s*(METHOD|PROPERTY)\s+((?:PUBLIC|PRIVATE|PROTECTED|INTERNAL)\s+)?(\w+)\s*:\s*([\w\[\],. ]+?)\s*;?\s*$`)

// ParseInterfaceMembers scans an interface body's source text for METHOD and
// PROPERTY signatures. internal/syntax and internal/symbols do not yet parse
// INTERFACE/CLASS bodies (NodeInterface and NodeClass are reserved NodeKind
// values with no parseTopLevelItem case), so this works directly off source
// text rather than the resolved model the rest of this package uses.
func ParseInterfaceMembers(interfaceSrc string) []InterfaceMember {
	var members []InterfaceMember
	for _, m := range memberHeaderPattern.FindAllStringSubmatch(interfaceSrc, -1) {
		vis := ""
		if m[2] != "" {
			vis = strings.TrimSpace(m[2]) + " "
		}
		members = append(members, InterfaceMember{
			Kind:      m[1],
			Name:      m[3],
			Signature: fmt.Sprintf("%s %s%s : %s", m[1], vis, m[3], strings.TrimSpace(m[4])),
		})
	}
	return members
}

// GenerateInterfaceStubs inserts one stub per interface member not already
// named in implementedNames, at insertAt within classFile. Each stub is the
// member's Signature followed by its END_ keyword. A visibility keyword in
// the interface header (e.g. "METHOD PUBLIC Move : BOOL") is kept, since
// ParseInterfaceMembers carries it into Signature; other text around the
// header, such as comments, is not copied.
func GenerateInterfaceStubs(classFile symbols.FileID, insertAt int, members []InterfaceMember, implementedNames map[string]bool) (map[symbols.FileID][]Edit, error) {
	var missing []InterfaceMember
	for _, m := range members {
		if !implementedNames[strings.ToUpper(m.Name)] {
			missing = append(missing, m)
		}
	}
	if len(missing) == 0 {
		return map[symbols.FileID][]Edit{}, nil
	}

	var b strings.Builder
	for _, m := range missing {
		end := "END_" + m.Kind
		fmt.Fprintf(&b, "\t%s\n\t%s\n", m.Signature, end)
	}

	return map[symbols.FileID][]Edit{
		classFile: {{File: classFile, Start: insertAt, End: insertAt, Text: b.String()}},
	}, nil
}
