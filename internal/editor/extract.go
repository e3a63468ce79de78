package editor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dekarrin/stlc/internal/symbols"
)

// paramClass is the classification §4.5 assigns to a local
// referenced from an extracted range.
type paramClass int

const (
	classInput paramClass = iota
	classOutput
	classInOut
)

func (c paramClass) sectionKeyword() string {
	switch c {
	case classOutput:
		return "VAR_OUTPUT"
	case classInOut:
		return "VAR_IN_OUT"
	default:
		return "VAR_INPUT"
	}
}

// ExtractMethod extracts the statements in [start, end) of file into a new
// POU named newName, classifying every referenced local declared outside
// the range as input, output, or in-out based on whether it is read before
// any write, written, or both, within the range — per §4.5.
// openKeyword/closeKeyword select the POU shape (e.g. "FUNCTION"/
// "END_FUNCTION" for extract method, "PROGRAM"/"END_PROGRAM" for extract
// POU, "PROPERTY"/"END_PROPERTY" for extract property); insertAt is the byte
// offset the new declaration is inserted at, left to the caller since this
// package does not infer enclosing-POU boundaries from an arbitrary range.
func ExtractMethod(tables []*symbols.Table, src Source, file symbols.FileID, start, end int, newName, openKeyword, closeKeyword string, insertAt int) (map[symbols.FileID][]Edit, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("invalid extraction range [%d, %d)", start, end)
	}
	t := tableFor(tables, file)
	if t == nil {
		return nil, fmt.Errorf("no table known for file %d", file)
	}

	text := src.Text(file)
	rangeText := text[start:end]

	type param struct {
		sym   *symbols.Symbol
		class paramClass
	}
	var params []param
	seen := map[int]bool{}
	for key, res := range t.Refs {
		if key.File != file || key.Offset < start || key.Offset >= end || res.SymbolID < 0 {
			continue
		}
		sym := t.Syms[res.SymbolID]
		if sym.DeclRange.Start >= start && sym.DeclRange.Start < end {
			continue // declared inside the extracted range, not a parameter
		}
		if seen[sym.ID] {
			continue
		}
		seen[sym.ID] = true
		params = append(params, param{sym: sym, class: classifyOccurrences(rangeText, sym.Name)})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].sym.ID < params[j].sym.ID })

	var decl strings.Builder
	fmt.Fprintf(&decl, "%s %s\n", openKeyword, newName)
	for _, class := range []paramClass{classInput, classOutput, classInOut} {
		var names []param
		for _, p := range params {
			if p.class == class {
				names = append(names, p)
			}
		}
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(&decl, "\t%s\n", class.sectionKeyword())
		for _, p := range names {
			typeRef := p.sym.TypeRef
			if typeRef == "" {
				typeRef = "INT"
			}
			fmt.Fprintf(&decl, "\t\t%s : %s;\n", p.sym.Name, typeRef)
		}
		decl.WriteString("\tEND_VAR\n")
	}
	decl.WriteString(rangeText)
	if !strings.HasSuffix(strings.TrimRight(rangeText, " \t"), "\n") {
		decl.WriteString("\n")
	}
	fmt.Fprintf(&decl, "%s\n\n", closeKeyword)

	var args []string
	for _, p := range params {
		switch p.class {
		case classOutput:
			args = append(args, p.sym.Name+" => "+p.sym.Name)
		default:
			args = append(args, p.sym.Name+" := "+p.sym.Name)
		}
	}
	callText := fmt.Sprintf("%s(%s);", newName, strings.Join(args, ", "))

	edits := []Edit{
		{File: file, Start: insertAt, End: insertAt, Text: decl.String()},
		{File: file, Start: start, End: end, Text: callText},
	}
	return ByFile(edits), nil
}

var identOccurrencePattern = func(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
}

// classifyOccurrences walks every occurrence of name within rangeText in
// textual order, treating an occurrence immediately followed by ":=" as a
// write and any other occurrence as a read. A read placed before the ';'
// that ends the first write (including one on that assignment's right-hand
// side) is a read before the write.
func classifyOccurrences(rangeText, name string) paramClass {
	locs := identOccurrencePattern(name).FindAllStringIndex(rangeText, -1)
	var sawWrite, readBeforeWrite bool
	firstWriteEnd := -1
	for _, loc := range locs {
		after := strings.TrimLeft(rangeText[loc[1]:], " \t")
		if strings.HasPrefix(after, ":=") {
			if !sawWrite {
				firstWriteEnd = len(rangeText)
				if semi := strings.IndexByte(rangeText[loc[1]:], ';'); semi != -1 {
					firstWriteEnd = loc[1] + semi
				}
			}
			sawWrite = true
		} else if !sawWrite || loc[0] < firstWriteEnd {
			readBeforeWrite = true
		}
	}
	switch {
	case sawWrite && readBeforeWrite:
		return classInOut
	case sawWrite:
		return classOutput
	default:
		return classInput
	}
}
