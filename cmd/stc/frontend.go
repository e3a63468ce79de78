package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dekarrin/stlc/internal/diag"
	"github.com/dekarrin/stlc/internal/symbols"
	"github.com/dekarrin/stlc/internal/syntax"
	"github.com/dekarrin/stlc/internal/types"
)

// sourceFile is one parsed-and-resolved compilation unit, kept together so
// build and validate can share a single front-end pass.
type sourceFile struct {
	path  string
	id    symbols.FileID
	src   string
	tree  *syntax.Tree
	table *symbols.Table
}

// discoverSources walks dir (normally Layout.SourcesDir()) for every ".st"
// file, in a stable sorted order so diagnostics and assembled bundles are
// deterministic across runs (§8).
func discoverSources(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".st" {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// loadFrontend parses and resolves every source file, and returns the
// files plus every diagnostic found: parse errors (reported under a
// synthetic SyntaxError code, since internal/diag has no dedicated one),
// unresolved-reference/duplicate-declaration/unused-symbol diagnostics from
// the type checker, and cross-file duplicate-declaration conflicts from
// symbols.Merge.
func loadFrontend(paths []string) ([]*sourceFile, []diag.Diagnostic, error) {
	var files []*sourceFile
	var diags []diag.Diagnostic
	var tables []*symbols.Table

	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", p, err)
		}
		src := string(data)
		fileID := symbols.FileID(i)

		tree, perrs := syntax.ParseSourceFile(src)
		for _, pe := range perrs {
			diags = append(diags, diag.New(diag.FileID(fileID), pe.Start, pe.End, "SyntaxError", pe.Message))
		}

		table := symbols.Build(fileID, tree, src)
		checker := types.NewChecker(diag.FileID(fileID), tree, src, table)
		diags = append(diags, checker.Check()...)

		files = append(files, &sourceFile{path: p, id: fileID, src: src, tree: tree, table: table})
		tables = append(tables, table)
	}

	merged := symbols.Merge(tables...)
	for _, issue := range merged.Conflicts {
		diags = append(diags, diag.New(diag.FileID(0), 0, 0, diag.Code(issue.Code), issue.Message))
	}

	return files, diags, nil
}

// hasErrors reports whether any diagnostic in ds is SeverityError.
func hasErrors(ds []diag.Diagnostic) bool {
	for _, d := range ds {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// formatDiagnostics renders diagnostics one per line as
// "file:offset: severity CODE: message", for human-mode stderr output.
func formatDiagnostics(files []*sourceFile, ds []diag.Diagnostic) string {
	out := ""
	for _, d := range ds {
		name := "<merged>"
		if int(d.File) >= 0 && int(d.File) < len(files) {
			name = files[d.File].path
		}
		out += fmt.Sprintf("%s:%d: %s %s: %s\n", name, d.Start, d.Severity, d.Code, d.Message)
	}
	return out
}
