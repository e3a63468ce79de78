package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/stlc/internal/bundle"
	"github.com/dekarrin/stlc/internal/syntax"
	"github.com/spf13/pflag"
)

// pouDoc is one POU's rendered documentation: its kind, name, and the doc
// comment immediately preceding its declaration, if any.
type pouDoc struct {
	Kind string
	Name string
	Doc  string
}

// runDocs implements "stc docs": render Markdown documentation for every
// PROGRAM/FUNCTION/FUNCTION_BLOCK in a project's sources, pulling each
// POU's doc comment from the run of line or block comments immediately
// preceding its declaration.
func runDocs(args []string) int {
	fs := pflag.NewFlagSet("docs", pflag.ContinueOnError)
	project := fs.StringP("project", "p", ".", "Project directory containing runtime.toml")
	ci := fs.BoolP("ci", "", false, "Emit a single-line JSON result instead of human-readable output")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}

	layout := bundle.Layout{Dir: *project}
	srcDir, err := layout.SourcesDir()
	if err != nil {
		return report(*ci, "docs", *project, ExitConfigError, err.Error())
	}
	paths, err := discoverSources(srcDir)
	if err != nil {
		return report(*ci, "docs", *project, ExitInternal, err.Error())
	}

	var docs []pouDoc
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return report(*ci, "docs", *project, ExitInternal, err.Error())
		}
		src := string(data)
		tree, _ := syntax.ParseSourceFile(src)
		collectPouDocs(tree.Red(), src, &docs)
	}

	var sb strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&sb, "## %s %s\n\n", d.Kind, d.Name)
		if d.Doc != "" {
			sb.WriteString(rosed.Edit(d.Doc).Wrap(humanOutputWidth).String())
			sb.WriteString("\n\n")
		}
	}

	if *ci {
		return report(true, "docs", *project, ExitSuccess, fmt.Sprintf("%d POU(s) documented", len(docs)))
	}
	fmt.Print(sb.String())
	return ExitSuccess
}

func collectPouDocs(n *syntax.RedNode, src string, out *[]pouDoc) {
	for _, c := range n.Children() {
		switch c.Kind() {
		case syntax.NodeNamespace:
			collectPouDocs(c, src, out)
		case syntax.NodeProgram, syntax.NodeFunction, syntax.NodeFunctionBlock:
			*out = append(*out, pouDoc{
				Kind: pouKindLabel(c.Kind()),
				Name: pouName(c),
				Doc:  leadingDocComment(c),
			})
		}
	}
}

func pouKindLabel(k syntax.NodeKind) string {
	switch k {
	case syntax.NodeProgram:
		return "PROGRAM"
	case syntax.NodeFunction:
		return "FUNCTION"
	case syntax.NodeFunctionBlock:
		return "FUNCTION_BLOCK"
	default:
		return "POU"
	}
}

func pouName(pou *syntax.RedNode) string {
	kids := pou.NonTrivia()
	if len(kids) < 2 || kids[1].Kind() != syntax.NodeToken {
		return "<unnamed>"
	}
	return kids[1].Token().Text
}

// leadingDocComment collects the run of line and block comments immediately
// before pou's first significant token, stripping the "//" or "(* *)"
// delimiters and surrounding whitespace from each one.
func leadingDocComment(pou *syntax.RedNode) string {
	var lines []string
	for _, c := range pou.Children() {
		if c.Kind() != syntax.NodeToken {
			break
		}
		tok := c.Token()
		switch tok.Kind {
		case syntax.KindWhitespace, syntax.KindNewline:
			continue
		case syntax.KindLineComment:
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(tok.Text, "//")))
		case syntax.KindBlockComment:
			text := strings.TrimSuffix(strings.TrimPrefix(tok.Text, "(*"), "*)")
			lines = append(lines, strings.TrimSpace(text))
		default:
			return strings.Join(lines, " ")
		}
	}
	return strings.Join(lines, " ")
}
