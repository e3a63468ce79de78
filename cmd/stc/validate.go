package main

import (
	"fmt"

	"github.com/dekarrin/stlc/internal/bundle"
	"github.com/dekarrin/stlc/internal/config"
	"github.com/spf13/pflag"
)

// runValidate implements "stc validate": run the front end (parse, resolve,
// typecheck) over a project's sources and report diagnostics without
// writing a bundle. Used as a fast pre-commit/CI gate ahead of a full build.
func runValidate(args []string) int {
	fs := pflag.NewFlagSet("validate", pflag.ContinueOnError)
	project := fs.StringP("project", "p", ".", "Project directory containing runtime.toml")
	ci := fs.BoolP("ci", "", false, "Emit a single-line JSON result instead of human-readable output")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}

	cfg, err := config.Load(*project)
	if err != nil {
		return report(*ci, "validate", *project, ExitConfigError, err.Error())
	}
	if issues := cfg.LibraryDependencyIssues(); len(issues) > 0 {
		return report(*ci, "validate", *project, ExitConfigError, fmt.Sprintf("library graph: %v", issues))
	}

	layout := bundle.Layout{Dir: *project}
	srcDir, err := layout.SourcesDir()
	if err != nil {
		return report(*ci, "validate", *project, ExitConfigError, err.Error())
	}

	paths, err := discoverSources(srcDir)
	if err != nil {
		return report(*ci, "validate", *project, ExitInternal, err.Error())
	}

	files, diags, err := loadFrontend(paths)
	if err != nil {
		return report(*ci, "validate", *project, ExitInternal, err.Error())
	}

	human := fmt.Sprintf("validated %d source file(s), %d diagnostic(s)", len(paths), len(diags))
	if len(diags) > 0 {
		human += "\n" + formatDiagnostics(files, diags)
	}
	if hasErrors(diags) {
		return report(*ci, "validate", *project, ExitBuildFailed, human)
	}
	return report(*ci, "validate", *project, ExitSuccess, human)
}
