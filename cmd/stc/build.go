package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/stlc/internal/asm"
	"github.com/dekarrin/stlc/internal/bundle"
	"github.com/dekarrin/stlc/internal/config"
	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/spf13/pflag"
)

// runBuild implements "stc build": compile every source under a project's
// sources/ or src/ tree into program.stbc plus its manifest. With --watch,
// it rebuilds on every change under the sources tree instead of exiting
// after the first build.
func runBuild(args []string) int {
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	project := fs.StringP("project", "p", ".", "Project directory containing runtime.toml")
	ci := fs.BoolP("ci", "", false, "Emit a single-line JSON result instead of human-readable output")
	watch := fs.BoolP("watch", "w", false, "Rebuild automatically whenever a source file changes")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}

	if *watch {
		return watchBuild(*project, *ci)
	}
	return buildOnce(*project, *ci)
}

// watchBuild runs buildOnce once, then again on every source-tree change
// until interrupted. Each detected change is announced in human form on
// stderr; each build's own result is reported exactly as a one-shot build
// reports it, so under --ci every rebuild prints its own JSON line. The
// final watch exit code is whatever the last build returned.
func watchBuild(project string, ci bool) int {
	layout := bundle.Layout{Dir: project}
	srcDir, err := layout.SourcesDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return ExitConfigError
	}

	events, closeWatcher, err := watchSourceTree(srcDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: watch %s: %v\n", srcDir, err)
		return ExitInternal
	}
	defer closeWatcher()

	code := buildOnce(project, ci)
	for range events {
		fmt.Fprintf(os.Stderr, "change detected under %s, rebuilding...\n", srcDir)
		code = buildOnce(project, ci)
	}
	return code
}

func buildOnce(project string, ci bool) int {
	cfg, err := config.Load(project)
	if err != nil {
		return report(ci, "build", project, ExitConfigError, err.Error())
	}
	if issues := cfg.LibraryDependencyIssues(); len(issues) > 0 {
		return report(ci, "build", project, ExitConfigError, fmt.Sprintf("library graph: %v", issues))
	}

	layout := bundle.Layout{Dir: project}
	srcDir, err := layout.SourcesDir()
	if err != nil {
		return report(ci, "build", project, ExitConfigError, err.Error())
	}

	paths, err := discoverSources(srcDir)
	if err != nil {
		return report(ci, "build", project, ExitInternal, err.Error())
	}
	if len(paths) == 0 {
		return report(ci, "build", project, ExitConfigError, fmt.Sprintf("no .st sources found under %s", srcDir))
	}

	files, diags, err := loadFrontend(paths)
	if err != nil {
		return report(ci, "build", project, ExitInternal, err.Error())
	}
	if hasErrors(diags) {
		return report(ci, "build", project, ExitBuildFailed, formatDiagnostics(files, diags))
	}

	rb := &runtime.Bundle{Retained: map[string][]string{}}
	sources := map[string][]byte{}
	for _, f := range files {
		progs, err := asm.AssembleFile(f.tree, f.src)
		if err != nil {
			return report(ci, "build", project, ExitBuildFailed, fmt.Sprintf("%s: %v", f.path, err))
		}
		rb.Programs = append(rb.Programs, progs...)
		sources[f.path] = []byte(f.src)
	}

	programBytes := runtime.EncodeBundle(rb)
	manifest := bundle.BuildManifest(cfg.Resource.Name, sources, programBytes)
	if err := bundle.Save(layout, rb, &manifest); err != nil {
		return report(ci, "build", project, ExitInternal, err.Error())
	}

	human := fmt.Sprintf("built %d program(s) from %d source file(s) into %s", len(rb.Programs), len(paths), layout.ProgramPath())
	if len(diags) > 0 {
		human += "\n" + formatDiagnostics(files, diags)
	}
	return report(ci, "build", project, ExitSuccess, human)
}
