package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

const runtimeTomlTemplate = `[resource]
name = %q
cycle_interval_ms = 100

[runtime]
"control.endpoint" = "unix://./control.sock"
auth_token = ""
`

const starterProgram = `PROGRAM Main
VAR
	counter : DINT;
END_VAR
counter := counter + 1;
END_PROGRAM
`

// runSetup implements "stc setup": scaffold a new project directory with a
// runtime.toml, a sources/ tree, and a starter PROGRAM, so "stc build"
// has something to compile immediately after.
func runSetup(args []string) int {
	fs := pflag.NewFlagSet("setup", pflag.ContinueOnError)
	project := fs.StringP("project", "p", ".", "Directory to scaffold (created if missing)")
	name := fs.StringP("name", "n", "", "Resource name for [resource].name (defaults to the directory's base name)")
	ci := fs.BoolP("ci", "", false, "Emit a single-line JSON result instead of human-readable output")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}

	resourceName := *name
	if resourceName == "" {
		resourceName = filepath.Base(filepath.Clean(*project))
	}

	srcDir := filepath.Join(*project, "sources")
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return report(*ci, "setup", *project, ExitInternal, err.Error())
	}

	runtimePath := filepath.Join(*project, "runtime.toml")
	if _, err := os.Stat(runtimePath); err == nil {
		return report(*ci, "setup", *project, ExitConfigError, fmt.Sprintf("%s already exists", runtimePath))
	}
	if err := os.WriteFile(runtimePath, []byte(fmt.Sprintf(runtimeTomlTemplate, resourceName)), 0644); err != nil {
		return report(*ci, "setup", *project, ExitInternal, err.Error())
	}

	mainPath := filepath.Join(srcDir, "main.st")
	if err := os.WriteFile(mainPath, []byte(starterProgram), 0644); err != nil {
		return report(*ci, "setup", *project, ExitInternal, err.Error())
	}

	human := fmt.Sprintf("scaffolded project %q at %s", resourceName, *project)
	return report(*ci, "setup", *project, ExitSuccess, human)
}
