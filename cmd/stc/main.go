/*
Stc is the command-line front end for the stlc toolchain: it compiles
Structured Text projects to bytecode bundles, validates and tests them, and
administers the package registry.

Usage:

	stc <command> [flags]

The commands are:

	build       compile a project's sources into program.stbc
	validate    run the front end (parse, resolve, typecheck) without writing output
	test        run a project's test POUs
	docs        render POU documentation from doc comments
	setup       scaffold a new project directory
	registry    manage packages in a package registry (init, publish, verify, list, download, profile)
	ui          open an interactive NDJSON control-plane session against a running project

Every command except ui accepts --ci, which switches output to a single-line JSON
result object (version, command, project, status) instead of human-readable
text, for use in build pipelines. Exit codes are stable across both modes:
0 success, 10 invalid config, 11 build failed, 12 test failed, 13 timeout,
20 internal error.
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	var returnCode int = ExitSuccess
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "ERROR: missing command; see 'stc help'")
		returnCode = ExitInternal
		return
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "build":
		returnCode = runBuild(args)
	case "validate":
		returnCode = runValidate(args)
	case "test":
		returnCode = runTest(args)
	case "docs":
		returnCode = runDocs(args)
	case "setup":
		returnCode = runSetup(args)
	case "registry":
		returnCode = runRegistry(args)
	case "ui":
		returnCode = runUI(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown command %q; see 'stc help'\n", cmd)
		returnCode = ExitInternal
	}
}

func printUsage() {
	fmt.Println(`usage: stc <command> [flags]

commands:
  build       compile a project's sources into program.stbc
  validate    run the front end without writing output
  test        run a project's test POUs
  docs        render POU documentation
  setup       scaffold a new project directory
  registry    manage packages in a package registry
  ui          open an interactive control-plane session`)
}
