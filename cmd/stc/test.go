package main

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/dekarrin/stlc/internal/bundle"
	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/spf13/pflag"
)

// junitSuite/junitCase mirror the subset of the JUnit XML schema §8
// requires: a suite with per-program cases, each carrying an optional
// <failure> element when its program faulted.
type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name    string        `xml:"name,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Text    string `xml:",chardata"`
}

// runTest implements "stc test": loads an already-built project bundle and
// runs every program in it to completion against a fresh image, one cycle
// each. A program that raises runtime.FaultAssertionFailed is a failing
// test case; any other Fault or evaluator error is also reported as failed,
// since nothing downstream can tell "assertion" apart from "crash" once the
// whole program run is what's under test.
func runTest(args []string) int {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	project := fs.StringP("project", "p", ".", "Project directory containing runtime.toml and a built program.stbc")
	ci := fs.BoolP("ci", "", false, "Emit a single-line JSON result instead of human-readable output")
	output := fs.StringP("output", "o", "", "Additional report format to write: \"junit\" for JUnit XML on stdout")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}

	bp, err := bundle.Load(*project)
	if err != nil {
		return report(*ci, "test", *project, ExitConfigError, err.Error())
	}

	suite := junitSuite{Name: bp.Config.Resource.Name}
	failed := 0
	for _, prog := range bp.Bundle.Programs {
		overlay := runtime.NewOverlay(runtime.NewImage())
		frame := runtime.NewFrame(&prog)
		runErr := frame.Run(overlay)

		tc := junitCase{Name: prog.Name}
		if runErr != nil {
			failed++
			var fault *runtime.Fault
			msg := runErr.Error()
			if errors.As(runErr, &fault) {
				msg = fault.Message
			}
			tc.Failure = &junitFailure{Message: string(classifyFault(runErr)), Text: msg}
		}
		suite.Tests++
		suite.Cases = append(suite.Cases, tc)
	}
	suite.Failures = failed

	if *output == "junit" {
		enc := xml.NewEncoder(os.Stdout)
		enc.Indent("", "  ")
		if err := enc.Encode(suite); err != nil {
			return report(*ci, "test", *project, ExitInternal, err.Error())
		}
		fmt.Println()
	}

	if failed > 0 {
		msg := fmt.Sprintf("ST test(s) failed: %d/%d", failed, suite.Tests)
		if *output == "junit" {
			fmt.Fprintln(os.Stderr, msg)
			return ExitTestFailed
		}
		return report(*ci, "test", *project, ExitTestFailed, msg)
	}

	if *output == "junit" {
		return ExitSuccess
	}
	human := fmt.Sprintf("%d/%d test program(s) passed", suite.Tests, suite.Tests)
	return report(*ci, "test", *project, ExitSuccess, human)
}

// classifyFault names the FaultKind behind a runtime error, or "error" when
// runErr isn't a *runtime.Fault at all (e.g. an unknown-opcode bug).
func classifyFault(err error) runtime.FaultKind {
	var fault *runtime.Fault
	if errors.As(err, &fault) {
		return fault.Kind
	}
	return "error"
}
