package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dekarrin/rosed"
)

const humanOutputWidth = 100

// ciResult is the CI-mode JSON shape §6 requires: "version=1 and a
// command, project, status triple."
type ciResult struct {
	Version int    `json:"version"`
	Command string `json:"command"`
	Project string `json:"project"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor maps an exit code to the CI status string.
func statusFor(exitCode int) string {
	if exitCode == ExitSuccess {
		return "ok"
	}
	return "failed"
}

// report prints either the --ci JSON result or a human-readable message
// wrapped to humanOutputWidth (matching tunaq.Engine's use of
// rosed.Edit(...).Wrap(...) for console messages), and returns exitCode for
// main to pass straight to os.Exit.
func report(ci bool, command, project string, exitCode int, human string) int {
	if ci {
		res := ciResult{Version: 1, Command: command, Project: project, Status: statusFor(exitCode), Detail: human}
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: could not encode CI result: %v\n", err)
			return ExitInternal
		}
		return exitCode
	}
	if human != "" {
		fmt.Println(rosed.Edit(human).Wrap(humanOutputWidth).String())
	}
	return exitCode
}
