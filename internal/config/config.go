// Package config loads and validates a project's runtime.toml/io.toml
// configuration: the resource/runtime/io/library/simulation sections
// described in §6, plus the library dependency graph checks
// (L001-L004) that gate a project build before the bundle loader runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
)

// Resource is the `[resource]` section: the cyclic task this project's
// bundle will be scheduled as.
type Resource struct {
	Name            string `toml:"name"`
	CycleIntervalMs int    `toml:"cycle_interval_ms"`
}

// Runtime is the `[runtime]` section: where the control plane listens.
type Runtime struct {
	ControlEndpoint string `toml:"control.endpoint"`
	AuthToken       string `toml:"auth_token"`
}

// IO is the `[io]` section: the I/O driver and its free-form parameters.
type IO struct {
	Driver string         `toml:"driver"`
	Params map[string]any `toml:"params"`
}

// LibraryRef names one dependency of a `[[libraries]]` entry.
type LibraryRef struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Library is one `[[libraries]]` entry.
type Library struct {
	Name         string       `toml:"name"`
	Version      string       `toml:"version"`
	Path         string       `toml:"path"`
	Dependencies []LibraryRef `toml:"dependencies"`
}

// SimCoupling is one entry of `[simulation].couplings`.
type SimCoupling struct {
	Source    string  `toml:"source"`
	Target    string  `toml:"target"`
	Threshold float64 `toml:"threshold"`
	DelayMs   int     `toml:"delay_ms"`
	OnTrue    bool    `toml:"on_true"`
	OnFalse   bool    `toml:"on_false"`
}

// SimDisturbance is one entry of `[simulation].disturbances`.
type SimDisturbance struct {
	AtMs    int    `toml:"at_ms"`
	Kind    string `toml:"kind"`
	Message string `toml:"message"`
}

// Simulation is the `[simulation]` section.
type Simulation struct {
	Enabled      bool             `toml:"enabled"`
	Seed         int64            `toml:"seed"`
	TimeScale    float64          `toml:"time_scale"`
	Couplings    []SimCoupling    `toml:"couplings"`
	Disturbances []SimDisturbance `toml:"disturbances"`
}

// Project is the full decoded `runtime.toml` document, plus whatever
// `io.toml` contributes to the `[io]` section.
type Project struct {
	Resource   Resource   `toml:"resource"`
	Runtime    Runtime    `toml:"runtime"`
	IO         IO         `toml:"io"`
	Libraries  []Library  `toml:"libraries"`
	Simulation Simulation `toml:"simulation"`

	// SourceRoots is not a TOML field; it is populated by ExpandSourceRoots
	// from doublestar globs recorded under each Library's Path.
	SourceRoots []string `toml:"-"`
}

// ErrInvalidConfig wraps any problem found loading or validating a project,
// matching the CLI's exit-10 "invalid-config" classification in §6.
type ErrInvalidConfig struct {
	Reason string
}

func (e *ErrInvalidConfig) Error() string { return "invalid config: " + e.Reason }

// Load reads runtime.toml and io.toml from dir, merges them, and validates
// every section. Unknown keys in either file are rejected, per §6
// ("Unknown keys are rejected").
func Load(dir string) (*Project, error) {
	var proj Project

	runtimePath := filepath.Join(dir, "runtime.toml")
	if md, err := toml.DecodeFile(runtimePath, &proj); err != nil {
		return nil, &ErrInvalidConfig{Reason: fmt.Sprintf("runtime.toml: %v", err)}
	} else if undec := md.Undecoded(); len(undec) > 0 {
		return nil, &ErrInvalidConfig{Reason: fmt.Sprintf("runtime.toml: unknown key(s) %v", undec)}
	}

	ioPath := filepath.Join(dir, "io.toml")
	if _, err := os.Stat(ioPath); err == nil {
		var ioDoc struct {
			IO IO `toml:"io"`
		}
		md, err := toml.DecodeFile(ioPath, &ioDoc)
		if err != nil {
			return nil, &ErrInvalidConfig{Reason: fmt.Sprintf("io.toml: %v", err)}
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, &ErrInvalidConfig{Reason: fmt.Sprintf("io.toml: unknown key(s) %v", undec)}
		}
		proj.IO = ioDoc.IO
	}

	if err := proj.Validate(); err != nil {
		return nil, err
	}

	roots, err := proj.ExpandSourceRoots(dir)
	if err != nil {
		return nil, err
	}
	proj.SourceRoots = roots

	return &proj, nil
}

// Validate checks range and presence constraints §6 requires,
// independent of the library-graph checks in LibraryDependencyIssues.
func (p *Project) Validate() error {
	if p.Resource.Name == "" {
		return &ErrInvalidConfig{Reason: "[resource].name is required"}
	}
	if p.Resource.CycleIntervalMs < 1 {
		return &ErrInvalidConfig{Reason: "[resource].cycle_interval_ms must be >= 1"}
	}

	endpoint := p.Runtime.ControlEndpoint
	switch {
	case strings.HasPrefix(endpoint, "unix://"):
		// no auth_token requirement
	case strings.HasPrefix(endpoint, "tcp://"):
		if p.Runtime.AuthToken == "" {
			return &ErrInvalidConfig{Reason: "[runtime].auth_token is required for tcp:// control endpoints"}
		}
	default:
		return &ErrInvalidConfig{Reason: fmt.Sprintf("[runtime].control.endpoint must be unix://... or tcp://host:port, got %q", endpoint)}
	}

	for _, lib := range p.Libraries {
		if lib.Name == "" || lib.Path == "" {
			return &ErrInvalidConfig{Reason: "every [[libraries]] entry requires name and path"}
		}
	}

	return nil
}

// ExpandSourceRoots expands each library's Path as a doublestar glob
// relative to dir, returning every matched path (file or directory) in
// declaration order.
func (p *Project) ExpandSourceRoots(dir string) ([]string, error) {
	var roots []string
	for _, lib := range p.Libraries {
		matches, err := doublestar.Glob(os.DirFS(dir), lib.Path)
		if err != nil {
			return nil, &ErrInvalidConfig{Reason: fmt.Sprintf("library %q: bad path glob %q: %v", lib.Name, lib.Path, err)}
		}
		for _, m := range matches {
			roots = append(roots, filepath.Join(dir, m))
		}
	}
	return roots, nil
}
