package bundle

import (
	"fmt"
	"os"

	"github.com/dekarrin/stlc/internal/config"
	"github.com/dekarrin/stlc/internal/runtime"
)

// Project ties a loaded project config to its compiled bytecode and
// manifest — the unit the scheduler and control plane actually run against.
type Project struct {
	Config   *config.Project
	Bundle   *runtime.Bundle
	Manifest *Manifest
	Layout   Layout
}

// Load reads runtime.toml/io.toml, program.stbc, and its manifest from dir,
// validating the project config (§6) and the library dependency
// graph before returning. Config errors map to the CLI's exit-10 class.
func Load(dir string) (*Project, error) {
	layout := Layout{Dir: dir}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if issues := cfg.LibraryDependencyIssues(); len(issues) > 0 {
		return nil, &config.ErrInvalidConfig{Reason: fmt.Sprintf("library graph: %v", issues)}
	}

	programData, err := os.ReadFile(layout.ProgramPath())
	if err != nil {
		return nil, &config.ErrInvalidConfig{Reason: fmt.Sprintf("read %s: %v", ProgramFile, err)}
	}
	rb, err := runtime.DecodeBundle(programData)
	if err != nil {
		return nil, &config.ErrInvalidConfig{Reason: fmt.Sprintf("decode %s: %v", ProgramFile, err)}
	}

	manifestData, err := os.ReadFile(layout.ManifestPath())
	if err != nil {
		return nil, &config.ErrInvalidConfig{Reason: fmt.Sprintf("read manifest: %v", err)}
	}
	manifest, err := DecodeManifest(manifestData)
	if err != nil {
		return nil, &config.ErrInvalidConfig{Reason: err.Error()}
	}

	return &Project{Config: cfg, Bundle: rb, Manifest: manifest, Layout: layout}, nil
}

// Save writes the compiled bundle and its manifest to the project folder.
func Save(layout Layout, rb *runtime.Bundle, m *Manifest) error {
	if err := os.WriteFile(layout.ProgramPath(), runtime.EncodeBundle(rb), 0644); err != nil {
		return fmt.Errorf("write %s: %w", ProgramFile, err)
	}
	if err := os.WriteFile(layout.ManifestPath(), m.Encode(), 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
