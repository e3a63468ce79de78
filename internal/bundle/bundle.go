// Package bundle implements the project bundle layout and manifest of
// §6: a project folder containing runtime.toml, io.toml,
// program.stbc, and a sources tree, plus the manifest that ties a compiled
// program.stbc to the source hashes it was built from. Grounded on
// internal/tunascript/binary.go's rezi-based encode/decode of structured
// values, adapted here to encode a bundle manifest instead of an AST.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dekarrin/rezi"
)

const (
	RuntimeConfigFile = "runtime.toml"
	IOConfigFile      = "io.toml"
	ProgramFile       = "program.stbc"
)

// SourceEntry records one compiled source file's path and content hash.
type SourceEntry struct {
	Path string
	Hash string
}

// Manifest is the metadata bound to one compiled program.stbc: which
// sources produced it and their content hashes, so a loader can detect a
// stale bundle relative to its source tree.
type Manifest struct {
	ProjectName string
	Sources     []SourceEntry
	ProgramHash string
}

// HashBytes returns the hex sha256 digest of data, the same primitive the
// front end's diag.Diagnostic.Hash uses for content identity.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// BuildManifest computes a Manifest for a set of compiled sources and the
// resulting bytecode.
func BuildManifest(projectName string, sources map[string][]byte, programBytes []byte) Manifest {
	m := Manifest{ProjectName: projectName, ProgramHash: HashBytes(programBytes)}
	for path, content := range sources {
		m.Sources = append(m.Sources, SourceEntry{Path: path, Hash: HashBytes(content)})
	}
	return m
}

// Encode serializes m for storage alongside program.stbc.
func (m *Manifest) Encode() []byte {
	return rezi.EncBinary(m)
}

// DecodeManifest reverses Encode.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if _, err := rezi.DecBinary(data, &m); err != nil {
		return nil, fmt.Errorf("decode bundle manifest: %w", err)
	}
	return &m, nil
}

// Layout resolves the standard file paths of a project folder at dir.
type Layout struct {
	Dir string
}

func (l Layout) RuntimeConfigPath() string { return filepath.Join(l.Dir, RuntimeConfigFile) }
func (l Layout) IOConfigPath() string      { return filepath.Join(l.Dir, IOConfigFile) }
func (l Layout) ProgramPath() string       { return filepath.Join(l.Dir, ProgramFile) }
func (l Layout) ManifestPath() string      { return filepath.Join(l.Dir, ProgramFile+".manifest") }

// SourcesDir returns the project's source tree root: "sources/" if it
// exists, else "src/", matching §6's "a sources/ or src/ tree".
func (l Layout) SourcesDir() (string, error) {
	for _, name := range []string{"sources", "src"} {
		p := filepath.Join(l.Dir, name)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("project %q has neither a sources/ nor a src/ tree", l.Dir)
}

// Stale reports whether the on-disk manifest's recorded hashes no longer
// match the given current source contents, meaning program.stbc must be
// rebuilt before it can be trusted.
func (m *Manifest) Stale(currentSources map[string][]byte) bool {
	if len(m.Sources) != len(currentSources) {
		return true
	}
	for _, entry := range m.Sources {
		content, ok := currentSources[entry.Path]
		if !ok || HashBytes(content) != entry.Hash {
			return true
		}
	}
	return false
}
