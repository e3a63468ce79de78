package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LibraryDependencyIssues_cycleReportsCanonicalRotation(t *testing.T) {
	p := &Project{Libraries: []Library{
		{Name: "A", Path: "a/", Dependencies: []LibraryRef{{Name: "B"}}},
		{Name: "B", Path: "b/", Dependencies: []LibraryRef{{Name: "A"}}},
	}}

	issues := p.LibraryDependencyIssues()

	var found bool
	for _, iss := range issues {
		if iss.Code == L004DependencyCycle {
			found = true
			assert.Contains(t, iss.Message, "A -> B -> A")
		}
	}
	assert.True(t, found, "expected an L004 cycle issue")
}

func Test_LibraryDependencyIssues_missingDependency(t *testing.T) {
	p := &Project{Libraries: []Library{
		{Name: "A", Path: "a/", Dependencies: []LibraryRef{{Name: "Ghost"}}},
	}}

	issues := p.LibraryDependencyIssues()

	assert.Len(t, issues, 1)
	assert.Equal(t, L001MissingDependency, issues[0].Code)
}

func Test_LibraryDependencyIssues_conflictingVersions(t *testing.T) {
	p := &Project{Libraries: []Library{
		{Name: "A", Path: "a1/", Version: "1.0.0"},
		{Name: "A", Path: "a2/", Version: "2.0.0"},
	}}

	issues := p.LibraryDependencyIssues()

	var found bool
	for _, iss := range issues {
		if iss.Code == L003ConflictingVersion {
			found = true
		}
	}
	assert.True(t, found)
}

func Test_LibraryDependencyIssues_versionMismatch(t *testing.T) {
	p := &Project{Libraries: []Library{
		{Name: "A", Path: "a/", Dependencies: []LibraryRef{{Name: "B", Version: "2.0.0"}}},
		{Name: "B", Path: "b/", Version: "1.0.0"},
	}}

	issues := p.LibraryDependencyIssues()

	var found bool
	for _, iss := range issues {
		if iss.Code == L002VersionMismatch {
			found = true
		}
	}
	assert.True(t, found)
}

func Test_LibraryDependencyIssues_noIssuesForCleanGraph(t *testing.T) {
	p := &Project{Libraries: []Library{
		{Name: "A", Path: "a/", Dependencies: []LibraryRef{{Name: "B"}}},
		{Name: "B", Path: "b/"},
	}}

	assert.Empty(t, p.LibraryDependencyIssues())
}

func Test_Validate_rejectsBadCycleInterval(t *testing.T) {
	p := &Project{Resource: Resource{Name: "r", CycleIntervalMs: 0}, Runtime: Runtime{ControlEndpoint: "unix:///tmp/s"}}

	err := p.Validate()

	assert.Error(t, err)
}

func Test_Validate_tcpEndpointRequiresAuthToken(t *testing.T) {
	p := &Project{Resource: Resource{Name: "r", CycleIntervalMs: 10}, Runtime: Runtime{ControlEndpoint: "tcp://localhost:9000"}}

	err := p.Validate()

	assert.Error(t, err)
}
