package config

import "fmt"

// IssueCode is one of the four library-graph validation codes in §6.
type IssueCode string

const (
	L001MissingDependency IssueCode = "L001"
	L002VersionMismatch   IssueCode = "L002"
	L003ConflictingVersion IssueCode = "L003"
	L004DependencyCycle   IssueCode = "L004"
)

// Issue is one problem found in the library dependency graph.
type Issue struct {
	Code    IssueCode
	Message string
}

// LibraryDependencyIssues validates the `[[libraries]]` graph and returns
// every problem found: missing dependencies (L001), a dependency entry whose
// pinned version doesn't match the declared library's version (L002),
// multiple libraries sharing a name with different versions (L003), and
// dependency cycles (L004, reported in canonical rotation — the cycle
// starting from its lexicographically smallest member).
func (p *Project) LibraryDependencyIssues() []Issue {
	var issues []Issue

	byName := map[string][]Library{}
	for _, lib := range p.Libraries {
		byName[lib.Name] = append(byName[lib.Name], lib)
	}

	for name, libs := range byName {
		if len(libs) < 2 {
			continue
		}
		first := libs[0].Version
		for _, l := range libs[1:] {
			if l.Version != first {
				issues = append(issues, Issue{
					Code:    L003ConflictingVersion,
					Message: fmt.Sprintf("library %q has conflicting versions declared: %q and %q", name, first, l.Version),
				})
				break
			}
		}
	}

	for _, lib := range p.Libraries {
		for _, dep := range lib.Dependencies {
			targets, ok := byName[dep.Name]
			if !ok {
				issues = append(issues, Issue{
					Code:    L001MissingDependency,
					Message: fmt.Sprintf("library %q depends on undeclared library %q", lib.Name, dep.Name),
				})
				continue
			}
			if dep.Version != "" {
				matched := false
				for _, t := range targets {
					if t.Version == dep.Version {
						matched = true
						break
					}
				}
				if !matched {
					issues = append(issues, Issue{
						Code:    L002VersionMismatch,
						Message: fmt.Sprintf("library %q requires %q at version %q, but it is declared at a different version", lib.Name, dep.Name, dep.Version),
					})
				}
			}
		}
	}

	issues = append(issues, p.findCycles()...)

	return issues
}

// findCycles runs DFS over the dependency graph and reports each distinct
// cycle once, in canonical rotation (starting from the lexicographically
// smallest node on the cycle) so the same cycle always produces the same
// message regardless of declaration order.
func (p *Project) findCycles() []Issue {
	adj := map[string][]string{}
	for _, lib := range p.Libraries {
		for _, dep := range lib.Dependencies {
			adj[lib.Name] = append(adj[lib.Name], dep.Name)
		}
	}

	var issues []Issue
	seen := map[string]bool{} // cycle signature dedup

	var stack []string
	onStack := map[string]bool{}
	visited := map[string]bool{}

	var visit func(n string)
	visit = func(n string) {
		visited[n] = true
		onStack[n] = true
		stack = append(stack, n)

		for _, next := range adj[n] {
			if onStack[next] {
				cycle := extractCycle(stack, next)
				sig := canonicalRotation(cycle)
				key := fmt.Sprint(sig)
				if !seen[key] {
					seen[key] = true
					issues = append(issues, Issue{
						Code:    L004DependencyCycle,
						Message: fmt.Sprintf("dependency cycle: %s", formatCycle(sig)),
					})
				}
			} else if !visited[next] {
				visit(next)
			}
		}

		stack = stack[:len(stack)-1]
		onStack[n] = false
	}

	for _, lib := range p.Libraries {
		if !visited[lib.Name] {
			visit(lib.Name)
		}
	}

	return issues
}

// extractCycle returns the portion of stack from the first occurrence of
// start to the end, i.e. the cycle itself.
func extractCycle(stack []string, start string) []string {
	for i, n := range stack {
		if n == start {
			return append([]string{}, stack[i:]...)
		}
	}
	return nil
}

// canonicalRotation rotates cycle so it begins with its lexicographically
// smallest element, making the same cycle compare equal regardless of which
// node DFS happened to start the walk from.
func canonicalRotation(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}
	minIdx := 0
	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}
	return append(append([]string{}, cycle[minIdx:]...), cycle[:minIdx]...)
}

// formatCycle renders a cycle as "A -> B -> A".
func formatCycle(cycle []string) string {
	s := ""
	for i, n := range cycle {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	if len(cycle) > 0 {
		s += " -> " + cycle[0]
	}
	return s
}
