package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// turborepoOrchestrator builds WorkspaceStructure through
// genericGlobWorkspace: turbo.json's content and any npm/pnpm/yarn
// workspace globs are not read, and no dependency edges are inferred.
type turborepoOrchestrator struct{}

func (turborepoOrchestrator) ID() OrchestratorId { return Orch(OrchTurborepo) }
func (turborepoOrchestrator) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "turbo.json"}}
}
func (turborepoOrchestrator) WorkspaceStructure(repoPath string, _ []byte) (WorkspaceStructure, error) {
	return genericGlobWorkspace(repoPath, Orch(OrchTurborepo))
}
func (turborepoOrchestrator) WrapCommand(appName, command string) string {
	return fmt.Sprintf("turbo run build --filter=%s -- %s", appName, command)
}
func (turborepoOrchestrator) CacheDirs() []string { return []string{".turbo"} }

type nxOrchestrator struct{}

func (nxOrchestrator) ID() OrchestratorId { return Orch(OrchNx) }
func (nxOrchestrator) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "nx.json"}}
}
func (nxOrchestrator) WorkspaceStructure(repoPath string, _ []byte) (WorkspaceStructure, error) {
	return genericGlobWorkspace(repoPath, Orch(OrchNx))
}
func (nxOrchestrator) WrapCommand(appName, command string) string {
	return fmt.Sprintf("nx build %s", appName)
}
func (nxOrchestrator) CacheDirs() []string { return []string{".nx/cache"} }

type lernaOrchestrator struct{}

func (lernaOrchestrator) ID() OrchestratorId { return Orch(OrchLerna) }
func (lernaOrchestrator) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "lerna.json"}}
}
func (lernaOrchestrator) WorkspaceStructure(repoPath string, _ []byte) (WorkspaceStructure, error) {
	return genericGlobWorkspace(repoPath, Orch(OrchLerna))
}
func (lernaOrchestrator) WrapCommand(appName, command string) string {
	return fmt.Sprintf("lerna run build --scope=%s", appName)
}
func (lernaOrchestrator) CacheDirs() []string { return nil }

type pnpmWorkspaceOrchestrator struct{}

func (pnpmWorkspaceOrchestrator) ID() OrchestratorId { return Orch(OrchPnpmWorkspace) }
func (pnpmWorkspaceOrchestrator) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "pnpm-workspace.yaml"}}
}
func (pnpmWorkspaceOrchestrator) WorkspaceStructure(repoPath string, _ []byte) (WorkspaceStructure, error) {
	return genericGlobWorkspace(repoPath, Orch(OrchPnpmWorkspace))
}
func (pnpmWorkspaceOrchestrator) WrapCommand(appName, command string) string {
	return fmt.Sprintf("pnpm --filter %s run build", appName)
}
func (pnpmWorkspaceOrchestrator) CacheDirs() []string { return nil }

// cargoWorkspaceOrchestrator matches the `[workspace]` table inside a root
// Cargo.toml (content hint, not a distinct filename).
type cargoWorkspaceOrchestrator struct{}

func (cargoWorkspaceOrchestrator) ID() OrchestratorId { return Orch(OrchCargoWorkspace) }
func (cargoWorkspaceOrchestrator) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "Cargo.toml", ContentHint: "[workspace]"}}
}
func (cargoWorkspaceOrchestrator) WorkspaceStructure(repoPath string, content []byte) (WorkspaceStructure, error) {
	members := parseCargoWorkspaceMembers(string(content))
	ws := WorkspaceStructure{
		Orchestrator:    idPtr(Orch(OrchCargoWorkspace)),
		DependencyGraph: map[string][]string{},
	}
	for _, m := range members {
		ws.Applications = append(ws.Applications, Application{
			Name:         m,
			Path:         m,
			ManifestPath: filepath.Join(m, "Cargo.toml"),
		})
		ws.DependencyGraph[m] = nil
	}
	ws.BuildOrder = topoSort(ws.DependencyGraph)
	return ws, nil
}
func (cargoWorkspaceOrchestrator) WrapCommand(appName, command string) string {
	return fmt.Sprintf("%s -p %s", command, appName)
}
func (cargoWorkspaceOrchestrator) CacheDirs() []string { return []string{"target"} }

func parseCargoWorkspaceMembers(content string) []string {
	var members []string
	inMembers := false
	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "members") {
			inMembers = true
			if i := strings.IndexByte(t, '='); i >= 0 {
				t = t[i+1:]
			}
		}
		if inMembers {
			for _, tok := range strings.Split(t, ",") {
				tok = strings.Trim(tok, `[]"' `)
				if tok != "" && !strings.HasPrefix(tok, "members") {
					members = append(members, tok)
				}
			}
		}
		if inMembers && strings.Contains(t, "]") {
			break
		}
	}
	return members
}

// genericGlobWorkspace builds a WorkspaceStructure by treating every
// directory listDirs returns as an application, whether or not it holds a
// manifest, with no inferred cross-dependencies (a conservative
// approximation — real dependency edges come from each package's own
// manifest, which the per-service StackIdentification phase reads
// independently).
func genericGlobWorkspace(repoPath string, orch OrchestratorId) (WorkspaceStructure, error) {
	ws := WorkspaceStructure{
		Orchestrator:    idPtr(orch),
		DependencyGraph: map[string][]string{},
	}
	entries, err := listDirs(repoPath)
	if err != nil {
		return ws, err
	}
	for _, name := range entries {
		ws.Applications = append(ws.Applications, Application{Name: name, Path: name})
		ws.DependencyGraph[name] = nil
	}
	ws.BuildOrder = topoSort(ws.DependencyGraph)
	return ws, nil
}

// listDirs is overridable by tests. The default implementation reads the
// real filesystem and only covers the common "apps/*, packages/*"
// convention: it returns the immediate subdirectories of those two
// directories, sorted.
var listDirs = func(repoPath string) ([]string, error) {
	var names []string
	for _, top := range []string{"apps", "packages"} {
		dir := filepath.Join(repoPath, top)
		subs, err := readDirNames(dir)
		if err != nil {
			continue
		}
		for _, s := range subs {
			names = append(names, filepath.Join(top, s))
		}
	}
	sort.Strings(names)
	return names, nil
}

func idPtr(o OrchestratorId) *OrchestratorId { return &o }

// topoSort computes a topological order of graph, ties broken
// lexicographically on node name, libraries (no incoming build dependency
// requirement) preceding dependents (SPEC_FULL §3.3).
func topoSort(graph map[string][]string) []string {
	visited := make(map[string]bool, len(graph))
	var order []string

	keys := make([]string, 0, len(graph))
	for k := range graph {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var visit func(node string)
	visit = func(node string) {
		if visited[node] {
			return
		}
		visited[node] = true
		deps := append([]string(nil), graph[node]...)
		sort.Strings(deps)
		for _, d := range deps {
			visit(d)
		}
		order = append(order, node)
	}
	for _, k := range keys {
		visit(k)
	}
	return order
}

func registerBuiltinOrchestrators(r *StackRegistry) {
	r.RegisterOrchestrator(turborepoOrchestrator{})
	r.RegisterOrchestrator(nxOrchestrator{})
	r.RegisterOrchestrator(lernaOrchestrator{})
	r.RegisterOrchestrator(pnpmWorkspaceOrchestrator{})
	r.RegisterOrchestrator(cargoWorkspaceOrchestrator{})
}
