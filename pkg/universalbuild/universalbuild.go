// Package universalbuild defines the external UniversalBuild contract
// (SPEC_FULL §3.4/§6.1): the declarative, multi-stage container build
// recipe the analysis pipeline emits and the LLB builder consumes.
package universalbuild

import "encoding/json"

// SchemaVersion is the constant wire-format version (SPEC_FULL §3.1).
const SchemaVersion = "1.0"

// UniversalBuild is one deployable service's build recipe. There is no
// `base` field anywhere: Wolfi is always the implicit base image.
type UniversalBuild struct {
	Version  string   `json:"version"`
	Metadata Metadata `json:"metadata"`
	Build    Build    `json:"build"`
	Runtime  Runtime  `json:"runtime"`
}

// Metadata carries provenance about how the stack was identified.
// Reasoning is populated only when LLM fallback contributed to detection.
type Metadata struct {
	ProjectName  string `json:"project_name"`
	Language     string `json:"language"`
	BuildSystem  string `json:"build_system"`
	Framework    string `json:"framework,omitempty"`
	Orchestrator string `json:"orchestrator,omitempty"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// Build is the build-stage recipe. There is deliberately no `artifacts`
// field and no `base` field (SPEC_FULL §3.4).
type Build struct {
	Packages []string          `json:"packages"`
	Env      map[string]string `json:"env,omitempty"`
	Commands []string          `json:"commands"`
	Context  []string          `json:"context,omitempty"`
	Cache    []string          `json:"cache,omitempty"`
}

// Runtime is the runtime-stage recipe.
type Runtime struct {
	Packages []string          `json:"packages"`
	Env      map[string]string `json:"env,omitempty"`
	Copy     []CopyEntry       `json:"copy"`
	Command  []string          `json:"command"`
	Ports    []uint16          `json:"ports"`
	Health   *HealthCheck      `json:"health,omitempty"`
}

// CopyEntry maps a build-stage artifact path to its runtime destination.
// CopyEntry.From is the sole source of "what artifacts this build
// produces" (SPEC_FULL §3.4: there is no separate `artifacts` field).
type CopyEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HealthCheck names the HTTP endpoint the runtime exposes for liveness.
type HealthCheck struct {
	Endpoint string `json:"endpoint"`
}

// New returns a zero-value UniversalBuild with the schema version set.
func New(projectName string) UniversalBuild {
	return UniversalBuild{
		Version:  SchemaVersion,
		Metadata: Metadata{ProjectName: projectName},
		Runtime:  Runtime{Copy: []CopyEntry{}, Command: []string{}, Ports: []uint16{}},
	}
}

// AllPackages returns the union of build and runtime packages, the set
// the Wolfi Package Index validates (SPEC_FULL §3.4 invariant, §8.1).
func (u UniversalBuild) AllPackages() []string {
	out := make([]string, 0, len(u.Build.Packages)+len(u.Runtime.Packages))
	out = append(out, u.Build.Packages...)
	out = append(out, u.Runtime.Packages...)
	return out
}

// MarshalSet renders a slice of UniversalBuild per the stable wire
// format: a single object for one service, an array for a monorepo
// (SPEC_FULL §6.1).
func MarshalSet(builds []UniversalBuild) ([]byte, error) {
	if len(builds) == 1 {
		return json.MarshalIndent(builds[0], "", "  ")
	}
	return json.MarshalIndent(builds, "", "  ")
}

// UnmarshalSet is MarshalSet's inverse: it accepts either a single object
// or an array and always returns a slice.
func UnmarshalSet(data []byte) ([]UniversalBuild, error) {
	trimmed := trimLeadingSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var builds []UniversalBuild
		if err := json.Unmarshal(data, &builds); err != nil {
			return nil, err
		}
		return builds, nil
	}
	var single UniversalBuild
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []UniversalBuild{single}, nil
}

func trimLeadingSpace(data []byte) []byte {
	i := 0
	for i < len(data) {
		switch data[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return data[i:]
}
