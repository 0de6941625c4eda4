package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/runtime"
	"github.com/containifyci/universal-build/pkg/stack"
)

func nodeAnalysis(name string) analysis.ServiceAnalysis {
	fw := stack.Fw(stack.FwExpress)
	return analysis.ServiceAnalysis{
		Application: stack.Application{Name: name, Path: ".", ManifestPath: "package.json"},
		Stack: stack.Stack{
			Language:    stack.Lang(stack.LangNode),
			BuildSystem: stack.BuildSys(stack.BSNpm),
			Framework:   &fw,
		},
		BuildTemplate: stack.BuildTemplate{
			BuildPackages:   []string{"nodejs-20"},
			RuntimePackages: []string{"nodejs-20"},
			Commands:        []string{"npm ci", "npm run build"},
			CachePaths:      []string{"~/.npm"},
		},
		RuntimeConfig: runtime.Config{
			Entrypoint: "node index.js",
			Port:       3000,
			Health:     "/health",
			Env:        map[string]string{"NODE_ENV": "production"},
		},
		CachePaths: []string{"~/.npm"},
	}
}

type acceptAllValidator struct{}

func (acceptAllValidator) ValidatePackages([]string) error { return nil }

type rejectingValidator struct{ bad string }

func (r rejectingValidator) ValidatePackages(names []string) error {
	for _, n := range names {
		if n == r.bad {
			return assert.AnError
		}
	}
	return nil
}

func TestAssembleDedupesDuplicateNames(t *testing.T) {
	builds, err := Assemble([]analysis.ServiceAnalysis{nodeAnalysis("api"), nodeAnalysis("api")}, nil, acceptAllValidator{})
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "api", builds[0].Metadata.ProjectName)
	assert.Equal(t, "api-1", builds[1].Metadata.ProjectName)
}

func TestAssembleFailsOnInvalidPackage(t *testing.T) {
	_, err := Assemble([]analysis.ServiceAnalysis{nodeAnalysis("api")}, nil, rejectingValidator{bad: "nodejs-20"})
	assert.Error(t, err)
}

func TestCopyEntriesForConventions(t *testing.T) {
	assert.Equal(t, "/app/app.jar", copyEntriesFor(stack.BuildSys(stack.BSMaven), "svc")[0].To)
	assert.Equal(t, "build/libs/*.jar", copyEntriesFor(stack.BuildSys(stack.BSGradle), "svc")[0].From)
	assert.Equal(t, "target/release/svc", copyEntriesFor(stack.BuildSys(stack.BSCargo), "svc")[0].From)
}

// go-modules and dotnet-sdk build to an absolute /out path
// (`go build -o /out/app .`, `dotnet publish -c Release -o /out`), not
// one relative to the build workdir like every other build system
// here, so their copy entries must reference /out directly.
func TestCopyEntriesForGoAndDotnetMatchAbsoluteOutPath(t *testing.T) {
	goEntries := copyEntriesFor(stack.BuildSys(stack.BSGoMod), "svc")
	require.Len(t, goEntries, 1)
	assert.Equal(t, "/out/app", goEntries[0].From)
	assert.Equal(t, "/app/svc", goEntries[0].To)

	dotnetEntries := copyEntriesFor(stack.BuildSys(stack.BSDotnet), "svc")
	require.Len(t, dotnetEntries, 1)
	assert.Equal(t, "/out/", dotnetEntries[0].From)
	assert.Equal(t, "/app/", dotnetEntries[0].To)
}

func TestUniqueNameAppendsSuffix(t *testing.T) {
	seen := map[string]int{}
	assert.Equal(t, "api", uniqueName(seen, "api"))
	assert.Equal(t, "api-1", uniqueName(seen, "api"))
	assert.Equal(t, "api-2", uniqueName(seen, "api"))
}

func TestFromServiceAnalysisPopulatesUniversalBuild(t *testing.T) {
	sa := nodeAnalysis("demo-api")
	b := fromServiceAnalysis(sa, &analysis.RootCache{Paths: []string{".turbo/"}})

	assert.Equal(t, "demo-api", b.Metadata.ProjectName)
	assert.Equal(t, "node", b.Metadata.Language)
	assert.Equal(t, "npm", b.Metadata.BuildSystem)
	assert.Equal(t, "express", b.Metadata.Framework)
	assert.Contains(t, b.Build.Cache, "~/.npm")
	assert.Contains(t, b.Build.Cache, ".turbo/")
	require.NotNil(t, b.Runtime.Health)
	assert.Equal(t, "/health", b.Runtime.Health.Endpoint)
	assert.EqualValues(t, []uint16{3000}, b.Runtime.Ports)
}
