package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/scanner"
	"github.com/containifyci/universal-build/pkg/stack"
)

const samplePackageJSON = `{"name":"demo-api","engines":{"node":"20.0.0"},"dependencies":{"express":"^4.18.0"}}`

// fakeIndex is an in-memory stack.WolfiIndex stand-in so these tests
// don't depend on network access to the real package host.
type fakeIndex struct{ versions map[string][]string }

func (f fakeIndex) HasPackage(name string) bool { return true }
func (f fakeIndex) GetVersions(stem string) []string { return f.versions[stem] }
func (f fakeIndex) GetLatestVersion(stem string) (string, bool) {
	vs := f.versions[stem]
	if len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func testDeps(t *testing.T, files map[string]string) Deps {
	t.Helper()
	idx := fakeIndex{versions: map[string][]string{"nodejs": {"20", "18"}}}
	return Deps{
		WolfiIndex: idx,
		ReadFile: func(path string) ([]byte, error) {
			if content, ok := files[path]; ok {
				return []byte(content), nil
			}
			return nil, assert.AnError
		},
	}
}

func newServiceContext(t *testing.T) *analysis.Context {
	ctx := analysis.New("/repo", stack.DefaultRegistry(), llm.NewStaticClient(), llm.ModeStatic, nil)
	ctx.SetScan(&scanner.Result{Files: []string{"package.json", "index.js"}, ExtensionCount: map[string]int{".js": 1}})
	return ctx
}

func TestStackIdentificationDeterministic(t *testing.T) {
	repoCtx := newServiceContext(t)
	app := stack.Application{Name: "demo-api", Path: ".", ManifestPath: "package.json"}
	sc := analysis.NewServiceContext(repoCtx, app, []string{"express"})
	deps := testDeps(t, map[string]string{"package.json": samplePackageJSON})

	err := StackIdentification(context.Background(), sc, deps)
	require.NoError(t, err)
	assert.Equal(t, "node", sc.Stack.Language.Name())
	assert.Equal(t, "npm", sc.Stack.BuildSystem.Name())
	require.NotNil(t, sc.Stack.Framework)
	assert.Equal(t, "express", sc.Stack.Framework.Name())
}

func TestRunAllPhasesForNodeExpress(t *testing.T) {
	repoCtx := newServiceContext(t)
	app := stack.Application{Name: "demo-api", Path: ".", ManifestPath: "package.json"}
	sc := analysis.NewServiceContext(repoCtx, app, []string{"express"})
	deps := testDeps(t, map[string]string{
		"package.json": samplePackageJSON,
		"index.js":     "const app = require('express')(); app.listen(3000);",
	})

	err := Run(context.Background(), sc, deps)
	require.NoError(t, err)
	assert.NotEmpty(t, sc.BuildTemplate.Commands)
	assert.EqualValues(t, 3000, sc.RuntimeConfig.Port)
	assert.NotEmpty(t, sc.CachePaths)
}
