package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/stack"
)

type fakeIndex struct{}

func (fakeIndex) HasPackage(string) bool                    { return true }
func (fakeIndex) GetVersions(string) []string                { return []string{"20", "18"} }
func (fakeIndex) GetLatestVersion(string) (string, bool)      { return "20", true }
func (fakeIndex) ValidatePackages([]string) error             { return nil }

func writeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name":"demo-api","engines":{"node":"20.0.0"},"dependencies":{"express":"^4.18.0"}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"),
		[]byte("const express = require('express'); const app = express(); app.listen(3000);"), 0o644))
	return dir
}

func TestRunSingleApplicationNodeRepo(t *testing.T) {
	dir := writeRepo(t)
	ac := analysis.New(dir, stack.DefaultRegistry(), llm.NewStaticClient(), llm.ModeStatic, nil)

	deps := Deps{
		ReadFile: func(path string) ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, path))
		},
		DependencyHints: func(app stack.Application) []string { return []string{"express"} },
		WolfiIndex:      fakeIndex{},
	}

	builds, err := Run(context.Background(), ac, deps)
	require.NoError(t, err)
	require.Len(t, builds, 1)
	assert.Equal(t, "node", builds[0].Metadata.Language)
	assert.Equal(t, "npm", builds[0].Metadata.BuildSystem)
	assert.Equal(t, "express", builds[0].Metadata.Framework)
	assert.EqualValues(t, []uint16{3000}, builds[0].Runtime.Ports)
}
