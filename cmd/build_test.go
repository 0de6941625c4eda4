package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containifyci/universal-build/pkg/errkind"
	"github.com/containifyci/universal-build/pkg/universalbuild"
)

func buildOf(names ...string) []universalbuild.UniversalBuild {
	out := make([]universalbuild.UniversalBuild, len(names))
	for i, n := range names {
		out[i] = universalbuild.New(n)
	}
	return out
}

func TestSelectTargetsSingleServiceAlwaysBuilds(t *testing.T) {
	builds := buildOf("api")
	targets, err := selectTargets(builds, "", "registry/{app}")
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}

func TestSelectTargetsSingleServiceRejectsMismatchedServiceFlag(t *testing.T) {
	builds := buildOf("api")
	_, err := selectTargets(builds, "worker", "registry/app")
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrUsage)
}

func TestSelectTargetsMultiServiceRequiresServiceOrPlaceholder(t *testing.T) {
	builds := buildOf("api", "worker")
	_, err := selectTargets(builds, "", "registry/app")
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrUsage)
}

func TestSelectTargetsMultiServiceByServiceFlag(t *testing.T) {
	builds := buildOf("api", "worker")
	targets, err := selectTargets(builds, "worker", "registry/app")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "worker", targets[0].Metadata.ProjectName)
}

func TestSelectTargetsMultiServiceByAppPlaceholder(t *testing.T) {
	builds := buildOf("api", "worker")
	targets, err := selectTargets(builds, "", "registry/{app}")
	require.NoError(t, err)
	assert.Len(t, targets, 2)
}

func TestSelectTargetsUnknownServiceNameFails(t *testing.T) {
	builds := buildOf("api", "worker")
	_, err := selectTargets(builds, "nonexistent", "registry/{app}")
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrUsage)
}

func TestSubstituteAppReplacesPlaceholder(t *testing.T) {
	assert.Equal(t, "registry/api:latest", substituteApp("registry/{app}:latest", "api"))
	assert.Equal(t, "registry/api", substituteApp("registry/api", "worker"))
}

func TestParseExportSpecDocker(t *testing.T) {
	spec, err := parseExportSpec("docker")
	require.NoError(t, err)
	assert.Equal(t, "docker", spec.Type)
	assert.Empty(t, spec.Dest)
}

func TestParseExportSpecOCIRequiresDest(t *testing.T) {
	_, err := parseExportSpec("oci")
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrUsage)

	spec, err := parseExportSpec("oci,dest=/tmp/out.tar")
	require.NoError(t, err)
	assert.Equal(t, "oci", spec.Type)
	assert.Equal(t, "/tmp/out.tar", spec.Dest)
}

func TestParseExportSpecRejectsUnknownType(t *testing.T) {
	_, err := parseExportSpec("tarball")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errkind.ErrUsage))
}

func TestFirstNonEmptyPicksFirstSetValue(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
