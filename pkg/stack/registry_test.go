package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultRegistryFreezesWithoutError(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)
	assert.Len(t, r.BuildSystems(), 12)
	assert.Len(t, r.Orchestrators(), 5)
	assert.NotEmpty(t, r.Languages())
	assert.NotEmpty(t, r.Frameworks())
}

func TestDefaultRegistrySingletonIsFrozen(t *testing.T) {
	r := DefaultRegistry()
	assert.Panics(t, func() { r.RegisterBuildSystem(goModBuildSystem{}) })
}

func TestDetectBuildSystemByManifestFilename(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	id, ok := r.DetectBuildSystem("repo/go.mod", []byte("module demo\n\ngo 1.22\n"))
	require.True(t, ok)
	assert.Equal(t, "go-modules", id.Name())

	id, ok = r.DetectBuildSystem("repo/Cargo.toml", []byte("[package]\nname=\"demo\"\n"))
	require.True(t, ok)
	assert.Equal(t, "cargo", id.Name())

	_, ok = r.DetectBuildSystem("repo/unknown.xyz", nil)
	assert.False(t, ok)
}

func TestDetectLanguagePicksBuildSystemsOnlyHint(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	lang, ok := r.DetectLanguage(BuildSys(BSGoMod), nil)
	require.True(t, ok)
	assert.Equal(t, "go", lang.Name())
}

func TestDetectStackComposesBuildSystemAndLanguage(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	ds, ok := r.DetectStack("package.json", []byte(`{"name":"demo"}`), nil)
	require.True(t, ok)
	assert.Equal(t, "npm", ds.BuildSystem.Name())
	assert.Equal(t, "node", ds.Language.Name())
}

func TestDetectFrameworkFromDepsPicksHighestConfidenceMatch(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	fw, ok := r.DetectFrameworkFromDeps(Lang(LangNode), []string{"express", "some-other-lib"}, nil)
	require.True(t, ok)
	assert.Equal(t, "express", fw.Name())

	_, ok = r.DetectFrameworkFromDeps(Lang(LangNode), []string{"left-pad"}, nil)
	assert.False(t, ok)
}

func TestDetectFrameworkFromDepsRespectsLanguageCompatibility(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	// "django" only matches the Python-compatible framework; asking for
	// a Node stack must not cross-match it.
	_, ok := r.DetectFrameworkFromDeps(Lang(LangNode), []string{"django"}, nil)
	assert.False(t, ok)
}

func TestDetectOrchestratorMatchesRootManifest(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	files := map[string][]byte{"turbo.json": []byte(`{}`)}
	o, content, ok := r.DetectOrchestrator([]string{"turbo.json", "package.json"}, func(name string) ([]byte, error) {
		return files[name], nil
	})
	require.True(t, ok)
	assert.Equal(t, "turborepo", o.ID().Name())
	assert.Equal(t, []byte(`{}`), content)
}

func TestDetectOrchestratorRequiresContentHintWhenDeclared(t *testing.T) {
	r, err := NewDefaultRegistry()
	require.NoError(t, err)

	_, _, ok := r.DetectOrchestrator([]string{"Cargo.toml"}, func(string) ([]byte, error) {
		return []byte("[package]\nname=\"demo\"\n"), nil
	})
	assert.False(t, ok, "a Cargo.toml with no [workspace] table must not match cargo-workspace")

	o, _, ok := r.DetectOrchestrator([]string{"Cargo.toml"}, func(string) ([]byte, error) {
		return []byte("[workspace]\nmembers = [\"a\", \"b\"]\n"), nil
	})
	require.True(t, ok)
	assert.Equal(t, "cargo-workspace", o.ID().Name())
}

func TestFreezeRejectsFrameworkWithUnregisteredLanguage(t *testing.T) {
	r := NewRegistry()
	registerBuiltinBuildSystems(r)
	r.RegisterFramework(expressFramework{}) // needs LangNode, never registered
	err := r.Freeze()
	assert.Error(t, err)
}

func TestFreezePanicsOnRegistrationAfterFreeze(t *testing.T) {
	r := NewRegistry()
	registerBuiltinLanguages(r)
	registerBuiltinBuildSystems(r)
	registerBuiltinFrameworks(r)
	require.NoError(t, r.Freeze())
	assert.Panics(t, func() { r.RegisterLanguage(goLanguage{}) })
}
