package stack

import (
	"fmt"
	"strings"
)

// cargoBuildSystem grounds Rust's BuildRecipe phase: always installs `rust`
// plus `build-base` (linker toolchain), builds in release mode, caches
// ~/.cargo and the workspace target/ directory.
type cargoBuildSystem struct{}

func (cargoBuildSystem) ID() BuildSystemId { return BuildSys(BSCargo) }
func (cargoBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "Cargo.toml"}}
}
func (cargoBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangRust)} }
func (cargoBuildSystem) BuildTemplate(idx WolfiIndex, _ []byte) (BuildTemplate, error) {
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, "rust", "build-base"),
		RuntimePackages: resolvePackages(idx, "ca-certificates"),
		Commands:        []string{"cargo build --release"},
		CachePaths:      []string{"/root/.cargo", "target"},
	}, nil
}

// mavenBuildSystem grounds Java+Maven, generalizing the teacher's
// pkg/builder/common/types.go GetMavenDefaults (same base conventions,
// retargeted from a container image tag to a Wolfi package list).
type mavenBuildSystem struct{}

func (mavenBuildSystem) ID() BuildSystemId { return BuildSys(BSMaven) }
func (mavenBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "pom.xml"}}
}
func (mavenBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangJava)} }
func (mavenBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	jdk := javaRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, jdk, "maven"),
		RuntimePackages: resolvePackages(idx, jreFromJdkStem(jdk)),
		Commands:        []string{"mvn clean package -DskipTests dependency:copy-dependencies"},
		CachePaths:      []string{"/root/.m2"},
	}, nil
}

// gradleBuildSystem grounds Java+Gradle.
type gradleBuildSystem struct{}

func (gradleBuildSystem) ID() BuildSystemId { return BuildSys(BSGradle) }
func (gradleBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "build.gradle"}, {Filename: "build.gradle.kts"}}
}
func (gradleBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangJava)} }
func (gradleBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	jdk := javaRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, jdk, "gradle"),
		RuntimePackages: resolvePackages(idx, jreFromJdkStem(jdk)),
		Commands:        []string{"gradle build -x test"},
		CachePaths:      []string{"/root/.gradle"},
	}, nil
}

// npmBuildSystem / yarnBuildSystem / pnpmBuildSystem share node version
// resolution but differ in install/build command and cache path, per
// SPEC_FULL §4.6.2.
type npmBuildSystem struct{}

func (npmBuildSystem) ID() BuildSystemId { return BuildSys(BSNpm) }
func (npmBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "package.json"}}
}
func (npmBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangNode)} }
func (npmBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	node := nodeRuntimePackage(idx, manifest)
	cmds := []string{"npm install"}
	if strings.Contains(string(manifest), `"build"`) {
		cmds = append(cmds, "npm run build")
	}
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, node),
		RuntimePackages: resolvePackages(idx, node),
		Commands:        cmds,
		CachePaths:      []string{"~/.npm"},
	}, nil
}

type yarnBuildSystem struct{}

func (yarnBuildSystem) ID() BuildSystemId { return BuildSys(BSYarn) }
func (yarnBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "yarn.lock"}}
}
func (yarnBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangNode)} }
func (yarnBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	node := nodeRuntimePackage(idx, manifest)
	cmds := []string{"yarn install --frozen-lockfile"}
	if strings.Contains(string(manifest), `"build"`) {
		cmds = append(cmds, "yarn build")
	}
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, node, "yarn"),
		RuntimePackages: resolvePackages(idx, node),
		Commands:        cmds,
		CachePaths:      []string{"~/.cache/yarn"},
	}, nil
}

type pnpmBuildSystem struct{}

func (pnpmBuildSystem) ID() BuildSystemId { return BuildSys(BSPnpm) }
func (pnpmBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "pnpm-lock.yaml"}}
}
func (pnpmBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangNode)} }
func (pnpmBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	node := nodeRuntimePackage(idx, manifest)
	cmds := []string{"pnpm install --frozen-lockfile"}
	if strings.Contains(string(manifest), `"build"`) {
		cmds = append(cmds, "pnpm build")
	}
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, node, "pnpm"),
		RuntimePackages: resolvePackages(idx, node),
		Commands:        cmds,
		CachePaths:      []string{"~/.local/share/pnpm/store"},
	}, nil
}

// pipBuildSystem / poetryBuildSystem cover Python.
type pipBuildSystem struct{}

func (pipBuildSystem) ID() BuildSystemId { return BuildSys(BSPip) }
func (pipBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "requirements.txt"}}
}
func (pipBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangPython)} }
func (pipBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	py := pythonRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, py, "build-base"),
		RuntimePackages: resolvePackages(idx, py),
		Commands:        []string{"pip install --no-cache-dir -r requirements.txt"},
		CachePaths:      []string{"/root/.cache/pip"},
	}, nil
}

type poetryBuildSystem struct{}

func (poetryBuildSystem) ID() BuildSystemId { return BuildSys(BSPoetry) }
func (poetryBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "pyproject.toml", ContentHint: "[tool.poetry]"}}
}
func (poetryBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangPython)} }
func (poetryBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	py := pythonRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, py, "build-base"),
		RuntimePackages: resolvePackages(idx, py),
		Commands:        []string{"poetry install --no-dev"},
		CachePaths:      []string{"/root/.cache/pypoetry"},
	}, nil
}

// composerBuildSystem covers PHP.
type composerBuildSystem struct{}

func (composerBuildSystem) ID() BuildSystemId { return BuildSys(BSComposer) }
func (composerBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "composer.json"}}
}
func (composerBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangPHP)} }
func (composerBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	php := phpRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, php, "composer"),
		RuntimePackages: resolvePackages(idx, php),
		Commands:        []string{"composer install --no-dev --optimize-autoloader"},
		CachePaths:      []string{"/root/.composer/cache"},
	}, nil
}

// bundlerBuildSystem covers Ruby.
type bundlerBuildSystem struct{}

func (bundlerBuildSystem) ID() BuildSystemId { return BuildSys(BSBundler) }
func (bundlerBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "Gemfile"}}
}
func (bundlerBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangRuby)} }
func (bundlerBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	ruby := rubyRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, ruby, "build-base"),
		RuntimePackages: resolvePackages(idx, ruby),
		Commands:        []string{"bundle install --deployment"},
		CachePaths:      []string{"/usr/local/bundle"},
	}, nil
}

// dotnetBuildSystem covers .NET.
type dotnetBuildSystem struct{}

func (dotnetBuildSystem) ID() BuildSystemId { return BuildSys(BSDotnet) }
func (dotnetBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "*.csproj"}}
}
func (dotnetBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangDotnet)} }
func (dotnetBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	sdk := dotnetRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, sdk),
		RuntimePackages: resolvePackages(idx, sdk),
		Commands:        []string{"dotnet publish -c Release -o /out"},
		CachePaths:      []string{"/root/.nuget/packages"},
	}, nil
}

// goModBuildSystem covers Go.
type goModBuildSystem struct{}

func (goModBuildSystem) ID() BuildSystemId { return BuildSys(BSGoMod) }
func (goModBuildSystem) ManifestPatterns() []ManifestPattern {
	return []ManifestPattern{{Filename: "go.mod"}}
}
func (goModBuildSystem) LanguageHints() []LanguageId { return []LanguageId{Lang(LangGo)} }
func (goModBuildSystem) BuildTemplate(idx WolfiIndex, manifest []byte) (BuildTemplate, error) {
	goPkg := goRuntimePackage(idx, manifest)
	return BuildTemplate{
		BuildPackages:   resolvePackages(idx, goPkg, "build-base"),
		RuntimePackages: resolvePackages(idx, "ca-certificates"),
		Commands:        []string{"go build -o /out/app ."},
		CachePaths:      []string{"/go/pkg", "/root/.cache/go-build"},
	}, nil
}

func registerBuiltinBuildSystems(r *StackRegistry) {
	r.RegisterBuildSystem(cargoBuildSystem{})
	r.RegisterBuildSystem(mavenBuildSystem{})
	r.RegisterBuildSystem(gradleBuildSystem{})
	r.RegisterBuildSystem(npmBuildSystem{})
	r.RegisterBuildSystem(yarnBuildSystem{})
	r.RegisterBuildSystem(pnpmBuildSystem{})
	r.RegisterBuildSystem(pipBuildSystem{})
	r.RegisterBuildSystem(poetryBuildSystem{})
	r.RegisterBuildSystem(composerBuildSystem{})
	r.RegisterBuildSystem(bundlerBuildSystem{})
	r.RegisterBuildSystem(dotnetBuildSystem{})
	r.RegisterBuildSystem(goModBuildSystem{})
}

// resolvePackages drops empty stems and returns the rest unchanged; it
// does not consult idx (Wolfi validation happens later, in the
// Assembler). Version-fallback (SPEC_FULL §4.2, §8.2
// version-fallback law) happens in the per-language *RuntimePackage helpers
// below, before resolvePackages is ever called with the stem.
func resolvePackages(idx WolfiIndex, stems ...string) []string {
	out := make([]string, 0, len(stems))
	for _, s := range stems {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func versionedOrLatest(idx WolfiIndex, stem, majorVersion string) string {
	if majorVersion != "" {
		candidate := fmt.Sprintf("%s-%s", stem, majorVersion)
		if idx == nil || idx.HasPackage(candidate) {
			return candidate
		}
	}
	if idx == nil {
		return stem
	}
	if latest, ok := idx.GetLatestVersion(stem); ok {
		return fmt.Sprintf("%s-%s", stem, latest)
	}
	return stem
}

func javaRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := javaLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "openjdk", majorOf(ver))
}

func jreFromJdkStem(jdkStem string) string {
	return strings.Replace(jdkStem, "openjdk", "openjdk", 1) + "-jre" // Wolfi ships e.g. openjdk-21 for both; jre variant kept explicit for clarity
}

func nodeRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := nodeLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "nodejs", majorOf(ver))
}

func pythonRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := pythonLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "python", minorOf(ver))
}

func phpRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := phpLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "php", minorOf(ver))
}

func rubyRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := rubyLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "ruby", minorOf(ver))
}

func dotnetRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := dotnetLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "dotnet-sdk", majorOf(ver))
}

func goRuntimePackage(idx WolfiIndex, manifest []byte) string {
	ver, _ := goLanguage{}.ExtractVersion(manifest)
	return versionedOrLatest(idx, "go", minorOf(ver))
}

// majorOf extracts the leading numeric component ("20" from "20.x" or
// "20.11.0"); minorOf keeps the first two dot-separated components
// ("3.12" from "3.12.1"). Wolfi version suffixes for most runtimes are
// major-only (nodejs-22) but some (python, php, ruby, go) are major.minor
// (python-3.12).
func majorOf(v string) string {
	v = strings.TrimPrefix(v, "^")
	v = strings.TrimPrefix(v, "~")
	v = strings.TrimPrefix(v, ">=")
	i := strings.IndexByte(v, '.')
	if i < 0 {
		return v
	}
	return v[:i]
}

func minorOf(v string) string {
	v = strings.TrimPrefix(v, "^")
	v = strings.TrimPrefix(v, "~")
	v = strings.TrimPrefix(v, ">=")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}
