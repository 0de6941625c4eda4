package stack

import "strings"

func dependsOn(dependencies []string, name string) bool {
	for _, d := range dependencies {
		if strings.EqualFold(d, name) || strings.Contains(strings.ToLower(d), strings.ToLower(name)) {
			return true
		}
	}
	return false
}

func anyFileContains(files []string, needle string) bool {
	for _, f := range files {
		if strings.Contains(f, needle) {
			return true
		}
	}
	return false
}

// expressFramework detects Express.js by its npm dependency.
type expressFramework struct{}

func (expressFramework) ID() FrameworkId                       { return Fw(FwExpress) }
func (expressFramework) CompatibleLanguages() []LanguageId     { return []LanguageId{Lang(LangNode)} }
func (expressFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSNpm), BuildSys(BSYarn), BuildSys(BSPnpm)}
}
func (expressFramework) Detect(deps []string, _ []string) bool { return dependsOn(deps, "express") }
func (expressFramework) DefaultPorts() []uint16                { return []uint16{3000} }
func (expressFramework) HealthEndpoints(files []string) []string {
	if anyFileContains(files, "/health") {
		return []string{"/health"}
	}
	return nil
}
func (expressFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"NODE_ENV": "production"} }
func (expressFramework) EntrypointCommand(files []string, _ uint16) (string, bool) {
	for _, candidate := range []string{"dist/index.js", "dist/server.js", "index.js", "server.js"} {
		if anyFileContains(files, candidate) {
			return "node " + candidate, true
		}
	}
	return "", false
}
func (expressFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{NpmPackage: "express"}}
}

// fastifyFramework detects Fastify.
type fastifyFramework struct{}

func (fastifyFramework) ID() FrameworkId                   { return Fw(FwFastify) }
func (fastifyFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangNode)} }
func (fastifyFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSNpm), BuildSys(BSYarn), BuildSys(BSPnpm)}
}
func (fastifyFramework) Detect(deps []string, _ []string) bool        { return dependsOn(deps, "fastify") }
func (fastifyFramework) DefaultPorts() []uint16                       { return []uint16{3000} }
func (fastifyFramework) HealthEndpoints([]string) []string            { return []string{"/health"} }
func (fastifyFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"NODE_ENV": "production"} }
func (fastifyFramework) EntrypointCommand(files []string, _ uint16) (string, bool) {
	if anyFileContains(files, "dist/server.js") {
		return "node dist/server.js", true
	}
	return "", false
}
func (fastifyFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{NpmPackage: "fastify"}}
}

// nestjsFramework detects NestJS.
type nestjsFramework struct{}

func (nestjsFramework) ID() FrameworkId                   { return Fw(FwNestJS) }
func (nestjsFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangNode)} }
func (nestjsFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSNpm), BuildSys(BSYarn), BuildSys(BSPnpm)}
}
func (nestjsFramework) Detect(deps []string, _ []string) bool { return dependsOn(deps, "@nestjs/core") }
func (nestjsFramework) DefaultPorts() []uint16                { return []uint16{3000} }
func (nestjsFramework) HealthEndpoints([]string) []string     { return []string{"/health"} }
func (nestjsFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"NODE_ENV": "production"} }
func (nestjsFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "node dist/main.js", true
}
func (nestjsFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{NpmPackage: "@nestjs/core"}}
}

// springBootFramework: health endpoint depends on the actuator dependency
// being present (SPEC_FULL §4.6.3, §8.4 scenario 3).
type springBootFramework struct{}

func (springBootFramework) ID() FrameworkId                   { return Fw(FwSpringBoot) }
func (springBootFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangJava)} }
func (springBootFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSMaven), BuildSys(BSGradle)}
}
func (springBootFramework) Detect(deps []string, _ []string) bool {
	return dependsOn(deps, "spring-boot-starter")
}
func (springBootFramework) DefaultPorts() []uint16 { return []uint16{8080} }
func (springBootFramework) HealthEndpoints(files []string) []string {
	return nil // caller supplies actuator presence via deps, not files; see RuntimeConfig phase.
}
func (springBootFramework) RuntimeEnvVars(string, uint16) map[string]string { return nil }
func (springBootFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "", false // classpath form assembled by the Java runtime, not the framework.
}
func (springBootFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{MavenGroupArtifact: "org.springframework.boot:spring-boot-starter"}}
}

// ActuatorHealthEndpoint is consulted directly by the RuntimeConfig phase
// (not through the Framework interface, since it depends on a second
// dependency, not files) per SPEC_FULL §4.7.
func ActuatorHealthEndpoint(dependencies []string) (string, bool) {
	if dependsOn(dependencies, "spring-boot-starter-actuator") {
		return "/actuator/health", true
	}
	return "", false
}

type quarkusFramework struct{}

func (quarkusFramework) ID() FrameworkId                   { return Fw(FwQuarkus) }
func (quarkusFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangJava)} }
func (quarkusFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSMaven), BuildSys(BSGradle)}
}
func (quarkusFramework) Detect(deps []string, _ []string) bool       { return dependsOn(deps, "quarkus") }
func (quarkusFramework) DefaultPorts() []uint16                      { return []uint16{8080} }
func (quarkusFramework) HealthEndpoints([]string) []string           { return []string{"/q/health"} }
func (quarkusFramework) RuntimeEnvVars(string, uint16) map[string]string { return nil }
func (quarkusFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "java -jar quarkus-run.jar", true
}
func (quarkusFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{MavenGroupArtifact: "io.quarkus:quarkus-core"}}
}

type djangoFramework struct{}

func (djangoFramework) ID() FrameworkId                   { return Fw(FwDjango) }
func (djangoFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangPython)} }
func (djangoFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSPip), BuildSys(BSPoetry)}
}
func (djangoFramework) Detect(deps []string, _ []string) bool       { return dependsOn(deps, "django") }
func (djangoFramework) DefaultPorts() []uint16                      { return []uint16{8000} }
func (djangoFramework) HealthEndpoints([]string) []string           { return nil }
func (djangoFramework) RuntimeEnvVars(string, uint16) map[string]string {
	return map[string]string{"DJANGO_SETTINGS_MODULE": "settings", "PYTHONUNBUFFERED": "1"}
}
func (djangoFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "gunicorn wsgi:application --bind 0.0.0.0:8000", true
}
func (djangoFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{PypiPackage: "django"}}
}

type flaskFramework struct{}

func (flaskFramework) ID() FrameworkId                   { return Fw(FwFlask) }
func (flaskFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangPython)} }
func (flaskFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSPip), BuildSys(BSPoetry)}
}
func (flaskFramework) Detect(deps []string, _ []string) bool          { return dependsOn(deps, "flask") }
func (flaskFramework) DefaultPorts() []uint16                         { return []uint16{5000} }
func (flaskFramework) HealthEndpoints([]string) []string              { return nil }
func (flaskFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"PYTHONUNBUFFERED": "1"} }
func (flaskFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "gunicorn app:app --bind 0.0.0.0:5000", true
}
func (flaskFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{PypiPackage: "flask"}}
}

type fastapiFramework struct{}

func (fastapiFramework) ID() FrameworkId                   { return Fw(FwFastAPI) }
func (fastapiFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangPython)} }
func (fastapiFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSPip), BuildSys(BSPoetry)}
}
func (fastapiFramework) Detect(deps []string, _ []string) bool { return dependsOn(deps, "fastapi") }
func (fastapiFramework) DefaultPorts() []uint16                { return []uint16{8000} }
func (fastapiFramework) HealthEndpoints([]string) []string     { return []string{"/health"} }
func (fastapiFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"PYTHONUNBUFFERED": "1"} }
func (fastapiFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "uvicorn main:app --host 0.0.0.0 --port 8000", true
}
func (fastapiFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{PypiPackage: "fastapi"}}
}

type railsFramework struct{}

func (railsFramework) ID() FrameworkId                   { return Fw(FwRails) }
func (railsFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangRuby)} }
func (railsFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSBundler)}
}
func (railsFramework) Detect(deps []string, _ []string) bool          { return dependsOn(deps, "rails") }
func (railsFramework) DefaultPorts() []uint16                         { return []uint16{3000} }
func (railsFramework) HealthEndpoints([]string) []string              { return []string{"/up"} }
func (railsFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"RAILS_ENV": "production"} }
func (railsFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "bundle exec rails server -b 0.0.0.0", true
}
func (railsFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `gem\s+["']rails["']`}}
}

// laravelFramework / symfonyFramework / wordpressFramework drive the PHP
// conditional-extension rule (SPEC_FULL §4.7) via RequiredExtraExtensions.
type laravelFramework struct{}

func (laravelFramework) ID() FrameworkId                   { return Fw(FwLaravel) }
func (laravelFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangPHP)} }
func (laravelFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSComposer)}
}
func (laravelFramework) Detect(deps []string, _ []string) bool { return dependsOn(deps, "laravel/framework") }
func (laravelFramework) DefaultPorts() []uint16                { return []uint16{8000} }
func (laravelFramework) HealthEndpoints([]string) []string     { return []string{"/up"} }
func (laravelFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"APP_ENV": "production"} }
func (laravelFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "php artisan serve --host=0.0.0.0 --port=8000", true
}
func (laravelFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `"laravel/framework"`}}
}

type symfonyFramework struct{}

func (symfonyFramework) ID() FrameworkId                   { return Fw(FwSymfony) }
func (symfonyFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangPHP)} }
func (symfonyFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSComposer)}
}
func (symfonyFramework) Detect(deps []string, _ []string) bool { return dependsOn(deps, "symfony/framework-bundle") }
func (symfonyFramework) DefaultPorts() []uint16                { return []uint16{8000} }
func (symfonyFramework) HealthEndpoints([]string) []string     { return nil }
func (symfonyFramework) RuntimeEnvVars(string, uint16) map[string]string { return map[string]string{"APP_ENV": "prod"} }
func (symfonyFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "php -S 0.0.0.0:8000 -t public", true
}
func (symfonyFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `"symfony/framework-bundle"`}}
}

type wordpressFramework struct{}

func (wordpressFramework) ID() FrameworkId                   { return Fw(FwWordPress) }
func (wordpressFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangPHP)} }
func (wordpressFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSComposer)}
}
func (wordpressFramework) Detect(deps []string, files []string) bool {
	return dependsOn(deps, "johnpbloch/wordpress") || anyFileContains(files, "wp-config.php")
}
func (wordpressFramework) DefaultPorts() []uint16                      { return []uint16{8080} }
func (wordpressFramework) HealthEndpoints([]string) []string           { return nil }
func (wordpressFramework) RuntimeEnvVars(string, uint16) map[string]string { return nil }
func (wordpressFramework) EntrypointCommand([]string, uint16) (string, bool) {
	return "php -S 0.0.0.0:8080", true
}
func (wordpressFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `wp-config\.php`}}
}

type actixFramework struct{}

func (actixFramework) ID() FrameworkId                   { return Fw(FwActix) }
func (actixFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangRust)} }
func (actixFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSCargo)}
}
func (actixFramework) Detect(deps []string, _ []string) bool          { return dependsOn(deps, "actix-web") }
func (actixFramework) DefaultPorts() []uint16                         { return []uint16{8080} }
func (actixFramework) HealthEndpoints([]string) []string              { return nil }
func (actixFramework) RuntimeEnvVars(string, uint16) map[string]string { return nil }
func (actixFramework) EntrypointCommand([]string, uint16) (string, bool) { return "", false }
func (actixFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `actix-web\s*=`}}
}

type axumFramework struct{}

func (axumFramework) ID() FrameworkId                   { return Fw(FwAxum) }
func (axumFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangRust)} }
func (axumFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSCargo)}
}
func (axumFramework) Detect(deps []string, _ []string) bool          { return dependsOn(deps, "axum") }
func (axumFramework) DefaultPorts() []uint16                         { return []uint16{8080} }
func (axumFramework) HealthEndpoints([]string) []string              { return nil }
func (axumFramework) RuntimeEnvVars(string, uint16) map[string]string { return nil }
func (axumFramework) EntrypointCommand([]string, uint16) (string, bool) { return "", false }
func (axumFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `axum\s*=`}}
}

type aspnetcoreFramework struct{}

func (aspnetcoreFramework) ID() FrameworkId                   { return Fw(FwAspNetCore) }
func (aspnetcoreFramework) CompatibleLanguages() []LanguageId { return []LanguageId{Lang(LangDotnet)} }
func (aspnetcoreFramework) CompatibleBuildSystems() []BuildSystemId {
	return []BuildSystemId{BuildSys(BSDotnet)}
}
func (aspnetcoreFramework) Detect(_ []string, files []string) bool {
	return anyFileContains(files, "Microsoft.AspNetCore")
}
func (aspnetcoreFramework) DefaultPorts() []uint16                      { return []uint16{8080} }
func (aspnetcoreFramework) HealthEndpoints([]string) []string           { return []string{"/health"} }
func (aspnetcoreFramework) RuntimeEnvVars(string, uint16) map[string]string {
	return map[string]string{"ASPNETCORE_URLS": "http://0.0.0.0:8080"}
}
func (aspnetcoreFramework) EntrypointCommand([]string, uint16) (string, bool) { return "", false }
func (aspnetcoreFramework) DependencyPatterns() []DependencyPattern {
	return []DependencyPattern{{Regex: `Microsoft\.AspNetCore`}}
}

func registerBuiltinFrameworks(r *StackRegistry) {
	r.RegisterFramework(expressFramework{})
	r.RegisterFramework(fastifyFramework{})
	r.RegisterFramework(nestjsFramework{})
	r.RegisterFramework(springBootFramework{})
	r.RegisterFramework(quarkusFramework{})
	r.RegisterFramework(djangoFramework{})
	r.RegisterFramework(flaskFramework{})
	r.RegisterFramework(fastapiFramework{})
	r.RegisterFramework(railsFramework{})
	r.RegisterFramework(laravelFramework{})
	r.RegisterFramework(symfonyFramework{})
	r.RegisterFramework(wordpressFramework{})
	r.RegisterFramework(actixFramework{})
	r.RegisterFramework(axumFramework{})
	r.RegisterFramework(aspnetcoreFramework{})
}
