package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameworkDetectMatrix(t *testing.T) {
	cases := []struct {
		fw   Framework
		deps []string
		want bool
	}{
		{expressFramework{}, []string{"express", "lodash"}, true},
		{expressFramework{}, []string{"fastify"}, false},
		{fastifyFramework{}, []string{"fastify"}, true},
		{nestjsFramework{}, []string{"@nestjs/core", "rxjs"}, true},
		{springBootFramework{}, []string{"org.springframework.boot:spring-boot-starter-web"}, true},
		{quarkusFramework{}, []string{"io.quarkus:quarkus-resteasy"}, true},
		{djangoFramework{}, []string{"django"}, true},
		{flaskFramework{}, []string{"flask"}, true},
		{fastapiFramework{}, []string{"fastapi"}, true},
		{railsFramework{}, []string{"rails"}, true},
		{laravelFramework{}, []string{"laravel/framework"}, true},
		{symfonyFramework{}, []string{"symfony/framework-bundle"}, true},
		{actixFramework{}, []string{"actix-web"}, true},
		{axumFramework{}, []string{"axum"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.fw.ID().Name(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.fw.Detect(tc.deps, nil))
		})
	}
}

func TestWordpressFrameworkDetectsByFileOrDependency(t *testing.T) {
	wp := wordpressFramework{}
	assert.True(t, wp.Detect(nil, []string{"wp-config.php"}))
	assert.True(t, wp.Detect([]string{"johnpbloch/wordpress"}, nil))
	assert.False(t, wp.Detect([]string{"laravel/framework"}, []string{"index.php"}))
}

func TestAspnetcoreFrameworkDetectsByFileContent(t *testing.T) {
	fw := aspnetcoreFramework{}
	assert.True(t, fw.Detect(nil, []string{"uses Microsoft.AspNetCore.Mvc"}))
	assert.False(t, fw.Detect(nil, []string{"uses something else"}))
}

func TestActuatorHealthEndpointRequiresActuatorDependency(t *testing.T) {
	endpoint, ok := ActuatorHealthEndpoint([]string{"org.springframework.boot:spring-boot-starter-actuator"})
	assert.True(t, ok)
	assert.Equal(t, "/actuator/health", endpoint)

	_, ok = ActuatorHealthEndpoint([]string{"org.springframework.boot:spring-boot-starter-web"})
	assert.False(t, ok)
}

func TestExpressEntrypointCommandPrefersDistOverIndex(t *testing.T) {
	fw := expressFramework{}
	cmd, ok := fw.EntrypointCommand([]string{"dist/index.js", "index.js"}, 3000)
	assert.True(t, ok)
	assert.Equal(t, "node dist/index.js", cmd)

	_, ok = fw.EntrypointCommand([]string{"README.md"}, 3000)
	assert.False(t, ok)
}

func TestRegisterBuiltinFrameworksRegistersFifteen(t *testing.T) {
	r := NewRegistry()
	registerBuiltinFrameworks(r)
	assert.Len(t, r.Frameworks(), 15)
}
