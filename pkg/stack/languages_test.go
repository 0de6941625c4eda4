package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersionPerLanguage(t *testing.T) {
	cases := []struct {
		name     string
		lang     LanguageDefinition
		manifest string
		want     string
		wantOK   bool
	}{
		{"go", goLanguage{}, "module demo\n\ngo 1.22.3\n", "1.22.3", true},
		{"go missing", goLanguage{}, "module demo\n", "", false},
		{"node", nodeLanguage{}, `{"engines": {"node": ">=20.0.0"}}`, ">=20.0.0", true},
		{"python", pythonLanguage{}, `requires-python = ">=3.12"`, ">=3.12", true},
		{"python missing", pythonLanguage{}, "numpy==1.2.3\n", "", false},
		{"java pom", javaLanguage{}, "<project><java.version>21</java.version></project>", "21", true},
		{"java gradle", javaLanguage{}, "sourceCompatibility = '17'", "17", true},
		{"rust", rustLanguage{}, `[package]
rust-version = "1.75"`, "1.75", true},
		{"php", phpLanguage{}, `{"require": {"php": "^8.2"}}`, "^8.2", true},
		{"ruby", rubyLanguage{}, `ruby "3.3.0"`, "3.3.0", true},
		{"dotnet", dotnetLanguage{}, `<Project><TargetFramework>net8.0</TargetFramework></Project>`, "8.0", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.lang.ExtractVersion([]byte(tc.manifest))
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestDefaultRuntimePerLanguage(t *testing.T) {
	assert.Equal(t, RuntimeNative, goLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimeNode, nodeLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimePython, pythonLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimeJVM, javaLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimeNative, rustLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimePHP, phpLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimeRuby, rubyLanguage{}.DefaultRuntime())
	assert.Equal(t, RuntimeDotnet, dotnetLanguage{}.DefaultRuntime())
}
