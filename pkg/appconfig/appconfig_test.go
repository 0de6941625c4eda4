package appconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DETECTION_MODE", "BUILDKIT_HOST", "UBUILD_WOLFI_CACHE_DIR", "UBUILD_LOG_LEVEL", "UBUILD_LOG_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()
	assert.Equal(t, ModeFull, cfg.DetectionMode)
	assert.Equal(t, "", cfg.BuildKitHost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, LogFormatPretty, cfg.LogFormat)
	assert.Contains(t, cfg.WolfiCacheDir, "universal-build")
}

func TestLoadHonorsOverrides(t *testing.T) {
	t.Setenv("DETECTION_MODE", "static")
	t.Setenv("BUILDKIT_HOST", "tcp://127.0.0.1:1234")
	t.Setenv("UBUILD_WOLFI_CACHE_DIR", "/tmp/wolfi-cache")
	t.Setenv("UBUILD_LOG_LEVEL", "debug")
	t.Setenv("UBUILD_LOG_FORMAT", "json")

	cfg := Load()
	assert.Equal(t, ModeStatic, cfg.DetectionMode)
	assert.Equal(t, "tcp://127.0.0.1:1234", cfg.BuildKitHost)
	assert.Equal(t, "/tmp/wolfi-cache", cfg.WolfiCacheDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
}
