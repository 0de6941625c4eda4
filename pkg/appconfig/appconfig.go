// Package appconfig reads the environment variables named in
// SPEC_FULL §6.3 once at process startup into a small struct, the
// separation the teacher's pkg/config/environment.go demonstrates
// between loading and consumption (scaled down from that package's
// full language/container/cache settings tree to the handful of knobs
// this system actually exposes). The separation is not complete:
// cmd/build.go and pkg/buildkitclient's Discover read BUILDKIT_HOST,
// and pkg/wolfi's default cache directory reads UBUILD_WOLFI_CACHE_DIR,
// straight from os.Getenv.
package appconfig

import (
	"os"
	"os/user"
	"path/filepath"
)

// DetectionMode selects how much the pipeline leans on the LLM
// fallback capability.
type DetectionMode string

const (
	ModeFull   DetectionMode = "full"
	ModeStatic DetectionMode = "static"
	ModeLLM    DetectionMode = "llm"
)

// LogFormat selects the slog handler the logger installs.
type LogFormat string

const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Config is the ambient environment-derived configuration, loaded
// once via Load.
type Config struct {
	DetectionMode DetectionMode
	BuildKitHost  string
	WolfiCacheDir string
	LogLevel      string
	LogFormat     LogFormat
}

// Load reads the environment variables of SPEC_FULL §6.3, applying
// the documented defaults for anything unset.
func Load() Config {
	cfg := Config{
		DetectionMode: DetectionMode(envOr("DETECTION_MODE", string(ModeFull))),
		BuildKitHost:  os.Getenv("BUILDKIT_HOST"),
		WolfiCacheDir: envOr("UBUILD_WOLFI_CACHE_DIR", defaultWolfiCacheDir()),
		LogLevel:      envOr("UBUILD_LOG_LEVEL", "info"),
		LogFormat:     LogFormat(envOr("UBUILD_LOG_FORMAT", string(LogFormatPretty))),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultWolfiCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		if u, uerr := user.Current(); uerr == nil {
			dir = filepath.Join(u.HomeDir, ".cache")
		} else {
			dir = os.TempDir()
		}
	}
	return filepath.Join(dir, "universal-build", "wolfi")
}
