package cmd

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForMapsKnownNames(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFor("debug"))
	assert.Equal(t, slog.LevelWarn, levelFor("warn"))
	assert.Equal(t, slog.LevelError, levelFor("error"))
	assert.Equal(t, slog.LevelInfo, levelFor("info"))
	assert.Equal(t, slog.LevelInfo, levelFor("unrecognized"))
}

func TestSetVersionInfoFormatsRootCommandVersion(t *testing.T) {
	v := SetVersionInfo("1.2.3", "abcdef", "2026-01-01", "example/repo")
	assert.Contains(t, v, "1.2.3")
	assert.Contains(t, v, "abcdef")
	assert.Contains(t, v, "example/repo")
	assert.Equal(t, v, RootCmd().Version)
}
