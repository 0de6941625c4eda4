package cmd

import (
	"log/slog"
	"os"

	"github.com/containifyci/universal-build/pkg/appconfig"
	"github.com/containifyci/universal-build/pkg/logger"

	"github.com/spf13/cobra"
)

const skipRootHooks = "skipRootHooks"

// VersionInfo carries the values linked in at build time (SPEC_FULL
// §10.3's observable version contract, same JSON shape the teacher's
// `version` command prints).
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Repo    string `json:"repo"`
}

type rootCmdArgs struct {
	version VersionInfo
	cfg     appconfig.Config
}

var RootArgs = &rootCmdArgs{}

var rootCmd = &cobra.Command{
	Use:   "universal-build",
	Short: "Analyze a repository and drive BuildKit from a UniversalBuild recipe",
	Long: `universal-build detects a repository's language, build system, framework
and runtime, synthesizes a declarative UniversalBuild recipe grounded in a
single Wolfi base image, and optionally drives a BuildKit daemon to
materialize that recipe into an OCI image with SBOM and provenance
attestations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Annotations[skipRootHooks] == "true" {
			return nil
		}
		RootArgs.cfg = appconfig.Load()

		logOpts := slog.HandlerOptions{Level: levelFor(RootArgs.cfg.LogLevel)}
		var handler slog.Handler
		if RootArgs.cfg.LogFormat == appconfig.LogFormatJSON {
			handler = slog.NewJSONHandler(os.Stdout, &logOpts)
		} else {
			handler = logger.NewPrettyLog("plain", logOpts)
		}
		slog.SetDefault(slog.New(handler))
		slog.Info("Version", "version", RootArgs.version)
		return nil
	},
}

func levelFor(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo records the linker-injected version values and
// returns the formatted string cobra reports for `--version`.
func SetVersionInfo(version, commit, date, repo string) string {
	rootCmd.Version = version + " (built " + date + " from " + commit + " of " + repo + ")"
	RootArgs.version = VersionInfo{Version: version, Commit: commit, Date: date, Repo: repo}
	return rootCmd.Version
}

func RootCmd() *cobra.Command {
	return rootCmd
}
