package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/containifyci/universal-build/pkg/analysis"
	"github.com/containifyci/universal-build/pkg/appconfig"
	"github.com/containifyci/universal-build/pkg/errkind"
	"github.com/containifyci/universal-build/pkg/llm"
	"github.com/containifyci/universal-build/pkg/llm/claudecli"
	"github.com/containifyci/universal-build/pkg/progress"
	"github.com/containifyci/universal-build/pkg/stack"
	"github.com/containifyci/universal-build/pkg/taskrunner"
	"github.com/containifyci/universal-build/pkg/universalbuild"
	"github.com/containifyci/universal-build/pkg/wolfi"
	"github.com/containifyci/universal-build/pkg/workflow"

	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect <repo_path>",
	Short: "Classify a repository and print its UniversalBuild recipe(s) as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	repoPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	builds, err := detect(ctx, repoPath, RootArgs.cfg)
	if err != nil {
		return err
	}

	data, err := universalbuild.MarshalSet(builds)
	if err != nil {
		return errkind.New(errkind.KindBuild, "marshal", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// detect runs the full Workflow Phase Runner against repoPath and
// returns its assembled UniversalBuild set, wiring the production
// StackRegistry, Wolfi index and LLM client named in SPEC_FULL §2/§4.1.
func detect(ctx context.Context, repoPath string, cfg appconfig.Config) ([]universalbuild.UniversalBuild, error) {
	reg, err := stack.NewDefaultRegistry()
	if err != nil {
		return nil, errkind.New(errkind.KindDetectionFailed, "registry", err)
	}

	idx := wolfi.New(wolfi.WithCacheDir(cfg.WolfiCacheDir))
	if err := idx.Ensure(ctx); err != nil {
		return nil, errkind.New(errkind.KindConnection, "wolfi-index", err)
	}

	sink := progress.NewSink(os.Stderr, progress.Options{})
	ac := analysis.New(repoPath, reg, llmClient(), llm.DetectionMode(cfg.DetectionMode), sink)

	deps := workflow.Deps{
		ReadFile: os.ReadFile,
		WolfiIndex: idx,
		MaxFiles: 20000,
	}

	// The analysis pipeline runs as one cooperative task (SPEC_FULL §5)
	// on a taskrunner.Runner derived from ctx, so canceling ctx or
	// stopping the runner cancels the pipeline's context.
	runner := taskrunner.New(ctx)
	defer runner.Stop()

	if err := runner.Submit(taskrunner.Task{
		ID:   repoPath,
		Kind: taskrunner.KindAnalysisPipeline,
		Run: func(taskCtx context.Context) (any, error) {
			return workflow.Run(taskCtx, ac, deps)
		},
	}); err != nil {
		return nil, errkind.New(errkind.KindDetectionFailed, "schedule", err)
	}

	res := <-runner.Results()
	if res.Err != nil {
		return nil, errkind.New(errkind.KindDetectionFailed, "workflow", res.Err)
	}
	return res.Value.([]universalbuild.UniversalBuild), nil
}

// llmClient returns the one concrete LLMClient implementation named in
// SPEC_FULL §1 (grounded on the teacher's pkg/ai/claude), falling back
// to the no-op static client when the `claude` CLI isn't on PATH —
// DetectionMode still governs whether it's ever consulted.
func llmClient() llm.Client {
	if path, err := exec.LookPath("claude"); err == nil {
		return claudecli.New(path)
	}
	return llm.NewStaticClient()
}
