package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/containifyci/universal-build/pkg/buildkitclient"
	"github.com/containifyci/universal-build/pkg/errkind"
	"github.com/containifyci/universal-build/pkg/filesync"
	"github.com/containifyci/universal-build/pkg/llb"
	"github.com/containifyci/universal-build/pkg/progress"
	"github.com/containifyci/universal-build/pkg/universalbuild"

	"github.com/moby/buildkit/session"
	"github.com/spf13/cobra"
)

type buildCmdArgs struct {
	spec       string
	image      string
	service    string
	output     string
	buildkit   string
	entrypoint string
	platform   string
	quiet      bool
	verbose    bool
}

var buildArgs = &buildCmdArgs{}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build every service in a UniversalBuild spec through BuildKit",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&buildArgs.spec, "spec", "", "UniversalBuild JSON file (object or array)")
	_ = buildCmd.MarkFlagRequired("spec")
	buildCmd.Flags().StringVar(&buildArgs.image, "image", "", "image name or {app} template")
	_ = buildCmd.MarkFlagRequired("image")
	buildCmd.Flags().StringVar(&buildArgs.service, "service", "", "build only this named service")
	buildCmd.Flags().StringVar(&buildArgs.output, "output", "docker", "docker or oci,dest=<path>")
	buildCmd.Flags().StringVar(&buildArgs.buildkit, "buildkit", "", "BuildKit endpoint override")
	buildCmd.Flags().StringVar(&buildArgs.entrypoint, "entrypoint", "", "override the runtime command")
	// Accepted for CLI parity with SPEC_FULL §6.2; single-platform builds
	// use the daemon's native platform regardless of this flag until
	// per-platform LLB graph variants are implemented.
	buildCmd.Flags().StringVar(&buildArgs.platform, "platform", "", "single or comma-separated platforms")
	buildCmd.Flags().BoolVar(&buildArgs.quiet, "quiet", false, "suppress intra-build progress")
	buildCmd.Flags().BoolVar(&buildArgs.verbose, "verbose", false, "include vertex log detail")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(buildArgs.spec)
	if err != nil {
		return errkind.New(errkind.KindUsage, "read-spec", err)
	}
	builds, err := universalbuild.UnmarshalSet(data)
	if err != nil {
		return errkind.New(errkind.KindUsage, "parse-spec", err)
	}

	targets, err := selectTargets(builds, buildArgs.service, buildArgs.image)
	if err != nil {
		return err
	}

	export, err := parseExportSpec(buildArgs.output)
	if err != nil {
		return err
	}

	ep, err := buildkitclient.Discover(ctx, firstNonEmpty(buildArgs.buildkit, os.Getenv("BUILDKIT_HOST")))
	if err != nil {
		return errkind.New(errkind.KindConnection, "discover", err)
	}

	pool := buildkitclient.NewPool()
	defer pool.Close()
	c, err := pool.Get(ctx, ep)
	if err != nil {
		return errkind.New(errkind.KindConnection, "connect", err)
	}

	sink := progress.NewSink(os.Stderr, progress.Options{Quiet: buildArgs.quiet, Verbose: buildArgs.verbose})

	for _, ub := range targets {
		if buildArgs.entrypoint != "" {
			ub.Runtime.Command = strings.Fields(buildArgs.entrypoint)
		}

		graph, err := llb.Build(ctx, ub)
		if err != nil {
			return errkind.New(errkind.KindBuild, ub.Metadata.ProjectName, err)
		}

		exp := export
		exp.Tag = substituteApp(buildArgs.image, ub.Metadata.ProjectName)

		attachables := []session.Attachable{filesync.Provider(".", ub.Build.Context)}
		localDirs := map[string]string{llb.ContextLocalName: "."}

		if _, err := buildkitclient.Solve(ctx, c, graph, localDirs, exp, attachables, sink); err != nil {
			return errkind.New(errkind.KindBuild, ub.Metadata.ProjectName, err)
		}
	}
	return nil
}

// selectTargets applies the --service / {app}-placeholder rule of
// SPEC_FULL §6.2/§8.3: a single-service spec builds unless --service
// names a different service; a multi-service spec needs either an exact --service match or an
// {app} placeholder in image to build every service.
func selectTargets(builds []universalbuild.UniversalBuild, service, image string) ([]universalbuild.UniversalBuild, error) {
	if len(builds) == 1 {
		if service != "" && builds[0].Metadata.ProjectName != service {
			return nil, errkind.New(errkind.KindUsage, "select-service", fmt.Errorf("unknown service %q (available: %s)", service, builds[0].Metadata.ProjectName))
		}
		return builds, nil
	}

	if service != "" {
		for _, b := range builds {
			if b.Metadata.ProjectName == service {
				return []universalbuild.UniversalBuild{b}, nil
			}
		}
		return nil, errkind.New(errkind.KindUsage, "select-service", fmt.Errorf("unknown service %q (available: %s)", service, strings.Join(serviceNames(builds), ", ")))
	}

	if strings.Contains(image, "{app}") {
		return builds, nil
	}

	return nil, errkind.New(errkind.KindUsage, "select-service", fmt.Errorf("spec has %d services; pass --service or an {app} placeholder in --image (available: %s)", len(builds), strings.Join(serviceNames(builds), ", ")))
}

func serviceNames(builds []universalbuild.UniversalBuild) []string {
	names := make([]string, len(builds))
	for i, b := range builds {
		names[i] = b.Metadata.ProjectName
	}
	return names
}

func substituteApp(image, appName string) string {
	return strings.ReplaceAll(image, "{app}", appName)
}

// parseExportSpec parses --output's "docker" or "oci,dest=<path>" form.
func parseExportSpec(output string) (buildkitclient.ExportSpec, error) {
	parts := strings.Split(output, ",")
	spec := buildkitclient.ExportSpec{Type: parts[0]}
	if spec.Type != "docker" && spec.Type != "oci" {
		return spec, errkind.New(errkind.KindUsage, "parse-output", fmt.Errorf("unknown output type %q (want docker or oci)", spec.Type))
	}
	for _, kv := range parts[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if k == "dest" {
			spec.Dest = v
		}
	}
	if spec.Type == "oci" && spec.Dest == "" {
		return spec, errkind.New(errkind.KindUsage, "parse-output", fmt.Errorf("oci output requires dest=<path>"))
	}
	return spec, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
