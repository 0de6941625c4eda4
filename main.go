package main

import (
	"fmt"
	"os"

	"github.com/containifyci/universal-build/cmd"
	"github.com/containifyci/universal-build/pkg/errkind"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	repo    = "github.com/containifyci/universal-build"
)

func main() {
	cmd.SetVersionInfo(version, commit, date, repo)
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "universal-build: %v\n", err)
		os.Exit(errkind.ExitCode(err))
	}
}
