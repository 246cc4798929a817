package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the refit version",
		Long:  "Print the refit release and the Go toolchain it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			build, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("refit (unknown build)")
				return
			}

			release := build.Main.Version
			if release == "" {
				release = "devel"
			}

			cmd.Printf("refit %s (built with %s)\n", release, build.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
