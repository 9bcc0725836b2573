// Package cmd provides CLI commands for the inventory tool.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionInfo is the structured payload for version --json.
type versionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Show the tool version, build time, git commit, Go version, and platform.",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			printEnvelope(envelope{Success: true, Data: versionInfo{
				Version:   Version,
				BuildTime: BuildTime,
				GitCommit: GitCommit,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}})
			return
		}
		fmt.Println(GetVersionInfo())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
