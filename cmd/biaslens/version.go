package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("biaslens %s\n", version.GitRelease)
		fmt.Printf("  Date: %s\n", version.BuildDate)
	},
}
