// Package cmd provides the command-line interface of sdsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "sdsim",
	Short: "sdsim drives a scripted SD card initialization through a model " +
		"of an SD host controller.",
	Long: `sdsim drives a scripted SD card initialization through a model ` +
		`of an SD host controller and its shared bus. Use "run" to simulate ` +
		`and "schedule" to print the script.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
