// Package cmd provides the command-line interface of sdramsim.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sdramsim",
		Short: "sdramsim simulates an SDR SDRAM controller.",
		Long: `sdramsim simulates an SDR SDRAM controller cycle by cycle ` +
			`against a device model that checks the protocol timing. ` +
			`Defaults can be set with SDRAMSIM_* environment variables or ` +
			`a .env file.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTimingCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute loads the environment, runs the command selected by the arguments
// and exits.
func Execute() {
	loadEnv()

	err := newRootCmd().Execute()
	if err != nil {
		log.Print(err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
