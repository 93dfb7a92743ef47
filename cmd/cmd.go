// Package cmd provides the diag-tap command line
package cmd

import (
	"github.com/relex/gotils/config"
)

func init() {
	config.AddParentCmdWithArgs("", "diag-tap replays recorded host diagnostics through a configurable capture tap", &rootCmd, rootCmd.preRun, rootCmd.postRun)
	config.AddCmdWithArgs("replay ...", "Replay recorded diagnostic events through the configured tap", &replayCmd, replayCmd.run)
}

// Execute parses the command line and runs the specified command
func Execute() {
	// trigger init

	config.Execute()
}
