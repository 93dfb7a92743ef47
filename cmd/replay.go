package cmd

import (
	"context"
	"net/http"

	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/run"
	"github.com/relex/diag-tap/util"
)

type replayCommandState struct {
	Config      string `help:"Configuration file path"`
	Events      string `help:"Recorded event file path or wildcard pattern"`
	MetricsAddr string `help:"The listener address to expose Prometheus metrics and debug information, or empty to disable"`
	DryRun      bool   `name:"dry-run" help:"Verify configuration and event files without replaying anything"`
}

var replayCmd = replayCommandState{
	Config:      "config.yml",
	Events:      "events.yml",
	MetricsAddr: "",
	DryRun:      false,
}

func (cmd *replayCommandState) run(args []string) {
	var msrv *http.Server
	if cmd.MetricsAddr != "" {
		msrv = util.LaunchMetricsListener(cmd.MetricsAddr)
	}

	if err := run.Replay(cmd.Config, cmd.Events, "diagtap_", cmd.DryRun); err != nil {
		logger.Fatal(err)
	}

	if msrv != nil {
		if err := msrv.Shutdown(context.Background()); err != nil {
			logger.Errorf("error shutting down metrics listener: %v", err)
		}
	}
}
