package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/relex/gotils/logger"

	"github.com/relex/diag-tap/cmd"
)

var version string

func main() {
	logger.Infof("version: %s", version)

	registerInfoMetric()

	cmd.Execute()
}

func registerInfoMetric() {
	opts := prometheus.GaugeOpts{}
	opts.Name = "diag_tap_info"
	opts.Help = "diag-tap application information"
	gauge := prometheus.NewGaugeVec(opts, []string{"version"})
	gauge.WithLabelValues(version).Set(1)
	prometheus.MustRegister(gauge)
}
