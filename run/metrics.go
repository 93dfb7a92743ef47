package run

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	replayedEventCounter prometheus.Counter
	replayedFileCounter  prometheus.Counter

	reloadSuccessCounter prometheus.Counter
	reloadFailureCounter prometheus.Counter
)

func init() {
	replayedOpts := prometheus.CounterOpts{}
	replayedOpts.Name = "diagtap_replayed_total"
	replayedOpts.Help = "Numbers of replayed items"
	replayedVec := prometheus.NewCounterVec(replayedOpts, []string{"kind"})
	prometheus.MustRegister(replayedVec)

	replayedEventCounter = replayedVec.WithLabelValues("event")
	replayedFileCounter = replayedVec.WithLabelValues("file")

	reloadOpts := prometheus.CounterOpts{}
	reloadOpts.Name = "diagtap_reloads_total"
	reloadOpts.Help = "Numbers of reloads"
	reloadVec := prometheus.NewCounterVec(reloadOpts, []string{"status"})
	prometheus.MustRegister(reloadVec)

	reloadSuccessCounter = reloadVec.WithLabelValues("success")
	reloadFailureCounter = reloadVec.WithLabelValues("failure")
}
