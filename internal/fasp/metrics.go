package fasp

import "github.com/prometheus/client_golang/prometheus"

var (
	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faspmgr",
			Subsystem: "mgmt",
			Name:      "frames_total",
			Help:      "Management frames received, by event type",
		},
		[]string{"type"},
	)

	transfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faspmgr",
			Subsystem: "agent",
			Name:      "transfers_total",
			Help:      "Finished transfers by result",
		},
		[]string{"result"},
	)

	transfersActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "faspmgr",
			Subsystem: "agent",
			Name:      "transfers_active",
			Help:      "Transfers with an open management channel",
		},
	)

	acceptDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "faspmgr",
			Subsystem: "agent",
			Name:      "accept_duration_seconds",
			Help:      "Time from spawn to an accepted management connection",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2, 3, 5},
		},
	)
)

func init() {
	prometheus.MustRegister(framesTotal, transfersTotal, transfersActive, acceptDuration)
}

// resultLabel maps a transfer outcome to a low-cardinality label value.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "done"
	case IsLaunch(err):
		return "launch_error"
	case IsAcceptTimeout(err):
		return "accept_timeout"
	case IsProtocol(err):
		return "protocol_error"
	case IsInternal(err):
		return "internal_error"
	case IsInterrupted(err):
		return "interrupted"
	}
	if _, ok := AsTransfer(err); ok {
		return "transfer_error"
	}
	return "listener_error"
}
