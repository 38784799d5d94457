package capture

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	captureTicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "capture",
		Name:      "ticks_total",
		Help:      "Capture scheduler ticks by result.",
	}, []string{"result"})
	lastCaptureGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "portal",
		Subsystem: "capture",
		Name:      "last_capture_timestamp_seconds",
		Help:      "Unix timestamp of the most recent persisted screen capture.",
	})
)

func init() {
	prometheus.MustRegister(captureTicks, lastCaptureGauge)
}

func recordCapture(ok bool, ts time.Time) {
	if ok {
		captureTicks.WithLabelValues("ok").Inc()
		lastCaptureGauge.Set(float64(ts.Unix()))
		return
	}
	captureTicks.WithLabelValues("error").Inc()
}
