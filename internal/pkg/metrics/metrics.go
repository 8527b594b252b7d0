// Package metrics exposes prometheus instrumentation for the background
// integrations, mirroring the run counters the dispatchers watch.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	esmoPollRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esmo_poll_runs_total",
		Help: "Total ESMO portal poll runs.",
	})
	esmoPollErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esmo_poll_errors_total",
		Help: "Total failed ESMO portal poll runs.",
	})
	esmoExamsFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esmo_exams_fetched_total",
		Help: "Total exam rows fetched from the ESMO portal.",
	})
	esmoExamsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esmo_exams_saved_total",
		Help: "Total new medical exams saved.",
	})
	esmoExamsUnmatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "esmo_exams_unmatched_total",
		Help: "Total exams skipped because no employee could be resolved.",
	})
	devicesOnline = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "devices_online",
		Help: "Devices that answered the last reachability check.",
	})
	eventsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_ingested_total",
		Help: "Ingested events by outcome.",
	}, []string{"status"})
)

func Register() {
	prometheus.MustRegister(
		esmoPollRuns, esmoPollErrors, esmoExamsFetched, esmoExamsSaved,
		esmoExamsUnmatched, devicesOnline, eventsIngested,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordEsmoPoll(fetched, saved, unmatched int, err error) {
	esmoPollRuns.Inc()
	esmoExamsFetched.Add(float64(fetched))
	esmoExamsSaved.Add(float64(saved))
	esmoExamsUnmatched.Add(float64(unmatched))
	if err != nil {
		esmoPollErrors.Inc()
	}
}

func SetDevicesOnline(n int) {
	devicesOnline.Set(float64(n))
}

func IncEventIngested(status string) {
	eventsIngested.WithLabelValues(status).Inc()
}
