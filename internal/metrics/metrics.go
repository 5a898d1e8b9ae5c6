// Package metrics exposes Prometheus counters and gauges for the
// infrastructure service: request volume by operation/status, job
// handler outcomes, and job queue depth.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts façade requests by operation and outcome.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ignition_requests_total",
		Help: "Total infrastructure API requests processed.",
	}, []string{"operation", "outcome"})

	// JobHandlerOutcomesTotal counts monitoring job handler results.
	JobHandlerOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ignition_job_handler_outcomes_total",
		Help: "Total task monitoring job handler invocations by outcome.",
	}, []string{"outcome"})

	// JobQueueDepth reports the number of jobs waiting to be processed.
	JobQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ignition_job_queue_depth",
		Help: "Current depth of the task monitoring job queue.",
	})

	// RequestQueueDepth reports the number of infrastructure requests
	// waiting to be processed when async_requests_enabled is set.
	RequestQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ignition_request_queue_depth",
		Help: "Current depth of the infrastructure request queue.",
	})
)

// Register adds all collectors to reg. Call once at startup.
func Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{RequestsTotal, JobHandlerOutcomesTotal, JobQueueDepth, RequestQueueDepth} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
