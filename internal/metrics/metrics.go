// Package metrics exports the outcome of an orchestration as Prometheus
// gauges in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AndreyAkinshin/simcheck/internal/record"
)

// Recorder collects metrics for one orchestration.
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.GaugeVec
	comparisons *prometheus.GaugeVec
	sims        *prometheus.GaugeVec
	models      *prometheus.GaugeVec
	success     prometheus.Gauge

	phaseDuration *prometheus.GaugeVec
	jobDuration   *prometheus.HistogramVec
	jobStatus     *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		runs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simcheck_runs",
			Help: "Number of runs by final status.",
		}, []string{"status"}),
		comparisons: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simcheck_comparisons",
			Help: "Number of file comparisons by final status.",
		}, []string{"status"}),
		sims: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simcheck_sims",
			Help: "Number of simulations by final status.",
		}, []string{"status"}),
		models: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simcheck_models",
			Help: "Number of models by final status.",
		}, []string{"status"}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simcheck_success",
			Help: "1 if every model passed, 0 otherwise.",
		}),
		phaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simcheck_phase_duration_seconds",
			Help: "Wall time of each orchestration phase.",
		}, []string{"phase"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "simcheck_job_duration_seconds",
			Help:    "Duration of build, run and post-step jobs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind", "status"}),
		jobStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simcheck_jobs_total",
			Help: "Number of finished jobs by kind and status.",
		}, []string{"kind", "status"}),
	}

	registry.MustRegister(r.runs)
	registry.MustRegister(r.comparisons)
	registry.MustRegister(r.sims)
	registry.MustRegister(r.models)
	registry.MustRegister(r.success)
	registry.MustRegister(r.phaseDuration)
	registry.MustRegister(r.jobDuration)
	registry.MustRegister(r.jobStatus)

	return r
}

// Registry returns the Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordJob records one finished job.
func (r *Recorder) RecordJob(kind, status string, d time.Duration) {
	r.jobStatus.WithLabelValues(kind, status).Inc()
	r.jobDuration.WithLabelValues(kind, status).Observe(d.Seconds())
}

// RecordPhase records a phase's wall time.
func (r *Recorder) RecordPhase(phase string, d time.Duration) {
	r.phaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

// RecordReport sets the final counters from a finalized report.
func (r *Recorder) RecordReport(report *record.PackageReport) {
	s := report.Summary()

	r.runs.WithLabelValues("success").Set(float64(s.Runs.Success))
	r.runs.WithLabelValues("comp_fail").Set(float64(s.Runs.CompFail))
	r.runs.WithLabelValues("run_fail").Set(float64(s.Runs.RunFail))
	r.runs.WithLabelValues("not_attempted").Set(float64(s.Runs.NotAttempted))

	r.comparisons.WithLabelValues("success").Set(float64(s.Comparisons.Success))
	r.comparisons.WithLabelValues("fail").Set(float64(s.Comparisons.Fail))
	r.comparisons.WithLabelValues("missing").Set(float64(s.Comparisons.Missing))
	r.comparisons.WithLabelValues("not_compared").Set(float64(s.Comparisons.NotCompared))

	r.sims.WithLabelValues("success").Set(float64(s.Sims.Success))
	r.sims.WithLabelValues("run_fail").Set(float64(s.Sims.RunFail))
	r.sims.WithLabelValues("build_failed").Set(float64(s.Sims.BuildFailed))
	r.sims.WithLabelValues("build_skipped").Set(float64(s.Sims.BuildSkipped))

	r.models.WithLabelValues("success").Set(float64(s.Models.Success))
	r.models.WithLabelValues("fail").Set(float64(s.Models.Fail))

	if report.Success() {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
}

// WriteFile writes every metric to path in the text exposition format.
// The write goes through a temporary file, so a scraper never reads a
// partial file.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
