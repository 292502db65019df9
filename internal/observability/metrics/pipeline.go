package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics tracks per-file pipeline outcomes. Outcome labels mirror
// terminal job statuses: logged, extract_failed, classify_failed, failed.
type PipelineMetrics struct {
	registry *prometheus.Registry

	filesTotal      *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	filesInFlight   prometheus.Gauge
	stabilityWait   prometheus.Histogram
	classifyRetries prometheus.Counter
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "alchemist",
			Subsystem: "pipeline",
			Name:      "files_processed_total",
			Help:      "Total processed files by outcome.",
		},
		[]string{"service", "outcome"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alchemist",
			Subsystem: "pipeline",
			Name:      "file_process_duration_seconds",
			Help:      "Per-file pipeline duration in seconds by outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "outcome"},
	)
	filesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "alchemist",
			Subsystem: "pipeline",
			Name:      "files_in_flight",
			Help:      "Number of files currently in the pipeline.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stabilityWait := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "alchemist",
			Subsystem: "watcher",
			Name:      "stability_wait_seconds",
			Help:      "Delay between first sighting of a file and stability.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	classifyRetries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "alchemist",
			Subsystem: "classifier",
			Name:      "retries_total",
			Help:      "Total classification retry attempts.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(filesTotal, processDuration, filesInFlight, stabilityWait, classifyRetries)

	return &PipelineMetrics{
		registry:        registry,
		filesTotal:      filesTotal,
		processDuration: processDuration,
		filesInFlight:   filesInFlight,
		stabilityWait:   stabilityWait,
		classifyRetries: classifyRetries,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartFile() {
	m.filesInFlight.Inc()
}

func (m *PipelineMetrics) FinishFile(service, outcome string, duration time.Duration) {
	m.filesInFlight.Dec()
	m.filesTotal.WithLabelValues(service, outcome).Inc()
	m.processDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveStabilityWait(wait time.Duration) {
	if wait < 0 {
		return
	}
	m.stabilityWait.Observe(wait.Seconds())
}

func (m *PipelineMetrics) CountClassifyRetry() {
	m.classifyRetries.Inc()
}
