// Package monitoring holds the Prometheus metrics for the pipeline and the
// API server.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/cssmap/internal/sources/webref"
	"github.com/agentstation/cssmap/pkg/cssdata"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal      *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	StageDuration     *prometheus.HistogramVec
	CorrectionsTotal  *prometheus.CounterVec
	DatasetSpecs      prometheus.Gauge
	DatasetFeatures   *prometheus.GaugeVec
	SupportedFeatures prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// NewMetrics registers the metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cssmap_spec_fetches_total",
			Help: "Feature document fetches by outcome",
		}, []string{"outcome"}), // fetched, missing, failed
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cssmap_spec_fetch_duration_seconds",
			Help:    "Time to fetch one feature document",
			Buckets: prometheus.DefBuckets,
		}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cssmap_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
		CorrectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cssmap_corrections_applied_total",
			Help: "Manual corrections applied to the dataset",
		}, []string{"kind"}), // inject, patch
		DatasetSpecs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cssmap_dataset_specs",
			Help: "Specifications in the current dataset",
		}),
		DatasetFeatures: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cssmap_dataset_features",
			Help: "Feature records in the current dataset by list",
		}, []string{"list"}),
		SupportedFeatures: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cssmap_dataset_supported_features",
			Help: "Feature records supported by at least two browsers",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cssmap_http_requests_total",
			Help: "API requests by route and status",
		}, []string{"route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cssmap_http_request_duration_seconds",
			Help:    "API request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch implements webref.Observer.
func (m *Metrics) ObserveFetch(outcome webref.Outcome, elapsed time.Duration) {
	m.FetchesTotal.WithLabelValues(string(outcome)).Inc()
	m.FetchDuration.Observe(elapsed.Seconds())
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	m.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// AddCorrections counts corrections of one kind.
func (m *Metrics) AddCorrections(kind string, n int) {
	m.CorrectionsTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordDataset sets the dataset gauges.
func (m *Metrics) RecordDataset(ds cssdata.Dataset) {
	counts := map[cssdata.ListKind]int{}
	supported := 0
	ds.Walk(func(_ string, kind cssdata.ListKind, rec *cssdata.FeatureRecord) bool {
		counts[kind]++
		if rec.Compatibility != nil && rec.Compatibility.Supported {
			supported++
		}
		return true
	})

	m.DatasetSpecs.Set(float64(len(ds)))
	for _, kind := range cssdata.FeatureLists {
		m.DatasetFeatures.WithLabelValues(kind.String()).Set(float64(counts[kind]))
	}
	m.SupportedFeatures.Set(float64(supported))
}

// ObserveRequest records one API request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
