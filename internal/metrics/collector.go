package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineStats provides the metrics collector access to orchestrator state.
type PipelineStats interface {
	InFlight() int64
}

// Backend describes one model backend for the models_info gauge.
type Backend struct {
	Stage    string `json:"stage"` // "transcription", "sentiment"
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	stats    PipelineStats
	backends []Backend

	inFlight   *prometheus.Desc
	modelsInfo *prometheus.Desc
}

// NewCollector creates a collector that reads live state at scrape time.
// stats may be nil (in-flight reports 0).
func NewCollector(stats PipelineStats, backends ...Backend) *Collector {
	return &Collector{
		stats:    stats,
		backends: backends,
		inFlight: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "pipeline", "in_flight"),
			"Pipeline runs currently executing.",
			nil, nil,
		),
		modelsInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "models_info"),
			"Configured model backends (always 1).",
			[]string{"stage", "provider", "model"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.inFlight
	ch <- c.modelsInfo
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.stats != nil {
		ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, float64(c.stats.InFlight()))
	} else {
		ch <- prometheus.MustNewConstMetric(c.inFlight, prometheus.GaugeValue, 0)
	}

	for _, b := range c.backends {
		ch <- prometheus.MustNewConstMetric(c.modelsInfo, prometheus.GaugeValue, 1, b.Stage, b.Provider, b.Model)
	}
}
