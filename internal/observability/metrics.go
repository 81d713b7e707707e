// Package observability exposes Prometheus metrics for the extraction
// pipeline.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/achievemint/gitminer/pkg/record"
)

// Collector aggregates pipeline counters. Each Collector owns an
// independent registry to avoid collector conflicts when several
// repository sessions run in one process.
type Collector struct {
	registry *prometheus.Registry

	commits       prometheus.Counter
	changedFiles  *prometheus.CounterVec
	binaryFiles   prometheus.Counter
	linesAdded    prometheus.Counter
	linesRemoved  prometheus.Counter
	buildDuration prometheus.Histogram
}

// NewCollector creates a collector with all pipeline metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		commits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitminer_commits_extracted_total",
			Help: "Commit records produced by the extraction pipeline.",
		}),
		changedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitminer_changed_files_total",
			Help: "Changed files seen, labelled by change kind.",
		}, []string{"kind"}),
		binaryFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitminer_binary_files_total",
			Help: "Changed files classified as binary on at least one side.",
		}),
		linesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitminer_lines_added_total",
			Help: "Added lines aggregated across all commit records.",
		}),
		linesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitminer_lines_removed_total",
			Help: "Removed lines aggregated across all commit records.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gitminer_record_build_seconds",
			Help:    "Wall time spent building one commit record.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	registry.MustRegister(
		c.commits,
		c.changedFiles,
		c.binaryFiles,
		c.linesAdded,
		c.linesRemoved,
		c.buildDuration,
	)

	return c
}

// CommitExtracted records one produced commit record. It implements the
// pipeline's Observer hook.
func (c *Collector) CommitExtracted(rec *record.CommitRecord, elapsed time.Duration) {
	c.commits.Inc()
	c.buildDuration.Observe(elapsed.Seconds())

	for _, file := range rec.Files {
		c.changedFiles.WithLabelValues(file.Kind.String()).Inc()

		if isBinary(file.OldFile) || isBinary(file.NewFile) {
			c.binaryFiles.Inc()
		}

		c.linesAdded.Add(float64(file.Lines.Added))
		c.linesRemoved.Add(float64(file.Lines.Removed))
	}
}

// Handler serves the collector's registry as a /metrics scrape endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func isBinary(side *record.FileSide) bool {
	return side != nil && side.Type == record.TypeBinary
}
