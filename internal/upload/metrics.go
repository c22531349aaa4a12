// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package upload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcomes used as the "outcome" label.
const (
	outcomeStored         = "stored"
	outcomeMissingFile    = "missing_file"
	outcomeMissingOrderID = "missing_order_id"
	outcomeTooLarge       = "too_large"
	outcomeError          = "error"
)

// Metrics tracks upload outcomes, sizes, and handling latency.
type Metrics struct {
	Uploads        *prometheus.CounterVec
	UploadBytes    prometheus.Histogram
	UploadDuration prometheus.Histogram
}

// NewMetrics registers the upload metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "propverify_uploads_total",
			Help: "Upload requests by outcome",
		}, []string{"outcome"}),
		UploadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "propverify_upload_bytes",
			Help:    "Size of accepted report documents",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 8),
		}),
		UploadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "propverify_upload_duration_seconds",
			Help:    "Duration of upload handling",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// Observe records one handled upload. Call with time.Now() taken at the start
// of the request.
func (m *Metrics) Observe(outcome string, size int64, start time.Time) {
	m.Uploads.WithLabelValues(outcome).Inc()
	if outcome == outcomeStored {
		m.UploadBytes.Observe(float64(size))
	}
	m.UploadDuration.Observe(time.Since(start).Seconds())
}
