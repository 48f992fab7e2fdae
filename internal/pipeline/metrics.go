package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yomitoru_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	fragmentTranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomitoru_fragment_translations_total",
			Help: "Total number of per-fragment translation attempts",
		},
		[]string{"status"}, // status: translated, fallback
	)
)
