package app

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherloader_fetch_total",
			Help: "Total number of weather data fetches by outcome",
		},
		[]string{"format", "outcome"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherloader_fetch_duration_seconds",
			Help:    "Weather data fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	reloadsScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherloader_reloads_scheduled_total",
			Help: "Number of failed loads that scheduled a delayed reload",
		},
	)
)

func observeFetch(format Format, err error, took time.Duration) {
	fetchTotal.WithLabelValues(string(format), fetchOutcome(err)).Inc()
	fetchDuration.WithLabelValues(string(format)).Observe(took.Seconds())
}

func fetchOutcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidBody):
		return "invalid_body"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &statusErr):
		return "status"
	default:
		return "transport"
	}
}
