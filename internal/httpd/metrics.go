package httpd

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

func (s *Server) initMetrics() {
	s.metricsOnce.Do(func() {
		s.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"})

		s.requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "userd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of request handling",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"})

		s.rateLimitHits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "userd",
			Subsystem: "http",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}, []string{"route"})

		collectors := []prometheus.Collector{s.requestTotal, s.requestLatency, s.rateLimitHits}
		for _, collector := range collectors {
			if err := prometheus.Register(collector); err != nil {
				if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
					switch v := are.ExistingCollector.(type) {
					case *prometheus.CounterVec:
						if collector == s.requestTotal {
							s.requestTotal = v
						} else if collector == s.rateLimitHits {
							s.rateLimitHits = v
						}
					case *prometheus.HistogramVec:
						s.requestLatency = v
					}
				}
			}
		}
		s.metricsInitialized = true
	})
}

func (s *Server) recordRequestMetrics(method, route string, status int, duration time.Duration) {
	if !s.metricsInitialized {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	s.requestTotal.With(labels).Inc()
	s.requestLatency.With(labels).Observe(duration.Seconds())
}

func (s *Server) recordRateLimitHit(route string) {
	if !s.metricsInitialized {
		return
	}
	s.rateLimitHits.With(prometheus.Labels{"route": route}).Inc()
}
