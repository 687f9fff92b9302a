package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	VerifyRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipverify_requests_total",
		Help: "Total number of verify requests answered with a full result",
	})
	HealthChecksSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipverify_healthcheck_skipped_total",
		Help: "Total number of health check probes short-circuited without a log write",
	})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ipverify_request_duration_ms",
		Help:    "Verify request duration in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	LogWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipverify_log_writes_total",
		Help: "Log sink appends by result",
	}, []string{"status"})
	GeoLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ipverify_geo_lookups_total",
		Help: "Client geo lookups by result",
	}, []string{"result"})
	ForwardedRewritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ipverify_forwarded_rewrites_total",
		Help: "Total remote addresses rewritten from X-Forwarded-For by a trusted proxy",
	})
)

func init() {
	prometheus.MustRegister(VerifyRequestsTotal)
	prometheus.MustRegister(HealthChecksSkippedTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(LogWritesTotal)
	prometheus.MustRegister(GeoLookupsTotal)
	prometheus.MustRegister(ForwardedRewritesTotal)
}

// 文档注释：返回 Prometheus 指标监听器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
