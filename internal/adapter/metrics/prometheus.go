package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "egis"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint", "status"},
	)
	catalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog requests by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	importedItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_items_total",
			Help:      "Import outcomes by status.",
		},
		[]string{"status"},
	)
	refreshedLinesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshed_lines_total",
			Help:      "Sales order lines processed by the price refresh.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		catalogRequestsTotal,
		importedItemsTotal,
		refreshedLinesTotal,
	)
}

const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

func RecordCatalogRequest(operation string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	catalogRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordImport(r domain.ImportReport) {
	for _, o := range r.Items {
		importedItemsTotal.WithLabelValues(string(o.Status)).Inc()
	}
}

func RecordRefresh(r domain.RefreshReport) {
	refreshedLinesTotal.WithLabelValues(OutcomeOK).Add(float64(len(r.UpdatedItems)))
	refreshedLinesTotal.WithLabelValues(OutcomeFailed).Add(float64(len(r.FailedItems)))
	refreshedLinesTotal.WithLabelValues(OutcomeSkipped).Add(float64(r.Skipped))
}

func classifyStatus(statusCode int) string {
	if statusCode < 100 || statusCode > 599 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}

func Handler() http.Handler {
	return promhttp.Handler()
}
