package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vcioctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vcioctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	propertyExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vcioctl",
			Subsystem: "property",
			Name:      "exchanges_total",
			Help:      "Firmware property exchanges by tag and result.",
		},
		[]string{"tag", "result"},
	)
	propertyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vcioctl",
			Subsystem: "property",
			Name:      "exchange_duration_seconds",
			Help:      "Blocking property call duration in seconds.",
			Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1},
		},
		[]string{"tag"},
	)
	memoryOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vcioctl",
			Subsystem: "memory",
			Name:      "operations_total",
			Help:      "Coprocessor memory lifecycle operations by op and success.",
		},
		[]string{"op", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, propertyExchanges, propertyDuration, memoryOps)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordExchange counts one property exchange. duration is zero when the
// exchange was rejected before the blocking call.
func RecordExchange(tag, result string, duration time.Duration) {
	RegisterMetrics()
	propertyExchanges.WithLabelValues(tag, result).Inc()
	if duration > 0 {
		propertyDuration.WithLabelValues(tag).Observe(duration.Seconds())
	}
}

func RecordMemoryOp(op string, success bool) {
	RegisterMetrics()
	memoryOps.WithLabelValues(op, strconv.FormatBool(success)).Inc()
}

// ExchangeCount reports the current counter value for tag/result.
func ExchangeCount(tag, result string) float64 {
	RegisterMetrics()
	c, err := propertyExchanges.GetMetricWithLabelValues(tag, result)
	if err != nil {
		return 0
	}
	return counterValue(c)
}
