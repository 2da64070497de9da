package observe

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreLatency records store operation latency, labeled by operation.
	StoreLatency *prometheus.HistogramVec

	// CleanupDeletedTotal counts documents removed by the retention sweeper,
	// labeled by collection.
	CleanupDeletedTotal *prometheus.CounterVec

	// StoreErrorsTotal counts store operations that surfaced an error,
	// labeled by operation.
	StoreErrorsTotal *prometheus.CounterVec
)

var validLabelKey = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseMetricsLabels turns a comma-separated key=value list into the constant
// labels attached to every gateway metric. ${VAR} and $VAR references are
// expanded from the environment before parsing, so label values cannot
// themselves contain a comma. An empty input yields nil labels.
func ParseMetricsLabels(s string) (prometheus.Labels, error) {
	s = os.Expand(s, os.Getenv)
	if s == "" {
		return nil, nil
	}
	labels := prometheus.Labels{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed metrics label %q: want key=value", pair)
		}
		if !validLabelKey.MatchString(k) {
			return nil, fmt.Errorf("metrics label key %q is not a valid Prometheus label name", k)
		}
		labels[k] = v
	}
	return labels, nil
}

var initMetricsOnce sync.Once

// InitMetrics registers all Prometheus metrics with the given constant labels.
// Must be called before any store initialization that records metrics. Safe to
// call multiple times; only the first call registers.
func InitMetrics(constLabels prometheus.Labels) {
	initMetricsOnce.Do(func() {
		initMetricsInner(constLabels)
	})
}

func initMetricsInner(constLabels prometheus.Labels) {
	reg := prometheus.WrapRegistererWith(constLabels, prometheus.DefaultRegisterer)
	f := promauto.With(reg)

	StoreLatency = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "data_gateway_store_latency_seconds",
			Help:    "Store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CleanupDeletedTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_gateway_cleanup_deleted_total",
			Help: "Documents removed by the retention sweeper",
		},
		[]string{"collection"},
	)

	StoreErrorsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "data_gateway_store_errors_total",
			Help: "Store operations that returned an error",
		},
		[]string{"operation"},
	)
}
