package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce       sync.Once
	searchRequests     *prometheus.CounterVec
	searchResults      *prometheus.HistogramVec
	searchDuration     *prometheus.HistogramVec
	importEntries      *prometheus.CounterVec
	activityFailures   *prometheus.CounterVec
	resultCountBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500}
)

const (
	namespaceMetrics = "corpus"
)

// MustRegister 初始化 Prometheus 指标并注册 Go 运行时采样器，需在应用启动阶段调用一次。
func MustRegister() {
	registerOnce.Do(func() {
		searchRequests = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "search",
					Name:      "requests_total",
					Help:      "搜索接口的调用次数，按执行状态统计。",
				},
				[]string{"status"},
			),
		)
		searchResults = registerHistogramVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "search",
					Name:      "results",
					Help:      "单次搜索命中的词条数量分布。",
					Buckets:   resultCountBuckets,
				},
				[]string{"language"},
			),
		)
		searchDuration = registerHistogramVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespaceMetrics,
					Subsystem: "search",
					Name:      "duration_seconds",
					Help:      "搜索与频次更新事务的耗时。",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"status"},
			),
		)
		importEntries = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "transfer",
					Name:      "import_entries_total",
					Help:      "批量导入处理的记录数，按 imported/skipped/failed 拆分。",
				},
				[]string{"result"},
			),
		)
		activityFailures = registerCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespaceMetrics,
					Subsystem: "activity",
					Name:      "log_failures_total",
					Help:      "审计日志写入失败次数，按动作类型统计。",
				},
				[]string{"action"},
			),
		)

		registerRuntimeCollectors()
	})
}

// ObserveSearch 记录一次搜索的状态、命中数量与耗时。
func ObserveSearch(status, language string, results int, duration time.Duration) {
	if searchRequests == nil || searchResults == nil || searchDuration == nil {
		return
	}
	label := normalizeLabel(status, "unknown")
	searchRequests.WithLabelValues(label).Inc()
	searchDuration.WithLabelValues(label).Observe(duration.Seconds())
	if label == "success" {
		searchResults.WithLabelValues(normalizeLabel(language, "any")).Observe(float64(results))
	}
}

// RecordImport 记录导入结果分布。
func RecordImport(imported, skipped int, failed bool) {
	if importEntries == nil {
		return
	}
	if failed {
		importEntries.WithLabelValues("failed").Add(float64(imported + skipped))
		return
	}
	if imported > 0 {
		importEntries.WithLabelValues("imported").Add(float64(imported))
	}
	if skipped > 0 {
		importEntries.WithLabelValues("skipped").Add(float64(skipped))
	}
}

// RecordActivityFailure 统计审计日志落库失败。
func RecordActivityFailure(action string) {
	if activityFailures == nil {
		return
	}
	activityFailures.WithLabelValues(normalizeLabel(action, "unknown")).Inc()
}

func normalizeLabel(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if existing, ok := alreadyRegisteredCollector[*prometheus.CounterVec](err); ok {
			return existing
		}
		panic(err)
	}
	return vec
}

func registerHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		if existing, ok := alreadyRegisteredCollector[*prometheus.HistogramVec](err); ok {
			return existing
		}
		panic(err)
	}
	return vec
}

func registerRuntimeCollectors() {
	for _, collector := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := prometheus.Register(collector); err != nil && !isAlreadyRegistered(err) {
			panic(err)
		}
	}
}

func alreadyRegisteredCollector[T prometheus.Collector](err error) (T, bool) {
	var zero T
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, true
		}
	}
	return zero, false
}

func isAlreadyRegistered(err error) bool {
	var are prometheus.AlreadyRegisteredError
	return errors.As(err, &are)
}
