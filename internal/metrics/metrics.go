// Package metrics определяет метрики Prometheus консоли администратора:
// запросы к удалённому API, результаты мутаций и выборки запросов.
// Метрики регистрируются в реестре по умолчанию через promauto.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_console"

// UpstreamRequestsTotal считает запросы к API.
// Метки: endpoint — логическое имя операции (например, "users.all"), code — класс статуса ("2xx", "4xx", "error").
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to the remote API.",
	},
	[]string{"endpoint", "code"},
)

// UpstreamRequestDuration измеряет длительность запросов к API.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the remote API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// MutationsTotal считает завершённые мутации.
// Метки: mutation — имя мутации, result — "success" или "error".
var MutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of mutations, by name and result.",
	},
	[]string{"mutation", "result"},
)

// QueryFetchesTotal считает обращения к запросам.
// Метка result: "fetch", "dedup", "memo", "stale", "error".
var QueryFetchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_fetches_total",
		Help:      "Total number of query fetches, by query name and result.",
	},
	[]string{"query", "result"},
)

// StatusClass сворачивает HTTP-статус в класс для меток.
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}
