package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 派生字段重算延迟（毫秒）
	RecomputeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "derived_recompute_latency_ms",
			Help:    "Derived-field recompute latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1ms to ~4s
		},
		[]string{"kind"}, // kind: project_progress, task_progress, budget_rollup
	)

	// 事件发布计数
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"routing_key"},
	)

	// 事件消费计数
	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of domain events consumed",
		},
		[]string{"routing_key", "status"}, // status: success, failed, duplicate
	)

	// Agent 调用延迟（毫秒）
	AgentCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_call_latency_ms",
			Help:    "Agent service call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"endpoint", "status"},
	)

	// 站内通知计数
	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of in-app notifications created",
		},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of slow database queries",
		},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordRecomputeLatency 记录派生字段重算延迟
func RecordRecomputeLatency(kind string, duration time.Duration) {
	RecomputeLatency.WithLabelValues(kind).Observe(float64(duration.Milliseconds()))
}

// RecordAgentCallLatency 记录 Agent 调用延迟
func RecordAgentCallLatency(endpoint, status string, duration time.Duration) {
	AgentCallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

// IncrementEventPublished 增加事件发布计数
func IncrementEventPublished(routingKey string) {
	EventsPublished.WithLabelValues(routingKey).Inc()
}

// IncrementEventConsumed 增加事件消费计数
func IncrementEventConsumed(routingKey, status string) {
	EventsConsumed.WithLabelValues(routingKey, status).Inc()
}

// IncrementNotificationCreated 增加站内通知计数
func IncrementNotificationCreated() {
	NotificationsCreated.Inc()
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}
