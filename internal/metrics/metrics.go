// Package metrics объявляет метрики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal считает HTTP-запросы по шаблону маршрута, методу и коду ответа.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapp_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration — длительность обработки HTTP-запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blogapp_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// CacheRequests считает обращения к кэшу виджетов по результату (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapp_cache_requests_total",
		Help: "Sidebar cache lookups by result",
	}, []string{"result"})

	// RedisErrors считает ошибки Redis по команде.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapp_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// MailsSent считает отправленные письма по типу и результату.
	MailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapp_mails_total",
		Help: "Mails handed to the transport by kind and result",
	}, []string{"kind", "result"})

	// ImagesFetched считает скачивания изображений по внешним URL.
	ImagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogapp_images_fetched_total",
		Help: "Remote image downloads by result",
	}, []string{"result"})
)
