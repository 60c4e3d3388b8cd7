package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of seller API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "status"})

	UpstreamRequestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_failed_total",
		Help: "Total number of seller API requests that did not return usable data",
	}, []string{"resource", "reason"})

	OrderHistoryDegradedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_history_degraded_total",
		Help: "Total number of order history fetches replaced by an empty result",
	}, []string{"reason"})

	ImageInspectFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_inspect_failed_total",
		Help: "Total number of product images that could not be fetched or decoded",
	}, []string{"reason"})

	SEOScorePercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seo_score_percent",
		Help:    "Distribution of computed SEO score percentages",
		Buckets: prometheus.LinearBuckets(0, 12.5, 9),
	})

	RestockAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_alerts_total",
		Help: "Total number of high-sales products found out of stock",
	})

	CampaignSuggestionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campaign_suggestions_total",
		Help: "Total number of campaign suggestions emitted",
	})

	InsightEventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "insight_events_consumed_total",
		Help: "Total number of insight events handled by the alert worker",
	}, []string{"type", "outcome"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
