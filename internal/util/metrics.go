package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed",
	})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order placements",
	}, []string{"reason"})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status transitions",
	}, []string{"status"})

	PaymentAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Total number of simulated payment attempts",
	}, []string{"method"})

	PaymentProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_processing_latency_seconds",
		Help:    "Latency of simulated payment processing",
		Buckets: prometheus.DefBuckets,
	})

	CouponValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_validations_total",
		Help: "Total number of coupon validations",
	}, []string{"result"})

	NotificationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Total number of notifications created",
	})

	WishlistTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishlist_toggles_total",
		Help: "Total number of wishlist toggles",
	}, []string{"action"})

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
