package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 運用で見たいカウンタだけ。ダッシュボードはPrometheus側で組む。
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_orders_created_total",
		Help: "Number of sales orders created.",
	})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_order_transitions_total",
		Help: "Order state transitions by target state.",
	}, []string{"to"})

	StockLocksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_stock_locks_created_total",
		Help: "Number of stock lock groups created.",
	})

	InsufficientStock = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_insufficient_stock_total",
		Help: "Number of operations rejected for insufficient stock.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_events_published_total",
		Help: "Facts relayed from the outbox to the broker.",
	}, []string{"topic"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_events_consumed_total",
		Help: "Facts handled successfully by consumers.",
	}, []string{"consumer", "event_type"})

	EventsDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "erp_events_dead_lettered_total",
		Help: "Facts moved to a DLQ after retries were exhausted.",
	}, []string{"consumer", "topic"})

	LocksExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "erp_stock_locks_expired_total",
		Help: "Stock locks released by the expiry sweeper.",
	})
)
