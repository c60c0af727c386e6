package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "midichat",
		Name:      "active_widget_sessions",
		Help:      "Currently connected widget sessions.",
	})

	metricMessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "midichat",
		Name:      "messages_sent_total",
		Help:      "User messages accepted into a conversation log.",
	})

	metricDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "midichat",
		Name:      "deliveries_total",
		Help:      "Delivery outcomes observed per status transition.",
	}, []string{"status"})

	metricRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "midichat",
		Name:      "retries_total",
		Help:      "User-initiated delivery retries.",
	})

	metricBotReplies = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "midichat",
		Name:      "bot_replies_total",
		Help:      "Assistant replies appended to conversations.",
	})

	metricConversationClears = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "midichat",
		Name:      "conversation_clears_total",
		Help:      "Confirmed conversation clears.",
	})
)
