package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramRepliesTotal,
		telegramMessagesSentTotal,
		telegramRateLimitTriggeredTotal,
	)
}

var (
	telegramRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_replies_total",
			Help: "Inbound chat replies by reply bridge outcome.",
		},
		[]string{"outcome"},
	)

	telegramMessagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_messages_sent_total",
			Help: "Outbound telegram messages by target and result.",
		},
		[]string{"target", "result"}, // target: 'user', 'admin'
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times users hit the comment rate limit.",
		},
	)
)

func IncReplyOutcome(outcome string) {
	telegramRepliesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncMessageSent(target string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	telegramMessagesSentTotal.WithLabelValues(norm(target), result).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}
