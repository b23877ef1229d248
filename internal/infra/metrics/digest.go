package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		digestRendersTotal,
		subscriptionChangesTotal,
		horoscopeRefreshTotal,
	)
}

var (
	digestRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_renders_total",
			Help: "Digest builds by kind and result.",
		},
		[]string{"kind", "result"}, // result: 'ok', 'empty', 'not_found', 'error'
	)

	subscriptionChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_changes_total",
			Help: "Capability-link subscription changes by action.",
		},
		[]string{"action"},
	)

	horoscopeRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horoscope_refresh_total",
			Help: "Mood text refreshes by result.",
		},
		[]string{"result"},
	)
)

func IncDigestRender(kind, result string) {
	digestRendersTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}

func IncSubscriptionChange(action string) {
	subscriptionChangesTotal.WithLabelValues(norm(action)).Inc()
}

func IncHoroscopeRefresh(result string) {
	horoscopeRefreshTotal.WithLabelValues(norm(result)).Inc()
}
