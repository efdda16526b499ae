package support

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flex_support_sessions_created_total",
			Help: "Total support sessions opened by customers.",
		},
	)
	sessionsClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flex_support_sessions_claimed_total",
			Help: "Total successful support session claims by claim mode.",
		},
		[]string{"mode"},
	)
	sessionsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flex_support_sessions_closed_total",
			Help: "Total end-session requests applied.",
		},
	)
	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flex_support_messages_sent_total",
			Help: "Total support messages appended, by sender kind.",
		},
		[]string{"sender"},
	)
)

func init() {
	prometheus.MustRegister(sessionsCreated, sessionsClaimed, sessionsClosed, messagesSent)
}

func senderLabel(isAdmin bool) string {
	if isAdmin {
		return "admin"
	}
	return "customer"
}
