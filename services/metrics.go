package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the tracker's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	foodLogs      *prometheus.CounterVec
	rollbacks     *prometheus.CounterVec
	celebrations  *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		foodLogs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstbites",
			Name:      "food_logs_total",
			Help:      "Food logging attempts by outcome.",
		}, []string{"outcome"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstbites",
			Name:      "rollbacks_total",
			Help:      "Optimistic updates reverted after a failed store write.",
		}, []string{"op"}),
		celebrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstbites",
			Name:      "celebrations_total",
			Help:      "Celebration events published, by kind.",
		}, []string{"kind"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firstbites",
			Name:      "notifications_total",
			Help:      "Notification dispatch attempts by type and result.",
		}, []string{"type", "result"}),
	}
	reg.MustRegister(m.foodLogs, m.rollbacks, m.celebrations, m.notifications)
	return m
}

func (m *Metrics) FoodLogged(outcome string) {
	if m != nil {
		m.foodLogs.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RolledBack(op string) {
	if m != nil {
		m.rollbacks.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) Notified(typ, result string) {
	if m != nil {
		m.notifications.WithLabelValues(typ, result).Inc()
	}
}

// ObserveEvents counts every event published on bus.
func (m *Metrics) ObserveEvents(bus *EventBus) (unsubscribe func()) {
	return bus.Subscribe(func(e Event) {
		if m != nil {
			m.celebrations.WithLabelValues(string(e.Kind)).Inc()
		}
	})
}
