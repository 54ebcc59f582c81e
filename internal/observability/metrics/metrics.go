package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// USSDMetrics exposes counters/histograms for the USSD callback flow.
type USSDMetrics struct {
	callbacksTotal *prometheus.CounterVec
	faultsTotal    *prometheus.CounterVec
	resetsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

func NewUSSDMetrics(reg prometheus.Registerer) *USSDMetrics {
	m := &USSDMetrics{
		callbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tujali",
			Subsystem: "ussd",
			Name:      "callbacks_total",
			Help:      "Total USSD callbacks by menu family and reply type",
		}, []string{"family", "reply"}),
		faultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tujali",
			Subsystem: "ussd",
			Name:      "faults_total",
			Help:      "Internal faults that rolled a session back",
		}, []string{"family"}),
		resetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tujali",
			Subsystem: "ussd",
			Name:      "session_resets_total",
			Help:      "Sessions restarted at the language prompt",
		}, []string{"reason"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tujali",
			Subsystem: "ussd",
			Name:      "callback_latency_seconds",
			Help:      "Latency of USSD callback processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"family"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callbacksTotal, m.faultsTotal, m.resetsTotal, m.latency)
	return m
}

// ObserveCallback records a handled callback. family is the menu family the
// callback was dispatched from.
func (m *USSDMetrics) ObserveCallback(family string, terminal bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	reply := "con"
	if terminal {
		reply = "end"
	}
	m.callbacksTotal.WithLabelValues(family, reply).Inc()
	m.latency.WithLabelValues(family).Observe(elapsed.Seconds())
}

func (m *USSDMetrics) ObserveFault(family string) {
	if m == nil {
		return
	}
	m.faultsTotal.WithLabelValues(family).Inc()
}

// ObserveReset counts restarts; reason is "empty_input" or "expired".
func (m *USSDMetrics) ObserveReset(reason string) {
	if m == nil {
		return
	}
	m.resetsTotal.WithLabelValues(reason).Inc()
}

// NotificationMetrics covers the provider notification worker.
type NotificationMetrics struct {
	handledTotal *prometheus.CounterVec
}

func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	m := &NotificationMetrics{
		handledTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tujali",
			Subsystem: "notify",
			Name:      "events_total",
			Help:      "Provider notification events by type and outcome",
		}, []string{"event_type", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.handledTotal)
	return m
}

func (m *NotificationMetrics) ObserveEvent(eventType, status string) {
	if m == nil {
		return
	}
	m.handledTotal.WithLabelValues(eventType, status).Inc()
}
