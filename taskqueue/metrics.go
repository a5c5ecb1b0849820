package taskqueue

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts task outcomes per task name. A nil *Metrics records nothing.
type Metrics struct {
	enqueuedTotal  *prometheus.CounterVec
	succeededTotal *prometheus.CounterVec
	failedTotal    *prometheus.CounterVec
	retriedTotal   *prometheus.CounterVec
	deadTotal      *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tba",
			Subsystem: "tasks",
			Name:      name,
			Help:      help,
		}, []string{"task", "queue"})
	}
	m := &Metrics{
		enqueuedTotal:  counter("enqueued_total", "Tasks accepted by Defer"),
		succeededTotal: counter("succeeded_total", "Task executions that returned nil"),
		failedTotal:    counter("failed_total", "Task executions that returned an error"),
		retriedTotal:   counter("retried_total", "Failed executions scheduled for redelivery"),
		deadTotal:      counter("dead_total", "Tasks dropped after their last failed attempt"),
	}
	if reg != nil {
		reg.MustRegister(m.enqueuedTotal, m.succeededTotal, m.failedTotal, m.retriedTotal, m.deadTotal)
	}
	return m
}

func (m *Metrics) inc(vec func(*Metrics) *prometheus.CounterVec, t Task) {
	if m == nil {
		return
	}
	vec(m).WithLabelValues(t.Name, t.Queue).Inc()
}

func (m *Metrics) enqueued(t Task) {
	m.inc(func(m *Metrics) *prometheus.CounterVec { return m.enqueuedTotal }, t)
}

func (m *Metrics) succeeded(t Task) {
	m.inc(func(m *Metrics) *prometheus.CounterVec { return m.succeededTotal }, t)
}

func (m *Metrics) failed(t Task) {
	m.inc(func(m *Metrics) *prometheus.CounterVec { return m.failedTotal }, t)
}

func (m *Metrics) retried(t Task) {
	m.inc(func(m *Metrics) *prometheus.CounterVec { return m.retriedTotal }, t)
}

func (m *Metrics) dead(t Task) {
	m.inc(func(m *Metrics) *prometheus.CounterVec { return m.deadTotal }, t)
}
