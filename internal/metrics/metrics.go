// Package metrics records registry activity in Prometheus collectors.
//
// All methods are safe on a nil *Metrics, so services can run without
// instrumentation.
package metrics

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/vehiclereg/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "vehiclereg"

// Result labels.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the registry collectors.
type Metrics struct {
	registry *prometheus.Registry

	registrations *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	logins        *prometheus.CounterVec
	signups       *prometheus.CounterVec
	workingSet    *prometheus.GaugeVec
}

// New creates the collectors and registers them on a private registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vehicles",
			Name:      "registrations_total",
			Help:      "Vehicle registration attempts by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vehicles",
			Name:      "status_transitions_total",
			Help:      "Completed status transitions by target status.",
		}, []string{"status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "signups_total",
			Help:      "Signup attempts by result.",
		}, []string{"result"}),
		workingSet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vehicles",
			Name:      "working_set",
			Help:      "Vehicles in the loaded working set by status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.registrations, m.transitions, m.logins, m.signups, m.workingSet} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Metrics) ObserveRegistration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTransition(to models.Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSignup(result string) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(result).Inc()
}

// SetWorkingSet publishes per-status counts of the loaded working set.
func (m *Metrics) SetWorkingSet(st models.Stats) {
	if m == nil {
		return
	}
	m.workingSet.WithLabelValues(string(models.StatusPending)).Set(float64(st.Pending))
	m.workingSet.WithLabelValues(string(models.StatusApproved)).Set(float64(st.Approved))
	m.workingSet.WithLabelValues(string(models.StatusRejected)).Set(float64(st.Rejected))
}

// WriteText encodes everything gathered from the registry in the Prometheus
// text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.Gatherer().Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
