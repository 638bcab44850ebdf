// Package metrics holds the Prometheus collectors for token verification and
// the wallet-binding flow. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "learnsol_identity"

type Metrics struct {
	tokenVerifications *prometheus.CounterVec
	keySetFetchErrors  prometheus.Counter
	noncesIssued       prometheus.Counter
	bindAttempts       *prometheus.CounterVec
}

// New registers the collectors on registry. Collectors that are already
// registered (a second server in the same process, tests) are reused.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.tokenVerifications, err = register(registry, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Identity token verifications by outcome",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	m.keySetFetchErrors, err = register(registry, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keyset_fetch_errors_total",
		Help:      "Failed fetches of the issuer key set",
	}))
	if err != nil {
		return nil, err
	}

	m.noncesIssued, err = register(registry, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "nonces_issued_total",
		Help:      "Wallet binding challenges issued",
	}))
	if err != nil {
		return nil, err
	}

	m.bindAttempts, err = register(registry, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bind_attempts_total",
		Help:      "Wallet bind attempts by result",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](registry prometheus.Registerer, c C) (C, error) {
	if err := registry.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(C)
			if !ok {
				return c, fmt.Errorf("collector type mismatch: %v", err)
			}
			return existing, nil
		}
		return c, fmt.Errorf("failed to register metric: %v", err)
	}
	return c, nil
}

func (m *Metrics) TokenVerified(outcome string) {
	if m == nil {
		return
	}
	m.tokenVerifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) KeySetFetchFailed() {
	if m == nil {
		return
	}
	m.keySetFetchErrors.Inc()
}

func (m *Metrics) NonceIssued() {
	if m == nil {
		return
	}
	m.noncesIssued.Inc()
}

func (m *Metrics) BindAttempt(result string) {
	if m == nil {
		return
	}
	m.bindAttempts.WithLabelValues(result).Inc()
}
