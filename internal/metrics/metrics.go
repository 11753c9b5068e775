// internal/metrics/metrics.go
//
// Prometheus counters for the guessing service, registered on the default
// registry and exposed by the HTTP server on /metrics.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hint sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

var (
	// HintsTotal counts produced hints by where the text came from.
	HintsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guess_hints_total",
		Help: "Hints produced, by source (model or fallback).",
	}, []string{"source"})

	// CredentialChecksTotal counts credential probes by result.
	CredentialChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guess_credential_checks_total",
		Help: "Credential probe results (ok or rejected).",
	}, []string{"result"})

	GuessesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guess_guesses_total",
		Help: "Valid guesses recorded.",
	})

	RoundsWonTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guess_rounds_won_total",
		Help: "Rounds finished with a correct guess.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guess_active_sessions",
		Help: "Play sessions currently held in memory.",
	})
)

// ObserveHint records one hint outcome.
func ObserveHint(fallback bool) {
	if fallback {
		HintsTotal.WithLabelValues(SourceFallback).Inc()
		return
	}
	HintsTotal.WithLabelValues(SourceModel).Inc()
}

// ObserveCredential records one credential probe.
func ObserveCredential(ok bool) {
	if ok {
		CredentialChecksTotal.WithLabelValues("ok").Inc()
		return
	}
	CredentialChecksTotal.WithLabelValues("rejected").Inc()
}
