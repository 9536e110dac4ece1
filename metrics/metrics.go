package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the validator
type Metrics struct {
	registry *prometheus.Registry

	Validations        *prometheus.CounterVec
	DecodeFailures     *prometheus.CounterVec
	CheckDigitFailures *prometheus.CounterVec
	CredentialsIssued  prometheus.Counter
}

// New creates the collectors on their own registry, so several instances can
// live in one process
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mrz_validations_total",
			Help: "Total number of decoded lines, by check digit verdict",
		}, []string{"result"}),
		DecodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mrz_decode_failures_total",
			Help: "Total number of lines that could not be decoded, by kind",
		}, []string{"kind"}),
		CheckDigitFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mrz_check_digit_failures_total",
			Help: "Total number of failing check digits, by check",
		}, []string{"check"}),
		CredentialsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "mrz_credentials_issued_total",
			Help: "Total number of issuance requests signed for verified lines",
		}),
	}
}

func (m *Metrics) ObserveValidation(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.Validations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementDecodeFailures(kind string) {
	m.DecodeFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCheckDigitFailures(check string) {
	m.CheckDigitFailures.WithLabelValues(check).Inc()
}

func (m *Metrics) IncrementCredentialsIssued() {
	m.CredentialsIssued.Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
