package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// TaxCalculationsTotal counts calculations by regime and outcome.
	TaxCalculationsTotal *prometheus.CounterVec
	// TaxPayableAmount records the payable tax of successful calculations.
	TaxPayableAmount *prometheus.HistogramVec
	// TaxSlabsApplied records how many slabs a calculation touched.
	TaxSlabsApplied *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		TaxCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tax_calculations_total",
			Help:      "Count of tax calculations by regime and result.",
		}, []string{"regime", "result"})
		TaxPayableAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tax_payable_amount",
			Help:      "Distribution of computed payable tax.",
			Buckets:   []float64{0, 10000, 50000, 100000, 250000, 500000, 1000000, 5000000},
		}, []string{"regime"})
		TaxSlabsApplied = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tax_slabs_applied",
			Help:      "Number of slabs included in a calculation.",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		}, []string{"regime"})

		TaxCalculationsTotal = registerOrReuse(reg, TaxCalculationsTotal)
		TaxPayableAmount = registerOrReuse(reg, TaxPayableAmount)
		TaxSlabsApplied = registerOrReuse(reg, TaxSlabsApplied)
	})
}

// ObserveTaxCalculation records a calculation outcome. It is a no-op until
// MustRegisterDomainMetrics has run.
func ObserveTaxCalculation(regime, result string, payable float64, slabs int) {
	if TaxCalculationsTotal == nil {
		return
	}
	TaxCalculationsTotal.WithLabelValues(regime, result).Inc()
	if result != "ok" {
		return
	}
	if TaxPayableAmount != nil {
		TaxPayableAmount.WithLabelValues(regime).Observe(payable)
	}
	if TaxSlabsApplied != nil {
		TaxSlabsApplied.WithLabelValues(regime).Observe(float64(slabs))
	}
}
