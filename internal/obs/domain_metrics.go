package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutComputeTotal counts charge computations by the delivery rule
	// that contributed and the resolved GST category.
	CheckoutComputeTotal *prometheus.CounterVec
	// OfferWriteTotal counts offer create/update/delete outcomes.
	OfferWriteTotal *prometheus.CounterVec
	// SettingsActivationTotal counts settings activation outcomes.
	SettingsActivationTotal *prometheus.CounterVec
	// DomainEventTotal counts emitted domain events by topic.
	DomainEventTotal *prometheus.CounterVec
	// SettingsCacheLookups counts active-settings cache hits and misses.
	SettingsCacheLookups *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutComputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_compute_total",
			Help:      "Count of checkout charge computations by charge type and GST category.",
		}, []string{"charge_type", "gst_category"})
		OfferWriteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_write_total",
			Help:      "Count of offer write outcomes by action.",
		}, []string{"action", "result"})
		SettingsActivationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_activation_total",
			Help:      "Count of settings activation outcomes.",
		}, []string{"result"})
		DomainEventTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Count of emitted domain events by topic.",
		}, []string{"topic"})
		SettingsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_cache_lookups_total",
			Help:      "Count of active-settings cache lookups by outcome.",
		}, []string{"outcome"})

		for _, c := range []struct {
			collector prometheus.Collector
			reuse     func(prometheus.Collector)
		}{
			{CheckoutComputeTotal, func(e prometheus.Collector) { CheckoutComputeTotal = e.(*prometheus.CounterVec) }},
			{OfferWriteTotal, func(e prometheus.Collector) { OfferWriteTotal = e.(*prometheus.CounterVec) }},
			{SettingsActivationTotal, func(e prometheus.Collector) { SettingsActivationTotal = e.(*prometheus.CounterVec) }},
			{DomainEventTotal, func(e prometheus.Collector) { DomainEventTotal = e.(*prometheus.CounterVec) }},
			{SettingsCacheLookups, func(e prometheus.Collector) { SettingsCacheLookups = e.(*prometheus.CounterVec) }},
		} {
			mustRegisterCollector(reg, c.collector, c.reuse)
		}
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
