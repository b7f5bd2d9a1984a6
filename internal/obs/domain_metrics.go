package obs

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/backend-troli/internal/events"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart mutations by event topic.
	CartMutationsTotal *prometheus.CounterVec
	// PromotionApplyTotal counts promotion apply attempts by outcome.
	PromotionApplyTotal *prometheus.CounterVec
	// PersistTasksTotal counts snapshot persistence outcomes on the worker.
	PersistTasksTotal *prometheus.CounterVec
	// ActiveCarts tracks the number of cart sessions held in memory.
	ActiveCarts prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by event topic.",
		}, []string{"topic"})
		PromotionApplyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_apply_total",
			Help:      "Count of promotion apply attempts by outcome.",
		}, []string{"result"})
		PersistTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_persist_tasks_total",
			Help:      "Count of cart snapshot persistence outcomes.",
		}, []string{"result"})
		ActiveCarts = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_carts",
			Help:      "Number of cart sessions currently held in memory.",
		})

		mustRegisterCollector(reg, CartMutationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartMutationsTotal = v
			}
		})
		mustRegisterCollector(reg, PromotionApplyTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PromotionApplyTotal = v
			}
		})
		mustRegisterCollector(reg, PersistTasksTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PersistTasksTotal = v
			}
		})
		mustRegisterCollector(reg, ActiveCarts, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				ActiveCarts = v
			}
		})
	})
}

// MutationRecorder increments the mutation counter for every event on the
// bus. Registered as a notifier alongside the persister.
type MutationRecorder struct{}

// Notify implements events.Notifier.
func (MutationRecorder) Notify(_ context.Context, ev events.Event) error {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(ev.Topic).Inc()
	}
	return nil
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
