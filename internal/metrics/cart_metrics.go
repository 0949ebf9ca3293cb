package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики операций над корзиной.
type CartMetrics struct {
	// Счётчик операций по имени и исходу (ok, out_of_stock, not_in_cart, lookup, storage, ignored)
	operations *prometheus.CounterVec

	// Время ответа склада/каталога
	lookupDuration *prometheus.HistogramVec

	// Успешные записи в PersistentStore
	commits prometheus.Counter

	// Текущее состояние корзины
	lineItems prometheus.Gauge
	units     prometheus.Gauge
}

// NewCartMetrics создаёт метрики в глобальном реестре Prometheus.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer создаёт метрики в переданном реестре (удобно для тестов).
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Total number of cart operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		lookupDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "cart_inventory_lookup_duration_seconds",
			Help:    "Duration of inventory and catalog lookups in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"lookup"}),
		commits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cart_commits_total",
			Help: "Total number of cart states written to persistent storage",
		}),
		lineItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "cart_line_items",
			Help: "Number of line items in the cart",
		}),
		units: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "cart_units",
			Help: "Total number of product units in the cart",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation увеличивает счётчик операции с указанным исходом.
func (m *CartMetrics) RecordOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// RecordLookupDuration записывает время обращения к складу или каталогу.
func (m *CartMetrics) RecordLookupDuration(lookup string, duration time.Duration) {
	if m == nil {
		return
	}
	m.lookupDuration.WithLabelValues(lookup).Observe(duration.Seconds())
}

// RecordCommit учитывает запись корзины и обновляет gauges состояния.
func (m *CartMetrics) RecordCommit(lineItems, units int) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.SetCartSize(lineItems, units)
}

// SetCartSize выставляет gauges без учёта commit (например, после загрузки из хранилища).
func (m *CartMetrics) SetCartSize(lineItems, units int) {
	if m == nil {
		return
	}
	m.lineItems.Set(float64(lineItems))
	m.units.Set(float64(units))
}
