package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager interface {
	SetGauge(name string, value float64)
	IncCounter(name string)
}

type manager struct {
	mu       sync.Mutex
	gauges   map[string]prometheus.Gauge
	counters map[string]prometheus.Counter
}

func NewManager() Manager {
	return &manager{
		gauges:   make(map[string]prometheus.Gauge),
		counters: make(map[string]prometheus.Counter),
	}
}

func (m *manager) SetGauge(name string, value float64) {
	m.mu.Lock()
	gauge, ok := m.gauges[name]
	if !ok {
		gauge = promauto.NewGauge(prometheus.GaugeOpts{Name: name})
		m.gauges[name] = gauge
	}
	m.mu.Unlock()

	gauge.Set(value)
}

func (m *manager) IncCounter(name string) {
	m.mu.Lock()
	counter, ok := m.counters[name]
	if !ok {
		counter = promauto.NewCounter(prometheus.CounterOpts{Name: name})
		m.counters[name] = counter
	}
	m.mu.Unlock()

	counter.Inc()
}
