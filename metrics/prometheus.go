package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*PromMetrics)(nil)

// PromMetrics registers every metric with a dedicated prometheus.Registerer
// and serves them on ListenAddr. Metric names must be registered once via
// Register before any of the increment/observe methods touch them; a
// second Register for the same name is a no-op, matching the teacher's
// "don't re-register, it panics" discipline.
type PromMetrics struct {
	ListenAddr string
	Prefix     string

	registry *prometheus.Registry

	lock       sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
	updowns    map[string]prometheus.Gauge
}

func NewPromMetrics(listenAddr, prefix string) *PromMetrics {
	return &PromMetrics{
		ListenAddr: listenAddr,
		Prefix:     prefix,
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
		updowns:    make(map[string]prometheus.Gauge),
	}
}

// Start serves /metrics on ListenAddr. It is not part of the Metrics
// interface; callers that want the HTTP endpoint call it explicitly after
// construction.
func (p *PromMetrics) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
	go http.ListenAndServe(p.ListenAddr, mux)
	return nil
}

func (p *PromMetrics) Register(m Metadata) {
	p.lock.Lock()
	defer p.lock.Unlock()

	name := PrefixName(p.Prefix, m.Name)
	switch m.Type {
	case Counter:
		if _, ok := p.counters[m.Name]; ok {
			return
		}
		c := promauto.With(p.registry).NewCounter(prometheus.CounterOpts{Name: name, Help: m.Description})
		p.counters[m.Name] = c
	case Gauge:
		if _, ok := p.gauges[m.Name]; ok {
			return
		}
		g := promauto.With(p.registry).NewGauge(prometheus.GaugeOpts{Name: name, Help: m.Description})
		p.gauges[m.Name] = g
	case Histogram:
		if _, ok := p.histograms[m.Name]; ok {
			return
		}
		h := promauto.With(p.registry).NewHistogram(prometheus.HistogramOpts{Name: name, Help: m.Description})
		p.histograms[m.Name] = h
	case UpDown:
		if _, ok := p.updowns[m.Name]; ok {
			return
		}
		g := promauto.With(p.registry).NewGauge(prometheus.GaugeOpts{Name: name, Help: m.Description})
		p.updowns[m.Name] = g
	}
}

func (p *PromMetrics) Increment(name string) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if c, ok := p.counters[name]; ok {
		c.Inc()
	}
}

func (p *PromMetrics) Count(name string, val any) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if c, ok := p.counters[name]; ok {
		c.Add(ConvertNumeric(val))
	}
}

func (p *PromMetrics) Gauge(name string, val any) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if g, ok := p.gauges[name]; ok {
		g.Set(ConvertNumeric(val))
	}
}

func (p *PromMetrics) Histogram(name string, val any) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if h, ok := p.histograms[name]; ok {
		h.Observe(ConvertNumeric(val))
	}
}

func (p *PromMetrics) Up(name string) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if g, ok := p.updowns[name]; ok {
		g.Inc()
	}
}

func (p *PromMetrics) Down(name string) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if g, ok := p.updowns[name]; ok {
		g.Dec()
	}
}
