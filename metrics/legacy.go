package metrics

import (
	"sync"

	gometrics "github.com/rcrowley/go-metrics"
)

var _ Metrics = (*LegacyMetrics)(nil)

// LegacyMetrics backs every metric with an rcrowley/go-metrics registry
// private to the instance. It's the lightest-weight backend: nothing is
// served or pushed, and no reporter or expvar export is attached to the
// registry.
type LegacyMetrics struct {
	Prefix string

	registry gometrics.Registry

	lock    sync.RWMutex
	updowns map[string]gometrics.Counter
}

func NewLegacyMetrics(prefix string) *LegacyMetrics {
	return &LegacyMetrics{
		Prefix:   prefix,
		registry: gometrics.NewRegistry(),
		updowns:  make(map[string]gometrics.Counter),
	}
}

func (l *LegacyMetrics) Register(m Metadata) {
	name := PrefixName(l.Prefix, m.Name)
	switch m.Type {
	case Counter:
		gometrics.GetOrRegisterCounter(name, l.registry)
	case Gauge:
		gometrics.GetOrRegisterGaugeFloat64(name, l.registry)
	case Histogram:
		gometrics.GetOrRegisterHistogram(name, l.registry, gometrics.NewUniformSample(1028))
	case UpDown:
		l.lock.Lock()
		defer l.lock.Unlock()
		l.updowns[m.Name] = gometrics.GetOrRegisterCounter(name, l.registry)
	}
}

func (l *LegacyMetrics) Increment(name string) {
	gometrics.GetOrRegisterCounter(PrefixName(l.Prefix, name), l.registry).Inc(1)
}

func (l *LegacyMetrics) Count(name string, val any) {
	gometrics.GetOrRegisterCounter(PrefixName(l.Prefix, name), l.registry).Inc(int64(ConvertNumeric(val)))
}

func (l *LegacyMetrics) Gauge(name string, val any) {
	gometrics.GetOrRegisterGaugeFloat64(PrefixName(l.Prefix, name), l.registry).Update(ConvertNumeric(val))
}

func (l *LegacyMetrics) Histogram(name string, val any) {
	gometrics.GetOrRegisterHistogram(PrefixName(l.Prefix, name), l.registry, gometrics.NewUniformSample(1028)).Update(int64(ConvertNumeric(val)))
}

func (l *LegacyMetrics) Up(name string) {
	l.lock.RLock()
	c, ok := l.updowns[name]
	l.lock.RUnlock()
	if ok {
		c.Inc(1)
	}
}

func (l *LegacyMetrics) Down(name string) {
	l.lock.RLock()
	c, ok := l.updowns[name]
	l.lock.RUnlock()
	if ok {
		c.Dec(1)
	}
}
