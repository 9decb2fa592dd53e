package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var _ Metrics = (*OTelMetrics)(nil)

// OTelMetrics pushes every metric to an OTLP/HTTP collector on a periodic
// interval. Unlike PromMetrics and LegacyMetrics, which are scraped, this
// backend is push-based, so it needs an explicit Start/Shutdown instead of
// just serving an endpoint.
type OTelMetrics struct {
	Endpoint string
	Insecure bool
	Prefix   string

	provider *sdkmetric.MeterProvider
	meter    metric.Meter

	counters   sync.Map // map[string]metric.Float64Counter
	gauges     sync.Map // map[string]metric.Float64Gauge
	histograms sync.Map // map[string]metric.Float64Histogram
	updowns    sync.Map // map[string]metric.Float64UpDownCounter
}

func (o *OTelMetrics) Start(ctx context.Context) error {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(o.Endpoint)}
	if o.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return err
	}
	reader := sdkmetric.NewPeriodicReader(exporter)
	o.provider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	o.meter = o.provider.Meter("github.com/relayhive/shipper")
	return nil
}

func (o *OTelMetrics) Shutdown(ctx context.Context) error {
	if o.provider == nil {
		return nil
	}
	return o.provider.Shutdown(ctx)
}

func (o *OTelMetrics) Register(m Metadata) {
	name := PrefixName(o.Prefix, m.Name)
	switch m.Type {
	case Counter:
		if _, ok := o.counters.Load(m.Name); ok {
			return
		}
		if c, err := o.meter.Float64Counter(name, metric.WithDescription(m.Description)); err == nil {
			o.counters.Store(m.Name, c)
		}
	case Gauge:
		if _, ok := o.gauges.Load(m.Name); ok {
			return
		}
		if g, err := o.meter.Float64Gauge(name, metric.WithDescription(m.Description)); err == nil {
			o.gauges.Store(m.Name, g)
		}
	case Histogram:
		if _, ok := o.histograms.Load(m.Name); ok {
			return
		}
		if h, err := o.meter.Float64Histogram(name, metric.WithDescription(m.Description)); err == nil {
			o.histograms.Store(m.Name, h)
		}
	case UpDown:
		if _, ok := o.updowns.Load(m.Name); ok {
			return
		}
		if u, err := o.meter.Float64UpDownCounter(name, metric.WithDescription(m.Description)); err == nil {
			o.updowns.Store(m.Name, u)
		}
	}
}

func (o *OTelMetrics) Increment(name string) {
	if v, ok := o.counters.Load(name); ok {
		v.(metric.Float64Counter).Add(context.Background(), 1)
	}
}

func (o *OTelMetrics) Count(name string, val any) {
	if v, ok := o.counters.Load(name); ok {
		v.(metric.Float64Counter).Add(context.Background(), ConvertNumeric(val))
	}
}

func (o *OTelMetrics) Gauge(name string, val any) {
	if v, ok := o.gauges.Load(name); ok {
		v.(metric.Float64Gauge).Record(context.Background(), ConvertNumeric(val))
	}
}

func (o *OTelMetrics) Histogram(name string, val any) {
	if v, ok := o.histograms.Load(name); ok {
		v.(metric.Float64Histogram).Record(context.Background(), ConvertNumeric(val))
	}
}

func (o *OTelMetrics) Up(name string) {
	if v, ok := o.updowns.Load(name); ok {
		v.(metric.Float64UpDownCounter).Add(context.Background(), 1)
	}
}

func (o *OTelMetrics) Down(name string) {
	if v, ok := o.updowns.Load(name); ok {
		v.(metric.Float64UpDownCounter).Add(context.Background(), -1)
	}
}
