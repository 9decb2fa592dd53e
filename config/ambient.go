package config

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/relayhive/shipper/logger"
	"github.com/relayhive/shipper/metrics"
)

// BuildLogger resolves LoggerConfig.Backend to a concrete logger.Logger.
// "telemetry" additionally requires sink, the EventSink its log lines
// ship through (typically a Shipper's own sender, via shipper.NewEventSink,
// wired up once the Shipper itself exists to avoid a logger->transmit
// import cycle).
func (c *LoggerConfig) BuildLogger(sink logger.EventSink) (logger.Logger, error) {
	var lgr logger.Logger
	switch c.Backend {
	case "", "logrus":
		l := logger.NewLogrusLogger()
		if err := l.SetLevel(c.Level); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		lgr = l
	case "null":
		lgr = &logger.NullLogger{}
	case "telemetry":
		if sink == nil {
			return nil, fmt.Errorf("config: telemetry logger backend requires a non-nil event sink")
		}
		fallback := logger.Logger(logrusFallback())
		t := logger.NewTelemetryLogger(sink, c.Dataset, 10, fallback)
		if err := t.SetLevel(c.Level); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		lgr = t
	default:
		return nil, fmt.Errorf("config: unknown logger backend %q", c.Backend)
	}
	return lgr, nil
}

func logrusFallback() *logger.LogrusLogger {
	l := logger.NewLogrusLogger()
	_ = l.SetLevel(logrus.InfoLevel.String())
	return l
}

// BuildMetrics resolves MetricsConfig.Backend to a concrete metrics.Metrics.
// Prometheus and OTel backends are returned unstarted; the caller is
// responsible for calling Start (prom) or Start(ctx) (otel) as part of its
// own startstop-driven lifecycle.
func (c *MetricsConfig) BuildMetrics() (metrics.Metrics, error) {
	switch c.Backend {
	case "", "null":
		return &metrics.NullMetrics{}, nil
	case "prometheus":
		return metrics.NewPromMetrics(c.ListenAddr, c.Prefix), nil
	case "legacy":
		return metrics.NewLegacyMetrics(c.Prefix), nil
	case "otel":
		if c.OTLPEndpoint == "" {
			return nil, fmt.Errorf("config: otel metrics backend requires otlp_endpoint")
		}
		return &metrics.OTelMetrics{Endpoint: c.OTLPEndpoint, Prefix: c.Prefix}, nil
	default:
		return nil, fmt.Errorf("config: unknown metrics backend %q", c.Backend)
	}
}
