// Package metrics exposes the counters, gauges, and histograms the
// transmission engine reports (in-flight count, queue length, batches
// sent, response errors) behind one small interface with several
// backends: Prometheus, a legacy in-process registry, OpenTelemetry, and
// a null implementation for tests.
package metrics

import "fmt"

// Type names the kind of instrument a Metadata entry registers.
type Type string

const (
	Counter   Type = "counter"
	Gauge     Type = "gauge"
	Histogram Type = "histogram"
	UpDown    Type = "updown"
)

// Unit is a hint for the metric's reported dimension; backends that don't
// care may ignore it.
type Unit string

const (
	Dimensionless Unit = "dimensionless"
	Milliseconds  Unit = "milliseconds"
	Microseconds  Unit = "microseconds"
)

// Metadata declares one metric before it is ever incremented or observed.
type Metadata struct {
	Name        string
	Type        Type
	Unit        Unit
	Description string
}

// Metrics is the capability the transmission engine needs from whatever
// metrics backend the host application chooses.
type Metrics interface {
	Register(m Metadata)
	Increment(name string)
	Gauge(name string, val any)
	Count(name string, val any)
	Histogram(name string, val any)
	Up(name string)
	Down(name string)
}

// ConvertNumeric coerces the handful of numeric types callers pass through
// Gauge/Count/Histogram into a float64, so backends only implement one
// code path regardless of whether the caller handed in an int, an int64,
// or a float64.
func ConvertNumeric(val any) float64 {
	switch n := val.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// PrefixName joins a namespace prefix onto a metric name, leaving the name
// untouched when the prefix is empty.
func PrefixName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return fmt.Sprintf("%s_%s", prefix, name)
}
