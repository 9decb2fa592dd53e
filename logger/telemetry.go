package logger

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	dynsampler "github.com/honeycombio/dynsampler-go"
)

// HoneycombEvent is the shape logger needs from an event in order to ship
// its own diagnostic lines out through the same transmission engine it's
// logging about. It is deliberately a copy of the fields transmit.ValidatedEvent
// carries, not an import of that type, so this package never depends on
// transmit: the shipper package is the one place that knows about both.
type HoneycombEvent struct {
	Timestamp time.Time
	Dataset   string
	Data      map[string]any
}

// EventSink is the capability TelemetryLogger needs to ship a log line
// somewhere: normally *transmit.BaseSender, adapted in package shipper.
type EventSink interface {
	SendEvent(ev HoneycombEvent) error
}

// TelemetryLogger ships the module's own diagnostic log lines through the
// wired EventSink instead of (or in addition to) stdout, sampling noisy
// keys down with a per-key throughput sampler so a log storm in one
// destination doesn't drown out everything else. This mirrors the
// teacher's HoneycombLogger, which sends its own logs through libhoney.
type TelemetryLogger struct {
	mu       sync.Mutex
	sink     EventSink
	dataset  string
	sampler  *dynsampler.PerKeyThroughput
	fallback Logger
	level    string
}

// NewTelemetryLogger builds a dogfooding logger that ships to sink under
// dataset, sampling each distinct severity+message key down to roughly
// perKeyPerSec events/sec once it exceeds that rate. fallback receives
// every line unconditionally (typically a LogrusLogger writing to stderr)
// so operators still have something to read if the sink itself is down.
func NewTelemetryLogger(sink EventSink, dataset string, perKeyPerSec int, fallback Logger) *TelemetryLogger {
	if fallback == nil {
		fallback = &NullLogger{}
	}
	s := &dynsampler.PerKeyThroughput{
		PerKeyThroughputPerSec: perKeyPerSec,
		ClearFrequencySec:      30,
	}
	s.Start()
	return &TelemetryLogger{
		sink:     sink,
		dataset:  dataset,
		sampler:  s,
		fallback: fallback,
		level:    "info",
	}
}

func (t *TelemetryLogger) Debug() Entry { return t.entry("debug") }
func (t *TelemetryLogger) Info() Entry  { return t.entry("info") }
func (t *TelemetryLogger) Warn() Entry  { return t.entry("warn") }
func (t *TelemetryLogger) Error() Entry { return t.entry("error") }

func (t *TelemetryLogger) entry(severity string) Entry {
	return &telemetryEntry{
		owner:    t,
		severity: severity,
		fields:   map[string]any{},
	}
}

func (t *TelemetryLogger) SetLevel(level string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.level = level
	return t.fallback.SetLevel(level)
}

type telemetryEntry struct {
	owner    *TelemetryLogger
	severity string
	fields   map[string]any
}

func (e *telemetryEntry) WithField(key string, value any) Entry {
	e.fields[key] = value
	return e
}

func (e *telemetryEntry) WithFields(fields map[string]any) Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

func (e *telemetryEntry) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	var fallbackEntry Entry
	switch e.severity {
	case "debug":
		fallbackEntry = e.owner.fallback.Debug()
	case "warn":
		fallbackEntry = e.owner.fallback.Warn()
	case "error":
		fallbackEntry = e.owner.fallback.Error()
	default:
		fallbackEntry = e.owner.fallback.Info()
	}
	fallbackEntry.WithFields(e.fields).Logf("%s", msg)

	key := e.severity + ":" + msg
	rate := e.owner.sampler.GetSampleRate(key)
	if rate > 1 && rand.Intn(rate) != 0 {
		return
	}

	data := make(map[string]any, len(e.fields)+2)
	for k, v := range e.fields {
		data[k] = v
	}
	data["severity"] = e.severity
	data["message"] = msg

	_ = e.owner.sink.SendEvent(HoneycombEvent{
		Timestamp: time.Now(),
		Dataset:   e.owner.dataset,
		Data:      data,
	})
}
