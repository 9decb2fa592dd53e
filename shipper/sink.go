package shipper

import (
	"github.com/relayhive/shipper/logger"
	"github.com/relayhive/shipper/transmit"
)

// eventSink bridges a Shipper's own transmission engine back into
// logger.EventSink, letting a TelemetryLogger ship its log lines through
// the same sender its owner uses for everything else. It lives here,
// rather than in package transmit or package logger, specifically to
// avoid either of those packages importing the other.
type eventSink struct {
	shipper  *Shipper
	apiHost  string
	writeKey string
}

// NewEventSink adapts s into a logger.EventSink, so a TelemetryLogger
// built over it ships its own diagnostic events through s's sender.
// apiHost/writeKey address the same Honeycomb environment s's primary
// events go to; the sink's dataset comes from each HoneycombEvent.
func NewEventSink(s *Shipper, apiHost, writeKey string) logger.EventSink {
	return &eventSink{shipper: s, apiHost: apiHost, writeKey: writeKey}
}

func (e *eventSink) SendEvent(ev logger.HoneycombEvent) error {
	e.shipper.SendPresampledEvent(&transmit.ValidatedEvent{
		Timestamp:  ev.Timestamp,
		APIHost:    e.apiHost,
		WriteKey:   e.writeKey,
		Dataset:    ev.Dataset,
		SampleRate: 1,
		PostData:   ev.Data,
	})
	return nil
}
