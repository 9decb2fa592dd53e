package transmit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// NullSender discards every event. Used when config.disabled is true,
// per spec.md §6.
type NullSender struct{}

var _ Sender = (*NullSender)(nil)

func (NullSender) SendEvent(*ValidatedEvent)           {}
func (NullSender) SendPresampledEvent(*ValidatedEvent) {}
func (NullSender) Flush() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

// MockSender records every event it receives, presampled or not, so tests
// can assert on exactly what a higher layer tried to send without a real
// HTTP round trip.
type MockSender struct {
	mu        sync.Mutex
	Events    []*ValidatedEvent
	Presample []*ValidatedEvent
}

var _ Sender = (*MockSender)(nil)

func (m *MockSender) SendEvent(ev *ValidatedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
}

func (m *MockSender) SendPresampledEvent(ev *ValidatedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Presample = append(m.Presample, ev)
}

func (m *MockSender) Flush() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

// All returns every event recorded by either send path: the SendEvent
// events first, then the SendPresampledEvent events, each in call order.
func (m *MockSender) All() []*ValidatedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*ValidatedEvent, 0, len(m.Events)+len(m.Presample))
	out = append(out, m.Events...)
	out = append(out, m.Presample...)
	return out
}

// WriterSender writes one JSON line per event to an io.Writer, bypassing
// sampling entirely. Covers spec.md §6's "console"/"stdout" transmission
// kinds and the deprecated "writer" kind.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Sender = (*WriterSender)(nil)

// NewWriterSender returns a sender that writes to w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

func (s *WriterSender) SendEvent(ev *ValidatedEvent)           { s.write(ev) }
func (s *WriterSender) SendPresampledEvent(ev *ValidatedEvent) { s.write(ev) }

func (s *WriterSender) write(ev *ValidatedEvent) {
	line, err := json.Marshal(struct {
		Time       string         `json:"time"`
		APIHost    string         `json:"api_host"`
		Dataset    string         `json:"dataset"`
		SampleRate int            `json:"samplerate,omitempty"`
		Data       map[string]any `json:"data,omitempty"`
	}{
		Time:       ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		APIHost:    ev.APIHost,
		Dataset:    ev.Dataset,
		SampleRate: ev.SampleRate,
		Data:       ev.PostData,
	})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, string(line))
}

func (s *WriterSender) Flush() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}
