package transmit

import (
	"bytes"
	"encoding/json"
	"time"
)

// wireEvent is the JSON shape of a single event within a batch body:
// {"time": <ISO-8601>, "samplerate": <number?>, "data": <object?>}.
// samplerate is omitted when it is 1 (or unset); data is omitted when the
// event carries no payload.
type wireEvent struct {
	Time       string         `json:"time"`
	SampleRate int            `json:"samplerate,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// partition groups a cut prefix of the queue by destination, preserving
// the relative order of events within each group. Order across groups is
// the order destinations were first seen in the prefix, which is
// deterministic for tests though the spec leaves it undefined.
func partition(events []*ValidatedEvent) []*batch {
	order := make([]destination, 0, 4)
	byKey := make(map[destination]*batch, 4)

	for _, ev := range events {
		key := keyOf(ev)
		b, ok := byKey[key]
		if !ok {
			b = &batch{key: key}
			byKey[key] = b
			order = append(order, key)
		}
		b.events = append(b.events, ev)
	}

	batches := make([]*batch, 0, len(order))
	for _, key := range order {
		batches = append(batches, byKey[key])
	}
	return batches
}

// batch is an ordered set of events sharing one destination triple.
type batch struct {
	key    destination
	events []*ValidatedEvent
}

// encode serializes the batch's events into a single JSON array body.
// Events that fail to serialize get encodeError set on them and are
// omitted from both the body and the returned encoded slice; the rest of
// the batch proceeds undisturbed.
func (b *batch) encode() (body []byte, encoded []*ValidatedEvent) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	encoded = make([]*ValidatedEvent, 0, len(b.events))
	first := true
	for _, ev := range b.events {
		we := wireEvent{Time: ev.Timestamp.UTC().Format(time.RFC3339Nano)}
		if ev.SampleRate > 1 {
			we.SampleRate = ev.SampleRate
		}
		if len(ev.PostData) > 0 {
			we.Data = ev.PostData
		}

		encodedEvent, err := json.Marshal(we)
		if err != nil {
			ev.encodeError = err
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(encodedEvent)
		encoded = append(encoded, ev)
	}

	buf.WriteByte(']')
	return buf.Bytes(), encoded
}
