package transmit

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionGroupsByDestinationPreservingOrder(t *testing.T) {
	mk := func(host, key, ds string) *ValidatedEvent {
		return &ValidatedEvent{APIHost: host, WriteKey: key, Dataset: ds, Timestamp: time.Now()}
	}

	events := []*ValidatedEvent{
		mk("a", "k", "d1"),
		mk("b", "k", "d1"),
		mk("a", "k", "d1"),
	}

	batches := partition(events)
	require.Len(t, batches, 2)
	assert.Equal(t, "a", batches[0].key.apiHost)
	assert.Len(t, batches[0].events, 2)
	assert.Equal(t, "b", batches[1].key.apiHost)
	assert.Len(t, batches[1].events, 1)
}

func TestBatchEncodeOmitsDefaultSampleRateAndEmptyData(t *testing.T) {
	b := &batch{events: []*ValidatedEvent{
		{Timestamp: time.Unix(0, 0).UTC(), SampleRate: 1},
		{Timestamp: time.Unix(0, 0).UTC(), SampleRate: 5, PostData: map[string]any{"k": "v"}},
	}}

	body, encoded := b.encode()
	require.Len(t, encoded, 2)
	assert.Contains(t, string(body), `"time":"1970-01-01T00:00:00Z"`)
	assert.NotContains(t, string(body), `"samplerate":1,`)
	assert.Contains(t, string(body), `"samplerate":5`)
	assert.Contains(t, string(body), `"k":"v"`)
}

func TestBatchEncodeSkipsEventsThatFailToMarshal(t *testing.T) {
	good := &ValidatedEvent{Timestamp: time.Now(), PostData: map[string]any{"ok": true}}
	bad := &ValidatedEvent{Timestamp: time.Now(), PostData: map[string]any{"nan": math.NaN()}}

	b := &batch{events: []*ValidatedEvent{good, bad}}
	_, encoded := b.encode()

	require.Len(t, encoded, 1)
	assert.Same(t, good, encoded[0])
	assert.Error(t, bad.encodeError)
}
