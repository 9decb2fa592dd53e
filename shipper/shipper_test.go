package shipper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayhive/shipper/logger"
	"github.com/relayhive/shipper/metrics"
	"github.com/relayhive/shipper/transmit"
)

func newTestShipper(sender transmit.Sender) *Shipper {
	return &Shipper{
		Logger:  &logger.NullLogger{},
		Metrics: &metrics.NullMetrics{},
		Sender:  sender,
	}
}

func TestStartAssignsAnIDOnlyOnce(t *testing.T) {
	s := newTestShipper(&transmit.MockSender{})
	require.NoError(t, s.Start())
	first := s.ID
	require.NoError(t, s.Start())
	assert.Equal(t, first, s.ID)
}

func TestSendEventDelegatesToActiveSender(t *testing.T) {
	mock := &transmit.MockSender{}
	s := newTestShipper(mock)

	s.SendPresampledEvent(&transmit.ValidatedEvent{Timestamp: time.Now(), Dataset: "d", SampleRate: 1})
	require.Len(t, mock.All(), 1)
}

func TestSwapReturnsOldSendersDrainSignal(t *testing.T) {
	oldMock := &transmit.MockSender{}
	s := newTestShipper(oldMock)

	newMock := &transmit.MockSender{}
	drained := s.Swap(newMock)

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("old sender's flush never resolved")
	}

	s.SendPresampledEvent(&transmit.ValidatedEvent{Timestamp: time.Now(), Dataset: "d", SampleRate: 1})
	assert.Len(t, newMock.All(), 1)
	assert.Len(t, oldMock.All(), 0)
}

func TestCloseDrainsAndDiscardsTheActiveSender(t *testing.T) {
	mock := &transmit.MockSender{}
	s := newTestShipper(mock)
	require.NoError(t, s.Close())

	s.SendPresampledEvent(&transmit.ValidatedEvent{Timestamp: time.Now(), Dataset: "d", SampleRate: 1})
	assert.Len(t, mock.All(), 0, "events after Close should land on the NullSender, not the old mock")
}

func TestEventSinkShipsThroughTheActiveSender(t *testing.T) {
	mock := &transmit.MockSender{}
	s := newTestShipper(mock)
	sink := NewEventSink(s, "https://api.honeycomb.io/", "wk")

	require.NoError(t, sink.SendEvent(logger.HoneycombEvent{
		Timestamp: time.Now(),
		Dataset:   "shipper-internal",
		Data:      map[string]any{"severity": "error", "message": "boom"},
	}))

	got := mock.All()
	require.Len(t, got, 1)
	assert.Equal(t, "shipper-internal", got[0].Dataset)
	assert.Equal(t, "wk", got[0].WriteKey)
}
