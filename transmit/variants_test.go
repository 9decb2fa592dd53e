package transmit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullSenderDiscards(t *testing.T) {
	var s Sender = NullSender{}
	s.SendEvent(&ValidatedEvent{})
	s.SendPresampledEvent(&ValidatedEvent{})
	<-s.Flush()
}

func TestMockSenderRecordsBothPaths(t *testing.T) {
	m := &MockSender{}
	m.SendEvent(&ValidatedEvent{Metadata: "a"})
	m.SendPresampledEvent(&ValidatedEvent{Metadata: "b"})

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Metadata)
	assert.Equal(t, "b", all[1].Metadata)
}

func TestWriterSenderWritesOneJSONLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSender(&buf)
	w.SendEvent(&ValidatedEvent{Timestamp: time.Unix(0, 0), Dataset: "d", PostData: map[string]any{"k": "v"}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"dataset":"d"`)
	assert.Contains(t, lines[0], `"k":"v"`)
}
