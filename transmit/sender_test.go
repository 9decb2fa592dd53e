package transmit

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 5: per-event encoding failure.
func TestEncodingFailureIsolatedToOneEventInAnElevenEventPartition(t *testing.T) {
	var receivedLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		receivedLen = len(body)

		resp := make([]map[string]any, len(body))
		for i := range resp {
			resp[i] = map[string]any{"status": 202, "err": nil}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	events := make([]*ValidatedEvent, 11)
	for i := range events {
		data := map[string]any{"n": i}
		if i == 5 {
			data["bad"] = math.NaN()
		}
		events[i] = &ValidatedEvent{
			Timestamp: time.Now(), APIHost: srv.URL, WriteKey: "wk", Dataset: "d",
			SampleRate: 1, PostData: data, Metadata: i,
		}
	}

	hs := NewHTTPSender("test-shipper/1.0", nil, nil)
	outcomes := hs.send(&batch{key: destination{apiHost: srv.URL, writeKey: "wk", dataset: "d"}, events: events}, Config{Timeout: time.Second})

	assert.Equal(t, 10, receivedLen)
	require.Len(t, outcomes, 11)

	var sixthErr error
	for _, o := range outcomes {
		if o.Metadata == 5 {
			sixthErr = o.Err
		}
	}
	require.Error(t, sixthErr)
}

// Scenario 6: timeout.
func TestSlowServerProducesTimeoutOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"status":202,"err":null}]`))
	}))
	defer srv.Close()

	hs := NewHTTPSender("test-shipper/1.0", nil, nil)
	ev := &ValidatedEvent{Timestamp: time.Now(), APIHost: srv.URL, WriteKey: "wk", Dataset: "d", SampleRate: 1}
	outcomes := hs.send(&batch{key: destination{apiHost: srv.URL, writeKey: "wk", dataset: "d"}, events: []*ValidatedEvent{ev}}, Config{Timeout: 50 * time.Millisecond})

	require.Len(t, outcomes, 1)
	require.Error(t, outcomes[0].Err)
	var sendErr *SendError
	require.ErrorAs(t, outcomes[0].Err, &sendErr)
	assert.True(t, sendErr.Timeout)
}

// Scenario 7: trailing slash tolerance.
func TestResolveURLToleratesTrailingSlashOnAPIHost(t *testing.T) {
	hs := NewHTTPSender("", nil, nil)

	withSlash, err := hs.resolveURL("http://h:9999/", "d")
	require.NoError(t, err)
	assert.Equal(t, "http://h:9999/1/batch/d", withSlash)

	without, err := hs.resolveURL("http://h:9999", "d")
	require.NoError(t, err)
	assert.Equal(t, "http://h:9999/1/batch/d", without)
}

// Scenario 8: user-agent in a browser-context runtime.
func TestBrowserContextUsesXHoneycombUserAgentHeader(t *testing.T) {
	var gotUA, gotXUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotXUA = r.Header.Get("X-Honeycomb-UserAgent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	hs := NewHTTPSender("shipper-browser/1.0", nil, nil)
	resp, err := hs.post(context.Background(), srv.URL, []byte(`[]`), "wk", true)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "shipper-browser/1.0", gotXUA)
	assert.NotEqual(t, "shipper-browser/1.0", gotUA)
}
