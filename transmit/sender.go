package transmit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/relayhive/shipper/logger"
)

// urlCacheSize bounds the destination-URL cache; in steady state a
// shipper talks to a handful of (apiHost, dataset) pairs no matter how
// many events flow through it.
const urlCacheSize = 256

// httpSender performs the actual POST for one partition, per spec.md
// §4.5. It holds no queue state of its own; BaseSender owns scheduling.
type httpSender struct {
	client    *http.Client
	urlCache  *lru.Cache[urlCacheKey, string]
	tracer    Tracer
	logger    logger.Logger
	userAgent string
}

type urlCacheKey struct {
	apiHost string
	dataset string
}

// NewHTTPSender builds a sender whose transport is wrapped with
// otelhttp so every outbound POST produces a client span automatically;
// tracer additionally brackets each partition's post and response parse.
func NewHTTPSender(userAgent string, tracer Tracer, log logger.Logger) *httpSender {
	if tracer == nil {
		tracer = NewTracer(nil)
	}
	if log == nil {
		log = &logger.NullLogger{}
	}
	cache, _ := lru.New[urlCacheKey, string](urlCacheSize)
	return &httpSender{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		urlCache:  cache,
		tracer:    tracer,
		logger:    log,
		userAgent: userAgent,
	}
}

// send POSTs one partition and returns one outcome per event in b.events,
// including events that failed to encode (which never reach the wire).
func (s *httpSender) send(b *batch, cfg Config) []Outcome {
	body, encoded := b.encode()

	outcomes := make([]Outcome, 0, len(b.events))
	encodeFailed := make([]Outcome, 0)
	for _, ev := range b.events {
		if ev.encodeError != nil {
			encodeFailed = append(encodeFailed, Outcome{Metadata: ev.Metadata, Err: ev.encodeError})
		}
	}

	if len(encoded) == 0 {
		return encodeFailed
	}

	reqURL, err := s.resolveURL(b.key.apiHost, b.key.dataset)
	if err != nil {
		s.logger.Error().WithField("err", err.Error()).WithField("api_host", b.key.apiHost).Logf("failed to resolve batch URL")
		return append(encodeFailed, s.uniformError(encoded, newSendError(err, false))...)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "transmit.send_batch")
	span.SetAttributes(
		attribute.String("shipper.dataset", b.key.dataset),
		attribute.Int("shipper.batch_size", len(encoded)),
	)
	defer span.End()

	start := time.Now()
	resp, sendErr := s.post(ctx, reqURL, body, b.key.writeKey, cfg.BrowserContext)
	duration := time.Since(start)

	if sendErr != nil {
		span.SetStatus(codes.Error, sendErr.Error())
		timeout := errors.Is(ctx.Err(), context.DeadlineExceeded)
		return append(encodeFailed, s.uniformDurationError(encoded, newSendError(sendErr, timeout), duration)...)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, fmt.Sprintf("http %d", resp.StatusCode))
		err := newSendError(fmt.Errorf("http status %d", resp.StatusCode), false)
		return append(encodeFailed, s.uniformStatusError(encoded, resp.StatusCode, err, duration)...)
	}

	outcomes = append(outcomes, s.parseResponse(resp, encoded, duration)...)
	return append(encodeFailed, outcomes...)
}

func (s *httpSender) resolveURL(apiHost, dataset string) (string, error) {
	key := urlCacheKey{apiHost: apiHost, dataset: dataset}
	if cached, ok := s.urlCache.Get(key); ok {
		return cached, nil
	}

	base, err := url.Parse(apiHost)
	if err != nil {
		return "", err
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + batchPathSegment + url.PathEscape(dataset)
	resolved := base.String()
	s.urlCache.Add(key, resolved)
	return resolved, nil
}

// post issues the request. In a browser runtime the platform forbids
// overriding User-Agent, so per spec.md §4.5/§8 scenario 8 the same value
// is carried in X-Honeycomb-UserAgent instead.
func (s *httpSender) post(ctx context.Context, reqURL string, body []byte, writeKey string, browserContext bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set(ContentTypeHeader, jsonContentType)
	req.Header.Set(APIKeyHeader, writeKey)
	if s.userAgent != "" {
		if browserContext {
			req.Header.Set(BrowserUAHeader, s.userAgent)
		} else {
			req.Header.Set(UserAgentHeader, s.userAgent)
		}
	}
	return s.client.Do(req)
}

// parseResponse reads the batch response body with gjson, mapping
// response[i] to encoded[i] per spec.md §4.5/§9 ("implementers must
// maintain a second index while walking the original event list").
func (s *httpSender) parseResponse(resp *http.Response, encoded []*ValidatedEvent, duration time.Duration) []Outcome {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		s.logger.Error().WithField("err", err.Error()).Logf("failed to read batch response body")
		return s.uniformDurationError(encoded, newSendError(err, false), duration)
	}

	results := gjson.ParseBytes(buf.Bytes()).Array()

	outcomes := make([]Outcome, 0, len(encoded))
	for i, ev := range encoded {
		if i >= len(results) {
			outcomes = append(outcomes, Outcome{
				Metadata:   ev.Metadata,
				StatusCode: http.StatusInternalServerError,
				Duration:   duration,
				Err:        errors.New("insufficient responses from server"),
			})
			continue
		}
		r := results[i]
		status := int(r.Get("status").Int())
		var outErr error
		if errMsg := r.Get("err"); errMsg.Exists() && errMsg.Type != gjson.Null && errMsg.String() != "" {
			outErr = errors.New(errMsg.String())
		}
		outcomes = append(outcomes, Outcome{
			Metadata:   ev.Metadata,
			StatusCode: status,
			Duration:   duration,
			Err:        outErr,
		})
	}
	return outcomes
}

func (s *httpSender) uniformError(events []*ValidatedEvent, err error) []Outcome {
	out := make([]Outcome, 0, len(events))
	for _, ev := range events {
		out = append(out, Outcome{Metadata: ev.Metadata, Err: err})
	}
	return out
}

func (s *httpSender) uniformDurationError(events []*ValidatedEvent, err error, d time.Duration) []Outcome {
	out := make([]Outcome, 0, len(events))
	for _, ev := range events {
		out = append(out, Outcome{Metadata: ev.Metadata, Duration: d, Err: err})
	}
	return out
}

func (s *httpSender) uniformStatusError(events []*ValidatedEvent, status int, err error, d time.Duration) []Outcome {
	out := make([]Outcome, 0, len(events))
	for _, ev := range events {
		out = append(out, Outcome{Metadata: ev.Metadata, StatusCode: status, Duration: d, Err: err})
	}
	return out
}
