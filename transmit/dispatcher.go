package transmit

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/pool"

	"github.com/relayhive/shipper/logger"
	"github.com/relayhive/shipper/metrics"
)

const (
	counterEnqueueErrors  = "shipper_enqueue_errors"
	counterBatchesSent    = "shipper_batches_sent"
	counterMessagesSent   = "shipper_messages_sent"
	counterResponseErrors = "shipper_response_errors"
	counterSendErrors     = "shipper_send_errors"
	updownQueuedItems     = "shipper_queued_items"
	gaugeQueueLength      = "shipper_queue_length"
	histogramSendDuration = "shipper_send_duration_us"
)

var dispatcherMetrics = []metrics.Metadata{
	{Name: counterEnqueueErrors, Type: metrics.Counter, Unit: metrics.Dimensionless, Description: "events dropped at intake (sampling or overflow)"},
	{Name: counterBatchesSent, Type: metrics.Counter, Unit: metrics.Dimensionless, Description: "batches POSTed to a destination"},
	{Name: counterMessagesSent, Type: metrics.Counter, Unit: metrics.Dimensionless, Description: "events included in a sent batch"},
	{Name: counterResponseErrors, Type: metrics.Counter, Unit: metrics.Dimensionless, Description: "per-event errors other than transport failures: server-reported errors, missing responses, and encode failures"},
	{Name: counterSendErrors, Type: metrics.Counter, Unit: metrics.Dimensionless, Description: "events whose partition failed to send at the transport level"},
	{Name: updownQueuedItems, Type: metrics.UpDown, Unit: metrics.Dimensionless, Description: "events currently queued or in flight"},
	{Name: gaugeQueueLength, Type: metrics.Gauge, Unit: metrics.Dimensionless, Description: "events waiting in the queue, not yet cut"},
	{Name: histogramSendDuration, Type: metrics.Histogram, Unit: metrics.Microseconds, Description: "HTTP send duration for a partition, recorded once per resolved outcome"},
}

// Config is the subset of spec.md §6's option table the dispatcher and
// sender need directly; the config package is responsible for producing
// one of these from a loaded Config plus applying its own defaults.
type Config struct {
	BatchSizeTrigger     int
	BatchTimeTrigger     time.Duration
	MaxConcurrentBatches int
	PendingWorkCapacity  int
	Timeout              time.Duration
	UserAgent            string
	UserAgentAddition    string
	BrowserContext       bool
}

func (c Config) withDefaults() Config {
	if c.BatchSizeTrigger <= 0 {
		c.BatchSizeTrigger = 1
	}
	if c.BatchTimeTrigger <= 0 {
		c.BatchTimeTrigger = 100 * time.Millisecond
	}
	if c.MaxConcurrentBatches <= 0 {
		c.MaxConcurrentBatches = 10
	}
	if c.PendingWorkCapacity <= 0 {
		c.PendingWorkCapacity = 10000
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// Sender is the capability exposed to application code: submit events and
// wait for a drain. spec.md §4.7 names this the "base variant"; null,
// mock, and writer variants satisfy the same interface from variants.go.
type Sender interface {
	SendEvent(ev *ValidatedEvent)
	SendPresampledEvent(ev *ValidatedEvent)
	Flush() <-chan struct{}
}

// BaseSender is the dispatcher plus HTTP sender described in spec.md
// §4.2–§4.6: a single mutex-protected owner of the queue, timer, and
// in-flight count, backed by a bounded worker pool for concurrent sends.
type BaseSender struct {
	cfg     Config
	sampler *Sampler
	clock   clockwork.Clock
	logger  logger.Logger
	metrics metrics.Metrics
	sender  *httpSender
	onResp  ResponseCallback

	mu           sync.Mutex
	queue        []*ValidatedEvent
	inFlight     int
	timer        clockwork.Timer
	timerArmed   bool
	flushWaiters []chan struct{}
	closed       bool

	pool *pool.Pool
}

// NewBaseSender constructs a ready-to-use sender. onResp is called once
// per submitted event, from whichever worker goroutine produced the
// outcome; it must be safe for concurrent invocation.
func NewBaseSender(cfg Config, sampler *Sampler, httpClient *httpSender, onResp ResponseCallback, log logger.Logger, m metrics.Metrics, clock clockwork.Clock) *BaseSender {
	cfg = cfg.withDefaults()
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	if log == nil {
		log = &logger.NullLogger{}
	}
	if m == nil {
		m = &metrics.NullMetrics{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	for _, md := range dispatcherMetrics {
		m.Register(md)
	}

	return &BaseSender{
		cfg:     cfg,
		sampler: sampler,
		clock:   clock,
		logger:  log,
		metrics: m,
		sender:  httpClient,
		onResp:  onResp,
		queue:   make([]*ValidatedEvent, 0, cfg.BatchSizeTrigger),
		pool:    pool.New().WithMaxGoroutines(cfg.MaxConcurrentBatches),
	}
}

// SendEvent runs the sampler before queuing; a sampled-out event produces
// its outcome immediately and never touches the queue.
func (b *BaseSender) SendEvent(ev *ValidatedEvent) {
	if !b.sampler.Admit(ev.SampleRate) {
		b.metrics.Increment(counterEnqueueErrors)
		b.emitDropped(Outcome{Metadata: ev.Metadata, Err: ErrSampledOut})
		return
	}
	b.SendPresampledEvent(ev)
}

// SendPresampledEvent implements spec.md §4.2's intake path: never blocks,
// drops on overflow, otherwise enqueues and triggers a cut or arms the
// timer.
func (b *BaseSender) SendPresampledEvent(ev *ValidatedEvent) {
	b.mu.Lock()

	if len(b.queue) >= b.cfg.PendingWorkCapacity {
		b.mu.Unlock()
		b.metrics.Increment(counterEnqueueErrors)
		b.emitDropped(Outcome{Metadata: ev.Metadata, Err: ErrQueueOverflow})
		return
	}

	b.queue = append(b.queue, ev)
	b.metrics.Up(updownQueuedItems)
	b.metrics.Gauge(gaugeQueueLength, float64(len(b.queue)))

	shouldCut := len(b.queue) >= b.cfg.BatchSizeTrigger
	if shouldCut {
		b.mu.Unlock()
		b.cut()
		return
	}

	b.armTimerLocked()
	b.mu.Unlock()
}

// cut implements spec.md §4.4's cut() event: take up to BatchSizeTrigger
// events from the queue front, partition them by destination, and hand
// the whole cut to one worker pool slot.
func (b *BaseSender) cut() {
	b.mu.Lock()
	if b.inFlight >= b.cfg.MaxConcurrentBatches {
		b.mu.Unlock()
		return
	}
	b.stopTimerLocked()

	n := len(b.queue)
	if n == 0 {
		b.mu.Unlock()
		return
	}
	if n > b.cfg.BatchSizeTrigger {
		n = b.cfg.BatchSizeTrigger
	}
	taken := b.queue[:n]
	rest := make([]*ValidatedEvent, len(b.queue)-n)
	copy(rest, b.queue[n:])
	b.queue = rest
	b.inFlight++
	b.mu.Unlock()

	b.pool.Go(func() {
		defer b.onBatchDone()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error().WithField("panic", r).Logf("batch send panicked")
			}
		}()
		b.sendCut(taken)
	})
}

// sendCut partitions one cut by destination and sends each partition
// sequentially, on this single worker slot, per spec.md §4.5.
func (b *BaseSender) sendCut(events []*ValidatedEvent) {
	for _, batch := range partition(events) {
		b.metrics.Increment(counterBatchesSent)
		b.metrics.Count(counterMessagesSent, len(batch.events))
		outcomes := b.sender.send(batch, b.cfg)
		for _, o := range outcomes {
			b.emit(o)
		}
	}
}

// onBatchDone implements spec.md §4.4's onBatchDone() event.
func (b *BaseSender) onBatchDone() {
	b.mu.Lock()
	b.inFlight--
	b.metrics.Gauge(gaugeQueueLength, float64(len(b.queue)))

	queueLen := len(b.queue)
	if queueLen > 0 {
		if queueLen >= b.cfg.BatchSizeTrigger {
			b.mu.Unlock()
			b.cut()
			return
		}
		b.armTimerLocked()
		b.mu.Unlock()
		return
	}

	if b.inFlight == 0 {
		waiters := b.flushWaiters
		b.flushWaiters = nil
		b.mu.Unlock()
		for _, w := range waiters {
			close(w)
		}
		return
	}
	b.mu.Unlock()
}

// Flush implements spec.md §4.6: the returned channel closes exactly once,
// after the queue drains and no batch remains in flight.
func (b *BaseSender) Flush() <-chan struct{} {
	b.mu.Lock()
	if len(b.queue) == 0 && b.inFlight == 0 {
		b.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}
	w := make(chan struct{})
	b.flushWaiters = append(b.flushWaiters, w)
	b.mu.Unlock()
	return w
}

// armTimerLocked arms the deferred batch-time-trigger timer if it is not
// already armed. Must be called with b.mu held.
func (b *BaseSender) armTimerLocked() {
	if b.timerArmed {
		return
	}
	b.timerArmed = true
	b.timer = b.clock.AfterFunc(b.cfg.BatchTimeTrigger, func() {
		b.mu.Lock()
		b.timerArmed = false
		b.mu.Unlock()
		b.cut()
	})
}

// stopTimerLocked cancels any pending timer. Must be called with b.mu
// held.
func (b *BaseSender) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerArmed = false
}

// emit delivers the outcome of an event that was enqueued (and counted via
// Up(updownQueuedItems)): sent, encode-failed, or otherwise resolved after
// reaching the queue.
func (b *BaseSender) emit(o Outcome) {
	b.metrics.Down(updownQueuedItems)
	if o.Duration > 0 {
		b.metrics.Histogram(histogramSendDuration, float64(o.Duration.Microseconds()))
	}
	if o.Err != nil {
		var sendErr *SendError
		if errors.As(o.Err, &sendErr) {
			b.metrics.Increment(counterSendErrors)
		} else {
			b.metrics.Increment(counterResponseErrors)
		}
	}
	b.deliver(o)
}

// emitDropped delivers the outcome of an event that never reached the
// queue (sampled out, or rejected for overflow), so no corresponding
// Down() is needed.
func (b *BaseSender) emitDropped(o Outcome) {
	b.deliver(o)
}

// deliver invokes the configured callback, recovering from a panic so one
// bad consumer can't take down a worker slot or the intake path.
func (b *BaseSender) deliver(o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().WithField("panic", r).Logf("response callback panicked")
		}
	}()
	if b.onResp != nil {
		b.onResp(o)
	}
}
