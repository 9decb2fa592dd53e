// Package shipper composes the config, logger, metrics, and transmit
// packages into the single object an embedding application holds: a
// Shipper accepts events, owns the active transmit.Sender, and knows how
// to swap that sender out and drain the old one (spec.md §4.6).
package shipper

import (
	"sync"

	"github.com/google/uuid"

	"github.com/relayhive/shipper/config"
	"github.com/relayhive/shipper/logger"
	"github.com/relayhive/shipper/metrics"
	"github.com/relayhive/shipper/transmit"
)

// Shipper is wired by facebookgo/inject: an embedding cmd/ populates
// Config, Logger, Metrics and Sender as an inject.Graph, then runs
// startstop.Start/Stop over the graph's objects.
type Shipper struct {
	Config  *config.Config  `inject:""`
	Logger  logger.Logger   `inject:""`
	Metrics metrics.Metrics `inject:""`
	Sender  transmit.Sender `inject:""`

	// Version is folded into the outbound User-Agent by config.BuildSender;
	// it is not otherwise used by Shipper itself.
	Version string

	// ID distinguishes this instance's log lines when a process embeds more
	// than one Shipper (e.g. one per destination dataset).
	ID uuid.UUID

	mu sync.Mutex
}

// Start satisfies startstop.Startable. The sender is built by the caller
// (via config.BuildSender) before injection, so Start only has bookkeeping
// to do, but the method exists for the lifecycle graph to call.
func (s *Shipper) Start() error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.Logger.Debug().WithField("shipper_id", s.ID.String()).Logf("shipper starting")
	return nil
}

// Stop drains the active sender before returning, satisfying
// startstop.Stoppable. It never errors: a stuck drain is the caller's
// problem to time out, not Shipper's to paper over.
func (s *Shipper) Stop() error {
	s.Logger.Debug().WithField("shipper_id", s.ID.String()).Logf("shipper stopping")
	<-s.current().Flush()
	return nil
}

func (s *Shipper) current() transmit.Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Sender
}

// SendEvent submits ev to the active sender, subject to sampling.
func (s *Shipper) SendEvent(ev *transmit.ValidatedEvent) {
	s.current().SendEvent(ev)
}

// SendPresampledEvent submits ev to the active sender, bypassing sampling.
func (s *Shipper) SendPresampledEvent(ev *transmit.ValidatedEvent) {
	s.current().SendPresampledEvent(ev)
}

// Flush returns a channel that closes once every event enqueued so far has
// either reached the wire or been finally dropped.
func (s *Shipper) Flush() <-chan struct{} {
	return s.current().Flush()
}

// Swap installs next as the active sender and returns the channel that
// closes once the previously-active sender has fully drained (spec.md
// §4.6's "transmission swap"). Events submitted after Swap returns go to
// next; Swap itself does not block on the drain.
func (s *Shipper) Swap(next transmit.Sender) <-chan struct{} {
	s.mu.Lock()
	old := s.Sender
	s.Sender = next
	s.mu.Unlock()
	return old.Flush()
}

// Close swaps in a NullSender and waits for the previous sender to drain,
// leaving the Shipper safe to discard.
func (s *Shipper) Close() error {
	<-s.Swap(transmit.NullSender{})
	return nil
}
