package config

import (
	"fmt"
	"os"

	"github.com/relayhive/shipper/logger"
	"github.com/relayhive/shipper/metrics"
	"github.com/relayhive/shipper/transmit"
)

// NewResponseRing builds a transmit.ResponseRing sized by
// MaxResponseQueueSize (spec.md §6). Its Callback method is a ready-made
// transmit.ResponseCallback for callers that want a bounded history of
// recent outcomes instead of, or alongside, their own callback.
func (c *Config) NewResponseRing() *transmit.ResponseRing {
	return transmit.NewResponseRing(c.MaxResponseQueueSize)
}

// TransmitOptions converts the loaded Config into the narrower options
// struct the transmission engine itself understands.
func (c *Config) TransmitOptions() transmit.Config {
	return transmit.Config{
		BatchSizeTrigger:     c.BatchSizeTrigger,
		BatchTimeTrigger:     c.BatchTimeTrigger,
		MaxConcurrentBatches: c.MaxConcurrentBatches,
		PendingWorkCapacity:  c.PendingWorkCapacity,
		Timeout:              c.Timeout,
		UserAgentAddition:    c.UserAgentAddition,
		BrowserContext:       c.BrowserContext,
	}
}

// BuildSender resolves c.Transmission (or c.Disabled) to a concrete
// transmit.Sender, wiring the requested logger and metrics backends into
// the base variant. version is folded into the outbound User-Agent;
// onResp receives one outcome per submitted event (spec.md §6's
// responseCallback option).
func (c *Config) BuildSender(version string, log logger.Logger, m metrics.Metrics, onResp transmit.ResponseCallback) (transmit.Sender, error) {
	if c.Disabled {
		return transmit.NullSender{}, nil
	}

	switch c.Transmission {
	case "", TransmissionBase:
		return c.buildBaseSender(version, log, m, onResp), nil
	case TransmissionNull:
		return transmit.NullSender{}, nil
	case TransmissionMock:
		return &transmit.MockSender{}, nil
	case TransmissionConsole, TransmissionStdout, TransmissionWriter:
		return transmit.NewWriterSender(os.Stdout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransmission, c.Transmission)
	}
}

func (c *Config) buildBaseSender(version string, log logger.Logger, m metrics.Metrics, onResp transmit.ResponseCallback) transmit.Sender {
	ua := "shipper/" + version
	if c.UserAgentAddition != "" {
		ua += " " + c.UserAgentAddition
	}
	hs := transmit.NewHTTPSender(ua, nil, log)
	return transmit.NewBaseSender(c.TransmitOptions(), transmit.NewSampler(nil), hs, onResp, log, m, nil)
}
