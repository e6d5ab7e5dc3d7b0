// Package connectivity blocks until the network answers a TCP probe.
package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultProbeAddress is a public DNS resolver reachable from most networks.
	DefaultProbeAddress = "8.8.8.8:53"
	// DefaultProbeTimeout bounds a single probe attempt.
	DefaultProbeTimeout = 3 * time.Second
	// DefaultRetryInterval separates consecutive probe attempts.
	DefaultRetryInterval = 3 * time.Second

	networkTCPConstant                     = "tcp"
	proberMissingMessageConstant           = "connectivity prober not configured"
	waitAbortedMessageConstant             = "waiting for network connectivity aborted"
	waitAbortedErrorTemplateConstant       = "%w: %w"
	probeFailedLogMessageConstant          = "network unreachable, retrying"
	connectivityRestoredLogMessageConstant = "network reachable"
	logFieldProbeAddressConstant           = "probe_address"
	logFieldAttemptConstant                = "attempt"
	logFieldRetryIntervalConstant          = "retry_interval"
)

// ErrProberNotConfigured indicates a Waiter was constructed without a prober.
var ErrProberNotConfigured = errors.New(proberMissingMessageConstant)

// ErrWaitAborted indicates the wait ended before connectivity returned.
var ErrWaitAborted = errors.New(waitAbortedMessageConstant)

// Prober checks whether the network is currently reachable.
type Prober interface {
	IsReachable(executionContext context.Context) bool
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(executionContext context.Context) bool

// IsReachable implements Prober.
func (proberFunc ProberFunc) IsReachable(executionContext context.Context) bool {
	return proberFunc(executionContext)
}

// TCPProber dials a fixed address and reports whether the connection succeeds.
type TCPProber struct {
	Address string
	Timeout time.Duration
}

// IsReachable implements Prober.
func (prober TCPProber) IsReachable(executionContext context.Context) bool {
	timeout := prober.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	connection, dialError := dialer.DialContext(executionContext, networkTCPConstant, prober.Address)
	if dialError != nil {
		return false
	}
	_ = connection.Close()
	return true
}

// Options configures a Waiter.
type Options struct {
	RetryInterval time.Duration
	MaxWait       time.Duration
	Logger        *zap.Logger
}

// Waiter polls a Prober until it succeeds, the context ends, or MaxWait elapses.
type Waiter struct {
	prober        Prober
	retryInterval time.Duration
	maxWait       time.Duration
	logger        *zap.Logger
	probeLabel    string
}

// NewWaiter constructs a Waiter around prober.
func NewWaiter(prober Prober, options Options) (*Waiter, error) {
	if prober == nil {
		return nil, ErrProberNotConfigured
	}

	retryInterval := options.RetryInterval
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	probeLabel := ""
	if tcpProber, isTCPProber := prober.(TCPProber); isTCPProber {
		probeLabel = tcpProber.Address
	}

	return &Waiter{
		prober:        prober,
		retryInterval: retryInterval,
		maxWait:       options.MaxWait,
		logger:        logger,
		probeLabel:    probeLabel,
	}, nil
}

// NewTCPWaiter builds a Waiter probing address, or a Waiter that never blocks when address is empty.
func NewTCPWaiter(address string, probeTimeout time.Duration, options Options) (*Waiter, error) {
	trimmedAddress := strings.TrimSpace(address)
	if len(trimmedAddress) == 0 {
		return NewWaiter(AlwaysReachable(), options)
	}
	return NewWaiter(TCPProber{Address: trimmedAddress, Timeout: probeTimeout}, options)
}

// AlwaysReachable returns a prober that never reports an outage.
func AlwaysReachable() Prober {
	return ProberFunc(func(context.Context) bool { return true })
}

// WaitForConnection blocks until the prober succeeds.
// A MaxWait of zero waits until the context is cancelled.
func (waiter *Waiter) WaitForConnection(executionContext context.Context) error {
	waitContext := executionContext
	if waiter.maxWait > 0 {
		var cancel context.CancelFunc
		waitContext, cancel = context.WithTimeout(executionContext, waiter.maxWait)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		if waitContext.Err() != nil {
			return fmt.Errorf(waitAbortedErrorTemplateConstant, ErrWaitAborted, waitContext.Err())
		}
		if waiter.prober.IsReachable(waitContext) {
			if attempt > 1 {
				waiter.logger.Info(connectivityRestoredLogMessageConstant, zap.String(logFieldProbeAddressConstant, waiter.probeLabel), zap.Int(logFieldAttemptConstant, attempt))
			}
			return nil
		}

		waiter.logger.Debug(
			probeFailedLogMessageConstant,
			zap.String(logFieldProbeAddressConstant, waiter.probeLabel),
			zap.Int(logFieldAttemptConstant, attempt),
			zap.Duration(logFieldRetryIntervalConstant, waiter.retryInterval),
		)

		retryTimer := time.NewTimer(waiter.retryInterval)
		select {
		case <-waitContext.Done():
			retryTimer.Stop()
			return fmt.Errorf(waitAbortedErrorTemplateConstant, ErrWaitAborted, waitContext.Err())
		case <-retryTimer.C:
		}
	}
}
