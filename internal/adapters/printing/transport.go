// Package printing carries the raw-socket transport that streams
// rendered payloads to network label printers.
package printing

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	domain "github.com/tbg-logistics/wms-labeler/internal/domain/printing"
	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// Transport defaults. ZPL printers accept a short-lived connection per
// label and close on receiver FIN; there is no application framing.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultIOTimeout      = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultRetryBase      = 1 * time.Second

	// maxBackoffShift caps the exponential delay multiplier.
	maxBackoffShift = 30
)

// Dialer abstracts net dialing for tests.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Transport sends rendered payloads to printers over TCP with bounded
// retry and exponential backoff.
type Transport struct {
	connectTimeout time.Duration
	ioTimeout      time.Duration
	maxRetries     int
	retryBase      time.Duration
	dialer         Dialer
	limiter        *rate.Limiter
	logger         *zap.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithTimeouts overrides the connect and read/write deadlines.
func WithTimeouts(connect, io time.Duration) Option {
	return func(t *Transport) {
		t.connectTimeout = connect
		t.ioTimeout = io
	}
}

// WithRetry overrides the retry count and base delay.
func WithRetry(maxRetries int, base time.Duration) Option {
	return func(t *Transport) {
		t.maxRetries = maxRetries
		t.retryBase = base
	}
}

// WithDialer substitutes the dialer (tests).
func WithDialer(d Dialer) Option {
	return func(t *Transport) {
		t.dialer = d
	}
}

// WithSendLimiter paces sends so a burst of labels cannot overrun a
// printer's input buffer.
func WithSendLimiter(l *rate.Limiter) Option {
	return func(t *Transport) {
		t.limiter = l
	}
}

// NewTransport builds a transport with the default timing policy.
func NewTransport(logger *zap.Logger, opts ...Option) *Transport {
	t := &Transport{
		connectTimeout: DefaultConnectTimeout,
		ioTimeout:      DefaultIOTimeout,
		maxRetries:     DefaultMaxRetries,
		retryBase:      DefaultRetryBase,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.dialer == nil {
		t.dialer = &net.Dialer{Timeout: t.connectTimeout}
	}
	return t
}

// Send streams one payload to the printer, retrying on any transport
// failure up to the retry budget. Exhausting retries or an interrupted
// backoff wait returns a print error carrying the printer id, endpoint
// and last cause.
func (t *Transport) Send(ctx context.Context, printer *domain.PrinterConfig, payload []byte) error {
	endpoint := printer.Endpoint()
	attempts := t.maxRetries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return shared.NewPrintError(fmt.Sprintf("send to printer %s (%s) interrupted", printer.ID, endpoint), err)
			}
		}
		err := t.sendOnce(ctx, endpoint, payload)
		if err == nil {
			if attempt > 1 {
				t.logger.Info("printer send recovered after retry",
					zap.String("printer", printer.ID), zap.Int("attempt", attempt))
			}
			return nil
		}
		lastErr = err
		t.logger.Warn("printer send attempt failed",
			zap.String("printer", printer.ID),
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == attempts {
			break
		}
		if err := t.backoff(ctx, attempt); err != nil {
			return shared.NewPrintError(fmt.Sprintf("retry wait for printer %s (%s) interrupted", printer.ID, endpoint), err)
		}
	}

	return shared.NewPrintError(
		fmt.Sprintf("printer %s (%s) unreachable after %d attempts", printer.ID, endpoint, attempts),
		lastErr)
}

// sendOnce performs one connect-write-close cycle under deadlines.
func (t *Transport) sendOnce(ctx context.Context, endpoint string, payload []byte) error {
	dialCtx, cancel := context.WithTimeout(ctx, t.connectTimeout)
	defer cancel()

	conn, err := t.dialer.DialContext(dialCtx, "tcp", endpoint)
	if err != nil {
		return fmt.Errorf("connect %s: %w", endpoint, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(t.ioTimeout)); err != nil {
		return fmt.Errorf("set deadline %s: %w", endpoint, err)
	}
	for written := 0; written < len(payload); {
		n, err := conn.Write(payload[written:])
		if err != nil {
			return fmt.Errorf("write %s: %w", endpoint, err)
		}
		written += n
	}
	return nil
}

// backoff sleeps base << (attempt-1), cancellation-aware.
func (t *Transport) backoff(ctx context.Context, attempt int) error {
	shift := attempt - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	delay := t.retryBase << shift

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TestConnectivity probes the printer with a single connect. It never
// returns an error; unreachable printers report false.
func (t *Transport) TestConnectivity(ctx context.Context, printer *domain.PrinterConfig) bool {
	dialCtx, cancel := context.WithTimeout(ctx, t.connectTimeout)
	defer cancel()

	conn, err := t.dialer.DialContext(dialCtx, "tcp", printer.Endpoint())
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
