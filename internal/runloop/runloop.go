// Package runloop implements a periodic loop that prints an increasing
// counter once per tick.
//
// Tick scheduling uses a backoff.Ticker over a constant backoff: the first
// tick fires immediately and each later one follows the previous by the
// configured interval. Run only returns when its context is done, so a
// caller that passes a context nobody cancels gets a loop that runs until
// the process is killed.
package runloop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/logging"
	"github.com/bebsworthy/plxdemo/internal/metrics"
)

// DefaultMessage is printed before the counter when none is configured.
const DefaultMessage = "Hello"

// Config contains configuration options for a Loop
type Config struct {
	Interval time.Duration
	Message  string
	Out      io.Writer
	Logger   *logging.Logger
	Monitor  *metrics.Monitor
	// OnTick is called after tick n has been printed.
	OnTick func(n uint64)
}

// Loop prints "<message> <n>" every interval.
type Loop struct {
	interval time.Duration
	message  string
	out      io.Writer
	logger   *logging.Logger
	monitor  *metrics.Monitor
	onTick   func(n uint64)

	ticks   atomic.Uint64
	running atomic.Bool
}

// New creates a Loop. The interval must be positive.
func New(cfg Config) (*Loop, error) {
	if cfg.Interval <= 0 {
		return nil, plxerrors.InvalidInput("tick interval must be positive, got %v", cfg.Interval)
	}

	l := &Loop{
		interval: cfg.Interval,
		message:  cfg.Message,
		out:      cfg.Out,
		logger:   cfg.Logger,
		monitor:  cfg.Monitor,
		onTick:   cfg.OnTick,
	}
	if l.message == "" {
		l.message = DefaultMessage
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.logger == nil {
		l.logger = logging.NewNop()
	}
	return l, nil
}

// Run ticks until ctx is done and then returns ctx.Err(). A Loop can only
// run once at a time.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return plxerrors.InternalError("LOOP_RUNNING", "loop is already running", nil)
	}
	defer l.running.Store(false)

	ticker := backoff.NewTicker(backoff.NewConstantBackOff(l.interval))
	defer ticker.Stop()

	l.logger.Info("Run loop started",
		slog.Duration("interval", l.interval),
		slog.Int("pid", os.Getpid()),
	)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Run loop stopped", slog.Uint64("ticks", l.ticks.Load()))
			return ctx.Err()
		case _, ok := <-ticker.C:
			if !ok {
				// A constant backoff never gives up, so this is unreachable
				// unless the ticker was stopped underneath us.
				return plxerrors.InternalError("TICKER_CLOSED", "tick source closed", nil)
			}
			// Both cases can be ready at once; cancellation wins.
			if ctx.Err() != nil {
				continue
			}
			l.tick()
		}
	}
}

func (l *Loop) tick() {
	n := l.ticks.Add(1)
	if _, err := fmt.Fprintf(l.out, "%s %d\n", l.message, n); err != nil {
		l.logger.Debug("Tick output failed", slog.String("error", err.Error()))
	}
	if l.monitor != nil {
		l.monitor.RecordTick(n)
	}
	if l.onTick != nil {
		l.onTick(n)
	}
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Interval returns the configured tick interval.
func (l *Loop) Interval() time.Duration {
	return l.interval
}
