// Package signals installs a process-wide signal disposition table.
//
// A Table maps each signal kind to an Action. Install registers every kind the
// platform supports through a Source and starts one goroutine that applies the
// table to delivered signals. Kinds the platform lacks are skipped and logged.
//
// With the default table both interrupt and terminate are ignored: the process
// can then only be ended by SIGKILL (or its platform equivalent). This is a
// teaching demo of denying graceful shutdown and must not be copied into
// services.
//
// Example usage:
//
//	h, err := signals.Install(signals.OSSource{}, signals.DefaultTable(), signals.Options{
//		Logger: logger,
//		Notice: os.Stdout,
//	})
//	defer h.Close()
//	ctx, cancel := h.Context(context.Background())
package signals

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"sync/atomic"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/logging"
	"github.com/bebsworthy/plxdemo/internal/metrics"
)

// Kind names a signal independently of the platform's numbering.
type Kind string

const (
	Interrupt Kind = "interrupt"
	Terminate Kind = "terminate"
	Hangup    Kind = "hangup"
)

// SignalName returns the conventional POSIX name for the kind.
func (k Kind) SignalName() string {
	switch k {
	case Interrupt:
		return "SIGINT"
	case Terminate:
		return "SIGTERM"
	case Hangup:
		return "SIGHUP"
	default:
		return string(k)
	}
}

// Action is what the handler does when a signal of a given kind arrives.
type Action string

const (
	// ActionIgnore logs the signal and keeps running.
	ActionIgnore Action = "ignore"
	// ActionStop cancels contexts derived from Handler.Context.
	ActionStop Action = "stop"
)

// Table is a signal disposition table.
type Table map[Kind]Action

// DefaultTable ignores interrupt and terminate.
func DefaultTable() Table {
	return Table{
		Interrupt: ActionIgnore,
		Terminate: ActionIgnore,
	}
}

// TableFromConfig converts the loop.signals config section into a Table.
// Entries override DefaultTable; kinds the section leaves out keep their
// default action and an empty action counts as left out.
func TableFromConfig(m map[string]string) (Table, error) {
	table := DefaultTable()
	for kind, action := range m {
		if action == "" {
			continue
		}
		table[Kind(kind)] = Action(action)
	}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Kinds returns the table's kinds in a stable order.
func (t Table) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t))
	for k := range t {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func (t Table) validate() error {
	if len(t) == 0 {
		return plxerrors.InvalidInput("signal disposition table is empty")
	}
	for _, kind := range t.Kinds() {
		switch kind {
		case Interrupt, Terminate, Hangup:
		default:
			return plxerrors.InvalidInput("unknown signal kind %q", kind)
		}
		switch t[kind] {
		case ActionIgnore, ActionStop:
		default:
			return plxerrors.InvalidInput("unknown action %q for %s", t[kind], kind)
		}
	}
	return nil
}

// Source abstracts signal registration so tests can deliver signals without
// touching the real process.
type Source interface {
	// Notify registers c to receive the given signals.
	Notify(c chan<- os.Signal, sig ...os.Signal)
	// Stop unregisters c. No signals are sent on c after Stop returns.
	Stop(c chan<- os.Signal)
}

// OSSource delivers real process signals through os/signal.
type OSSource struct{}

// Notify implements Source.
func (OSSource) Notify(c chan<- os.Signal, sig ...os.Signal) {
	signal.Notify(c, sig...)
}

// Stop implements Source.
func (OSSource) Stop(c chan<- os.Signal) {
	signal.Stop(c)
}

// Options configures the handler's side effects.
type Options struct {
	Logger  *logging.Logger
	Monitor *metrics.Monitor
	// Notice receives one human-readable line per ignored signal.
	Notice io.Writer
}

// Handler applies an installed Table to delivered signals.
type Handler struct {
	table      Table
	source     Source
	ch         chan os.Signal
	byName     map[os.Signal]Kind
	registered []Kind
	skipped    []Kind

	logger  *logging.Logger
	monitor *metrics.Monitor
	notice  io.Writer

	received atomic.Uint64
	ignored  atomic.Uint64

	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// Install registers every kind in table with source and starts handling.
// The table is copied; later changes to it have no effect.
func Install(source Source, table Table, opts Options) (*Handler, error) {
	if source == nil {
		source = OSSource{}
	}
	if err := table.validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notice := opts.Notice
	if notice == nil {
		notice = io.Discard
	}

	h := &Handler{
		table:   make(Table, len(table)),
		source:  source,
		ch:      make(chan os.Signal, 4),
		byName:  make(map[os.Signal]Kind),
		logger:  logger,
		monitor: opts.Monitor,
		notice:  notice,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	var sigs []os.Signal
	for _, kind := range table.Kinds() {
		h.table[kind] = table[kind]

		sig, ok := lookup(kind)
		if !ok {
			err := plxerrors.SignalError(plxerrors.CodeUnsupportedSignal,
				fmt.Sprintf("%s is not available on this platform", kind.SignalName()), nil).
				WithDetails("kind", string(kind))
			logger.LogAttrs(context.Background(), slog.LevelWarn, "Skipping signal registration", err.LogAttrs()...)
			h.skipped = append(h.skipped, kind)
			continue
		}

		h.byName[sig] = kind
		h.registered = append(h.registered, kind)
		sigs = append(sigs, sig)
	}

	if len(sigs) > 0 {
		source.Notify(h.ch, sigs...)
	}

	go h.handle()

	logger.Debug("Signal dispositions installed",
		slog.Any("registered", h.registered),
		slog.Any("skipped", h.skipped),
	)

	return h, nil
}

// handle runs until Close. Work per signal is bounded and never waits on the
// run loop.
func (h *Handler) handle() {
	defer close(h.done)

	for sig := range h.ch {
		kind, ok := h.byName[sig]
		if !ok {
			continue
		}
		h.received.Add(1)
		action := h.table[kind]
		if h.monitor != nil {
			h.monitor.RecordSignal(string(kind), string(action))
		}

		switch action {
		case ActionIgnore:
			h.ignored.Add(1)
			fmt.Fprintf(h.notice, "Received %s, but ignoring it.\n", kind.SignalName())
			h.logger.Warn("Signal ignored", slog.String("signal", kind.SignalName()))
		case ActionStop:
			h.logger.Info("Signal received, stopping", slog.String("signal", kind.SignalName()))
			h.stopOnce.Do(func() { close(h.stopCh) })
		}
	}
}

// Registered returns the kinds that were registered with the source.
func (h *Handler) Registered() []Kind {
	return append([]Kind(nil), h.registered...)
}

// Skipped returns the kinds the platform does not support.
func (h *Handler) Skipped() []Kind {
	return append([]Kind(nil), h.skipped...)
}

// Disposition returns the action installed for kind.
func (h *Handler) Disposition(kind Kind) (Action, bool) {
	action, ok := h.table[kind]
	return action, ok
}

// Received returns the number of handled signals.
func (h *Handler) Received() uint64 {
	return h.received.Load()
}

// Ignored returns the number of signals that were ignored.
func (h *Handler) Ignored() uint64 {
	return h.ignored.Load()
}

// Stopped is closed the first time a signal with ActionStop arrives.
func (h *Handler) Stopped() <-chan struct{} {
	return h.stopCh
}

// Context returns a context that is cancelled when a stop disposition fires.
// With a table of only ignore actions it is never cancelled by signals.
func (h *Handler) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-h.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Close unregisters the handler and waits for its goroutine to exit.
func (h *Handler) Close() error {
	h.closeOnce.Do(func() {
		h.source.Stop(h.ch)
		close(h.ch)
	})
	<-h.done
	return nil
}
