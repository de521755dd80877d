package cmd

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/plxdemo/internal/runloop"
	"github.com/bebsworthy/plxdemo/internal/signals"
)

var (
	// Loop command flags
	loopInterval time.Duration
	loopMessage  string
	loopCount    uint64

	// signalSource is replaced in tests.
	signalSource signals.Source = signals.OSSource{}
)

// loopCmd represents the loop command
var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Print Hello <n> every tick while ignoring SIGINT and SIGTERM",
	Long: `Print "Hello <n>" once per tick with an increasing counter.

By default SIGINT (Ctrl+C) and SIGTERM are caught, reported and ignored, so
the loop can only be ended with SIGKILL (kill -9). This demonstrates what
denying graceful shutdown looks like; do not copy it into real services.

The disposition of each signal comes from the loop.signals configuration
section. Setting an action to "stop" lets that signal end the loop cleanly.`,
	Example: `  # Run forever, one line per second
  plxdemo loop

  # Faster ticks, stop after ten lines
  plxdemo loop --interval 100ms --count 10

  # Let Ctrl+C end the loop
  PLXDEMO_LOOP_SIGNALS_INTERRUPT=stop plxdemo loop`,
	Args: maxArgs(0),
	RunE: runLoop,
}

func init() {
	rootCmd.AddCommand(loopCmd)

	loopCmd.Flags().DurationVar(&loopInterval, "interval", 0, "time between ticks (overrides config)")
	loopCmd.Flags().StringVar(&loopMessage, "message", "", "text printed before the counter (overrides config)")
	loopCmd.Flags().Uint64Var(&loopCount, "count", 0, "stop after this many ticks (0 runs until killed)")
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := logger("loop")

	interval := cfg.Loop.TickInterval
	if cmd.Flags().Changed("interval") {
		interval = loopInterval
	}
	message := cfg.Loop.Message
	if loopMessage != "" {
		message = loopMessage
	}

	table, err := signals.TableFromConfig(cfg.Loop.Signals)
	if err != nil {
		return err
	}

	// The handler goroutine writes notices to the same writer the loop ticks
	// to, so that writer must be safe for concurrent use. os.Stdout is.
	handler, err := signals.Install(signalSource, table, signals.Options{
		Logger:  log,
		Monitor: monitor,
		Notice:  cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}
	defer handler.Close()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := handler.Context(parent)
	defer cancel()

	loop, err := runloop.New(runloop.Config{
		Interval: interval,
		Message:  message,
		Out:      cmd.OutOrStdout(),
		Logger:   log,
		Monitor:  monitor,
		OnTick: func(n uint64) {
			if loopCount > 0 && n >= loopCount {
				cancel()
			}
		},
	})
	if err != nil {
		return err
	}

	log.Debug("Signal dispositions",
		slog.Any("registered", handler.Registered()),
		slog.Any("skipped", handler.Skipped()),
	)

	err = loop.Run(ctx)
	monitor.LogMetricsSummary(context.Background())

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
