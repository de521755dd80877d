package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/plxdemo/internal/crashdemo"
	"github.com/bebsworthy/plxdemo/internal/metrics"
)

var (
	// Crash command flags
	crashUnsafe  bool
	crashRecover bool
)

// crashCmd represents the crash command
var crashCmd = &cobra.Command{
	Use:   "crash",
	Short: "Run the crashing pointer exercise (requires --unsafe-demo)",
	Long: `Run the "make it not crash" exercise: print three values from a slice, then
write through a nil pointer. The process panics and exits with a stack trace.

Nothing runs unless --unsafe-demo is given or development.unsafe_demos is set.
With --recover the panic is caught and reported as an error instead.`,
	Args: maxArgs(0),
	RunE: runCrash,
}

func init() {
	rootCmd.AddCommand(crashCmd)

	crashCmd.Flags().BoolVar(&crashUnsafe, "unsafe-demo", false, "allow the demo to crash the process")
	crashCmd.Flags().BoolVar(&crashRecover, "recover", false, "recover from the panic and report it as an error")
}

func runCrash(cmd *cobra.Command, args []string) error {
	enabled := crashUnsafe || GetConfig().Development.UnsafeDemos
	out := cmd.OutOrStdout()

	if err := crashdemo.Allowed(enabled); err != nil {
		return err
	}

	logger("crash").Warn("Running crash demo")

	if crashRecover {
		ctx := context.Background()
		timer := metrics.NewTimer("crash", monitor)
		err := crashdemo.Guarded(ctx, out, enabled)
		timer.StopWithError(ctx, err)
		monitor.TrackErr(ctx, "crash", err)
		return err
	}

	crashdemo.Run(out)
	return nil
}
