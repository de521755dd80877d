package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/plxdemo/internal/config"
	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/logging"
	"github.com/bebsworthy/plxdemo/internal/metrics"
)

var (
	// Global flags
	configFile string
	verbose    bool

	// Global configuration
	appConfig *config.Config
	configErr error

	appLogger *logging.Logger
	monitor   = metrics.NewMonitor()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plxdemo",
	Short: "plxdemo - small programs from an exercise trainer",
	Long: `plxdemo bundles the demo programs of an exercise trainer into one binary:

  loop    print "Hello <n>" forever while ignoring SIGINT and SIGTERM
  parse   turn raw exercise text into a title and solution
  day     print the name of a day of the week from its code
  crash   run the deliberately crashing pointer exercise (opt-in)
  serve   expose parse and day lookup as MCP tools on stdio

Results go to stdout, logs go to stderr.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			appLogger.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $PLXDEMO_CONFIG or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs with source locations)")

	// Bad flags are bad input, same as a missing argument.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return plxerrors.InvalidInput("%v", err)
	})
}

// maxArgs is cobra.MaximumNArgs reporting INVALID_INPUT.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return plxerrors.InvalidInput("%v", err)
		}
		return nil
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configPath := configFile
	if configPath == "" {
		// Otherwise let config package handle auto-discovery
		configPath = os.Getenv("PLXDEMO_CONFIG")
	}

	appConfig, configErr = config.LoadConfig(configPath)
	if configErr != nil {
		return
	}

	// Override verbose setting from command line flag if provided
	if verbose {
		appConfig.Logging.Verbose = true
		appConfig.Logging.Level = "debug"
	}
}

// setupLogging turns a configuration failure into an error and builds the
// process logger.
func setupLogging(cmd *cobra.Command, args []string) error {
	if configErr != nil {
		return plxerrors.ConfigError(plxerrors.CodeConfigInvalid, "failed to load configuration", configErr)
	}

	logger, err := logging.NewLogger(appConfig.Logging)
	if err != nil {
		return plxerrors.ConfigError(plxerrors.CodeConfigInvalid, "failed to create logger", err)
	}
	appLogger = logger
	logging.SetDefault(logger)
	monitor.SetLogger(logger.Logger)

	if appConfig.Logging.Verbose {
		source := configFile
		if source == "" {
			source = os.Getenv("PLXDEMO_CONFIG")
		}
		if source == "" {
			logger.Debug("No config file given, searched default locations",
				slog.Any("paths", config.GetConfigPaths()))
			source = "defaults and environment"
		}
		logger.Debug("Configuration loaded",
			slog.String("source", source),
			slog.String("command", cmd.Name()),
			slog.Bool("debug_mode", appConfig.Development.DebugMode),
		)
	}
	return nil
}

// GetConfig returns the global configuration
// This should be called after cobra initialization
func GetConfig() *config.Config {
	if appConfig == nil {
		// Fallback to default config if not initialized
		return config.DefaultConfig()
	}
	return appConfig
}

// logger returns the process logger tagged with component.
func logger(component string) *logging.Logger {
	if appLogger == nil {
		return logging.Default().Component(component)
	}
	return appLogger.Component(component)
}

// errorHints are printed under the error line for failures the user can fix.
// The first match wins.
var errorHints = []struct {
	target error
	hint   string
}{
	{plxerrors.ErrUnsafeDemoDisabled, "pass --unsafe-demo or set development.unsafe_demos to run it"},
	{plxerrors.ErrNoSolution, "add a *.sol.* file or a solution key to the description"},
	{plxerrors.ErrNoExoFiles, "an exercise directory needs at least one source file"},
	{plxerrors.ErrFileNotFound, "--dir expects a directory holding exo.toml or exo.yaml"},
	{plxerrors.ErrParseFailed, "with the parser fallback on (no --no-fallback) any text yields the placeholder record"},
	{plxerrors.ErrUnknownDay, "day codes run from 1 (Monday) to 7 (Sunday)"},
}

func hintFor(err error) string {
	for _, h := range errorHints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// PrintError writes err to w the way the CLI reports failures.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	classified := plxerrors.ClassifyError(err)
	fmt.Fprintf(w, "Error: %s\n", classified.Message)
	if hint := hintFor(classified); hint != "" {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
	if classified.Underlying != nil && (verbose || GetConfig().Logging.Verbose) {
		fmt.Fprintf(w, "  cause: %v\n", classified.Underlying)
	}
}
