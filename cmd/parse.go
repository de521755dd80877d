package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/exercise"
)

var (
	// Parse command flags
	parseKind       string
	parseNoFallback bool
	parseDir        string
	parseJSON       bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse [raw]",
	Short: "Parse raw exercise text into a title and solution",
	Long: `Parse raw exercise text and print the resulting record.

The default parser reads an exo.toml style document (name, solution and an
optional instruction). Text that is not such a document falls back to a fixed
placeholder record unless --no-fallback is given. Empty input is an error.

With --dir the exercise is loaded from a directory holding exo.toml (or
exo.yaml), the exercise sources and a *.sol.* solution file.`,
	Example: `  # Placeholder record
  plxdemo parse "anything at all"

  # Real document
  plxdemo parse "$(cat exo.toml)" --no-fallback

  # Exercise directory
  plxdemo parse --dir exercises/week`,
	Args: maxArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseKind, "parser", "", "parser to use: toml, yaml or stub (overrides config)")
	parseCmd.Flags().BoolVar(&parseNoFallback, "no-fallback", false, "fail instead of falling back to the placeholder record")
	parseCmd.Flags().StringVar(&parseDir, "dir", "", "load the exercise from a directory instead of raw text")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the record as JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger("parse")
	out := cmd.OutOrStdout()

	if parseDir != "" {
		if len(args) > 0 {
			return plxerrors.InvalidInput("pass either raw text or --dir, not both")
		}
		return parseDirectory(ctx, out, parseDir)
	}

	if len(args) == 0 {
		err := plxerrors.InvalidInput("missing exercise text to parse")
		monitor.TrackErr(ctx, "parse", err)
		return err
	}
	raw := args[0]

	cfg := GetConfig().Parser
	kind := cfg.Kind
	if parseKind != "" {
		kind = parseKind
	}
	fallback := cfg.Fallback && !parseNoFallback

	parser, err := exercise.NewParser(kind, fallback, cfg.StubTitle, cfg.StubSolution, log)
	if err != nil {
		return err
	}

	var record exercise.Exercise
	err = monitor.TrackOperation(ctx, "parse", func() error {
		var err error
		record, err = parser.Parse(raw)
		return err
	})
	if err != nil {
		monitor.TrackErr(ctx, "parse", err)
		return err
	}

	log.Debug("Exercise parsed", slog.String("parser", parser.Name()), slog.String("title", record.Title()))
	return printRecord(out, raw, record)
}

func parseDirectory(ctx context.Context, out io.Writer, dir string) error {
	log := logger("parse")

	var loaded *exercise.Dir
	err := monitor.TrackOperation(ctx, "load_dir", func() error {
		var err error
		loaded, err = exercise.LoadDir(dir)
		return err
	})
	if err != nil {
		monitor.TrackErr(ctx, "parse", err)
		return err
	}

	for _, w := range loaded.Warnings {
		log.Warn("Exercise directory warning",
			slog.String("path", dir),
			slog.String("code", w.Code),
			slog.String("detail", w.Message),
		)
	}
	log.Debug("Exercise directory loaded",
		slog.String("path", dir),
		slog.String("main_file", loaded.MainFile()),
		slog.String("solution_file", loaded.SolutionFile),
		slog.Int("files", len(loaded.Files)),
		slog.Int("checks", len(loaded.Checks)),
		slog.String("state", string(loaded.Progress.State)),
		slog.Bool("favorite", loaded.Progress.Favorite),
	)

	return printRecord(out, dir, loaded.Exercise)
}

func printRecord(out io.Writer, source string, record exercise.Exercise) error {
	if parseJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Parsing '%s' result in:\n", source)
	fmt.Fprintln(out, record.String())
	return nil
}
