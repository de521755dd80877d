package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/plxdemo/internal/days"
	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

var (
	// Day command flags
	dayLang   string
	dayStrict bool
)

// dayCmd represents the day command
var dayCmd = &cobra.Command{
	Use:   "day <code>",
	Short: "Print the name of a day of the week",
	Long: `Print the name of the day with the given code, 1 for Monday through 7
for Sunday. Other numbers are reported as an unknown day; with --strict they
are an error. A missing or non-numeric code is an error.`,
	Example: `  plxdemo day 3
  plxdemo day 3 --lang en`,
	Args: maxArgs(1),
	RunE: runDay,
}

func init() {
	rootCmd.AddCommand(dayCmd)

	dayCmd.Flags().StringVar(&dayLang, "lang", "", "language of the day name: fr or en (overrides config)")
	dayCmd.Flags().BoolVar(&dayStrict, "strict", false, "treat codes outside 1..7 as an error")
}

func runDay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 0 {
		err := plxerrors.InvalidInput("missing day code")
		monitor.TrackErr(ctx, "day", err)
		return err
	}

	langName := GetConfig().Days.Language
	if dayLang != "" {
		langName = dayLang
	}
	lang, err := days.ParseLanguage(langName)
	if err != nil {
		return err
	}

	var result days.Result
	err = monitor.TrackOperation(ctx, "day", func() error {
		var err error
		result, err = days.Resolve(args[0], lang)
		return err
	})
	if err != nil {
		monitor.TrackErr(ctx, "day", err)
		return err
	}

	if !result.Known {
		logger("day").Warn("Unknown day code", slog.Int("code", result.Code))
		if dayStrict {
			_, err := days.Lookup(result.Code, lang)
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Sentence(lang))
	return nil
}
