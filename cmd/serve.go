package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bebsworthy/plxdemo/internal/days"
	"github.com/bebsworthy/plxdemo/internal/exercise"
	"github.com/bebsworthy/plxdemo/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve parse and day lookup as MCP tools on stdio",
	Long: `Start an MCP (Model Context Protocol) server on stdin/stdout that provides:
- parse_exercise: parse raw exercise text with the configured parser
- day_name: resolve a day-of-week code to its name

The server runs until stdin is closed. Logs go to stderr so they never mix
with protocol messages.`,
	Example: `  # Start the MCP server
  plxdemo serve

  # With debug logging on stderr
  plxdemo serve --verbose`,
	Args: maxArgs(0),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config := GetConfig()
	log := logger("server")

	parser, err := exercise.NewParser(config.Parser.Kind, config.Parser.Fallback,
		config.Parser.StubTitle, config.Parser.StubSolution, log)
	if err != nil {
		return err
	}
	lang, err := days.ParseLanguage(config.Days.Language)
	if err != nil {
		return err
	}

	mcpServer, err := server.NewMCPServer(server.Options{
		Parser:   parser,
		Language: lang,
		Version:  Version,
		Logger:   log,
		Monitor:  monitor,
	})
	if err != nil {
		return err
	}

	if verbose || config.Logging.Verbose {
		fmt.Fprintf(os.Stderr, "Starting plxdemo MCP server on stdio\n")
		fmt.Fprintf(os.Stderr, "Parser: %s\n", parser.Name())
		fmt.Fprintf(os.Stderr, "Day names: %s\n", lang)
	}

	err = mcpServer.Serve()
	monitor.LogMetricsSummary(cmd.Context())
	if err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
