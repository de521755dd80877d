// Package server provides the MCP (Model Context Protocol) interface for plxdemo.
//
// The MCP server exposes the pure plxdemo operations to language models over
// stdio using the mcp-go library. Nothing here opens a socket.
//
// Available MCP Tools:
// - parse_exercise: Parse raw exercise text into a {title, solution} record
// - day_name: Resolve a day-of-week code (1-7) to its name
//
// Available MCP Resources:
// - plxdemo://context: Usage notes for LLMs
//
// Example usage:
//
//	parser, _ := exercise.NewParser("toml", true, title, solution, logger)
//	mcpServer, err := server.NewMCPServer(server.Options{Parser: parser})
//	if err != nil {
//		return err
//	}
//	return mcpServer.Serve()
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bebsworthy/plxdemo/internal/days"
	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/exercise"
	"github.com/bebsworthy/plxdemo/internal/logging"
	"github.com/bebsworthy/plxdemo/internal/metrics"
)

// ContextResourceURI is the URI of the usage notes resource.
const ContextResourceURI = "plxdemo://context"

// Options configures an MCPServer.
type Options struct {
	Parser   exercise.Parser
	Language days.Language
	Version  string
	Logger   *logging.Logger
	Monitor  *metrics.Monitor
}

// MCPServer provides MCP interface for plxdemo using mcp-go library
type MCPServer struct {
	parser    exercise.Parser
	language  days.Language
	logger    *logging.Logger
	monitor   *metrics.Monitor
	mcpServer *server.MCPServer
	calls     atomic.Uint64
}

// ParseExerciseResponse is the parse_exercise tool result.
type ParseExerciseResponse struct {
	Parser   string            `json:"parser"`
	Exercise exercise.Exercise `json:"exercise"`
}

// NewMCPServer creates a new MCP server using mcp-go library
func NewMCPServer(opts Options) (*MCPServer, error) {
	if opts.Parser == nil {
		return nil, plxerrors.InvalidInput("MCP server needs an exercise parser")
	}
	if opts.Language == "" {
		opts.Language = days.French
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Monitor == nil {
		opts.Monitor = metrics.NewMonitor()
	}

	mcpSrv := &MCPServer{
		parser:   opts.Parser,
		language: opts.Language,
		logger:   opts.Logger,
		monitor:  opts.Monitor,
		mcpServer: server.NewMCPServer(
			"plxdemo",
			opts.Version,
			server.WithToolCapabilities(true),
			server.WithResourceCapabilities(false, false),
			server.WithInstructions("Use parse_exercise and day_name. Read "+ContextResourceURI+" for details."),
			server.WithRecovery(),
		),
	}

	mcpSrv.registerTools()
	mcpSrv.registerResources()

	return mcpSrv, nil
}

// registerTools registers all MCP tools with the mcp-go server
func (mcpSrv *MCPServer) registerTools() {
	mcpSrv.mcpServer.AddTool(
		mcp.NewTool("parse_exercise",
			mcp.WithDescription("Parse raw exercise text into a title and solution record"),
			mcp.WithString("raw",
				mcp.Required(),
				mcp.Description("Exercise text, for example an exo.toml document"),
			),
		),
		mcpSrv.handleParseExercise,
	)

	mcpSrv.mcpServer.AddTool(
		mcp.NewTool("day_name",
			mcp.WithDescription("Get the name of a day of the week from its code"),
			mcp.WithString("code",
				mcp.Required(),
				mcp.Description("Day code, 1 (Monday) to 7 (Sunday)"),
			),
			mcp.WithString("lang",
				mcp.Description("Language of the day name"),
				mcp.Enum(string(days.French), string(days.English)),
			),
		),
		mcpSrv.handleDayName,
	)
}

func (mcpSrv *MCPServer) registerResources() {
	mcpSrv.mcpServer.AddResource(
		mcp.NewResource(ContextResourceURI, "plxdemo usage notes",
			mcp.WithMIMEType("text/markdown"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      ContextResourceURI,
					MIMEType: "text/markdown",
					Text:     GetMCPContext(),
				},
			}, nil
		},
	)
}

// Serve starts the MCP server using stdio transport
func (mcpSrv *MCPServer) Serve() error {
	mcpSrv.logger.Info("Serving MCP on stdio")
	return server.ServeStdio(mcpSrv.mcpServer)
}

// Tool Handlers using mcp-go API

func (mcpSrv *MCPServer) callContext(ctx context.Context, tool string) context.Context {
	id := mcpSrv.calls.Add(1)
	return logging.WithCorrelationID(ctx, tool+"-"+strconv.FormatUint(id, 10))
}

// handleParseExercise handles the parse_exercise tool
func (mcpSrv *MCPServer) handleParseExercise(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = mcpSrv.callContext(ctx, "parse_exercise")
	raw := request.GetString("raw", "")

	var record exercise.Exercise
	err := mcpSrv.monitor.TrackOperation(ctx, "parse_exercise", func() error {
		var err error
		record, err = mcpSrv.parser.Parse(raw)
		return err
	})
	if err != nil {
		return mcpSrv.toolError(ctx, "parse_exercise", err), nil
	}

	mcpSrv.logger.InfoContext(ctx, "Exercise parsed",
		slog.String("parser", mcpSrv.parser.Name()),
		slog.String("title", record.Title()),
	)

	return jsonResult(ParseExerciseResponse{Parser: mcpSrv.parser.Name(), Exercise: record})
}

// handleDayName handles the day_name tool
func (mcpSrv *MCPServer) handleDayName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = mcpSrv.callContext(ctx, "day_name")
	args := request.GetArguments()

	// Clients send the code either as a string or as a JSON number.
	var raw string
	switch code := args["code"].(type) {
	case string:
		raw = code
	case float64:
		raw = strconv.FormatFloat(code, 'f', -1, 64)
	case nil:
	default:
		return mcpSrv.toolError(ctx, "day_name",
			plxerrors.InvalidInput("code must be a string or a number, got %T", code)), nil
	}

	lang := mcpSrv.language
	if l := request.GetString("lang", ""); l != "" {
		parsed, err := days.ParseLanguage(l)
		if err != nil {
			return mcpSrv.toolError(ctx, "day_name", err), nil
		}
		lang = parsed
	}

	var result days.Result
	err := mcpSrv.monitor.TrackOperation(ctx, "day_name", func() error {
		var err error
		result, err = days.Resolve(raw, lang)
		return err
	})
	if err != nil {
		return mcpSrv.toolError(ctx, "day_name", err), nil
	}

	if !result.Known {
		mcpSrv.logger.WarnContext(ctx, "Unknown day code", slog.Int("code", result.Code))
	}

	return jsonResult(result)
}

// toolError reports a failed call to the client as a tool-level error so the
// model can read it, instead of a protocol error.
func (mcpSrv *MCPServer) toolError(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	classified := plxerrors.ClassifyError(err).WithOperation(tool)
	mcpSrv.monitor.TrackErr(ctx, tool, classified)
	mcpSrv.logger.LogError(ctx, "Tool call failed", classified)

	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", classified.Code, classified.Message))
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}
