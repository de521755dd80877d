package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bebsworthy/plxdemo/internal/config"
	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// TestNewLogger tests logger creation with different configurations
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name   string
		config config.LoggingConfig
		valid  bool
	}{
		{
			name:   "valid_text_logger",
			config: config.LoggingConfig{Level: "info", Format: "text"},
			valid:  true,
		},
		{
			name:   "valid_json_logger",
			config: config.LoggingConfig{Level: "debug", Format: "json"},
			valid:  true,
		},
		{
			name:   "invalid_level",
			config: config.LoggingConfig{Level: "invalid", Format: "text"},
			valid:  false,
		},
		{
			name:   "invalid_format",
			config: config.LoggingConfig{Level: "info", Format: "invalid"},
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)

			if tt.valid {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				if logger == nil {
					t.Error("Expected logger to be created")
				}
			} else if err == nil {
				t.Error("Expected error for invalid config")
			}

			if logger != nil {
				logger.Close()
			}
		})
	}
}

// TestLoggerOutput tests that logger produces expected output
func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLoggerWithWriter(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Debug("Debug message", slog.String("key", "value"))
	logger.Info("Info message", slog.Int("number", 42))
	logger.Warn("Warning message")
	logger.Error("Error message", slog.String("error", "test error"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 log lines, got %d", len(lines))
	}

	for i, line := range lines {
		var logEntry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &logEntry); err != nil {
			t.Errorf("Line %d is not valid JSON: %v", i+1, err)
			continue
		}

		for _, field := range []string{"time", "level", "msg"} {
			if _, ok := logEntry[field]; !ok {
				t.Errorf("Line %d missing '%s' field", i+1, field)
			}
		}
	}

	// 'error' is rewritten to 'err'
	if !strings.Contains(lines[3], `"err":"test error"`) {
		t.Errorf("Expected error key to be standardized, got %s", lines[3])
	}
}

// TestLoggerLevelFiltering tests that lower levels are dropped
func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLoggerWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("Expected info message to be filtered")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("Expected warn message to be logged")
	}
}

// TestCorrelationID tests correlation ID functionality
func TestCorrelationID(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	ctx := WithCorrelationID(context.Background(), "test-correlation-123")
	logger.InfoContext(ctx, "Test message with correlation ID")

	output := buf.String()
	if !strings.Contains(output, `"correlation_id":"test-correlation-123"`) {
		t.Errorf("Expected correlation ID in log output, got %s", output)
	}

	if GetCorrelationID(ctx) != "test-correlation-123" {
		t.Errorf("Expected correlation ID 'test-correlation-123', got '%s'", GetCorrelationID(ctx))
	}

	if GetCorrelationID(context.Background()) != "" {
		t.Error("Expected empty correlation ID")
	}
}

// TestComponentLogger tests component tagging
func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Component("loop").Info("tick")

	output := buf.String()
	if !strings.Contains(output, "component=loop") || !strings.Contains(output, "service=plxdemo") {
		t.Errorf("Expected component attributes, got %s", output)
	}

	for _, create := range []func(config.LoggingConfig) (*Logger, error){NewLoopLogger, NewServerLogger} {
		l, err := create(config.LoggingConfig{Level: "info", Format: "text"})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
			continue
		}
		l.Close()
	}
}

// TestLogError tests structured error logging
func TestLogError(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.LogError(context.Background(), "parse failed",
		plxerrors.ParseError(plxerrors.CodeParseFailed, "bad document", nil))
	logger.LogError(context.Background(), "plain failure", errors.New("boom"))

	output := buf.String()
	if !strings.Contains(output, "error_code=PARSE_FAILED") {
		t.Errorf("Expected structured error code, got %s", output)
	}
	if !strings.Contains(output, "err=boom") {
		t.Errorf("Expected plain error text, got %s", output)
	}
}

// TestLogTiming tests timing output at debug level
func TestLogTiming(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLoggerWithWriter(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.LogTiming(context.Background(), "parse", time.Now().Add(-time.Millisecond))

	if !strings.Contains(buf.String(), "operation=parse") {
		t.Errorf("Expected operation attribute, got %s", buf.String())
	}
}

// TestFileOutput tests logging to a file
func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "plxdemo.log")

	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", OutputFile: path})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("written to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("Expected message in log file, got %s", data)
	}
}

// TestDefaultLogger tests the global logger management
func TestDefaultLogger(t *testing.T) {
	t.Cleanup(func() { SetDefault(nil) })

	if Default() == nil {
		t.Fatal("Expected fallback default logger")
	}

	nop := NewNop()
	SetDefault(nop)
	if Default() != nop {
		t.Error("Expected Default to return the logger set by SetDefault")
	}
}
