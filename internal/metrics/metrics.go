// Package metrics provides in-process counters and timings for plxdemo.
//
// This package implements:
// - Operation timing (parse, day lookup, tool calls)
// - Error tracking by type and code
// - Run loop tick and signal counters
//
// Example usage:
//
//	monitor := metrics.NewMonitor()
//	err := monitor.TrackOperation(ctx, "parse", func() error {
//		_, err := parser.Parse(raw)
//		return err
//	})
//	monitor.RecordTick(n)
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// Monitor provides performance monitoring functionality
type Monitor struct {
	logger *slog.Logger
	mu     sync.RWMutex

	operations map[string]*OperationMetrics
	errors     map[string]*ErrorMetrics
	loop       *LoopMetrics

	enableTiming bool
	enableErrors bool
}

// OperationMetrics tracks metrics for specific operations
type OperationMetrics struct {
	Name            string        `json:"name"`
	Count           int64         `json:"count"`
	TotalDuration   time.Duration `json:"total_duration"`
	AverageDuration time.Duration `json:"average_duration"`
	MinDuration     time.Duration `json:"min_duration"`
	MaxDuration     time.Duration `json:"max_duration"`
	LastExecution   time.Time     `json:"last_execution"`
	Errors          int64         `json:"errors"`
	Successes       int64         `json:"successes"`
}

// ErrorMetrics tracks error occurrences and patterns
type ErrorMetrics struct {
	Type         string    `json:"type"`
	Code         string    `json:"code"`
	Count        int64     `json:"count"`
	LastOccurred time.Time `json:"last_occurred"`
	Component    string    `json:"component"`
	Message      string    `json:"message"`
}

// LoopMetrics tracks run loop progress and delivered signals
type LoopMetrics struct {
	Ticks          uint64           `json:"ticks"`
	LastTick       time.Time        `json:"last_tick"`
	Signals        map[string]int64 `json:"signals"`
	SignalsIgnored int64            `json:"signals_ignored"`
	SignalsStopped int64            `json:"signals_stopped"`
}

// NewMonitor creates a new performance monitor
func NewMonitor() *Monitor {
	return &Monitor{
		operations:   make(map[string]*OperationMetrics),
		errors:       make(map[string]*ErrorMetrics),
		loop:         &LoopMetrics{Signals: make(map[string]int64)},
		enableTiming: true,
		enableErrors: true,
	}
}

// SetLogger sets the logger for metrics output
func (m *Monitor) SetLogger(logger *slog.Logger) {
	m.logger = logger.With(slog.String("component", "metrics"))
}

// TrackOperation tracks the execution of an operation
func (m *Monitor) TrackOperation(ctx context.Context, operation string, fn func() error) error {
	if !m.enableTiming {
		return fn()
	}

	start := time.Now()
	err := fn()
	duration := time.Since(start)

	m.recordOperation(operation, duration, err == nil)

	if m.logger != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.logger.LogAttrs(ctx, slog.LevelDebug, "Operation completed",
			slog.String("operation", operation),
			slog.Duration("duration", duration),
			slog.String("status", status),
		)
	}

	return err
}

// recordOperation records operation metrics
func (m *Monitor) recordOperation(name string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics, exists := m.operations[name]
	if !exists {
		metrics = &OperationMetrics{
			Name:        name,
			MinDuration: duration,
			MaxDuration: duration,
		}
		m.operations[name] = metrics
	}

	metrics.Count++
	metrics.TotalDuration += duration
	metrics.LastExecution = time.Now()

	if duration < metrics.MinDuration {
		metrics.MinDuration = duration
	}
	if duration > metrics.MaxDuration {
		metrics.MaxDuration = duration
	}

	metrics.AverageDuration = time.Duration(int64(metrics.TotalDuration) / metrics.Count)

	if success {
		metrics.Successes++
	} else {
		metrics.Errors++
	}
}

// TrackError tracks error occurrences
func (m *Monitor) TrackError(ctx context.Context, errorType, code, component, message string) {
	if !m.enableErrors {
		return
	}

	key := errorType + ":" + code

	m.mu.Lock()
	errorMetrics, exists := m.errors[key]
	if !exists {
		errorMetrics = &ErrorMetrics{
			Type:      errorType,
			Code:      code,
			Component: component,
		}
		m.errors[key] = errorMetrics
	}

	errorMetrics.Count++
	errorMetrics.Message = message
	errorMetrics.LastOccurred = time.Now()
	count := errorMetrics.Count
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.DebugContext(ctx, "Error tracked",
			slog.String("error_type", errorType),
			slog.String("error_code", code),
			slog.String("component", component),
			slog.Int64("count", count),
		)
	}
}

// TrackErr records err under its structured type and code.
func (m *Monitor) TrackErr(ctx context.Context, component string, err error) {
	if err == nil {
		return
	}

	var plxErr *plxerrors.PlxError
	if errors.As(err, &plxErr) {
		m.TrackError(ctx, string(plxErr.Type), plxErr.Code, component, plxErr.Message)
		return
	}
	m.TrackError(ctx, string(plxerrors.ErrorTypeInternal), plxerrors.CodeUnknown, component, err.Error())
}

// RecordTick records that the loop completed tick n.
func (m *Monitor) RecordTick(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > m.loop.Ticks {
		m.loop.Ticks = n
	}
	m.loop.LastTick = time.Now()
}

// RecordSignal records a delivered signal and the action taken for it.
func (m *Monitor) RecordSignal(kind, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loop.Signals[kind]++
	switch action {
	case "ignore":
		m.loop.SignalsIgnored++
	case "stop":
		m.loop.SignalsStopped++
	}
}

// GetOperationMetrics returns metrics for a specific operation
func (m *Monitor) GetOperationMetrics(operation string) *OperationMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if metrics, exists := m.operations[operation]; exists {
		copy := *metrics
		return &copy
	}
	return nil
}

// GetAllOperationMetrics returns all operation metrics
func (m *Monitor) GetAllOperationMetrics() map[string]*OperationMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*OperationMetrics)
	for name, metrics := range m.operations {
		copy := *metrics
		result[name] = &copy
	}
	return result
}

// GetErrorMetrics returns all error metrics
func (m *Monitor) GetErrorMetrics() map[string]*ErrorMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*ErrorMetrics)
	for key, metrics := range m.errors {
		copy := *metrics
		result[key] = &copy
	}
	return result
}

// GetLoopMetrics returns a copy of the loop metrics
func (m *Monitor) GetLoopMetrics() *LoopMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	copy := *m.loop
	copy.Signals = make(map[string]int64, len(m.loop.Signals))
	for k, v := range m.loop.Signals {
		copy.Signals[k] = v
	}
	return &copy
}

// LogMetricsSummary logs a summary of all collected metrics
func (m *Monitor) LogMetricsSummary(ctx context.Context) {
	if m.logger == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.operations))
	for name := range m.operations {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		metrics := m.operations[name]
		successRate := float64(0)
		if metrics.Count > 0 {
			successRate = float64(metrics.Successes) / float64(metrics.Count) * 100
		}

		m.logger.InfoContext(ctx, "Operation metrics",
			slog.String("operation", name),
			slog.Int64("count", metrics.Count),
			slog.Duration("avg_duration", metrics.AverageDuration),
			slog.Duration("max_duration", metrics.MaxDuration),
			slog.Float64("success_rate", successRate),
		)
	}

	for _, metrics := range m.errors {
		m.logger.InfoContext(ctx, "Error metrics",
			slog.String("error_type", metrics.Type),
			slog.String("error_code", metrics.Code),
			slog.String("component", metrics.Component),
			slog.Int64("count", metrics.Count),
		)
	}

	m.logger.InfoContext(ctx, "Loop metrics",
		slog.Uint64("ticks", m.loop.Ticks),
		slog.Int64("signals_ignored", m.loop.SignalsIgnored),
		slog.Int64("signals_stopped", m.loop.SignalsStopped),
	)
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.operations = make(map[string]*OperationMetrics)
	m.errors = make(map[string]*ErrorMetrics)
	m.loop = &LoopMetrics{Signals: make(map[string]int64)}
}

// Timer provides convenient timing functionality
type Timer struct {
	start     time.Time
	operation string
	monitor   *Monitor
}

// NewTimer creates a new timer for an operation
func NewTimer(operation string, monitor *Monitor) *Timer {
	return &Timer{
		start:     time.Now(),
		operation: operation,
		monitor:   monitor,
	}
}

// StopWithError stops the timer and records success or failure
func (t *Timer) StopWithError(ctx context.Context, err error) {
	t.monitor.recordOperation(t.operation, time.Since(t.start), err == nil)
}
