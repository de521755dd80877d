// Package e2e provides end-to-end tests that run the real plxdemo binary.
//
// These tests start actual plxdemo processes and talk to them through their
// stdio and through real signals. They verify:
//
// - The loop survives SIGINT and SIGTERM and keeps counting
// - Exit codes and diagnostics of the one-shot commands
// - The MCP server over stdio using the mcp-go client
//
// Build the binary first: go build -o plxdemo . (or set PLXDEMO_BINARY).
// Tests skip when no binary is found.
package e2e

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// findBinary finds the plxdemo binary for E2E testing
func findBinary() (string, error) {
	if path := os.Getenv("PLXDEMO_BINARY"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("PLXDEMO_BINARY %q: %w", path, err)
		}
		return path, nil
	}

	// Get the current working directory (should be project root when running tests)
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	// Look in the current directory, then up to three levels above it
	for i := 0; i < 4; i++ {
		binaryPath := filepath.Join(cwd, "plxdemo")
		if info, err := os.Stat(binaryPath); err == nil && !info.IsDir() {
			return binaryPath, nil
		}
		cwd = filepath.Dir(cwd)
	}

	return "", fmt.Errorf("plxdemo binary not found. Please run 'go build -o plxdemo .' from project root")
}

// requireBinary returns the binary path or skips the test.
func requireBinary(t *testing.T) string {
	t.Helper()
	binaryPath, err := findBinary()
	if err != nil {
		t.Skipf("Skipping test: %v", err)
	}
	return binaryPath
}

// testEnv isolates the binary from any config file on the machine and keeps
// logs quiet unless asked for.
func testEnv(t *testing.T, extra ...string) []string {
	home := t.TempDir()
	env := []string{
		"HOME=" + home,
		"PLXDEMO_CONFIG=",
		"PLXDEMO_LOGGING_LEVEL=warn",
	}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "HOME=") || strings.HasPrefix(kv, "PLXDEMO_") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, extra...)
}

// Process is a running plxdemo process whose stdout is collected line by line.
type Process struct {
	t      *testing.T
	cmd    *exec.Cmd
	stderr *syncBuffer

	mu    sync.Mutex
	lines []string
	added chan struct{}
	done  chan struct{}
	err   error
}

// StartProcess starts plxdemo with args in a fresh directory.
func StartProcess(t *testing.T, args ...string) *Process {
	t.Helper()
	return StartProcessWithEnv(t, nil, args...)
}

// StartProcessWithEnv is StartProcess with extra KEY=value environment
// entries, such as PLXDEMO_ overrides.
func StartProcessWithEnv(t *testing.T, env []string, args ...string) *Process {
	t.Helper()
	binaryPath := requireBinary(t)

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = testEnv(t, env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.Fatalf("Failed to create stdout pipe: %v", err)
	}
	p := &Process{
		t:      t,
		cmd:    cmd,
		stderr: &syncBuffer{},
		added:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	cmd.Stderr = p.stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("Failed to start plxdemo: %v", err)
	}
	t.Logf("Started plxdemo %s (PID: %d)", strings.Join(args, " "), cmd.Process.Pid)

	go p.collect(stdout)

	t.Cleanup(func() {
		select {
		case <-p.done:
		default:
			_ = cmd.Process.Kill()
			<-p.done
		}
	})
	return p
}

func (p *Process) collect(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.mu.Lock()
		p.lines = append(p.lines, scanner.Text())
		p.mu.Unlock()
		select {
		case p.added <- struct{}{}:
		default:
		}
	}
	p.err = p.cmd.Wait()
	close(p.done)
}

// Lines returns the stdout lines read so far.
func (p *Process) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

// WaitForLine waits until a stdout line satisfies match.
func (p *Process) WaitForLine(match func(string) bool, timeout time.Duration) (string, bool) {
	deadline := time.After(timeout)
	for {
		for _, line := range p.Lines() {
			if match(line) {
				return line, true
			}
		}
		select {
		case <-p.added:
		case <-p.done:
			// One last look at lines read before exit.
			for _, line := range p.Lines() {
				if match(line) {
					return line, true
				}
			}
			return "", false
		case <-deadline:
			return "", false
		}
	}
}

// Exited reports whether the process has exited.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Signal sends sig to the process.
func (p *Process) Signal(sig os.Signal) {
	p.t.Helper()
	if err := p.cmd.Process.Signal(sig); err != nil {
		p.t.Fatalf("Failed to send %v: %v", sig, err)
	}
}

// Kill kills the process and waits for it.
func (p *Process) Kill() error {
	_ = p.cmd.Process.Kill()
	<-p.done
	return p.err
}

// Stderr returns what the process wrote to stderr so far.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// Result is the outcome of a one-shot command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunCommand runs plxdemo to completion.
func RunCommand(t *testing.T, args ...string) Result {
	t.Helper()
	binaryPath := requireBinary(t)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = testEnv(t)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("Failed to run plxdemo: %v", err)
	}
	return result
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
