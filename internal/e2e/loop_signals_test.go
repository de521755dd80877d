//go:build unix

package e2e

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

func tickNumber(line string) (int, bool) {
	rest, ok := strings.CutPrefix(line, "Hello ")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	return n, err == nil
}

func waitForTick(p *Process, min int, timeout time.Duration) bool {
	_, ok := p.WaitForLine(func(line string) bool {
		n, ok := tickNumber(line)
		return ok && n >= min
	}, timeout)
	return ok
}

// TestLoopIgnoresInterruptAndTerminate sends real SIGINT and SIGTERM to the
// loop and checks that it keeps counting until SIGKILL.
func TestLoopIgnoresInterruptAndTerminate(t *testing.T) {
	p := StartProcess(t, "loop", "--interval", "50ms")

	if !waitForTick(p, 2, 5*time.Second) {
		t.Fatalf("Loop did not start ticking, stderr: %s", p.Stderr())
	}

	for _, sig := range []syscall.Signal{syscall.SIGINT, syscall.SIGTERM} {
		p.Signal(sig)

		want := fmt.Sprintf("Received %s, but ignoring it.", map[syscall.Signal]string{
			syscall.SIGINT:  "SIGINT",
			syscall.SIGTERM: "SIGTERM",
		}[sig])
		if _, ok := p.WaitForLine(func(line string) bool { return line == want }, 5*time.Second); !ok {
			t.Fatalf("Expected %q after %v, got lines %v", want, sig, p.Lines())
		}
	}

	last := 0
	for _, line := range p.Lines() {
		if n, ok := tickNumber(line); ok {
			last = n
		}
	}
	if !waitForTick(p, last+3, 5*time.Second) {
		t.Fatalf("Loop stopped counting after signals (last tick %d)", last)
	}
	if p.Exited() {
		t.Fatal("Loop exited after ignored signals")
	}

	err := p.Kill()
	if err == nil {
		t.Fatal("Expected SIGKILL to end the loop with an error status")
	}

	// Ticks are strictly increasing with no gaps.
	expected := 1
	for _, line := range p.Lines() {
		n, ok := tickNumber(line)
		if !ok {
			continue
		}
		if n != expected {
			t.Fatalf("Expected tick %d, got %d", expected, n)
		}
		expected++
	}
}

// TestLoopStopDisposition configures SIGINT to stop the loop.
func TestLoopStopDisposition(t *testing.T) {
	p := StartProcessWithEnv(t, []string{"PLXDEMO_LOOP_SIGNALS_INTERRUPT=stop"}, "loop", "--interval", "50ms")

	if !waitForTick(p, 1, 5*time.Second) {
		t.Fatalf("Loop did not start ticking, stderr: %s", p.Stderr())
	}

	p.Signal(syscall.SIGINT)

	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Loop did not stop on SIGINT with a stop disposition")
	}
	if p.err != nil {
		t.Errorf("Expected clean exit, got %v (stderr: %s)", p.err, p.Stderr())
	}
}
