//go:build windows

package signals

import (
	"os"
	"syscall"
)

// The runtime maps Ctrl+C and Ctrl+Break to os.Interrupt and console close,
// logoff and shutdown events to SIGTERM. There is no hangup.
func lookup(kind Kind) (os.Signal, bool) {
	switch kind {
	case Interrupt:
		return os.Interrupt, true
	case Terminate:
		return syscall.SIGTERM, true
	default:
		return nil, false
	}
}
