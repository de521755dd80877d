//go:build unix

package signals

import (
	"os"
	"syscall"
)

func lookup(kind Kind) (os.Signal, bool) {
	switch kind {
	case Interrupt:
		return os.Interrupt, true
	case Terminate:
		return syscall.SIGTERM, true
	case Hangup:
		return syscall.SIGHUP, true
	default:
		return nil, false
	}
}
