//go:build !unix && !windows

package signals

import "os"

func lookup(kind Kind) (os.Signal, bool) {
	if kind == Interrupt {
		return os.Interrupt, true
	}
	return nil, false
}
