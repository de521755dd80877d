// Package crashdemo reproduces the "make it not crash" pointer exercise.
//
// Run deliberately dereferences a nil pointer and panics. It exists to be
// observed under a debugger or as a recovered panic, never in normal flow;
// the CLI only calls it behind an explicit opt-in.
package crashdemo

import (
	"context"
	"fmt"
	"io"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// Run prints the three values of a small slice, then writes through a nil
// pointer. It never returns normally.
func Run(w io.Writer) {
	fmt.Fprintln(w, "Make it not crash !")

	values := make([]int, 3)
	values[0], values[1], values[2] = 2, 3, 4
	for i, v := range values {
		fmt.Fprintf(w, "ptr[%d] = %d\n", i, v)
	}

	var ptr *int
	*ptr = 3
	fmt.Fprintf(w, "new ptr = %d\n", *ptr)
}

// Allowed returns UNSAFE_DEMO_DISABLED unless enabled is set.
func Allowed(enabled bool) error {
	if !enabled {
		return plxerrors.ValidationError(plxerrors.CodeUnsafeDemoDisabled,
			"crash demo is disabled; pass --unsafe-demo to run it", nil)
	}
	return nil
}

// Guarded runs the demo only when enabled and turns the panic into a
// PANIC_RECOVERED error instead of crashing the process.
func Guarded(ctx context.Context, w io.Writer, enabled bool) error {
	if err := Allowed(enabled); err != nil {
		return err
	}
	return plxerrors.WithRecover(ctx, func() error {
		Run(w)
		return nil
	})
}
