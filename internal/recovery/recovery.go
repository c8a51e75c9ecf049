// internal/recovery/recovery.go
package recovery

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

// SetLogger makes panics also go to l, in addition to stderr. The TUI writes
// its log to a file, so this keeps the trace next to the rest of the run.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// HandlePanic should be deferred at the top of main() or goroutines.
// It logs panic details and exits with code 1.
func HandlePanic() {
	if r := recover(); r != nil {
		report(r)
		os.Exit(1)
	}
}

// HandlePanicFunc logs panic details and calls the provided cleanup function.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		report(r)
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}

func report(r any) {
	stack := debug.Stack()
	if l := logger.Load(); l != nil {
		l.WithLevel(zerolog.FatalLevel).
			Str("panic", fmt.Sprint(r)).
			Bytes("stack", stack).
			Msg("Unrecovered panic")
	}
	_, _ = fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, stack)
}
