package locate

import (
	"fmt"
	"io"
	"os"
)

// Leveled trace logging, carried over from the teacher's Trace/TraceLevel
// pair in common.go: a package-level sink and level, flipped on by the host
// (CLI or API adapter) rather than threaded through every call as a
// parameter. There is no structured-logging dependency anywhere in the
// retrieved example pack (jndunlap-gohypo hand-rolls its own leveled
// log.Logger wrapper the same way), so this stays on the stdlib like the
// teacher's own idiom.
var (
	traceSink  io.Writer = os.Stderr
	traceLevel int       = 0
)

// TraceLevel sets the maximum level that will be written to the trace sink.
// 0 disables tracing entirely.
func TraceLevel(level int) {
	traceLevel = level
}

// TraceTo redirects the trace sink, e.g. to a log file opened by the CLI.
func TraceTo(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	traceSink = w
}

// Trace writes a leveled trace message. Level 1 messages also always go to
// stderr, matching the teacher's "errors are loud by default" behavior.
func Trace(level int, format string, v ...interface{}) {
	if level <= 1 {
		fmt.Fprintf(os.Stderr, format, v...)
	}
	if level > traceLevel {
		return
	}
	fmt.Fprintf(traceSink, "%d "+format, append([]interface{}{level}, v...)...)
}
