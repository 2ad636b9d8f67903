package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read from RSSAGG_TRACE once at package init.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("RSSAGG_TRACE") != "")
}

// TraceEnabled reports whether RSSAGG_TRACE is set. When it is, the reader
// starts with the debug overlay open and logs at debug level.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag in tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
