// Package report defines the progress-reporting contract each long-running
// enumeration accepts.
//
// Two sinks are provided: LogSink, backed by a structured utils.Logger,
// and OtelSink, backed by OpenTelemetry spans and counters. Neither is
// required; the default global sink is a no-op, so there is no global
// mutable state beyond a single package-level default.
package report

import (
	"sync"
	"time"
)

// ProgressRecord is one periodic progress snapshot emitted by an
// enumeration engine: counts, elapsed time, and identifying labels.
type ProgressRecord struct {
	// Algorithm names the emitting component ("todd-coxeter",
	// "froidure-pin-idempotents", "congruence-dispatcher").
	Algorithm string
	// ThreadLabel identifies which racing goroutine/strategy emitted this
	// record, useful when several enumerators run side by side.
	ThreadLabel string
	// Elapsed is the wall-clock time since the enumeration started.
	Elapsed time.Duration
	// Defined is the number of cosets defined so far (Todd-Coxeter), or
	// the number of elements already scanned (Froidure-Pin idempotent
	// scan).
	Defined int
	// Active is the number of currently-active cosets (Todd-Coxeter), or
	// the total number of elements to scan (Froidure-Pin idempotent scan).
	Active int
	// Killed is the number of coincidences processed so far (Todd-Coxeter
	// only).
	Killed int
	// Message is an optional free-form annotation (e.g. "entering
	// lookahead", "packing threshold raised to N").
	Message string
}

// Sink receives progress records from a running enumeration.
type Sink interface {
	Report(rec ProgressRecord)
}

// sinkFunc adapts a plain function to the Sink interface.
type sinkFunc func(ProgressRecord)

func (f sinkFunc) Report(rec ProgressRecord) { f(rec) }

// SinkFunc wraps fn as a Sink.
func SinkFunc(fn func(ProgressRecord)) Sink {
	return sinkFunc(fn)
}

// noopSink discards every record; it is the default global sink.
type noopSink struct{}

func (noopSink) Report(ProgressRecord) {}

// NoopSink is a Sink that discards every record.
var NoopSink Sink = noopSink{}

var (
	mu         sync.RWMutex
	globalSink Sink = NoopSink
)

// SetGlobalSink installs sink as the process-wide default, used by callers
// that construct engines via the CLI (cmd/semigroups) without threading an
// explicit Options.Sink through. Passing nil restores the no-op default.
func SetGlobalSink(sink Sink) {
	mu.Lock()
	defer mu.Unlock()
	if sink == nil {
		sink = NoopSink
	}
	globalSink = sink
}

// GlobalSink returns the current process-wide default sink.
func GlobalSink() Sink {
	mu.RLock()
	defer mu.RUnlock()
	return globalSink
}

// MultiSink fans a single Report call out to every non-nil sink, letting a
// caller combine, e.g., LogSink and OtelSink.
func MultiSink(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return SinkFunc(func(rec ProgressRecord) {
		for _, s := range filtered {
			s.Report(rec)
		}
	})
}
