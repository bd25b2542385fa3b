package report

// LogSink adapts a structured Logger into a progress Sink: each record
// becomes one log line at Info level with the algorithm/thread labels and
// counts formatted into the message text.
type LogSink struct {
	logger Logger
}

// Logger is the slice of utils.Logger that LogSink depends on, kept local
// to avoid an import cycle between pkg/report and pkg/utils (neither
// package needs the other's full surface).
type Logger interface {
	Info(msg string, args ...interface{})
}

// NewLogSink wraps logger as a progress Sink.
func NewLogSink(logger Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report logs rec at Info level.
func (s *LogSink) Report(rec ProgressRecord) {
	s.logger.Info(
		"%s[%s] defined=%d active=%d killed=%d elapsed=%s %s",
		rec.Algorithm, rec.ThreadLabel, rec.Defined, rec.Active, rec.Killed,
		rec.Elapsed, rec.Message,
	)
}
