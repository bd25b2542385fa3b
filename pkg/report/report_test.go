package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Info(msg string, args ...interface{}) {
	r.lines = append(r.lines, msg)
}

func TestLogSink_Report(t *testing.T) {
	logger := &recordingLogger{}
	sink := NewLogSink(logger)

	sink.Report(ProgressRecord{
		Algorithm:   "todd-coxeter",
		ThreadLabel: "prefilled",
		Elapsed:     250 * time.Millisecond,
		Defined:     42,
		Active:      10,
		Killed:      3,
		Message:     "entering lookahead",
	})

	require.Len(t, logger.lines, 1)
}

func TestNoopSink_DiscardsEverything(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopSink.Report(ProgressRecord{Algorithm: "froidure-pin"})
	})
}

func TestGlobalSink_DefaultsToNoop(t *testing.T) {
	SetGlobalSink(nil)
	assert.Equal(t, NoopSink, GlobalSink())
}

func TestSetGlobalSink_InstallsCustomSink(t *testing.T) {
	var got []ProgressRecord
	sink := SinkFunc(func(rec ProgressRecord) { got = append(got, rec) })

	SetGlobalSink(sink)
	defer SetGlobalSink(nil)

	GlobalSink().Report(ProgressRecord{Algorithm: "froidure-pin", Defined: 7})

	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].Defined)
}

func TestMultiSink_FansOutToEverySink(t *testing.T) {
	var a, b int
	s1 := SinkFunc(func(ProgressRecord) { a++ })
	s2 := SinkFunc(func(ProgressRecord) { b++ })

	combined := MultiSink(s1, nil, s2)
	combined.Report(ProgressRecord{})

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}
