package froidurepin

import (
	"context"
	"time"

	"github.com/fpsemi/semigroups/pkg/parallel"
	"github.com/fpsemi/semigroups/pkg/report"
)

// NrIdempotents returns the number of idempotent elements (x such that
// x·x = x), completing enumeration first and optionally parallelising the
// scan across threads using a chunked map-reduce over the element table.
func (e *Engine[E]) NrIdempotents(threads int) int {
	return e.NrIdempotentsReporting(threads, nil)
}

// NrIdempotentsReporting is NrIdempotents with progress periodically
// emitted to sink (nil disables reporting), using a ProgressTracker paired
// with a report.Sink instead of a direct callback.
func (e *Engine[E]) NrIdempotentsReporting(threads int, sink report.Sink) int {
	e.Enumerate(unboundedLimit)
	if threads <= 0 {
		threads = 1
	}

	indices := make([]uint32, e.nr)
	for i := range indices {
		indices[i] = uint32(i)
	}

	var tracker *parallel.ProgressTracker
	if sink != nil && len(indices) > 0 {
		tracker = parallel.NewProgressTracker(int64(len(indices)), func(completed, total int64) {
			sink.Report(report.ProgressRecord{
				Algorithm:   "froidure-pin-idempotents",
				ThreadLabel: "scan",
				Defined:     int(completed),
				Active:      int(total),
				Message:     "scanning for idempotents",
			})
		}, 250*time.Millisecond)
		tracker.Start(context.Background())
		defer tracker.Stop()
	}

	cfg := parallel.DefaultPoolConfig().WithWorkers(threads)
	proc := parallel.NewChunkProcessor[uint32, int](cfg)

	count := proc.ProcessChunks(
		context.Background(),
		indices,
		func(ctx context.Context, chunk []uint32, workerID int) int {
			var tmp E
			local := 0
			for _, idx := range chunk {
				e.ops.MultiplyInto(&tmp, e.elements[idx], e.elements[idx])
				if e.ops.Equal(tmp, e.elements[idx]) {
					local++
				}
				if tracker != nil {
					tracker.Increment()
				}
			}
			return local
		},
		func(results []int) int {
			total := 0
			for _, r := range results {
				total += r
			}
			return total
		},
	)
	return count
}
