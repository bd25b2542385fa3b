package congruence

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fpsemi/semigroups/internal/toddcoxeter"
	"github.com/fpsemi/semigroups/pkg/errors"
	"github.com/fpsemi/semigroups/pkg/report"
	"github.com/fpsemi/semigroups/pkg/utils"
	"github.com/fpsemi/semigroups/pkg/word"
)

// SmallSemigroupThreshold is the element count below which the dispatcher
// short-circuits to a single prefilled Todd-Coxeter run instead of racing
//.
const SmallSemigroupThreshold = 1024

// Semigroup is the slice of FroidurePinEngine the dispatcher depends on:
// enough to build a Cayley-graph prefill, and to read off the semigroup's
// own defining relations, without coupling
// the dispatcher to the engine's element-type generic parameter.
type Semigroup interface {
	Size() int
	RightCayley() [][]uint32
	LeftCayley() [][]uint32
	// NextRelation iterates the semigroup's defining relations; the
	// unprefilled race strategy needs these (in addition to extra) since,
	// unlike the prefilled strategy, it has no Cayley graph to carry that
	// information implicitly.
	NextRelation() (word.Relation, bool)
}

// semigroupRelations drains every relation NextRelation produces. Used to
// hand the unprefilled race strategy the same congruence the prefilled
// strategy already has implicitly via its Cayley-graph prefill: race
// equivalence requires both strategies to agree on nr_classes, which
// requires both to compute the same congruence.
func semigroupRelations(sg Semigroup) []word.Relation {
	var out []word.Relation
	for {
		r, ok := sg.NextRelation()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}

// Options tunes dispatcher behaviour.
type Options struct {
	// Threads bounds how many strategies may run concurrently; 1 forces
	// sequential, single-strategy selection regardless of semigroup size.
	Threads int
	// IncludeKnuthBendixStub adds the documented, always-unavailable
	// Knuth-Bendix-then-* race participant (see strategy.go) so its error
	// path is exercised; off by default since it can never contribute a
	// winner.
	IncludeKnuthBendixStub bool
	// Sink receives progress reports from the race, if non-nil.
	Sink report.Sink
	// Clock is the time source the race uses to time each strategy and to
	// timestamp the "race won" progress report. Defaults to a RealClock;
	// tests inject a MockClock to make reported durations deterministic.
	Clock utils.Clock
}

// DefaultOptions returns single-threaded-off, no-stub, no-sink defaults.
func DefaultOptions() Options {
	return Options{Threads: 0}
}

// Dispatcher selects, races, and caches a congruence enumerator, delegating
// nr_classes/word_to_class_index/nontrivial_classes to whichever strategy
// wins.
type Dispatcher struct {
	opts   Options
	mu     sync.Mutex
	winner Strategy
}

// New builds a dispatcher for a congruence given directly by a
// presentation (nrgens, relations) and extra pairs, with no semigroup
// backing it.
func New(side word.Side, nrgens int, relations, extra []word.Relation, opts Options) (*Dispatcher, error) {
	eng, err := toddcoxeter.New(nrgens, relations, extra, side)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{opts: opts}
	d.winner = newToddCoxeterStrategy("todd-coxeter", eng).withReporting(opts.Sink)
	return d, nil
}

// NewFromSemigroup builds a dispatcher for the congruence generated by
// extra on the elements of sg, choosing a strategy per the selection
// policy: small semigroup or single thread -> one prefilled Todd-Coxeter,
// run synchronously; otherwise race a prefilled and an unprefilled
// Todd-Coxeter (plus, optionally, the documented Knuth-Bendix stub).
func NewFromSemigroup(ctx context.Context, side word.Side, sg Semigroup, extra []word.Relation, opts Options) (*Dispatcher, error) {
	d := &Dispatcher{opts: opts}

	small := sg.Size() < SmallSemigroupThreshold || opts.Threads == 1
	if small {
		eng, err := prefilledEngine(sg, extra, side)
		if err != nil {
			return nil, err
		}
		s := newToddCoxeterStrategy("todd-coxeter-prefilled", eng).withReporting(opts.Sink)
		if err := s.Run(ctx); err != nil {
			return nil, err
		}
		d.winner = s
		return d, nil
	}

	prefilled, err := prefilledEngine(sg, extra, side)
	if err != nil {
		return nil, err
	}
	unprefilled, err := toddcoxeter.New(rowWidth(sg), semigroupRelations(sg), extra, side)
	if err != nil {
		return nil, err
	}

	strategies := []Strategy{
		newToddCoxeterStrategy("todd-coxeter-prefilled", prefilled).withReporting(opts.Sink),
		newToddCoxeterStrategy("todd-coxeter-unprefilled", unprefilled).withReporting(opts.Sink),
	}
	if opts.IncludeKnuthBendixStub && side == word.TwoSided {
		strategies = append(strategies, newKnuthBendixStub("knuth-bendix-then-froidure-pin"))
	}

	winner, err := race(ctx, strategies, opts)
	if err != nil {
		return nil, err
	}
	d.winner = winner
	return d, nil
}

func rowWidth(sg Semigroup) int {
	rows := sg.RightCayley()
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0])
}

func prefilledEngine(sg Semigroup, extra []word.Relation, side word.Side) (*toddcoxeter.Engine, error) {
	rows := sg.RightCayley()
	if side == word.Left {
		rows = sg.LeftCayley()
	}
	eng, err := toddcoxeter.New(len(rows[0]), nil, extra, side)
	if err != nil {
		return nil, err
	}
	if err := eng.Prefill(rows); err != nil {
		return nil, err
	}
	return eng, nil
}

// race spawns one goroutine per strategy (bounded by opts.Threads via
// errgroup's SetLimit when positive), cancels the losers the moment one
// strategy completes successfully, and returns that strategy. Uses a
// bounded semaphore-worker-pool idiom composed with golang.org/x/sync/errgroup
// for the "first success wins, cancel the rest" protocol.
func race(parent context.Context, strategies []Strategy, opts Options) (Strategy, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	clock := opts.Clock
	if clock == nil {
		clock = utils.NewRealClock()
	}
	timer := utils.NewTimer("congruence-race", utils.WithClock(clock))

	type outcome struct {
		strategy Strategy
		err      error
	}
	results := make(chan outcome, len(strategies))

	var g errgroup.Group
	if opts.Threads > 0 {
		g.SetLimit(opts.Threads)
	}
	for _, s := range strategies {
		s := s
		g.Go(func() error {
			pt := timer.Start(s.Label())
			err := s.Run(ctx)
			pt.Stop()
			results <- outcome{strategy: s, err: err}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var lastErr error
	seen := 0
	for o := range results {
		seen++
		if o.err == nil {
			cancel()
			if opts.Sink != nil {
				opts.Sink.Report(report.ProgressRecord{
					Algorithm:   "congruence-dispatcher",
					ThreadLabel: o.strategy.Label(),
					Elapsed:     timer.GetDuration(o.strategy.Label()),
					Message:     "race won",
				})
			}
			return o.strategy, nil
		}
		lastErr = o.err
		if seen == len(strategies) {
			break
		}
	}
	if lastErr == nil {
		lastErr = errors.Wrap(errors.CodeInvariantViolation, "congruence: race produced no winner", nil)
	}
	return nil, lastErr
}

// NrClasses delegates to the winning strategy.
func (d *Dispatcher) NrClasses() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.winner.NrClasses()
}

// WordToClassIndex delegates to the winning strategy.
func (d *Dispatcher) WordToClassIndex(ctx context.Context, w word.Word) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.winner.WordToClassIndex(ctx, w)
}

// NontrivialClasses delegates to the winning strategy.
func (d *Dispatcher) NontrivialClasses(ctx context.Context) ([][]word.Word, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.winner.NontrivialClasses(ctx)
}

// Winner returns the label of the strategy that produced the dispatcher's
// result, useful for reporting/diagnostics.
func (d *Dispatcher) Winner() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.winner.Label()
}
