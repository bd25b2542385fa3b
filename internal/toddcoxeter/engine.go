package toddcoxeter

import (
	"context"
	"time"

	"github.com/fpsemi/semigroups/pkg/errors"
	"github.com/fpsemi/semigroups/pkg/report"
	"github.com/fpsemi/semigroups/pkg/word"
)

// cancelCheckInterval is how many coset definitions pass between
// ctx.Err() checks.
const cancelCheckInterval = 2048

// defaultPackThreshold is the initial active-coset count above which a
// lookahead/packing phase is triggered.
const defaultPackThreshold = 2000

// packGrowthFactor is how much pack_threshold grows after each lookahead
//.
const packGrowthFactor = 1.10

// lookaheadStallFloor: if a lookahead pass produces fewer than this many
// coincidences, it is abandoned early.
const lookaheadStallFloor = 100

// Engine enumerates the cosets of a congruence on a finitely presented
// semigroup.
type Engine struct {
	nrgens    int
	relations []word.Relation
	extra     []word.Relation
	side      word.Side

	t *table

	prefilled     bool
	started       bool
	done          bool
	packThreshold int
	scanCursor    uint32 // next coset slot to apply relations to

	definsSinceCheck int

	sink      report.Sink
	label     string
	startedAt time.Time
}

// SetReporting arms periodic progress reports to sink, tagged with label
// (e.g. a racing strategy's name), every time the engine's bounded
// cancellation check fires. A nil sink disarms reporting.
func (e *Engine) SetReporting(sink report.Sink, label string) {
	e.sink = sink
	e.label = label
}

func (e *Engine) reportProgress(message string) {
	if e.sink == nil {
		return
	}
	if e.startedAt.IsZero() {
		e.startedAt = time.Now()
	}
	e.sink.Report(report.ProgressRecord{
		Algorithm:   "todd-coxeter",
		ThreadLabel: e.label,
		Elapsed:     time.Since(e.startedAt),
		Defined:     e.t.nrDefined,
		Active:      e.t.nrActive,
		Message:     message,
	})
}

// New builds a Todd-Coxeter engine over nrgens generators, the defining
// relations, and the congruence-generating extra pairs. If side is Left,
// every word in relations and extra is reversed. If side is TwoSided,
// extra is merged into relations and cleared.
func New(nrgens int, relations, extra []word.Relation, side word.Side) (*Engine, error) {
	if nrgens <= 0 {
		return nil, errors.Wrap(errors.CodeInvariantViolation, "toddcoxeter: nrgens must be positive", nil)
	}
	for _, set := range [][]word.Relation{relations, extra} {
		for _, rel := range set {
			if err := validateRelation(nrgens, rel); err != nil {
				return nil, err
			}
		}
	}

	e := &Engine{
		nrgens:        nrgens,
		relations:     cloneRelations(relations),
		extra:         cloneRelations(extra),
		side:          side,
		t:             newTable(nrgens),
		packThreshold: defaultPackThreshold,
	}

	switch side {
	case word.Left:
		reverseRelationsInPlace(e.relations)
		reverseRelationsInPlace(e.extra)
	case word.TwoSided:
		e.relations = append(e.relations, e.extra...)
		e.extra = nil
	}

	return e, nil
}

func validateRelation(nrgens int, rel word.Relation) error {
	for _, w := range [][]word.Generator{rel.LHS, rel.RHS} {
		if len(w) == 0 {
			return errors.Wrap(errors.CodeInvariantViolation, "toddcoxeter: empty-word relations are not supported", nil)
		}
		for _, g := range w {
			if int(g) >= nrgens {
				return errors.Wrap(errors.CodeInvariantViolation, "toddcoxeter: relation references a generator outside 0..nrgens-1", nil)
			}
		}
	}
	return nil
}

func cloneRelations(rels []word.Relation) []word.Relation {
	out := make([]word.Relation, len(rels))
	for i, r := range rels {
		out[i] = word.Relation{LHS: r.LHS.Clone(), RHS: r.RHS.Clone()}
	}
	return out
}

func reverseRelationsInPlace(rels []word.Relation) {
	for i := range rels {
		rels[i] = rels[i].Reversed()
	}
}

// Prefill seeds the coset table from the rows of a right (or left) Cayley
// graph of some finite semigroup: row 0 is the identity coset, rows[c][g]
// is the coset reached from c via generator g, word.Undefined marking an
// unknown cell. After prefill, relations is treated as satisfied already
// and only extra is traced.
func (e *Engine) Prefill(rows [][]uint32) error {
	if len(rows) == 0 {
		return errors.Wrap(errors.CodeInvariantViolation, "toddcoxeter: prefill table must have at least one row", nil)
	}
	for _, row := range rows {
		if len(row) != e.nrgens {
			return errors.Wrap(errors.CodeInvariantViolation, "toddcoxeter: prefill row width must equal nrgens", nil)
		}
	}

	t := newTable(e.nrgens)
	for c := 1; c < len(rows); c++ {
		t.allocateSlot()
		t.active[c] = true
		t.fwd[t.last] = uint32(c)
		t.bwd[c] = t.last
		t.fwd[c] = identityCoset
		t.bwd[identityCoset] = uint32(c)
		t.last = uint32(c)
		t.nrActive++
		t.nrDefined++
	}

	for c, row := range rows {
		for g, d := range row {
			if d == word.Undefined {
				continue
			}
			t.cosetTable[c][g] = d
			t.preimNext[uint32(c)][g] = t.preimInit[d][g]
			t.preimInit[d][g] = uint32(c)
		}
	}

	e.t = t
	e.relations = nil
	e.prefilled = true
	return nil
}

// IsDone reports whether enumeration has run to completion.
func (e *Engine) IsDone() bool { return e.done }

// NrClasses completes enumeration (if not already cancelled) and returns
// the number of congruence classes (active cosets).
func (e *Engine) NrClasses(ctx context.Context) (int, error) {
	if err := e.Run(ctx, unboundedBudget); err != nil {
		return 0, err
	}
	return e.t.nrActive, nil
}

const unboundedBudget = -1

// Run enumerates until completion, the budget of new coset definitions is
// exhausted, or ctx is cancelled.
func (e *Engine) Run(ctx context.Context, budget int) error {
	if e.done {
		return nil
	}
	if !e.started {
		e.started = true
		for _, rel := range e.extra {
			e.trace(identityCoset, rel, true)
		}
		if len(e.relations) == 0 {
			e.done = true
			return nil
		}
		e.scanCursor = identityCoset
	}

	if err := ctx.Err(); err != nil {
		return nil
	}

	startDefined := e.t.nrDefined
	for {
		if budget != unboundedBudget && e.t.nrDefined-startDefined >= budget {
			return nil
		}
		if e.definsSinceCheck >= cancelCheckInterval {
			e.definsSinceCheck = 0
			e.reportProgress("scanning")
			if err := ctx.Err(); err != nil {
				return nil
			}
		}

		if int(e.scanCursor) >= len(e.t.cosetTable) {
			e.done = true
			return nil
		}
		c := e.scanCursor
		e.scanCursor++
		if !e.t.isActive(c) {
			continue
		}

		before := e.t.nrDefined
		for _, rel := range e.relations {
			e.trace(c, rel, true)
		}
		e.definsSinceCheck += e.t.nrDefined - before

		if e.t.nrActive > e.packThreshold {
			if err := e.lookahead(ctx); err != nil {
				return nil
			}
		}
	}
}

// lookahead runs a packing phase: every relation is traced, with
// allow_new=false, from each active coset from scanCursor onwards, which can
// only coalesce existing cosets, never create new ones, shrinking the table
// before normal tracing resumes. The phase stops early once the table has
// shrunk and a coset's traces kill fewer than lookaheadStallFloor cosets.
func (e *Engine) lookahead(ctx context.Context) error {
	e.reportProgress("entering lookahead")
	start := e.t.nrActive
	cursor := e.scanCursor
	for int(cursor) < len(e.t.cosetTable) {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := cursor
		cursor++
		if !e.t.isActive(c) {
			continue
		}
		before := e.t.nrActive
		for _, rel := range e.relations {
			e.trace(c, rel, false)
		}
		killedThisRound := before - e.t.nrActive
		if killedThisRound < lookaheadStallFloor && before != start {
			break
		}
	}
	e.packThreshold = int(float64(e.packThreshold) * packGrowthFactor)
	e.reportProgress("packing threshold raised")
	return nil
}

// trace follows the table from c along all but the last letter of each
// side of relation, then resolves or creates the final edge.
func (e *Engine) trace(c uint32, relation word.Relation, allowNew bool) {
	lhs, okL := e.followPrefix(c, relation.LHS, allowNew)
	rhs, okR := e.followPrefix(c, relation.RHS, allowNew)
	if !okL || !okR {
		return
	}

	a := relation.LHS[len(relation.LHS)-1]
	b := relation.RHS[len(relation.RHS)-1]
	x := e.t.cosetTable[lhs][a]
	y := e.t.cosetTable[rhs][b]

	switch {
	case x == word.Undefined && y == word.Undefined:
		if !allowNew {
			return
		}
		d := e.t.newCoset(lhs, a)
		e.t.cosetTable[rhs][b] = d
		e.t.preimNext[rhs][b] = e.t.preimInit[d][b]
		e.t.preimInit[d][b] = rhs
	case x != word.Undefined && y == word.Undefined:
		e.t.cosetTable[rhs][b] = x
		e.t.preimNext[rhs][b] = e.t.preimInit[x][b]
		e.t.preimInit[x][b] = rhs
	case x == word.Undefined && y != word.Undefined:
		e.t.cosetTable[lhs][a] = y
		e.t.preimNext[lhs][a] = e.t.preimInit[y][a]
		e.t.preimInit[y][a] = lhs
	default:
		if x != y {
			e.t.identify(x, y)
		}
	}
}

// followPrefix walks c along every letter of w except the last, creating
// cosets along the way if allowNew, otherwise returning ok=false the
// moment a needed edge is undefined.
func (e *Engine) followPrefix(c uint32, w word.Word, allowNew bool) (uint32, bool) {
	for _, g := range w[:len(w)-1] {
		next := e.t.cosetTable[c][g]
		if next == word.Undefined {
			if !allowNew {
				return 0, false
			}
			next = e.t.newCoset(c, g)
		}
		c = e.t.resolve(next)
	}
	return e.t.resolve(c), true
}

// WordToClassIndex runs enumeration to completion and returns the class
// (active coset index) that w belongs to.
func (e *Engine) WordToClassIndex(ctx context.Context, w word.Word) (uint32, error) {
	if err := e.Run(ctx, unboundedBudget); err != nil {
		return 0, err
	}
	walk := w
	if e.side == word.Left {
		walk = w.Reversed()
	}
	c := identityCoset
	for _, g := range walk {
		next := e.t.cosetTable[c][g]
		if next == word.Undefined {
			return word.Undefined, nil
		}
		c = e.t.resolve(next)
	}
	return c, nil
}

// NontrivialClasses completes enumeration, then performs a bounded
// breadth-first search over generator words (up to maxLen letters,
// capped at maxPerClass representatives per class) to surface classes
// reached by more than one word — the directly observable notion of
// "nontrivial" available without a separate semigroup of elements. Every
// class is reachable within nr_classes-1 letters, so a default bound of
// 2*nr_classes is generous.
func (e *Engine) NontrivialClasses(ctx context.Context) ([][]word.Word, error) {
	n, err := e.NrClasses(ctx)
	if err != nil {
		return nil, err
	}
	const maxPerClass = 8
	maxLen := 2 * n
	if maxLen < 4 {
		maxLen = 4
	}

	byClass := make(map[uint32][]word.Word)
	type frontierItem struct {
		coset uint32
		w     word.Word
	}
	frontier := []frontierItem{{identityCoset, word.Word{}}}
	byClass[identityCoset] = append(byClass[identityCoset], word.Word{})

	for length := 0; length < maxLen && len(frontier) > 0; length++ {
		var next []frontierItem
		for _, item := range frontier {
			for g := 0; g < e.nrgens; g++ {
				d := e.t.cosetTable[item.coset][word.Generator(g)]
				if d == word.Undefined {
					continue
				}
				d = e.t.resolve(d)
				if len(byClass[d]) >= maxPerClass {
					continue
				}
				w := append(item.w.Clone(), word.Generator(g))
				byClass[d] = append(byClass[d], w)
				next = append(next, frontierItem{d, w})
			}
		}
		frontier = next
	}

	var out [][]word.Word
	for _, words := range byClass {
		if len(words) > 1 {
			out = append(out, words)
		}
	}
	return out, nil
}
