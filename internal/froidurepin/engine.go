// Package froidurepin implements the Froidure-Pin algorithm: enumeration of
// a finite semigroup from a vector of generator elements by breadth-first
// exploration in word length, maintaining Cayley graphs, a word tree of
// canonical representatives, and a deduplication map.
//
// Elements live in a contiguous, index-addressed arena rather than a
// pointer graph: every cross-reference (prefix, suffix, Cayley-graph
// neighbour) is a uint32 slot into a shared slice, not a pointer, so the
// table grows by appending rather than by allocating linked nodes.
package froidurepin

import (
	"github.com/fpsemi/semigroups/internal/element"
	"github.com/fpsemi/semigroups/pkg/collections"
	"github.com/fpsemi/semigroups/pkg/errors"
	"github.com/fpsemi/semigroups/pkg/word"
)

// Config tunes enumeration behaviour. New replaces a non-positive
// BatchSize with the DefaultConfig value.
type Config struct {
	// BatchSize bounds how many elements Position/At enumerate per
	// resumption round before re-checking for the target.
	BatchSize int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 8192}
}

// DupPair records a duplicate-generator pair (g, g'): two input generator
// letters whose elements compare equal, so only the first is materialised
// in elements[].
type DupPair struct {
	First, Second word.Generator
}

// Engine enumerates the semigroup generated by a slice of elements of type
// E, using ops to compare, hash, and multiply them. It is parameterised
// over the element type, but ops is held as an element.Ops[E] interface
// value, so each ops call in the hot loop is an interface method call.
type Engine[E any] struct {
	ops element.Ops[E]
	cfg Config

	degree int

	// generators holds every input generator letter, including
	// duplicates; elements holds only distinct semigroup elements,
	// indexed in discovery order.
	generators []E
	elements   []E

	// letterToPos[g] is the elements[] index of generator letter g's
	// canonical representative.
	letterToPos []uint32
	dupGens     []DupPair

	// Cayley graphs and word-tree attributes, one row per discovered
	// element, one column per generator letter.
	right [][]uint32
	left  [][]uint32

	first  []word.Generator
	final  []word.Generator
	prefix []uint32
	suffix []uint32
	length []int

	reduced *collections.BitMatrix

	// index is elements[] positions ordered by discovery (breadth-first
	// by word length); lenindex[k] is the first position in index whose
	// word length exceeds k.
	index    []uint32
	lenindex []int

	pos     int
	nr      int
	nrrules int
	wordlen int

	// elemIndex buckets elements[] positions by ops.Hash, resolving
	// collisions with ops.Equal; this is the element-to-index map that
	// keeps every semigroup element at exactly one index.
	elemIndex map[uint64][]uint32

	tmpProduct E
	foundOne   bool
	posOne     uint32

	// multiplied[i] marks that element i has been fully processed
	// against the generator set current as of its last pass.
	// AddGenerators/Closure do not consult it: they rebuild the engine
	// from scratch.
	multiplied []bool
	// oldNrGens is the generator count recorded when the engine was
	// built.
	oldNrGens int

	// relation-iteration cursor, resumable across next_relation calls.
	relDupCursor int
	relI         uint32
	relG         int
}

// New creates an engine seeded with generators. All generators must share
// one degree; mismatched degree is an invariant violation.
func New[E any](ops element.Ops[E], generators []E, cfg Config) (*Engine[E], error) {
	if len(generators) == 0 {
		return nil, errors.Wrap(errors.CodeInvariantViolation, "froidurepin: at least one generator is required", nil)
	}
	if cfg.BatchSize <= 0 {
		cfg = DefaultConfig()
	}
	degree := ops.Degree(generators[0])
	for _, g := range generators[1:] {
		if ops.Degree(g) != degree {
			return nil, errors.Wrap(errors.CodeInvariantViolation, "froidurepin: generators have differing degree", nil)
		}
	}

	e := &Engine[E]{
		ops:         ops,
		cfg:         cfg,
		degree:      degree,
		generators:  append([]E(nil), generators...),
		letterToPos: make([]uint32, len(generators)),
		elemIndex:   make(map[uint64][]uint32),
		reduced:     collections.NewBitMatrix(len(generators), len(generators)*2),
	}
	e.seedGenerators()
	e.oldNrGens = len(e.generators)
	return e, nil
}

// seedGenerators populates the element table with one entry per distinct
// generator, recording duplicates.
func (e *Engine[E]) seedGenerators() {
	for g, gen := range e.generators {
		h := e.ops.Hash(gen)
		if idx, ok := e.lookup(h, gen); ok {
			e.letterToPos[g] = idx
			first := word.Generator(0)
			for g2 := 0; g2 < g; g2++ {
				if e.letterToPos[g2] == idx {
					first = word.Generator(g2)
					break
				}
			}
			e.dupGens = append(e.dupGens, DupPair{First: first, Second: word.Generator(g)})
			continue
		}
		e.appendGeneratorElement(word.Generator(g), gen, h)
	}
	e.lenindex = []int{0, len(e.index)}
}

// appendGeneratorElement materialises a brand-new generator as a
// length-one element.
func (e *Engine[E]) appendGeneratorElement(g word.Generator, value E, h uint64) uint32 {
	idx := uint32(e.nr)
	e.elements = append(e.elements, e.ops.Clone(value))
	e.first = append(e.first, g)
	e.final = append(e.final, g)
	e.prefix = append(e.prefix, word.Undefined)
	e.suffix = append(e.suffix, word.Undefined)
	e.length = append(e.length, 1)
	e.right = append(e.right, e.newRow())
	e.left = append(e.left, e.newRow())
	e.reduced.AddRow()
	e.multiplied = append(e.multiplied, false)
	e.letterToPos[g] = idx
	e.index = append(e.index, idx)
	e.elemIndex[h] = append(e.elemIndex[h], idx)
	e.nr++
	return idx
}

func (e *Engine[E]) newRow() []uint32 {
	row := make([]uint32, len(e.generators))
	for i := range row {
		row[i] = word.Undefined
	}
	return row
}

func (e *Engine[E]) lookup(h uint64, v E) (uint32, bool) {
	for _, idx := range e.elemIndex[h] {
		if e.ops.Equal(e.elements[idx], v) {
			return idx, true
		}
	}
	return 0, false
}

// NrGens returns the number of generator letters (including duplicates).
func (e *Engine[E]) NrGens() int { return len(e.generators) }

// Degree returns the shared degree of every generator and element.
func (e *Engine[E]) Degree() int { return e.degree }

// DuplicateGenerators returns the recorded duplicate-generator pairs.
func (e *Engine[E]) DuplicateGenerators() []DupPair {
	return append([]DupPair(nil), e.dupGens...)
}

const unboundedLimit = -1

// Enumerate extends enumeration until nr >= limit or the semigroup closes
// (pos == nr). Pass a negative limit for "unbounded".
func (e *Engine[E]) Enumerate(limit int) {
	if limit < 0 {
		limit = unboundedLimit
	}
	for e.pos < e.nr {
		if limit != unboundedLimit && e.nr >= limit {
			return
		}
		e.processOne()
	}
}

// processOne processes every generator against the element named by the
// next unprocessed index-position, then advances the wave boundary if
// that completes the current word length.
func (e *Engine[E]) processOne() {
	i := e.index[e.pos]
	ng := len(e.generators)
	for g := 0; g < ng; g++ {
		if e.multiplied[i] && g < e.oldNrGens {
			continue
		}
		e.processPair(i, word.Generator(g))
	}
	e.multiplied[i] = true
	e.pos++
	if e.pos == e.lenindex[e.wordlen+1] {
		e.buildLeftWave(e.wordlen)
		e.wordlen++
		e.lenindex = append(e.lenindex, e.nr)
	}
}

// processPair computes right[i][g], either by following the Cayley graph
// (when suffix[i]·g is already known not to be reduced, i.e. its word
// reduces to an earlier element) or by multiplying directly
// and looking the product up in the element map.
func (e *Engine[E]) processPair(i uint32, g word.Generator) {
	if e.suffix[i] != word.Undefined && !e.reduced.Test(int(e.suffix[i]), int(g)) {
		r := e.right[e.suffix[i]][g]
		var j uint32
		switch {
		case e.foundOne && r == e.posOne:
			j = e.letterToPos[e.first[i]]
		case e.prefix[r] != word.Undefined:
			j = e.right[e.left[e.prefix[r]][e.first[i]]][e.final[r]]
		default:
			j = e.right[e.letterToPos[e.first[i]]][e.final[r]]
		}
		e.right[i][g] = j
		return
	}

	e.ops.MultiplyInto(&e.tmpProduct, e.elements[i], e.generators[g])
	h := e.ops.Hash(e.tmpProduct)
	if k, ok := e.lookup(h, e.tmpProduct); ok {
		e.right[i][g] = k
		e.nrrules++
		return
	}

	nr := uint32(e.nr)
	e.elements = append(e.elements, e.ops.Clone(e.tmpProduct))
	e.first = append(e.first, e.first[i])
	e.final = append(e.final, g)
	e.prefix = append(e.prefix, i)
	if e.wordlen >= 1 {
		e.suffix = append(e.suffix, e.right[e.suffix[i]][g])
	} else {
		e.suffix = append(e.suffix, uint32(e.letterToPos[g]))
	}
	e.length = append(e.length, e.wordlen+2)
	e.right = append(e.right, e.newRow())
	e.left = append(e.left, e.newRow())
	e.reduced.AddRow()
	e.multiplied = append(e.multiplied, false)
	e.reduced.Set(int(i), int(g))
	e.right[i][g] = nr
	e.index = append(e.index, nr)
	e.elemIndex[h] = append(e.elemIndex[h], nr)
	e.nr++

	if !e.foundOne {
		identity := e.ops.Identity(e.elements[i])
		if e.ops.Equal(e.elements[nr], identity) {
			e.foundOne = true
			e.posOne = nr
		}
	}
}

// buildLeftWave fills in left[i][g] for every element of word length
// wavelen+1 discovered during the wave that just completed.
func (e *Engine[E]) buildLeftWave(wavelen int) {
	start, end := e.lenindex[wavelen], e.lenindex[wavelen+1]
	ng := len(e.generators)
	for pos := start; pos < end; pos++ {
		p := e.index[pos]
		for g := 0; g < ng; g++ {
			if wavelen == 0 {
				e.left[p][g] = e.right[e.letterToPos[g]][e.final[p]]
			} else {
				e.left[p][g] = e.right[e.left[e.prefix[p]][g]][e.final[p]]
			}
		}
	}
}

// Size completes enumeration and returns the number of elements.
func (e *Engine[E]) Size() int {
	e.Enumerate(unboundedLimit)
	return e.nr
}

// IsClosed reports whether enumeration has fully completed.
func (e *Engine[E]) IsClosed() bool {
	return e.pos == e.nr
}

// Position looks up an element, enumerating in batches of cfg.BatchSize
// until it is found or the semigroup closes.
// Returns word.Undefined if the element is not present (or has the wrong
// degree).
func (e *Engine[E]) Position(v E) uint32 {
	if e.ops.Degree(v) != e.degree {
		return word.Undefined
	}
	h := e.ops.Hash(v)
	for {
		if idx, ok := e.lookup(h, v); ok {
			return idx
		}
		if e.IsClosed() {
			return word.Undefined
		}
		e.Enumerate(e.nr + e.cfg.BatchSize)
	}
}

// At returns the i-th discovered element, enumerating if necessary.
func (e *Engine[E]) At(i uint32) (E, bool) {
	if int(i) >= e.nr {
		e.Enumerate(int(i) + 1)
	}
	if int(i) >= e.nr {
		var zero E
		return zero, false
	}
	return e.elements[i], true
}

// Factorisation returns a minimal-length word over generator letters equal
// to elements[i], derived by walking suffix and reading first letters. The
// walk accumulates into a pooled scratch buffer rather than growing a
// fresh slice per call, since Factorisation is called repeatedly by
// NextRelation and by round-trip checks.
func (e *Engine[E]) Factorisation(i uint32) word.Word {
	if int(i) >= e.nr {
		e.Enumerate(int(i) + 1)
	}
	if int(i) >= e.nr {
		return nil
	}

	buf := collections.GetGeneratorSlice()
	defer collections.PutGeneratorSlice(buf)

	cur := i
	for {
		*buf = append(*buf, e.first[cur])
		if e.suffix[cur] == word.Undefined {
			break
		}
		cur = e.suffix[cur]
	}

	w := make(word.Word, len(*buf))
	copy(w, *buf)
	return w
}

// NextRelation iterates the full set of defining relations of the
// semigroup: duplicate-generator pairs first, as length-2 tuples, then
// every (i, g) with reduced[i][g] false, emitting elements[i]·g ≡
// elements[j] with j = right[i][g]. The cursor is resumable across calls
//.
func (e *Engine[E]) NextRelation() (word.Relation, bool) {
	if e.relDupCursor < len(e.dupGens) {
		d := e.dupGens[e.relDupCursor]
		e.relDupCursor++
		return word.Relation{LHS: word.Word{d.First}, RHS: word.Word{d.Second}}, true
	}
	ng := len(e.generators)
	for int(e.relI) < e.nr {
		for e.relG < ng {
			i, g := e.relI, word.Generator(e.relG)
			e.relG++
			if e.reduced.Test(int(i), int(g)) {
				continue
			}
			j := e.right[i][g]
			lhs := append(e.Factorisation(i), g)
			rhs := e.Factorisation(j)
			return word.Relation{LHS: lhs, RHS: rhs}, true
		}
		e.relI++
		e.relG = 0
	}
	return word.Relation{}, false
}

// RightCayley returns a snapshot of the fully enumerated right Cayley
// graph: right[i][g] == position of elements[i]·generators[g].
func (e *Engine[E]) RightCayley() [][]uint32 {
	e.Enumerate(unboundedLimit)
	return cloneTable(e.right, e.nr)
}

// LeftCayley returns a snapshot of the fully enumerated left Cayley graph.
func (e *Engine[E]) LeftCayley() [][]uint32 {
	e.Enumerate(unboundedLimit)
	return cloneTable(e.left, e.nr)
}

func cloneTable(rows [][]uint32, n int) [][]uint32 {
	out := make([][]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = append([]uint32(nil), rows[i]...)
	}
	return out
}

// NrRules returns the number of reductions discovered so far.
func (e *Engine[E]) NrRules() int { return e.nrrules }

// Elements returns the discovered elements in discovery order, completing
// enumeration first.
func (e *Engine[E]) Elements() []E {
	e.Enumerate(unboundedLimit)
	return append([]E(nil), e.elements[:e.nr]...)
}

// WordLength returns the word length of element i.
func (e *Engine[E]) WordLength(i uint32) int {
	return e.length[i]
}
