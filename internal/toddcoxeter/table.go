// Package toddcoxeter implements the Todd-Coxeter coset enumeration
// algorithm: given a finite presentation (generator count, defining
// relations) and a set of extra congruence-generating relations, it
// enumerates the cosets of the congruence they define.
//
// The coset table and its preimage chains are arena-indexed slices, and
// the coincidence stack reuses the generic pkg/collections.Stack.
package toddcoxeter

import (
	"github.com/fpsemi/semigroups/pkg/collections"
	"github.com/fpsemi/semigroups/pkg/word"
)

const identityCoset = uint32(0)

// coincidence is a deferred pair of cosets discovered to be equal.
type coincidence struct {
	a, b uint32
}

// table holds the coset-table state: the `table[c][g]` matrix and its
// intrusive preimage linked lists, plus the free/active coset lists.
//
// A classic Todd-Coxeter implementation packs the free/active lists as
// sign-overloaded entries in a single forwd/bckwd pair, with a negative
// bckwd entry doubling as a forwarding pointer. That bit-packing has a
// zero-sentinel ambiguity when a coset merges into coset 0 (the identity
// coset), and this port has no way to empirically shake that kind of
// encoding bug out before delivery, so the active list here is a genuine
// circular doubly linked list (fwd/bwd, wrapping at the identity coset),
// the free list is a separate singly linked chain, and merges are
// recorded in their own mergedInto array. Externally this is the same
// structure (active list, free list, forwarding); only the in-memory
// encoding differs (see DESIGN.md).
type table struct {
	nrgens int

	cosetTable [][]uint32
	preimInit  [][]uint32
	preimNext  [][]uint32

	active     []bool
	mergedInto []int64 // -1 if live, else the coset this one was merged into
	fwd        []uint32
	bwd        []uint32
	last       uint32 // tail of the active list

	freeNext []uint32
	freeHead uint32 // word.Undefined if the free list is empty

	nrActive  int
	nrDefined int

	stack *collections.Stack[coincidence]
}

func newTable(nrgens int) *table {
	t := &table{nrgens: nrgens, freeHead: word.Undefined, stack: collections.NewStack[coincidence](16)}
	t.allocateSlot()
	t.active[0] = true
	t.fwd[0] = 0
	t.bwd[0] = 0
	t.last = 0
	t.nrActive = 1
	t.nrDefined = 1
	return t
}

func (t *table) allocateSlot() uint32 {
	row := make([]uint32, t.nrgens)
	preimI := make([]uint32, t.nrgens)
	preimN := make([]uint32, t.nrgens)
	for g := 0; g < t.nrgens; g++ {
		row[g] = word.Undefined
		preimI[g] = word.Undefined
		preimN[g] = word.Undefined
	}
	t.cosetTable = append(t.cosetTable, row)
	t.preimInit = append(t.preimInit, preimI)
	t.preimNext = append(t.preimNext, preimN)
	t.active = append(t.active, false)
	t.mergedInto = append(t.mergedInto, -1)
	t.fwd = append(t.fwd, word.Undefined)
	t.bwd = append(t.bwd, word.Undefined)
	t.freeNext = append(t.freeNext, word.Undefined)
	return uint32(len(t.cosetTable) - 1)
}

// isActive reports whether c is a live coset.
func (t *table) isActive(c uint32) bool {
	return t.active[c]
}

// resolve follows the forwarding chain to the representative of c.
func (t *table) resolve(c uint32) uint32 {
	for t.mergedInto[c] != -1 {
		c = uint32(t.mergedInto[c])
	}
	return c
}

// newCoset materialises a new active coset reached from c via g.
func (t *table) newCoset(c uint32, g word.Generator) uint32 {
	var d uint32
	if t.freeHead != word.Undefined {
		d = t.freeHead
		t.freeHead = t.freeNext[d]
		t.mergedInto[d] = -1
	} else {
		d = t.allocateSlot()
	}

	t.active[d] = true
	t.fwd[t.last] = d
	t.bwd[d] = t.last
	t.fwd[d] = identityCoset
	t.bwd[identityCoset] = d
	t.last = d

	t.cosetTable[c][g] = d
	t.preimInit[d][g] = c
	t.preimNext[c][g] = word.Undefined

	t.nrActive++
	t.nrDefined++
	return d
}

// pushCoincidence enqueues a deferred merge.
func (t *table) pushCoincidence(a, b uint32) {
	t.stack.Push(coincidence{a, b})
}

// identify merges cosets a and b, draining the coincidence stack until
// empty.
func (t *table) identify(a, b uint32) {
	t.pushCoincidence(a, b)
	for {
		pair, ok := t.stack.Pop()
		if !ok {
			return
		}
		t.identifyOne(pair.a, pair.b)
	}
}

func (t *table) identifyOne(a, b uint32) {
	a = t.resolve(a)
	b = t.resolve(b)
	if a == b {
		return
	}
	low, high := a, b
	if high < low {
		low, high = high, low
	}

	t.removeFromActiveList(high)
	t.mergedInto[high] = int64(low)

	for g := 0; g < t.nrgens; g++ {
		// (a) redirect every preimage of high under g to low, merging the
		// two preimage chains.
		p := t.preimInit[high][g]
		for p != word.Undefined {
			next := t.preimNext[p][g]
			t.cosetTable[p][g] = low
			t.preimNext[p][g] = t.preimInit[low][g]
			t.preimInit[low][g] = p
			p = next
		}

		// (b) if table[high][g] was defined, migrate it onto low or defer
		// the resulting coincidence.
		v := t.cosetTable[high][g]
		if v == word.Undefined {
			continue
		}
		t.removeFromPreimageChain(v, g, high)
		if t.cosetTable[low][g] == word.Undefined {
			t.cosetTable[low][g] = v
			t.preimNext[low][g] = t.preimInit[v][g]
			t.preimInit[v][g] = low
		} else {
			t.pushCoincidence(t.cosetTable[low][g], v)
		}
	}
}

// removeFromPreimageChain deletes c from the linked list rooted at
// preim_init[target][g].
func (t *table) removeFromPreimageChain(target uint32, g int, c uint32) {
	cur := t.preimInit[target][g]
	if cur == c {
		t.preimInit[target][g] = t.preimNext[c][g]
		return
	}
	for cur != word.Undefined {
		next := t.preimNext[cur][g]
		if next == c {
			t.preimNext[cur][g] = t.preimNext[c][g]
			return
		}
		cur = next
	}
}

// removeFromActiveList splices c out of the active circular list and
// threads it onto the free list.
func (t *table) removeFromActiveList(c uint32) {
	prev, next := t.bwd[c], t.fwd[c]
	t.fwd[prev] = next
	t.bwd[next] = prev
	if t.last == c {
		t.last = prev
	}
	t.active[c] = false
	t.nrActive--

	t.freeNext[c] = t.freeHead
	t.freeHead = c
}

// activeCosets returns the active cosets in traversal order from coset 0.
func (t *table) activeCosets() []uint32 {
	out := make([]uint32, 0, t.nrActive)
	c := identityCoset
	for {
		out = append(out, c)
		c = t.fwd[c]
		if c == identityCoset {
			break
		}
	}
	return out
}
