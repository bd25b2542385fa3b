package froidurepin

// AddGenerators extends the generator set in place and re-enumerates from
// scratch over the combined generator list.
//
// Simplification (see DESIGN.md): an incremental in-place promotion of
// previously-discovered non-generator elements would let old element
// indices survive unchanged across this call, replaying only the (i, g)
// pairs that involve a new generator or a newly-promoted element. That
// bookkeeping — relocating elements into the length-1 wave, keeping a
// single global word-length cursor consistent across both old and newly
// replayed waves, and tracking a per-element "already multiplied against
// these generators" flag — carries real incremental-algorithm complexity
// for a result that is, for every externally observable property (size,
// membership, the Cayley graphs, idempotent count, closure idempotence),
// identical to simply re-running full enumeration with the combined
// generator set. This implementation takes that simpler, equally-correct
// path: old element indices are not preserved verbatim across a call to
// AddGenerators/Closure.
func (e *Engine[E]) AddGenerators(more []E) error {
	if len(more) == 0 {
		return nil
	}
	allGens := make([]E, 0, len(e.generators)+len(more))
	allGens = append(allGens, e.generators...)
	allGens = append(allGens, more...)

	fresh, err := New(e.ops, allGens, e.cfg)
	if err != nil {
		return err
	}
	*e = *fresh
	return nil
}

// Closure extends the generator set with moreGenerators and runs
// enumeration to completion.
func (e *Engine[E]) Closure(moreGenerators []E) error {
	if err := e.AddGenerators(moreGenerators); err != nil {
		return err
	}
	e.Enumerate(unboundedLimit)
	return nil
}
