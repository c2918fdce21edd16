package skiplist

// Guard is a scoped acquisition of one hazard slot, bound to a Domain
// (spec §4.2/§4.3 "hazard guard"). Acquire one per node a caller needs to
// keep alive across a CAS, use Protect to publish the read, and Release when
// the caller no longer needs that node to stay reclaimable-safe.
type Guard[K any, V any] struct {
	slot *hazardSlot[K, V]
}

// Acquire reserves a free hazard slot from the domain.
func (d *Domain[K, V]) Acquire() *Guard[K, V] {
	return &Guard[K, V]{slot: d.acquireSlot()}
}

// Release clears the guard's slot and returns it to the domain's free pool.
// Calling Release on a nil or already-released Guard is a no-op.
func (g *Guard[K, V]) Release() {
	if g == nil || g.slot == nil {
		return
	}
	g.slot.release()
	g.slot = nil
}

// Protect loads ref, publishes the candidate address into the guard's
// hazard slot, then reloads ref and repeats until two consecutive loads
// observe the same pointer (spec §4.2). This closes the ABA window between
// reading a pointer and publishing the fact that we are reading it: once
// Protect returns, the returned node cannot be reclaimed until Release (or
// the next Protect call on this guard) runs, because EagerReclaim always
// sees this slot's published address in its live-hazard snapshot.
//
// The returned tagSnapshot is the exact (pointer, tag) pair observed on the
// final, agreeing load — the expected operand a caller should hand to a
// subsequent CompareAndSwap on the same ref (P-find-1).
func (g *Guard[K, V]) Protect(ref *tagRef[Node[K, V]]) (*Node[K, V], tagSnapshot[Node[K, V]]) {
	for {
		snap := ref.Load()
		g.slot.ptr.Store(snap.Ptr())
		again := ref.Load()
		if again.Ptr() == snap.Ptr() {
			return again.Ptr(), again
		}
	}
}
