package skiplist

// Insert adds key/value, or replaces the value of an existing live key
// (spec §4.5, §9 "insert on existing key: replace"). It returns the outcome
// so callers can recover the value that was displaced, if any.
func (l *List[K, V]) Insert(key K, value V) InsertOutcome[V] {
	newVal := new(V)
	*newVal = value

	for {
		res := l.find(key, false)

		if res.found != nil {
			old := res.found.value.Load()
			if old == nil {
				// Lost a race with a concurrent remove between find and here;
				// the key is no longer live, so this is really a fresh insert.
				res.Release()
				continue
			}
			if !res.found.value.CompareAndSwap(old, newVal) {
				res.Release()
				continue
			}
			res.Release()
			return InsertOutcome[V]{Replaced: true, Previous: *old}
		}

		height := l.sampler.sample()
		n := l.domain.pool.acquire(key, newVal, height)
		for i := 0; i < height; i++ {
			n.next[i].Store(res.curr[i], tagLive)
		}

		if !res.prev[0].next[0].CompareAndSwap(res.prevSnap[0], n, tagLive) {
			l.metrics.IncInsertCASRetry()
			res.Release()
			continue
		}
		l.metrics.IncInsertCASSuccess()
		l.metrics.AddLen(1)
		res.Release()

		l.linkUpperLevels(key, n, height)
		l.domain.EagerReclaim()
		return InsertOutcome[V]{}
	}
}

// linkUpperLevels splices n into levels [1, height) above the base level it
// was already linked into by Insert's winning CAS (spec §4.5 step 5). Each
// level is linked independently; a failed CAS at a level means some other
// mutation changed that level's predecessor/successor, so this re-finds
// fresh neighbors and retries rather than unwinding the whole insert — the
// node is already reachable via level 0, so partial upper-level linkage is
// never visible as a correctness problem, only as a shallower tower until
// it converges.
func (l *List[K, V]) linkUpperLevels(key K, n *Node[K, V], height int) {
	for lvl := 1; lvl < height; lvl++ {
		for {
			res := l.find(key, true)
			if res.curr[lvl] == n {
				res.Release()
				break
			}
			n.next[lvl].Store(res.curr[lvl], tagLive)
			ok := res.prev[lvl].next[lvl].CompareAndSwap(res.prevSnap[lvl], n, tagLive)
			res.Release()
			if ok {
				break
			}
		}
	}
}

// Remove deletes key if present, returning the value that was removed.
// Removal is logical-then-physical (spec §4.6): a winning CAS on the
// node's value pointer (live -> nil) is the linearization point, after
// which the winning goroutine alone tags the node's own level pointers,
// unlinks it top-down (concurrent finds may unlink levels first) and
// retires it to the reclamation domain.
func (l *List[K, V]) Remove(key K) (V, bool) {
	res := l.find(key, false)
	if res.found == nil {
		res.Release()
		var zero V
		return zero, false
	}
	target := res.found

	var old *V
	for {
		cur := target.value.Load()
		if cur == nil {
			res.Release()
			var zero V
			return zero, false
		}
		if target.value.CompareAndSwap(cur, nil) {
			old = cur
			break
		}
	}
	// Winning the removal CAS makes this goroutine the only one that retires
	// target, so find's guards are no longer needed to keep it alive.
	res.Release()
	l.metrics.AddLen(-1)

	l.tagOwnLevels(target)
	l.unlink(key, target)
	l.domain.retire(target)
	l.domain.EagerReclaim()

	return *old, true
}

// tagOwnLevels marks every level pointer target owns as stale, top-down
// (spec §4.6). A concurrent insert or remove that recorded target as its
// own predecessor and is mid-flight toward CASing target.next[lvl] will
// find its expected snapshot invalidated here and must re-find, closing the
// predecessor-removed-between-check-and-CAS race.
func (l *List[K, V]) tagOwnLevels(target *Node[K, V]) {
	for lvl := target.height() - 1; lvl >= 0; lvl-- {
		for {
			snap := target.next[lvl].Load()
			if snap.Tag() == tagStale {
				break
			}
			if target.next[lvl].CompareAndSwap(snap, snap.Ptr(), tagStale) {
				break
			}
		}
	}
}

// unlink physically detaches target from every level it was linked at,
// top-down, helping along any concurrent find() that reaches the same
// level first. A level where target has already been unlinked by a helper
// is simply skipped.
func (l *List[K, V]) unlink(key K, target *Node[K, V]) {
	for lvl := target.height() - 1; lvl >= 0; lvl-- {
		for {
			res := l.find(key, true)
			if res.curr[lvl] != target {
				// Already unlinked at this level by a helper.
				res.Release()
				break
			}
			next := target.next[lvl].LoadPtr()
			ok := res.prev[lvl].next[lvl].CompareAndSwap(res.prevSnap[lvl], next, tagLive)
			res.Release()
			if ok {
				l.metrics.IncRemoveCASSuccess()
				break
			}
			l.metrics.IncRemoveCASRetry()
		}
	}
}
