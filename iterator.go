package skiplist

// Iterator provides a weakly-consistent, forward-only view over a List's
// base level (spec.md's Non-goals exclude range locks and snapshot
// isolation, not iteration itself). Concurrent Insert/Remove calls may or
// may not be visible to an in-progress iterator; no isolation is promised.
//
// An Iterator holds exactly one hazard guard, re-protecting it at each step
// (find, by contrast, takes a fresh guard for every node it visits). The
// guard stays held until Close is called, also after the iterator reaches
// the end; nothing else releases it.
type Iterator[K any, V any] struct {
	l       *List[K, V]
	guard   *Guard[K, V]
	current *Node[K, V]
	key     K
	value   V
	valid   bool
}

// Iterator returns a new iterator positioned before the first element.
func (l *List[K, V]) Iterator() *Iterator[K, V] {
	return &Iterator[K, V]{l: l, guard: l.domain.Acquire()}
}

// Close releases the iterator's hazard guard. Safe to call multiple times.
func (it *Iterator[K, V]) Close() {
	if it == nil || it.guard == nil {
		return
	}
	it.guard.Release()
	it.guard = nil
}

// Valid reports whether the iterator currently points at an element.
func (it *Iterator[K, V]) Valid() bool {
	return it != nil && it.valid
}

// Key returns the key at the iterator's current position.
// It should only be called when Valid reports true.
func (it *Iterator[K, V]) Key() K {
	var zero K
	if !it.Valid() {
		return zero
	}
	return it.key
}

// Value returns the value at the iterator's current position.
// It should only be called when Valid reports true.
func (it *Iterator[K, V]) Value() V {
	var zero V
	if !it.Valid() {
		return zero
	}
	return it.value
}

// SeekGE positions the iterator at the first live element whose key is
// greater than or equal to key. It returns true if such an element exists.
func (it *Iterator[K, V]) SeekGE(key K) bool {
	if it == nil || it.l == nil {
		return false
	}
	it.invalidate()

	res := it.l.find(key, false)
	pred := res.prev[0]

	// Protect pred.next[0] with the iterator's own guard while find's guards
	// (which are the only thing keeping pred itself alive) are still held —
	// releasing res first would let a concurrent Remove+EagerReclaim repool
	// pred out from under this dereference.
	next, _ := it.guard.Protect(&pred.next[0])
	res.Release()
	return it.settle(next)
}

// Next advances the iterator to the next live element, returning false and
// invalidating the iterator once the end of the list is reached.
func (it *Iterator[K, V]) Next() bool {
	if it == nil || it.l == nil {
		return false
	}
	start := it.current
	if !it.valid || start == nil {
		start = it.l.head
	}
	next, _ := it.guard.Protect(&start.next[0])
	return it.settle(next)
}

// settle walks forward from n, skipping logically-removed nodes, and
// installs the first live node found (or invalidates the iterator if the
// walk reaches tail).
func (it *Iterator[K, V]) settle(n *Node[K, V]) bool {
	for {
		if n == it.l.tail {
			it.invalidate()
			return false
		}
		if vp := n.value.Load(); vp != nil {
			it.current = n
			it.key = n.key
			it.value = *vp
			it.valid = true
			return true
		}
		n, _ = it.guard.Protect(&n.next[0])
	}
}

func (it *Iterator[K, V]) invalidate() {
	it.current = nil
	it.valid = false
	var zeroK K
	var zeroV V
	it.key = zeroK
	it.value = zeroV
}

// SeekGE returns an iterator positioned at the first live element whose key
// is greater than or equal to key.
func (l *List[K, V]) SeekGE(key K) *Iterator[K, V] {
	it := l.Iterator()
	it.SeekGE(key)
	return it
}

// Range calls fn for every live key in [lo, hi) in ascending order, stopping
// early if fn returns false. It is a bounded-walk convenience built on the
// same iterator machinery as SeekGE/Next — the ascending counterpart of the
// skl package's IRange, without the non-concurrent variant's snapshot
// guarantees.
func (l *List[K, V]) Range(lo, hi K, fn func(key K, value V) bool) {
	it := l.Iterator()
	defer it.Close()

	if !it.SeekGE(lo) {
		return
	}
	for it.Valid() && l.less(it.Key(), hi) {
		if !fn(it.Key(), it.Value()) {
			return
		}
		it.Next()
	}
}
