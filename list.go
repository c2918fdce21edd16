package skiplist

// Less reports whether a sorts before b. The list's total order — and
// therefore key equality, defined as !less(a,b) && !less(b,a) — comes
// entirely from this function rather than from comparable/==, so K need not
// satisfy comparable (spec §3).
type Less[K any] func(a, b K) bool

// InsertOutcome reports what Insert did: whether the key was new
// (Inserted) or already present (Replaced, carrying the value that was
// displaced), per spec §6.
type InsertOutcome[V any] struct {
	Replaced bool
	Previous V
}

// List is the lock-free ordered map of spec.md: a probabilistic skip list
// with hazard-pointer-guarded reclamation. The zero value is not usable;
// construct with New.
type List[K any, V any] struct {
	less Less[K]

	head *Node[K, V]
	tail *Node[K, V]

	domain  *Domain[K, V]
	sampler *heightSampler
	metrics *Metrics
}

// Option configures a List at construction time (spec §6's configuration
// knobs), following the functional-options pattern the rest of the corpus
// uses for this (skl.Config's WithXxx family).
type Option[K any, V any] func(*List[K, V])

// WithDomain injects a Domain to share across multiple Lists of the same
// key/value types, rather than letting New allocate a private one.
func WithDomain[K any, V any](d *Domain[K, V]) Option[K, V] {
	return func(l *List[K, V]) { l.domain = d }
}

// WithSeed makes node-height sampling deterministic, for tests that need to
// reproduce a specific tower-height sequence.
func WithSeed[K any, V any](seed int64) Option[K, V] {
	return func(l *List[K, V]) { l.sampler = newHeightSamplerWithSeed(seed) }
}

// New constructs an empty List ordered by less.
func New[K any, V any](less Less[K], opts ...Option[K, V]) *List[K, V] {
	head, tail := newSentinels[K, V]()
	l := &List[K, V]{
		less:    less,
		head:    head,
		tail:    tail,
		sampler: newHeightSampler(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.domain == nil {
		l.domain = NewDomain[K, V]()
	}
	return l
}

func (l *List[K, V]) equal(a, b K) bool {
	return !l.less(a, b) && !l.less(b, a)
}

// Get returns the value stored for key, and whether key is present.
func (l *List[K, V]) Get(key K) (V, bool) {
	res := l.find(key, false)
	defer res.Release()

	if res.found == nil {
		var zero V
		return zero, false
	}
	vp := res.found.value.Load()
	if vp == nil {
		var zero V
		return zero, false
	}
	return *vp, true
}

// Contains reports whether key is present.
func (l *List[K, V]) Contains(key K) bool {
	res := l.find(key, false)
	defer res.Release()
	return res.found != nil
}

// Len returns the eventually-consistent element count (spec §6).
func (l *List[K, V]) Len() int64 {
	return l.metrics.Len()
}

// Stats reports CAS contention counters for benchmarking and diagnostics.
func (l *List[K, V]) Stats() (insertRetries, insertSuccesses, removeRetries, removeSuccesses int64) {
	insertRetries, insertSuccesses = l.metrics.InsertCASStats()
	removeRetries, removeSuccesses = l.metrics.RemoveCASStats()
	return
}

// Reclaim runs one pass of the reclamation domain's eager scan, freeing any
// retired node no hazard guard currently protects. Callers do not need to
// call this for correctness — Insert/Remove already trigger it periodically
// — but tests and long-idle callers may want to force a pass.
func (l *List[K, V]) Reclaim() {
	l.domain.EagerReclaim()
}
