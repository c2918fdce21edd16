package skiplist

import (
	"math/bits"
	"math/rand"
	"sync"
	"time"
)

// heightSampler draws node heights from a geometric distribution with
// p=1/2 (spec §4.4): h = 1 + trailing_zeros(rand_u64()), saturating at
// MaxLevel. Each call borrows a per-goroutine *rand.Rand from a pool rather
// than coordinating across goroutines, matching "per-thread state; no
// cross-thread coordination."
type heightSampler struct {
	pool sync.Pool
	once sync.Once
}

func newHeightSampler() *heightSampler {
	s := &heightSampler{}
	s.pool.New = func() any {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// newHeightSamplerWithSeed returns a sampler with deterministic output, the
// "seedable variant for tests" spec §6 allows.
func newHeightSamplerWithSeed(seed int64) *heightSampler {
	s := &heightSampler{}
	s.pool.New = func() any {
		return rand.New(rand.NewSource(seed))
	}
	return s
}

func (s *heightSampler) ensurePool() {
	s.once.Do(func() {
		if s.pool.New == nil {
			s.pool.New = func() any {
				return rand.New(rand.NewSource(time.Now().UnixNano()))
			}
		}
	})
}

func (s *heightSampler) next64() uint64 {
	s.ensurePool()
	r := s.pool.Get().(*rand.Rand)
	v := r.Uint64()
	s.pool.Put(r)
	return v
}

// sample returns h in [1, MaxLevel].
func (s *heightSampler) sample() int {
	h := bits.TrailingZeros64(s.next64()) + 1
	if h > MaxLevel {
		return MaxLevel
	}
	return h
}
