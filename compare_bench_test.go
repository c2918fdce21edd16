package skiplist

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/riftlake/lfskiplist/skl"
)

// BenchmarkCompareSkipLists puts the lock-free List head to head against
// skl's mutex-guarded SkipList under the same access pattern
// (runConcurrentWorkload, shared with BenchmarkListWorkloads), to quantify
// what the hazard-pointer design buys over a coarse lock at each thread
// count.
func BenchmarkCompareSkipLists(b *testing.B) {
	less := func(a, b int) bool { return a < b }

	for _, dist := range benchDistributions {
		dist := dist
		b.Run(dist.name, func(b *testing.B) {
			for _, workload := range benchWorkloads {
				workload := workload
				b.Run(workload.name, func(b *testing.B) {
					for _, threads := range benchThreadCounts {
						threads := threads

						b.Run(fmt.Sprintf("LockFree_P%d", threads), func(b *testing.B) {
							m := New[int, int](less)
							for i := range benchKeyRange / 2 {
								m.Insert(i, i)
							}

							b.ResetTimer()
							runConcurrentWorkload(b, dist.kind, threads, func(r *rand.Rand, key int) {
								if r.Intn(100) < workload.writePercent {
									if r.Intn(2) == 0 {
										m.Insert(key, r.Intn(1<<16))
									} else {
										_, _ = m.Remove(key)
									}
									return
								}
								if r.Intn(2) == 0 {
									_, _ = m.Get(key)
								} else {
									_ = m.Contains(key)
								}
							})
							b.StopTimer()
						})

						b.Run(fmt.Sprintf("LockBased_P%d", threads), func(b *testing.B) {
							cfg := skl.NewConfig()
							list, _ := skl.InitSkipList[int, int](cfg)
							for i := range benchKeyRange / 2 {
								list.Put(i, i)
							}

							var mu sync.Mutex

							b.ResetTimer()
							runConcurrentWorkload(b, dist.kind, threads, func(r *rand.Rand, key int) {
								mu.Lock()
								defer mu.Unlock()
								if r.Intn(100) < workload.writePercent {
									if r.Intn(2) == 0 {
										list.Put(key, r.Intn(1<<16))
									} else {
										_ = list.Remove(key)
									}
									return
								}
								_, _ = list.Get(key)
							})
							b.StopTimer()
						})
					}
				})
			}
		})
	}
}
