// Command stress drives a mixed insert/remove/get/contains workload against
// a lfskiplist.List and reports CAS contention statistics. It is an external
// consumer of the core package, not part of it — spec.md carves "CLI
// wrapper" out of the core's scope, but a driver command living outside the
// package is fair game and is how the rest of this corpus benchmarks its
// concurrent data structures.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	skiplist "github.com/riftlake/lfskiplist"
)

func main() {
	var (
		workers    = pflag.IntP("workers", "w", 8, "number of concurrent worker goroutines")
		keySpace   = pflag.IntP("keys", "k", 4096, "key space size")
		opsPerGo   = pflag.IntP("ops", "n", 50_000, "operations per worker")
		writePct   = pflag.IntP("write-percent", "p", 30, "percentage of operations that are insert/remove")
		seed       = pflag.Int64P("seed", "s", time.Now().UnixNano(), "PRNG seed")
		reclaimAll = pflag.Bool("reclaim", true, "run a final Reclaim pass before reporting")
	)
	pflag.Parse()

	l := skiplist.New[int, int](func(a, b int) bool { return a < b })

	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < *workers; w++ {
		w := w
		g.Go(func() error {
			return runWorker(l, *seed+int64(w), *keySpace, *opsPerGo, *writePct)
		})
	}

	start := time.Now()
	if err := g.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, "stress run failed:", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	if *reclaimAll {
		l.Reclaim()
	}

	insertRetries, insertSuccesses, removeRetries, removeSuccesses := l.Stats()
	fmt.Printf("elapsed=%s len=%d insert(success=%d retry=%d) remove(success=%d retry=%d)\n",
		elapsed, l.Len(), insertSuccesses, insertRetries, removeSuccesses, removeRetries)
}

func runWorker(l *skiplist.List[int, int], seed int64, keySpace, ops, writePercent int) error {
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < ops; i++ {
		key := r.Intn(keySpace)
		if r.Intn(100) < writePercent {
			if r.Intn(2) == 0 {
				l.Insert(key, r.Int())
			} else {
				l.Remove(key)
			}
			continue
		}
		if r.Intn(2) == 0 {
			l.Get(key)
		} else {
			l.Contains(key)
		}
	}
	return nil
}
