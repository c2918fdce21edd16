// Command fuzzdrive repeatedly drives randomized insert/remove/get
// sequences against a lfskiplist.List under goroutine churn — each round
// spawns a fresh batch of goroutines, waits for all of them to exit and
// runs a Reclaim pass. It prints the round count and the final length; it
// does not inspect hazard slots or the retire list.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/pflag"

	skiplist "github.com/riftlake/lfskiplist"
)

func main() {
	var (
		keySpace = pflag.IntP("keys", "k", 1024, "key space size")
		rounds   = pflag.IntP("rounds", "r", 200, "number of spawn/churn rounds")
		batch    = pflag.IntP("batch", "b", 64, "goroutines spawned per round")
		seed     = pflag.Int64P("seed", "s", time.Now().UnixNano(), "PRNG seed")
	)
	pflag.Parse()

	l := skiplist.New[int, int](func(a, b int) bool { return a < b })
	r := rand.New(rand.NewSource(*seed))

	for round := 0; round < *rounds; round++ {
		done := make(chan struct{}, *batch)
		for i := 0; i < *batch; i++ {
			go func(seed int64) {
				defer func() { done <- struct{}{} }()
				churn(l, seed, *keySpace)
			}(r.Int63())
		}
		for i := 0; i < *batch; i++ {
			<-done
		}
		l.Reclaim()
	}

	pending := l.Len()
	fmt.Printf("rounds=%d final_len=%d\n", *rounds, pending)
	os.Exit(0)
}

func churn(l *skiplist.List[int, int], seed int64, keySpace int) {
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < 500; i++ {
		key := r.Intn(keySpace)
		switch r.Intn(3) {
		case 0:
			l.Insert(key, r.Int())
		case 1:
			l.Remove(key)
		case 2:
			l.Get(key)
		}
	}
}
