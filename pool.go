package skiplist

import "sync"

// nodePool recycles Node structs once the reclamation domain has confirmed
// no hazard guard protects them (spec §4.2, §9 "hazard vs epoch"). Handing a
// node back to sync.Pool before that point would let a concurrent Get land
// on a node some other Insert has already overwritten with a different
// key/value — the whole point of the reclamation domain is to gate that
// reuse, so release is only ever called from Domain's reclaim callback, not
// directly by the mutator.
type nodePool[K any, V any] struct {
	nodes sync.Pool
}

func newNodePool[K any, V any]() *nodePool[K, V] {
	p := &nodePool[K, V]{}
	p.nodes.New = func() any {
		return &Node[K, V]{}
	}
	return p
}

func (p *nodePool[K, V]) acquire(key K, val *V, height int) *Node[K, V] {
	n := p.nodes.Get().(*Node[K, V])
	if cap(n.next) < height {
		n.next = make([]tagRef[Node[K, V]], height)
	} else {
		n.next = n.next[:height]
		for i := range n.next {
			n.next[i] = tagRef[Node[K, V]]{}
		}
	}
	n.key = key
	n.value.Store(val)
	return n
}

// release returns n to the pool for reuse by a future acquire. Callers must
// only invoke this once the reclamation domain has confirmed n is no longer
// hazard-protected (see Domain.onReclaim).
func (p *nodePool[K, V]) release(n *Node[K, V]) {
	var zeroK K
	n.key = zeroK
	n.value.Store(nil)
	p.nodes.Put(n)
}
