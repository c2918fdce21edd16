package skiplist

import "sync/atomic"

// tagSnapshot is an opaque (pointer, tag) pair returned by tagRef.Load. It is
// used as the expected operand of a subsequent CompareAndSwap, mirroring the
// cas_raw(expected_raw, new_raw) contract: any concurrent store between the
// Load and the CompareAndSwap changes the box identity, so the CAS fails
// even when the observed pointer and tag happen to still read back equal.
type tagSnapshot[T any] struct {
	box *tagBox[T]
}

type tagBox[T any] struct {
	ptr *T
	tag uint8
}

// Ptr returns the pointer half of the snapshot.
func (s tagSnapshot[T]) Ptr() *T {
	if s.box == nil {
		return nil
	}
	return s.box.ptr
}

// Tag returns the tag half of the snapshot.
func (s tagSnapshot[T]) Tag() uint8 {
	if s.box == nil {
		return 0
	}
	return s.box.tag
}

// tagRef is a pointer-sized atomic cell carrying a small integer tag
// alongside the pointer, per spec §4.1. Real lock-free implementations pack
// the tag into the low bits of the pointer word and CAS on the raw machine
// word (see node_amd64.go's dcasNext in the reference corpus); Go's garbage
// collector does not let us treat a live pointer as an integer that way
// without losing strict provenance, so instead we CAS on the identity of a
// small immutable box{ptr, tag} value. A store always allocates a fresh box,
// so box identity is exactly the "raw word" the spec's cas_raw operates on:
// any intervening store, tag-only or pointer-only, changes the box and
// invalidates a stale CAS.
type tagRef[T any] struct {
	v atomic.Pointer[tagBox[T]]
}

// Load returns the current (pointer, tag) pair plus an opaque snapshot
// suitable as the expected operand for CompareAndSwap.
func (r *tagRef[T]) Load() tagSnapshot[T] {
	return tagSnapshot[T]{box: r.v.Load()}
}

// LoadPtr returns only the pointer half of the current value.
func (r *tagRef[T]) LoadPtr() *T {
	return r.Load().Ptr()
}

// Store unconditionally composes and publishes (ptr, tag). Release ordering
// per §4.1 ("all stores release") is provided by atomic.Pointer.Store.
func (r *tagRef[T]) Store(ptr *T, tag uint8) {
	r.v.Store(&tagBox[T]{ptr: ptr, tag: tag})
}

// CompareAndSwap succeeds only if the current value is bit-for-bit the one
// captured by expected — i.e. the box identity has not changed since Load.
// Per §4.1, CAS success/failure is sequentially consistent.
func (r *tagRef[T]) CompareAndSwap(expected tagSnapshot[T], newPtr *T, newTag uint8) bool {
	return r.v.CompareAndSwap(expected.box, &tagBox[T]{ptr: newPtr, tag: newTag})
}
