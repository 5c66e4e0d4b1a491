// Package ot implements the ordering table: an array of draw-record
// lists indexed by quantized depth, drained far-to-near for
// back-to-front compositing without a per-pixel depth test.
package ot

// Size is the number of depth buckets. Bucket 0 and indices at or past
// Size are reserved; callers must reject them before Insert.
const Size = 1024

const none = -1

// Table holds intrusive singly linked lists of draw-record pool slots,
// one list per depth bucket. Records within a bucket keep insertion
// order; ties inside one bucket are an accepted approximation.
type Table struct {
	heads [Size]int32
	tails [Size]int32
	next  []int32 // indexed by pool slot
}

// NewTable sizes the link array for a draw-record pool of poolCap slots.
func NewTable(poolCap int) *Table {
	t := &Table{next: make([]int32, poolCap)}
	t.Clear()
	return t
}

// Clear resets every bucket to empty in O(Size). Stale next links are
// overwritten on the next Insert of their slot.
func (t *Table) Clear() {
	for i := range t.heads {
		t.heads[i] = none
		t.tails[i] = none
	}
}

// Insert appends pool slot to the bucket's list in O(1). The caller
// guarantees 0 < bucket < Size and a valid slot.
func (t *Table) Insert(slot int32, bucket int) {
	t.next[slot] = none
	if t.tails[bucket] == none {
		t.heads[bucket] = slot
	} else {
		t.next[t.tails[bucket]] = slot
	}
	t.tails[bucket] = slot
}

// Walk visits every inserted slot in draw order: buckets descending
// (farthest first), insertion order within each bucket.
func (t *Table) Walk(fn func(slot int32)) {
	for b := Size - 1; b >= 0; b-- {
		for s := t.heads[b]; s != none; s = t.next[s] {
			fn(s)
		}
	}
}
