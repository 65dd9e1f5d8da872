package transposition

import (
	"sync"
	"sync/atomic"
)

// Table caches evaluations by position hash. It is safe for concurrent use.
type Table struct {
	table  *sync.Map // The actual hashmap holding the entries
	hits   atomic.Uint64
	misses atomic.Uint64
}

// Entry is a cached evaluation
type Entry struct {
	Score int // The evaluation of the position
	Depth int // The depth the score was searched to, 0 for static evaluations
}

// NewTable returns an empty table
func NewTable() *Table {
	return &Table{table: &sync.Map{}}
}

// Query will perform a lookup in the table and return the entry and whether it was found
func (t *Table) Query(hash [16]byte) (Entry, bool) {
	v, ok := t.table.Load(hash)
	if !ok {
		t.misses.Add(1)
		return Entry{}, false
	}
	ret, ok := v.(Entry)
	if !ok {
		t.misses.Add(1)
		return Entry{}, false
	}
	t.hits.Add(1)
	return ret, true
}

// Commit will add an entry to the table unless a deeper one is stored already
func (t *Table) Commit(hash [16]byte, entry Entry) {
	if v, ok := t.table.Load(hash); ok {
		if stored, ok := v.(Entry); ok && stored.Depth > entry.Depth {
			return
		}
	}
	t.table.Store(hash, entry)
}

// Clear removes every entry and resets the counters
func (t *Table) Clear() {
	t.table.Range(func(k, _ any) bool {
		t.table.Delete(k)
		return true
	})
	t.hits.Store(0)
	t.misses.Store(0)
}

// Hits returns the number of successful lookups
func (t *Table) Hits() uint64 {
	return t.hits.Load()
}

// Misses returns the number of failed lookups
func (t *Table) Misses() uint64 {
	return t.misses.Load()
}
