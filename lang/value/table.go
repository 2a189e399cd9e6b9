package value

// Table is an open-addressed hash table with linear probing, keyed by
// interned strings. It serves four roles in the runtime: the global
// variable table, a class's method table, an instance's field table, and
// (uniquely keyed by content rather than by an existing *ObjString) the
// interning pool itself via FindString.
//
// An entry is empty when Key == nil and Value is Nil; it is a tombstone
// (a deleted slot that must not stop probing) when Key == nil and Value is
// the bool true.
type Table struct {
	entries []tableEntry
	count   int // live entries plus tombstones
}

type tableEntry struct {
	Key   *ObjString
	Value Value
}

func (e tableEntry) isEmpty() bool     { return e.Key == nil && e.Value.kind == KindNil }
func (e tableEntry) isTombstone() bool { return e.Key == nil && e.Value.kind == KindBool && e.Value.b }

const tableMaxLoad = 0.75

// NewTable returns an empty Table.
func NewTable() *Table { return &Table{} }

// Get returns the value associated with key, if any.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	e := t.find(key)
	if e.Key == nil {
		return Nil, false
	}
	return e.Value, true
}

// Set inserts or overwrites the value for key, returning true if key was
// not already present.
func (t *Table) Set(key *ObjString, val Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := t.find(key)
	isNew := e.Key == nil
	if isNew && e.isEmpty() {
		t.count++
	}
	e.Key = key
	e.Value = val
	return isNew
}

// Delete removes key, leaving a tombstone so subsequent probes that
// clustered past this slot keep working. Returns false if key was absent.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.Key == nil {
		return false
	}
	e.Key = nil
	e.Value = Bool(true) // tombstone marker
	return true
}

// FindString returns the interned string with the given content and hash,
// or nil if no such string is live in the table. This is how string
// interning uniqueness is maintained: before allocating a new ObjString,
// the allocator calls this to see if one already exists.
func (t *Table) FindString(chars string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	cap := len(t.entries)
	idx := int(hash) % cap
	for {
		e := &t.entries[idx]
		switch {
		case e.Key == nil && e.isEmpty():
			return nil
		case e.Key != nil && e.Key.Hash == hash && e.Key.Chars == chars:
			return e.Key
		}
		idx = (idx + 1) % cap
	}
}

// find returns a pointer to the slot that holds key, or the slot where it
// should be inserted (reusing the first tombstone seen along the probe
// sequence).
func (t *Table) find(key *ObjString) *tableEntry {
	cap := len(t.entries)
	idx := int(key.Hash) % cap
	var tombstone *tableEntry
	for {
		e := &t.entries[idx]
		switch {
		case e.Key == nil:
			if e.isEmpty() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// tombstone
			if tombstone == nil {
				tombstone = e
			}
		case e.Key == key:
			return e
		}
		idx = (idx + 1) % cap
	}
}

func growCapacity(cap int) int {
	if cap < 8 {
		return 8
	}
	return cap * 2
}

func (t *Table) adjustCapacity(newCap int) {
	fresh := make([]tableEntry, newCap)
	var liveCount int
	for _, e := range t.entries {
		if e.Key == nil {
			continue // drop both empty slots and tombstones
		}
		dst := findIn(fresh, e.Key)
		dst.Key = e.Key
		dst.Value = e.Value
		liveCount++
	}
	t.entries = fresh
	t.count = liveCount
}

func findIn(entries []tableEntry, key *ObjString) *tableEntry {
	cap := len(entries)
	idx := int(key.Hash) % cap
	for {
		e := &entries[idx]
		if e.Key == nil || e.Key == key {
			return e
		}
		idx = (idx + 1) % cap
	}
}

// Each calls fn for every live (non-tombstone) entry. Iteration order is
// unspecified. Used by the GC to mark table contents and by RemoveWhite to
// scan the interning pool.
func (t *Table) Each(fn func(key *ObjString, val Value)) {
	for _, e := range t.entries {
		if e.Key != nil {
			fn(e.Key, e.Value)
		}
	}
}

// RemoveWhite deletes every entry whose key is not marked: the interning
// pool holds a weak reference to each string, so between mark and sweep,
// unreferenced interned strings must be evicted from the pool before sweep
// frees them, otherwise the pool would hold a dangling *ObjString.
func (t *Table) RemoveWhite() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.Key != nil && !e.Key.Hdr.Marked {
			e.Key = nil
			e.Value = Bool(true)
		}
	}
}

// Len returns the number of live (non-tombstone) entries.
func (t *Table) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.Key != nil {
			n++
		}
	}
	return n
}
