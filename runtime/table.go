package runtime

// Table is the open-addressed, linear-probed hash table of spec.md
// 3.4. It backs vm.globals, every ObjClass/ObjNativeClass method
// table, every ObjInstance field table, and the vm.strings intern set.
type Table struct {
	count    int // live entries + tombstones
	entries  []tableEntry
}

type tableEntry struct {
	Key   *ObjString // nil means empty-or-tombstone
	Value Value
	live  bool // distinguishes a tombstone (Key==nil, live==true) from a truly empty slot (Key==nil, live==false)
}

const tableMaxLoad = 0.75

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Count() int {
	return t.count
}

// findEntry returns the slot a key would occupy: an existing entry, an
// empty slot, or the first tombstone seen along the probe sequence (so
// re-inserting after a delete reuses the tombstone). Lookup stops only
// at a slot that is empty and not a tombstone, per spec.md 3.4.
func findEntry(entries []tableEntry, key *ObjString) *tableEntry {
	capacity := len(entries)
	index := key.Hash & uint32(capacity-1)
	var tombstone *tableEntry

	for {
		entry := &entries[index]
		if entry.Key == nil {
			if entry.tombstoneMarker() {
				if tombstone == nil {
					tombstone = entry
				}
			} else {
				if tombstone != nil {
					return tombstone
				}
				return entry
			}
		} else if entry.Key == key {
			return entry
		}
		index = (index + 1) & uint32(capacity-1)
	}
}

// tombstoneMarker distinguishes a deleted slot from a never-used one.
// We mark tombstones with live=true and Key=nil (never true for an
// untouched slot, whose zero value has live=false too).
func (e *tableEntry) tombstoneMarker() bool {
	return e.live
}

func (t *Table) adjustCapacity(capacity int) {
	newEntries := make([]tableEntry, capacity)
	newCount := 0
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key == nil {
			continue
		}
		dest := findEntry(newEntries, entry.Key)
		dest.Key = entry.Key
		dest.Value = entry.Value
		newCount++
	}
	t.entries = newEntries
	t.count = newCount
}

// Get looks up key, returning (value, true) on hit.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return NilVal(), false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return NilVal(), false
	}
	return entry.Value, true
}

func (t *Table) Has(key *ObjString) bool {
	_, ok := t.Get(key)
	return ok
}

// Set inserts or overwrites key->value, growing the table first if the
// load factor would exceed 0.75. Returns true if this created a new
// entry.
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		capacity := growCapacity(len(t.entries))
		t.adjustCapacity(capacity)
	}

	entry := findEntry(t.entries, key)
	isNewKey := entry.Key == nil
	if isNewKey && !entry.tombstoneMarker() {
		t.count++
	}

	entry.Key = key
	entry.Value = value
	entry.live = true
	return isNewKey
}

// Delete replaces the entry with a tombstone so later probe sequences
// stay unbroken (spec.md 3.4).
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	entry := findEntry(t.entries, key)
	if entry.Key == nil {
		return false
	}
	entry.Key = nil
	entry.Value = BoolVal(true)
	entry.live = true // tombstone marker persists
	return true
}

// AddAll copies every entry of src into t, used by class inheritance
// to seed a subclass's method table from its superclass.
func (t *Table) AddAll(src *Table) {
	for i := range src.entries {
		entry := &src.entries[i]
		if entry.Key != nil {
			t.Set(entry.Key, entry.Value)
		}
	}
}

// FindString looks an interned string up by content without already
// holding an *ObjString, the operation copyString/takeString need.
func (t *Table) FindString(s string, hash uint32) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := hash & uint32(capacity-1)
	for {
		entry := &t.entries[index]
		if entry.Key == nil {
			if !entry.tombstoneMarker() {
				return nil
			}
		} else if entry.Key.Hash == hash && entry.Key.Chars == s {
			return entry.Key
		}
		index = (index + 1) & uint32(capacity-1)
	}
}

// removeWhite deletes every entry whose key is unmarked, used by the
// GC to keep the string-intern set from being a source of roots
// (spec.md 4.6, "String-intern weak set").
func (t *Table) removeWhite() {
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key != nil && !entry.Key.marked {
			entry.Key = nil
			entry.Value = BoolVal(true)
			entry.live = true
		}
	}
}

// mark marks every key and value reachable from this table, part of
// the GC mark phase's root set for vm.globals (spec.md 4.6).
func (t *Table) mark(gc *gcState) {
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key != nil {
			gc.markObject(entry.Key)
			gc.markValue(entry.Value)
		}
	}
}

// Each iterates over every live entry.
func (t *Table) Each(fn func(key *ObjString, value Value)) {
	for i := range t.entries {
		entry := &t.entries[i]
		if entry.Key != nil {
			fn(entry.Key, entry.Value)
		}
	}
}

func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}
