package runtime

import (
	"fmt"
	"testing"
)

func newTestVM() *VM { return NewVM(nil) }

func TestTableSetGetDelete(t *testing.T) {
	vm := newTestVM()
	table := NewTable()
	key := vm.CopyString("greeting")

	if _, ok := table.Get(key); ok {
		t.Fatalf("expected miss on empty table")
	}

	if !table.Set(key, NumberVal(42)) {
		t.Fatalf("Set on a new key should report isNewKey=true")
	}
	value, ok := table.Get(key)
	if !ok || value.AsNumber() != 42 {
		t.Fatalf("got (%v, %v), want (42, true)", value, ok)
	}

	if table.Set(key, NumberVal(43)) {
		t.Fatalf("Set overwriting an existing key should report isNewKey=false")
	}

	if !table.Delete(key) {
		t.Fatalf("Delete of a present key should succeed")
	}
	if table.Has(key) {
		t.Fatalf("key should be gone after Delete")
	}

	// Re-inserting after a delete must reuse the tombstone slot and
	// remain findable (spec.md 3.4's probe-sequence invariant).
	table.Set(key, NumberVal(7))
	if v, ok := table.Get(key); !ok || v.AsNumber() != 7 {
		t.Fatalf("re-insert after delete failed: (%v, %v)", v, ok)
	}
}

func TestTableGrowsAndKeepsAllEntries(t *testing.T) {
	vm := newTestVM()
	table := NewTable()
	const n = 200
	keys := make([]*ObjString, n)
	for i := 0; i < n; i++ {
		keys[i] = vm.CopyString(fmt.Sprintf("key-%d", i))
		table.Set(keys[i], NumberVal(float64(i)))
	}
	for i, k := range keys {
		v, ok := table.Get(k)
		if !ok || v.AsNumber() != float64(i) {
			t.Fatalf("entry %d lost after growth: (%v, %v)", i, v, ok)
		}
	}
}

func TestStringInterning(t *testing.T) {
	vm := newTestVM()
	a := vm.CopyString("hello")
	b := vm.CopyString("hello")
	if a != b {
		t.Fatalf("CopyString should intern: got distinct pointers for equal content")
	}
	c := vm.TakeString("hello")
	if a != c {
		t.Fatalf("TakeString should hit the same intern entry as CopyString")
	}
}

func TestFindString(t *testing.T) {
	vm := newTestVM()
	interned := vm.CopyString("needle")
	found := vm.strings.FindString("needle", hashString("needle"))
	if found != interned {
		t.Fatalf("FindString did not return the interned instance")
	}
	if vm.strings.FindString("missing", hashString("missing")) != nil {
		t.Fatalf("FindString should miss on absent content")
	}
}
