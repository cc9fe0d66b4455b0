package runtime

import "testing"

func TestValueFalsey(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NilVal(), true},
		{BoolVal(false), true},
		{BoolVal(true), false},
		{NumberVal(0), false},
		{NumberVal(1), false},
	}
	for _, c := range cases {
		if got := c.v.IsFalsey(); got != c.want {
			t.Errorf("IsFalsey(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestValueEqualStringIdentity(t *testing.T) {
	vm := newTestVM()
	a := ObjVal(vm.CopyString("same"))
	b := ObjVal(vm.CopyString("same"))
	if !a.Equal(b) {
		t.Fatalf("interned equal strings should compare Equal")
	}

	c := ObjVal(vm.CopyString("different"))
	if a.Equal(c) {
		t.Fatalf("different strings should not compare Equal")
	}
}

func TestValueEqualCrossKind(t *testing.T) {
	if NumberVal(0).Equal(BoolVal(false)) {
		t.Fatalf("Number(0) and Bool(false) must not be Equal despite both being falsey")
	}
	if NilVal().Equal(BoolVal(false)) {
		t.Fatalf("Nil and Bool(false) must not be Equal")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		3:    "3",
		-3:   "-3",
		3.5:  "3.5",
		0:    "0",
		-0.5: "-0.5",
	}
	for n, want := range cases {
		if got := formatNumber(n); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", n, got, want)
		}
	}
}
