package atom

import "testing"

func TestNewSetDedupsAndSorts(t *testing.T) {
	d := NewSet([]Atom{Integer(3), Integer(1), Integer(3), Integer(2)})
	if d.Len() != 3 {
		t.Fatalf("got len %d, want 3", d.Len())
	}
	for i, want := range []int64{1, 2, 3} {
		if d.Keys[i].Int != want {
			t.Fatalf("keys[%d] = %d, want %d", i, d.Keys[i].Int, want)
		}
	}
}

func TestMapUnionOverlay(t *testing.T) {
	base := NewMap([]Atom{String("color"), String("size")}, []Atom{String("red"), String("big")})
	overlay := NewMap([]Atom{String("color")}, []Atom{String("blue")})

	merged := base.Union(overlay)

	v, ok := merged.Lookup(String("color"))
	if !ok || v.Str != "blue" {
		t.Fatalf("expected overlay to win, got %v, %v", v, ok)
	}
	v, ok = merged.Lookup(String("size"))
	if !ok || v.Str != "big" {
		t.Fatalf("expected untouched key preserved, got %v, %v", v, ok)
	}
}

func TestSetAddRemoveDuality(t *testing.T) {
	initial := NewSet([]Atom{String("eth0"), String("eth1")})
	withAdded := initial.Union(NewSet([]Atom{String("eth2")}))
	back := withAdded.Subtract(NewSet([]Atom{String("eth2")}))

	if !back.Equal(initial) {
		t.Fatalf("add/remove duality broken: got %v, want %v", back, initial)
	}
}

func TestSubsetOf(t *testing.T) {
	small := NewSet([]Atom{Integer(1)})
	big := NewSet([]Atom{Integer(1), Integer(2)})

	if !small.SubsetOf(big) {
		t.Fatal("expected {1} subset of {1,2}")
	}
	if big.SubsetOf(small) {
		t.Fatal("expected {1,2} not subset of {1}")
	}
}

func TestRemoveByKeyOnMap(t *testing.T) {
	m := NewMap([]Atom{String("a"), String("b")}, []Atom{Integer(1), Integer(2)})
	after := m.Subtract(NewSet([]Atom{String("a")}))

	if after.Len() != 1 {
		t.Fatalf("got len %d, want 1", after.Len())
	}
	if _, ok := after.Lookup(String("a")); ok {
		t.Fatal("expected key a removed")
	}
}
