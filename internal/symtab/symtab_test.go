package symtab

import "testing"

func TestCreateRejectsNonAtName(t *testing.T) {
	tab := New()
	if _, _, err := Create(tab, "foo", true); err == nil {
		t.Fatal("expected error for name not starting with @")
	}
}

func TestCreateTwiceIsFatal(t *testing.T) {
	tab := New()
	if _, _, err := Create(tab, "@p", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := Create(tab, "@p", true); err == nil {
		t.Fatal("expected error for redefining @p")
	}
}

func TestCreateReportsPreexistence(t *testing.T) {
	tab := New()
	_, existed, _ := Create(tab, "@p", false)
	if existed {
		t.Fatal("expected symbol to be new")
	}
	_, existed, err := Create(tab, "@p", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !existed {
		t.Fatal("expected symbol to be reported as pre-existing (forward reference)")
	}
}
