package match

import "testing"

func TestScoreExactAndPrefixEquivalence(t *testing.T) {
	if Score("foo_bar", "foo-bar") != maxScore {
		t.Fatal("expected exact match under -/_ equivalence")
	}
	if Score("FooBar", "foo_bar") != maxScore {
		t.Fatal("expected exact match under case-insensitivity")
	}
}

func TestScorePrefix(t *testing.T) {
	s := Score("external_ids", "external")
	if s != maxScore-1 {
		t.Fatalf("got %d, want maxScore-1", s)
	}
}

func TestScoreNoMatch(t *testing.T) {
	if Score("external_ids", "tag") != 0 {
		t.Fatal("expected zero score for non-prefix query")
	}
}

func TestBestAmbiguous(t *testing.T) {
	_, err := Best([]string{"external_ids", "external_mac"}, "external")
	if _, ok := err.(*ErrAmbiguous); !ok {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
}

func TestBestUnambiguous(t *testing.T) {
	name, err := Best([]string{"external_ids", "tag", "name"}, "ext")
	if err != nil || name != "external_ids" {
		t.Fatalf("got %q, %v", name, err)
	}
}

func TestBestPrefersExactOverPrefix(t *testing.T) {
	name, err := Best([]string{"name", "name_column"}, "name")
	if err != nil || name != "name" {
		t.Fatalf("got %q, %v", name, err)
	}
}

func TestBestNoMatch(t *testing.T) {
	_, err := Best([]string{"foo", "bar"}, "zzz")
	if _, ok := err.(*ErrNoMatch); !ok {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
