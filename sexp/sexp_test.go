package sexp

import "testing"

func TestReadLength(t *testing.T) {
	c := NewCursor([]byte("11:private-key"))
	n, err := c.ReadLength()
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 {
		t.Fatalf("expected length 11, got %d", n)
	}
}

func TestReadLengthRejectsEmptyAndZero(t *testing.T) {
	for _, s := range []string{":x", "0:", "abc:x"} {
		c := NewCursor([]byte(s))
		if _, err := c.ReadLength(); err != ErrInvalidSexp {
			t.Fatalf("%q: expected ErrInvalidSexp, got %v", s, err)
		}
	}
}

func TestReadLengthRejectsMissingColon(t *testing.T) {
	c := NewCursor([]byte("11private-key"))
	if _, err := c.ReadLength(); err != ErrInvalidSexp {
		t.Fatalf("expected ErrInvalidSexp, got %v", err)
	}
}

func TestReadAtom(t *testing.T) {
	c := NewCursor([]byte("3:rsa"))
	atom, err := c.ReadAtom()
	if err != nil {
		t.Fatal(err)
	}
	if string(atom) != "rsa" {
		t.Fatalf("expected rsa, got %q", atom)
	}
	if !c.AtEnd() {
		t.Fatal("expected cursor at end")
	}
}

func TestMatchTokenAdvancesOnMatch(t *testing.T) {
	c := NewCursor([]byte("11:private-key"))
	n, err := c.ReadLength()
	if err != nil {
		t.Fatal(err)
	}
	ok, err := c.MatchToken(n, "private-key")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected match")
	}
	if !c.AtEnd() {
		t.Fatal("expected cursor consumed the literal")
	}
}

func TestMatchTokenLeavesCursorOnMismatch(t *testing.T) {
	c := NewCursor([]byte("3:rsa"))
	n, err := c.ReadLength()
	if err != nil {
		t.Fatal(err)
	}
	before := c.Pos()
	ok, err := c.MatchToken(n, "dsa")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
	if c.Pos() != before {
		t.Fatal("expected cursor unchanged on mismatch")
	}
}

func TestSkipAtZeroDepthDoesNotAdvance(t *testing.T) {
	c := NewCursor([]byte("3:rsarest"))
	depth, err := c.Skip(0)
	if err != nil {
		t.Fatal(err)
	}
	if depth != 0 {
		t.Fatalf("expected depth 0, got %d", depth)
	}
	if c.Pos() != 0 {
		t.Fatal("Skip(0) must not advance the cursor")
	}
}

func TestSkipNestedList(t *testing.T) {
	// "(1:n1:x)" consumed after the opening paren, leaving "rest" unread.
	c := NewCursor([]byte("(1:n1:x)rest"))
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	depth, err := c.Skip(1)
	if err != nil {
		t.Fatal(err)
	}
	if depth != 0 {
		t.Fatalf("expected depth 0, got %d", depth)
	}
	if string(c.Remaining()) != "rest" {
		t.Fatalf("expected remaining %q, got %q", "rest", c.Remaining())
	}
}

func TestSkipFailsOnTruncatedList(t *testing.T) {
	c := NewCursor([]byte("(1:n1:x"))
	if err := c.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Skip(1); err != ErrInvalidSexp {
		t.Fatalf("expected ErrInvalidSexp, got %v", err)
	}
}

func TestCanonLength(t *testing.T) {
	buf := []byte("(3:rsa(1:n1:x)(1:e1:y))")
	if n := CanonLength(buf); n != len(buf) {
		t.Fatalf("expected %d, got %d", len(buf), n)
	}
}

func TestCanonLengthIgnoresTrailingGarbage(t *testing.T) {
	buf := []byte("(3:rsa(1:n1:x))garbage")
	n := CanonLength(buf)
	if n != len(buf)-len("garbage") {
		t.Fatalf("expected length excluding trailing garbage, got %d", n)
	}
}

func TestCanonLengthZeroOnMalformed(t *testing.T) {
	if n := CanonLength([]byte("3:rsa")); n != 0 {
		t.Fatalf("expected 0 for non-list, got %d", n)
	}
	if n := CanonLength([]byte("(3:rsa")); n != 0 {
		t.Fatalf("expected 0 for truncated list, got %d", n)
	}
}

func TestExpectAtom(t *testing.T) {
	c := NewCursor([]byte("11:private-key"))
	ok, err := c.ExpectAtom("private-key")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected match")
	}
	if !c.AtEnd() {
		t.Fatal("expected cursor consumed")
	}
}

func TestExpectAtomLeavesCursorOnMismatch(t *testing.T) {
	c := NewCursor([]byte("21:protected-private-key"))
	before := c.Pos()
	ok, err := c.ExpectAtom("private-key")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected mismatch")
	}
	if c.Pos() != before {
		t.Fatal("expected cursor unchanged on mismatch")
	}
}
