package securemem

import "testing"

func TestNewZeroed(t *testing.T) {
	s, err := New(16)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	for i, b := range s.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, b)
		}
	}
}

func TestNewFromBytesCopies(t *testing.T) {
	src := []byte("derived-key-material")
	s, err := NewFromBytes(src)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Destroy()
	if string(s.Bytes()) != string(src) {
		t.Fatalf("expected %q, got %q", src, s.Bytes())
	}
	src[0] = 'X'
	if s.Bytes()[0] == 'X' {
		t.Fatal("expected Secret to hold an independent copy")
	}
}

func TestDestroyIdempotentAndNilSafe(t *testing.T) {
	var nilSecret *Secret
	nilSecret.Destroy()

	s, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	s.Destroy()
	s.Destroy()
}
