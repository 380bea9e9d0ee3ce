package keyprotect

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want BufferKind
	}{
		{"plain", sampleKeyBuf(), Plain},
		{"empty", nil, Unknown},
		{"not a list", []byte("3:abc"), Unknown},
		{"unrelated list", []byte("(3:foo)"), Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.buf); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.buf, got, tc.want)
			}
		})
	}
}

func TestClassifyProtectedAndShadowed(t *testing.T) {
	plain := sampleKeyBuf()
	protected, err := Protect(plain, "pw")
	if err != nil {
		t.Fatalf("Protect: %v", err)
	}
	if got := Classify(protected); got != Protected {
		t.Errorf("Classify(protected) = %v, want Protected", got)
	}

	pub := buildRSAPublicKey([]byte("n"), []byte("e"))
	shadowed, err := Shadow(pub, []byte("locator"))
	if err != nil {
		t.Fatalf("Shadow: %v", err)
	}
	if got := Classify(shadowed); got != Shadowed {
		t.Errorf("Classify(shadowed) = %v, want Shadowed", got)
	}
}
