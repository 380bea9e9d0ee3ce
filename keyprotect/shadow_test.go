package keyprotect

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kryptco/krprotect/sexp"
)

func TestShadowGetShadowInfoRoundTrip(t *testing.T) {
	pub := buildRSAPublicKey([]byte("modulus-bytes"), []byte("\x01\x00\x01"))
	locator := atomBytes([]byte("device-fingerprint-1234"))

	shadowed, err := Shadow(pub, locator)
	if err != nil {
		t.Fatalf("Shadow: %v", err)
	}
	if sexp.CanonLength(shadowed) != len(shadowed) {
		t.Fatal("Shadow output is not exactly one well-formed canonical value")
	}
	if Classify(shadowed) != Shadowed {
		t.Fatalf("Classify(shadowed) = %v, want Shadowed", Classify(shadowed))
	}

	got, err := GetShadowInfo(shadowed)
	if err != nil {
		t.Fatalf("GetShadowInfo: %v", err)
	}
	if !bytes.Equal(got, locator) {
		t.Fatalf("GetShadowInfo = %q, want %q", got, locator)
	}
}

func TestGetShadowInfoUnsupportedProtocol(t *testing.T) {
	var buf []byte
	buf = append(buf, '(')
	buf = append(buf, atom("shadowed-private-key")...)
	buf = append(buf, '(')
	buf = append(buf, atom("rsa")...)
	buf = append(buf, '(')
	buf = append(buf, atom("shadowed")...)
	buf = append(buf, atom("t9-vX")...)
	buf = append(buf, atomBytes([]byte("opaque"))...)
	buf = append(buf, ')', ')', ')')

	_, err := GetShadowInfo(buf)
	if !errors.Is(err, ErrUnsupportedProtocol) {
		t.Fatalf("GetShadowInfo(unknown protocol) = %v, want ErrUnsupportedProtocol", err)
	}
}
