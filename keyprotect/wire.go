package keyprotect

import "strconv"

// modeString is the literal protection-mode identifier this decoder
// implements; spec.md's "fixed constants" MODESTR.
const modeString = "openpgp-s2k3-sha1-aes-cbc"

// shadowProtocolToken is the literal protocol identifier Shadow embeds.
const shadowProtocolToken = "t1-v1"

const (
	aesBlockSize  = 16
	aesKeyLen     = 16 // AES-128
	ivLen         = aesBlockSize
	kdfCountOctet = 96
)

// atom returns the canonical length-prefixed encoding of s, e.g.
// atom("rsa") == "3:rsa". Lengths are computed from len(s) rather than
// hand-counted literals, the way the original's printf-style backpatching
// is replaced here by plain appends (spec.md §9).
func atom(s string) string {
	return strconv.Itoa(len(s)) + ":" + s
}

// atomBytes is atom for a raw byte payload.
func atomBytes(b []byte) []byte {
	out := make([]byte, 0, len(b)+12)
	out = append(out, strconv.Itoa(len(b))...)
	out = append(out, ':')
	out = append(out, b...)
	return out
}
