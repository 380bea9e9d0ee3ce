package keyprotect

import (
	"crypto/sha1"

	"github.com/kryptco/krprotect/sexp"
)

// micSize is the length in bytes of a MIC (SHA-1 digest).
const micSize = sha1.Size

// innerKeyListSpan locates, within a "(private-key (ALGO ...))" canonical
// buffer, the byte span of the inner "(ALGO ...)" list — from its opening
// paren through its matching close paren, inclusive — starting the cursor
// positioned right after the literal "(11:private-key". The MIC covers
// exactly these bytes as emitted, never a re-serialized form.
func innerKeyListSpan(buf []byte) (start, end int, err error) {
	c := sexp.NewCursor(buf)
	if err = c.Open(); err != nil {
		return 0, 0, err
	}
	ok, rerr := c.ExpectAtom("private-key")
	if rerr != nil {
		return 0, 0, rerr
	}
	if !ok {
		return 0, 0, sexp.ErrInvalidSexp
	}
	start = c.Pos()
	if err = c.Open(); err != nil {
		return 0, 0, err
	}
	if _, err = c.Skip(1); err != nil {
		return 0, 0, err
	}
	end = c.Pos()
	return start, end, nil
}

// computeMIC hashes the bytes of the inner "(ALGO (p1 V1) ... (pN VN))"
// list (both outer parens included) with SHA-1.
func computeMIC(buf []byte) ([]byte, error) {
	start, end, err := innerKeyListSpan(buf)
	if err != nil {
		return nil, err
	}
	digest := sha1.Sum(buf[start:end])
	return digest[:], nil
}
