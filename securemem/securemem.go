// Package securemem provides the secure-allocation facility spec.md
// requires for the derived symmetric key, the padded encryption workspace,
// and the decrypted private-key buffer: memory that is mlock'd and scrubbed
// on release. It is a thin wrapper over github.com/awnumar/memguard so that
// keyprotect never has to reason about the locked-buffer lifecycle directly.
package securemem

import "github.com/awnumar/memguard"

// Secret is a fixed-size secure buffer. The zero value is not usable; obtain
// one via New or NewFromBytes. Every Secret must have Destroy called on it
// on every return path including errors — it is not
// garbage-collected safely on its own.
type Secret struct {
	buf *memguard.LockedBuffer
}

// New allocates n bytes of locked, zero-initialized secure memory.
func New(n int) (*Secret, error) {
	buf, err := memguard.NewMutable(n)
	if err != nil {
		return nil, err
	}
	return &Secret{buf: buf}, nil
}

// NewFromBytes copies src into newly allocated secure memory and wipes
// nothing in src itself — callers that received src from a non-secure
// source (e.g. ciphertext decrypted into an ordinary slice before this
// facility existed) are responsible for scrubbing it themselves.
func NewFromBytes(src []byte) (*Secret, error) {
	s, err := New(len(src))
	if err != nil {
		return nil, err
	}
	copy(s.Bytes(), src)
	return s, nil
}

// Bytes returns a borrowed view into the locked region. The slice becomes
// invalid the instant Destroy is called.
func (s *Secret) Bytes() []byte {
	if s == nil || s.buf == nil {
		return nil
	}
	return s.buf.Bytes()
}

// Destroy wipes and unlocks the buffer. It is safe to call on a nil Secret
// or to call more than once.
func (s *Secret) Destroy() {
	if s == nil || s.buf == nil {
		return
	}
	s.buf.Destroy()
}
