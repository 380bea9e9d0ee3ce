// Package sexp implements a cursor-based reader for the canonical form of
// length-prefixed nested lists used to serialize key material: an atom is a
// non-empty decimal length, a colon, and that many binary-clean payload
// bytes; a list is "(", zero or more values, ")". There is no whitespace.
//
// Cursor never allocates and never copies; every returned atom is a
// sub-slice of the buffer it was built from. Canonical input must be
// reparsed on every call that needs it — nothing here trusts caller-supplied
// lengths beyond what a cursor itself reads off the wire.
package sexp

import "errors"

// ErrInvalidSexp is returned for any structural violation of the canonical
// form: a malformed atom length, a missing colon, an atom or list that runs
// past the end of the buffer, or mismatched parentheses.
var ErrInvalidSexp = errors.New("sexp: invalid canonical s-expression")

// Cursor reads canonical values from a borrowed byte slice.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current byte offset into the underlying buffer.
func (c *Cursor) Pos() int { return c.pos }

// SetPos repositions the cursor. Callers use this to record and later
// revisit offsets (e.g. the start of a protected region) without re-parsing
// from the beginning.
func (c *Cursor) SetPos(p int) { c.pos = p }

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Bytes returns the underlying buffer (not a copy).
func (c *Cursor) Bytes() []byte { return c.buf }

// Remaining returns the unread tail of the buffer.
func (c *Cursor) Remaining() []byte { return c.buf[c.pos:] }

// AtEnd reports whether the cursor has consumed the entire buffer.
func (c *Cursor) AtEnd() bool { return c.pos >= len(c.buf) }

// Peek returns the byte at the cursor without advancing, and false if the
// cursor is at or past the end of the buffer.
func (c *Cursor) Peek() (byte, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.pos], true
}

// ReadLength consumes a decimal atom-length prefix and the following colon,
// leaving the cursor positioned at the first payload byte. It fails with
// ErrInvalidSexp on an empty length, a missing colon, or a zero length.
func (c *Cursor) ReadLength() (int, error) {
	start := c.pos
	i := start
	for i < len(c.buf) && c.buf[i] >= '0' && c.buf[i] <= '9' {
		i++
	}
	if i == start {
		return 0, ErrInvalidSexp
	}
	if i >= len(c.buf) || c.buf[i] != ':' {
		return 0, ErrInvalidSexp
	}
	n := 0
	for _, d := range c.buf[start:i] {
		n = n*10 + int(d-'0')
	}
	if n <= 0 {
		return 0, ErrInvalidSexp
	}
	c.pos = i + 1
	return n, nil
}

// ReadAtom reads a length-prefixed atom and returns its payload as a
// sub-slice of the underlying buffer, advancing the cursor past it.
func (c *Cursor) ReadAtom() ([]byte, error) {
	n, err := c.ReadLength()
	if err != nil {
		return nil, err
	}
	if c.pos+n > len(c.buf) {
		return nil, ErrInvalidSexp
	}
	atom := c.buf[c.pos : c.pos+n]
	c.pos += n
	return atom, nil
}

// Open consumes a literal "(" and returns ErrInvalidSexp if the cursor isn't
// positioned at one.
func (c *Cursor) Open() error {
	if c.pos >= len(c.buf) || c.buf[c.pos] != '(' {
		return ErrInvalidSexp
	}
	c.pos++
	return nil
}

// Close consumes a literal ")" and returns ErrInvalidSexp if the cursor
// isn't positioned at one.
func (c *Cursor) Close() error {
	if c.pos >= len(c.buf) || c.buf[c.pos] != ')' {
		return ErrInvalidSexp
	}
	c.pos++
	return nil
}

// MatchToken compares length against len(token) and, on equality, the next
// length bytes against token. On a full match it advances the cursor past
// the literal and returns true; otherwise it leaves the cursor untouched
// (still positioned at the start of the atom payload) and returns false.
func (c *Cursor) MatchToken(length int, token string) (bool, error) {
	if length != len(token) {
		return false, nil
	}
	if c.pos+length > len(c.buf) {
		return false, ErrInvalidSexp
	}
	if string(c.buf[c.pos:c.pos+length]) != token {
		return false, nil
	}
	c.pos += length
	return true, nil
}

// ExpectAtom reads an atom's length-and-colon header and checks it against
// token in one step, combining ReadLength and MatchToken the way every
// higher-level caller in this repository actually wants to use them.
func (c *Cursor) ExpectAtom(token string) (bool, error) {
	save := c.pos
	n, err := c.ReadLength()
	if err != nil {
		return false, err
	}
	ok, err := c.MatchToken(n, token)
	if err != nil {
		return false, err
	}
	if !ok {
		c.pos = save
		return false, nil
	}
	return true, nil
}

// Skip advances the cursor past tokens until the nesting depth, starting at
// depth, returns to zero. An open paren increments depth, a close
// decrements it, and an atom is skipped by reading its length and jumping
// over its payload. It returns the final depth (0 on success) and
// ErrInvalidSexp on a malformed atom or a buffer that ends mid-value.
func (c *Cursor) Skip(depth int) (int, error) {
	for depth > 0 {
		b, ok := c.Peek()
		if !ok {
			return depth, ErrInvalidSexp
		}
		switch b {
		case '(':
			c.pos++
			depth++
		case ')':
			c.pos++
			depth--
		default:
			if _, err := c.ReadAtom(); err != nil {
				return depth, err
			}
		}
	}
	return depth, nil
}

// SkipValue skips exactly one complete value (an atom, or a balanced list)
// starting at the cursor's current position.
func (c *Cursor) SkipValue() error {
	b, ok := c.Peek()
	if !ok {
		return ErrInvalidSexp
	}
	if b != '(' {
		_, err := c.ReadAtom()
		return err
	}
	if err := c.Open(); err != nil {
		return err
	}
	_, err := c.Skip(1)
	return err
}

// CanonLength computes the total byte length of the complete well-formed
// value starting at position 0 of buf (an open paren followed by a
// balanced list). It returns 0 if buf does not hold exactly one
// well-formed list value starting at its first byte, without regard to
// trailing garbage beyond the matching close paren — callers that need
// "canon-length(buf) == len(buf)" compare the return value themselves.
func CanonLength(buf []byte) int {
	c := NewCursor(buf)
	if err := c.Open(); err != nil {
		return 0
	}
	if _, err := c.Skip(1); err != nil {
		return 0
	}
	return c.pos
}
