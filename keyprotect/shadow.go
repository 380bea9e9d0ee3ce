package keyprotect

import "github.com/kryptco/krprotect/sexp"

// shadowProtocol is the table-driven analog of algoDescriptor for shadow
// locator protocols: a protocol name and nothing else today, but kept as a
// table (rather than a single hard-coded string comparison) so a second
// protocol version can be added without touching Shadow or GetShadowInfo.
type shadowProtocol struct {
	token string
}

var shadowProtocolTable = []shadowProtocol{
	{token: "t1-v1"},
}

func shadowProtocolSupported(token string) bool {
	for _, p := range shadowProtocolTable {
		if p.token == token {
			return true
		}
	}
	return false
}

// Shadow rewrites a canonical public-key buffer into a shadowed-private-key
// buffer embedding shadowInfo (itself a canonical value) as an opaque
// locator under the "t1-v1" protocol. It does not reparse shadowInfo — it
// is copied verbatim into the output.
func Shadow(publicKey, shadowInfo []byte) ([]byte, error) {
	c := sexp.NewCursor(publicKey)

	if err := c.Open(); err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}
	ok, err := c.ExpectAtom("public-key")
	if err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}
	if !ok {
		return nil, newErr(KindUnknownSexp)
	}
	bodyStart := c.Pos()
	if err := c.Open(); err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}
	// ALGO atom: its identity doesn't matter to shadow, only that it
	// parses as one atom.
	if _, err := c.ReadAtom(); err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}

	// point = position immediately before the algorithm list's closing
	// paren, i.e. after the last parameter sub-list and before ")".
	for {
		b, ok := c.Peek()
		if !ok {
			return nil, wrapErr(KindInvalidSexp, sexp.ErrInvalidSexp)
		}
		if b == ')' {
			break
		}
		if err := c.SkipValue(); err != nil {
			return nil, wrapErr(KindInvalidSexp, err)
		}
	}
	point := c.Pos()
	if err := c.Close(); err != nil { // close of the ALGO list
		return nil, wrapErr(KindInvalidSexp, err)
	}
	if err := c.Close(); err != nil { // close of public-key
		return nil, wrapErr(KindInvalidSexp, err)
	}
	end := c.Pos()

	var out []byte
	out = append(out, '(')
	out = append(out, atom("shadowed-private-key")...)
	out = append(out, publicKey[bodyStart:point]...)
	out = append(out, '(')
	out = append(out, atom("shadowed")...)
	out = append(out, atom(shadowProtocolToken)...)
	out = append(out, shadowInfo...)
	out = append(out, ')')
	out = append(out, publicKey[point:end]...)
	return out, nil
}

// GetShadowInfo walks a shadowed-private-key buffer and returns the locator
// bytes embedded under the "t1-v1" protocol — a borrowed sub-slice of
// shadowed, spanning exactly the locator value that Shadow embedded.
func GetShadowInfo(shadowed []byte) ([]byte, error) {
	c := sexp.NewCursor(shadowed)
	if err := c.Open(); err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}
	ok, err := c.ExpectAtom("shadowed-private-key")
	if err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}
	if !ok {
		return nil, newErr(KindUnknownSexp)
	}
	if err := c.Open(); err != nil {
		return nil, wrapErr(KindInvalidSexp, err)
	}
	if _, err := c.ReadAtom(); err != nil { // ALGO
		return nil, wrapErr(KindInvalidSexp, err)
	}

	for {
		b, ok := c.Peek()
		if !ok {
			return nil, wrapErr(KindInvalidSexp, sexp.ErrInvalidSexp)
		}
		if b == ')' {
			return nil, newErr(KindUnknownSexp)
		}
		if err := c.Open(); err != nil {
			return nil, wrapErr(KindInvalidSexp, err)
		}
		matched, err := c.ExpectAtom("shadowed")
		if err != nil {
			return nil, wrapErr(KindInvalidSexp, err)
		}
		if !matched {
			if _, err := c.Skip(1); err != nil {
				return nil, wrapErr(KindInvalidSexp, err)
			}
			continue
		}
		protocol, err := c.ReadAtom()
		if err != nil {
			return nil, wrapErr(KindInvalidSexp, err)
		}
		if !shadowProtocolSupported(string(protocol)) {
			return nil, newErr(KindUnsupportedProtocol)
		}
		start := c.Pos()
		if err := c.SkipValue(); err != nil {
			return nil, wrapErr(KindInvalidSexp, err)
		}
		locator := shadowed[start:c.Pos()]
		if err := c.Close(); err != nil { // close of (shadowed ...)
			return nil, wrapErr(KindInvalidSexp, err)
		}
		return locator, nil
	}
}
