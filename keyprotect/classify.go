package keyprotect

import "github.com/kryptco/krprotect/sexp"

// Kind of key buffer reported by Classify.
type BufferKind int

const (
	Unknown BufferKind = iota
	Plain
	Protected
	Shadowed
)

func (k BufferKind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Protected:
		return "protected"
	case Shadowed:
		return "shadowed"
	default:
		return "unknown"
	}
}

// Classify inspects buf's top atom and reports which of
// {Unknown, Plain, Protected, Shadowed} it represents. It never allocates
// and has no observable side effects; repeated calls on the same input
// always agree.
func Classify(buf []byte) BufferKind {
	c := sexp.NewCursor(buf)
	if err := c.Open(); err != nil {
		return Unknown
	}
	for _, candidate := range []struct {
		token string
		kind  BufferKind
	}{
		{"private-key", Plain},
		{"protected-private-key", Protected},
		{"shadowed-private-key", Shadowed},
	} {
		ok, err := c.ExpectAtom(candidate.token)
		if err != nil {
			return Unknown
		}
		if ok {
			return candidate.kind
		}
	}
	return Unknown
}
