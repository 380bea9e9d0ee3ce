package keyprotect

import "fmt"

// Kind tags why a protect/unprotect/shadow/get-shadow-info call failed. It mirrors
// the HEADER_* iota constants in the teacher's krypto.go: a small closed set
// of sentinel values rather than ad-hoc string comparisons.
type Kind int

const (
	// KindInvalidSexp means the buffer is not well-formed canonical
	// data: a bad atom length, unbalanced parens, or a truncated value.
	KindInvalidSexp Kind = iota
	// KindUnknownSexp means the buffer is well-formed but not shaped the
	// way this operation expects (wrong top atom, missing sub-list).
	KindUnknownSexp
	// KindUnsupportedAlgorithm means ALGO is not in the algorithm table.
	KindUnsupportedAlgorithm
	// KindUnsupportedProtection means the protected list's mode string
	// isn't the one this decoder implements.
	KindUnsupportedProtection
	// KindUnsupportedProtocol means a shadowed key's protocol atom isn't
	// the one get-shadow-info recognizes.
	KindUnsupportedProtocol
	// KindCorruptedProtection means the decrypted value is shaped
	// correctly but its MIC does not match, or its framing fields
	// (hash name, salt/IV/ciphertext lengths, iteration count) are invalid.
	KindCorruptedProtection
	// KindBadPassphrase means decryption produced bytes that are not a
	// well-formed canonical value — the overwhelmingly likely cause is a
	// wrong passphrase, not a corrupted buffer.
	KindBadPassphrase
	// KindInvalidValue means a KDF parameter was invalid (unsupported
	// mode, zero length, missing salt).
	KindInvalidValue
	// KindOutOfCore means a secure memory allocation failed.
	KindOutOfCore
	// KindCryptoBackend wraps an error returned by the cipher/hash
	// implementation itself.
	KindCryptoBackend
	// KindBug means an internal invariant was violated; it should never
	// be observed by a caller.
	KindBug
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSexp:
		return "InvalidSexp"
	case KindUnknownSexp:
		return "UnknownSexp"
	case KindUnsupportedAlgorithm:
		return "UnsupportedAlgorithm"
	case KindUnsupportedProtection:
		return "UnsupportedProtection"
	case KindUnsupportedProtocol:
		return "UnsupportedProtocol"
	case KindCorruptedProtection:
		return "CorruptedProtection"
	case KindBadPassphrase:
		return "BadPassphrase"
	case KindInvalidValue:
		return "InvalidValue"
	case KindOutOfCore:
		return "OutOfCore"
	case KindCryptoBackend:
		return "CryptoBackend"
	case KindBug:
		return "Bug"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by every public operation in this
// package. Kind distinguishes the failure category; Err, when non-nil, is
// the wrapped underlying cause (a crypto-backend error, or the sexp/kdf
// package error that triggered the classification).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keyprotect: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("keyprotect: %s", e.Kind)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, keyprotect.ErrBadPassphrase) works regardless of any
// wrapped cause attached to err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func wrapErr(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newErr(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Sentinel errors for errors.Is comparisons, e.g.
// errors.Is(err, keyprotect.ErrBadPassphrase).
var (
	ErrInvalidSexp           = &Error{Kind: KindInvalidSexp}
	ErrUnknownSexp           = &Error{Kind: KindUnknownSexp}
	ErrUnsupportedAlgorithm  = &Error{Kind: KindUnsupportedAlgorithm}
	ErrUnsupportedProtection = &Error{Kind: KindUnsupportedProtection}
	ErrUnsupportedProtocol   = &Error{Kind: KindUnsupportedProtocol}
	ErrCorruptedProtection   = &Error{Kind: KindCorruptedProtection}
	ErrBadPassphrase         = &Error{Kind: KindBadPassphrase}
	ErrInvalidValue          = &Error{Kind: KindInvalidValue}
	ErrOutOfCore             = &Error{Kind: KindOutOfCore}
)
