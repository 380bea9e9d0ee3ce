// Package kdf derives a fixed-length symmetric key from a passphrase using
// the OpenPGP string-to-key (S2K) transforms: simple, salted, and iterated
// salted hashing (RFC 4880 section 3.7.1). Only the iterated-salted
// transform (mode 3) is used by the protect encoder; modes 0 and 1 are kept
// reachable for callers that need to derive keys from older protected-key
// variants.
package kdf

import (
	"crypto/sha1"
	"errors"
	"hash"

	"golang.org/x/crypto/openpgp/s2k"
)

// Mode selects which S2K variant to run.
type Mode int

const (
	// ModeSimple hashes only the passphrase.
	ModeSimple Mode = 0
	// ModeSalted hashes salt||passphrase once per output block.
	ModeSalted Mode = 1
	// ModeIterated repeats salt||passphrase until the decoded iteration
	// count is exhausted. This is the mode used by Protect/Unprotect.
	ModeIterated Mode = 3
)

// SaltLen is the required salt length for ModeSalted and ModeIterated.
const SaltLen = 8

// ErrUnsupportedMode is returned for any Mode other than 0, 1, or 3.
var ErrUnsupportedMode = errors.New("kdf: unsupported s2k mode")

// ErrMissingSalt is returned when a mode that requires a salt receives a
// salt of the wrong length.
var ErrMissingSalt = errors.New("kdf: salt required and must be 8 bytes")

// ErrInvalidParams is returned for a zero output key length.
var ErrInvalidParams = errors.New("kdf: zero hash or key length")

// decodeCount expands the single-byte count octet into the iteration count
// used by mode 3, per RFC 4880 section 3.7.1.3: count = (16 + (c&15)) <<
// ((c>>4) + 6). s2k.Iterated takes this decoded value directly; the octet
// encoding is not exported by the s2k package, so it is reproduced here.
func decodeCount(c byte) int {
	return (16 + int(c&15)) << (uint(c>>4) + 6)
}

// DeriveKey writes len(out) bytes of derived key material into out, given a
// UTF-8 passphrase, an 8-byte salt (required for ModeSalted and
// ModeIterated), and a count octet (used only by ModeIterated). The
// iteration count for mode 3 is clamped up to len(salt)+len(passphrase) when
// the decoded value would be smaller, matching s2k.Iterated's own clamp.
func DeriveKey(out []byte, passphrase []byte, mode Mode, salt []byte, countOctet byte) error {
	if len(out) == 0 {
		return ErrInvalidParams
	}
	newHash := func() hash.Hash { return sha1.New() }

	switch mode {
	case ModeSimple:
		s2k.Simple(out, newHash(), passphrase)
		return nil
	case ModeSalted:
		if len(salt) != SaltLen {
			return ErrMissingSalt
		}
		s2k.Salted(out, newHash(), passphrase, salt)
		return nil
	case ModeIterated:
		if len(salt) != SaltLen {
			return ErrMissingSalt
		}
		count := decodeCount(countOctet)
		s2k.Iterated(out, newHash(), passphrase, salt, count)
		return nil
	default:
		return ErrUnsupportedMode
	}
}
