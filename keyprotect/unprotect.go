package keyprotect

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"strconv"

	"github.com/kryptco/krprotect/kdf"
	"github.com/kryptco/krprotect/securemem"
	"github.com/kryptco/krprotect/sexp"
)

// parsedProtectedKey is what Unprotect needs from walking a
// "(protected-private-key (ALGO ... (protected MODE ((hash SALT COUNT) IV) ENC)))"
// buffer: enough to derive the key, decrypt, and splice the recovered
// parameters back into a plain private-key buffer without re-scanning.
type parsedProtectedKey struct {
	algo          algoDescriptor
	bodyStart     int // offset just past "(21:protected-private-key"
	protListStart int // offset of the opening paren of (protected ...)
	protListEnd   int // offset just past the closing paren of (protected ...)
	salt          []byte
	countOctet    byte
	iv            []byte
	ciphertext    []byte
}

func parseProtectedPrivateKey(buf []byte) (parsedProtectedKey, error) {
	c := sexp.NewCursor(buf)
	if err := c.Open(); err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	ok, err := c.ExpectAtom("protected-private-key")
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if !ok {
		return parsedProtectedKey{}, newErr(KindUnknownSexp)
	}
	bodyStart := c.Pos()
	if err := c.Open(); err != nil { // open of (ALGO ...)
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	algoName, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	algo, ok := lookupAlgo(string(algoName))
	if !ok {
		return parsedProtectedKey{}, newErr(KindUnsupportedAlgorithm)
	}

	// Scan the parameter sub-lists for the one whose first atom is
	// literally "protected", skipping past any that don't match rather
	// than assuming it sits at a fixed index (spec.md §4.5 step 2).
	var protListStart int
	for {
		b, ok := c.Peek()
		if !ok {
			return parsedProtectedKey{}, wrapErr(KindInvalidSexp, sexp.ErrInvalidSexp)
		}
		if b == ')' {
			return parsedProtectedKey{}, newErr(KindUnknownSexp)
		}
		subStart := c.Pos()
		if err := c.Open(); err != nil {
			return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
		}
		matched, err := c.ExpectAtom("protected")
		if err != nil {
			return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
		}
		if matched {
			protListStart = subStart
			break
		}
		if _, err := c.Skip(1); err != nil {
			return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
		}
	}
	mode, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if string(mode) != modeString {
		return parsedProtectedKey{}, newErr(KindUnsupportedProtection)
	}
	if err := c.Open(); err != nil { // open of ((hash salt count) iv)
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if err := c.Open(); err != nil { // open of (hash salt count)
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	hashName, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if string(hashName) != "sha1" {
		return parsedProtectedKey{}, newErr(KindCorruptedProtection)
	}
	salt, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if len(salt) != kdf.SaltLen {
		return parsedProtectedKey{}, newErr(KindCorruptedProtection)
	}
	countAtom, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	countVal, err := strconv.Atoi(string(countAtom))
	if err != nil || countVal <= 0 || countVal > 255 {
		return parsedProtectedKey{}, newErr(KindCorruptedProtection)
	}
	if err := c.Close(); err != nil { // close of (hash salt count)
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	iv, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if len(iv) != ivLen {
		return parsedProtectedKey{}, newErr(KindCorruptedProtection)
	}
	if err := c.Close(); err != nil { // close of ((hash...) iv)
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	ciphertext, err := c.ReadAtom()
	if err != nil {
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aesBlockSize != 0 {
		return parsedProtectedKey{}, newErr(KindCorruptedProtection)
	}
	if err := c.Close(); err != nil { // close of (protected ...)
		return parsedProtectedKey{}, wrapErr(KindInvalidSexp, err)
	}
	protListEnd := c.Pos()

	return parsedProtectedKey{
		algo:          algo,
		bodyStart:     bodyStart,
		protListStart: protListStart,
		protListEnd:   protListEnd,
		salt:          salt,
		countOctet:    byte(countVal),
		iv:            iv,
		ciphertext:    ciphertext,
	}, nil
}

// decryptedSpan locates, within a decrypted inner buffer shaped
// "((p1V ... pkV)(hash sha1 MIC))", the span of the parameter values and the
// claimed MIC. It is deliberately strict: any structural surprise here is
// reported as a bad passphrase, since a correctly-keyed decryption always
// produces exactly this shape and a wrong key essentially never does.
func decryptedSpan(plain []byte, valueCount int) (valStart, valEnd int, mic []byte, canonLen int, err error) {
	c := sexp.NewCursor(plain)
	if err = c.Open(); err != nil { // outer 2-element list
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
	}
	if err = c.Open(); err != nil { // list wrapping the protected values
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
	}
	valStart = c.Pos()
	for i := 0; i < valueCount; i++ {
		if err = c.SkipValue(); err != nil {
			return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
		}
	}
	valEnd = c.Pos()
	if err = c.Close(); err != nil { // close of the values list
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
	}
	if err = c.Open(); err != nil { // open of (hash sha1 MIC)
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
	}
	matched, merr := c.ExpectAtom("hash")
	if merr != nil {
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, merr)
	}
	if !matched {
		return 0, 0, nil, 0, newErr(KindBadPassphrase)
	}
	hashName, herr := c.ReadAtom()
	if herr != nil {
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, herr)
	}
	if string(hashName) != "sha1" {
		return 0, 0, nil, 0, newErr(KindBadPassphrase)
	}
	mic, merr = c.ReadAtom()
	if merr != nil {
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, merr)
	}
	if len(mic) != micSize {
		return 0, 0, nil, 0, newErr(KindBadPassphrase)
	}
	if err = c.Close(); err != nil { // close of (hash ...)
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
	}
	if err = c.Close(); err != nil { // close of the outer 2-element list
		return 0, 0, nil, 0, wrapErr(KindBadPassphrase, err)
	}
	return valStart, valEnd, mic, c.Pos(), nil
}

// Unprotect reverses Protect: it derives the same symmetric key from
// passphrase, decrypts the protected parameter range, verifies the MIC, and
// returns a freshly allocated "(private-key ...)" canonical buffer.
func Unprotect(protected []byte, passphrase string) ([]byte, error) {
	parsed, err := parseProtectedPrivateKey(protected)
	if err != nil {
		return nil, err
	}

	key, err := securemem.New(aesKeyLen)
	if err != nil {
		return nil, wrapErr(KindOutOfCore, err)
	}
	defer key.Destroy()
	if err := kdf.DeriveKey(key.Bytes(), []byte(passphrase), kdf.ModeIterated, parsed.salt, parsed.countOctet); err != nil {
		return nil, wrapErr(KindInvalidValue, err)
	}

	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, wrapErr(KindCryptoBackend, err)
	}

	plain, err := securemem.New(len(parsed.ciphertext))
	if err != nil {
		return nil, wrapErr(KindOutOfCore, err)
	}
	defer plain.Destroy()
	cipher.NewCBCDecrypter(block, parsed.iv).CryptBlocks(plain.Bytes(), parsed.ciphertext)

	// A correctly decrypted buffer always starts with two list opens; a
	// garbage decryption from the wrong passphrase almost never does.
	pb := plain.Bytes()
	if len(pb) < 2 || pb[0] != '(' || pb[1] != '(' {
		return nil, newErr(KindBadPassphrase)
	}

	valueCount := parsed.algo.protTo - parsed.algo.protFrom + 1
	valStart, valEnd, mic, canonLen, err := decryptedSpan(pb, valueCount)
	if err != nil {
		return nil, err
	}
	// canon-length must land within one block of the ciphertext length —
	// anything further off means the padding (or the decryption itself) is
	// not what Protect would have produced.
	if len(pb)-canonLen >= aesBlockSize {
		return nil, newErr(KindBadPassphrase)
	}

	out := make([]byte, 0, 11+parsed.protListStart-parsed.bodyStart+(valEnd-valStart)+(len(protected)-parsed.protListEnd))
	out = append(out, '(')
	out = append(out, atom("private-key")...)
	out = append(out, protected[parsed.bodyStart:parsed.protListStart]...)
	out = append(out, pb[valStart:valEnd]...)
	out = append(out, protected[parsed.protListEnd:]...)

	gotMIC, err := computeMIC(out)
	if err != nil {
		return nil, wrapErr(KindBug, err)
	}
	if subtle.ConstantTimeCompare(gotMIC, mic) != 1 {
		return nil, newErr(KindCorruptedProtection)
	}

	return out, nil
}
