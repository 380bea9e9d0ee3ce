package keyprotect

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"strconv"

	"github.com/kryptco/krprotect/kdf"
	"github.com/kryptco/krprotect/securemem"
	"github.com/kryptco/krprotect/sexp"
)

// parsedPrivateKey is what Protect needs from walking a plaintext
// "(private-key (ALGO (p1 V1) ... (pN VN)))" buffer: the algorithm, and the
// byte offsets of the protected parameter span within it.
type parsedPrivateKey struct {
	algo         algoDescriptor
	bodyStart    int // offset just past "(11:private-key"
	protBegin    int // offset of the opening paren of parameter prot_from
	protEnd      int // offset just past the closing paren of parameter prot_to
	innerListEnd int // offset just past the closing paren of (ALGO ...)
}

func parsePrivateKeyForProtect(buf []byte) (parsedPrivateKey, error) {
	c := sexp.NewCursor(buf)
	if err := c.Open(); err != nil {
		return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
	}
	ok, err := c.ExpectAtom("private-key")
	if err != nil {
		return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
	}
	if !ok {
		return parsedPrivateKey{}, newErr(KindUnknownSexp)
	}
	bodyStart := c.Pos()
	if err := c.Open(); err != nil { // open of (ALGO ...)
		return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
	}
	algoName, err := c.ReadAtom()
	if err != nil {
		return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
	}
	algo, ok := lookupAlgo(string(algoName))
	if !ok {
		return parsedPrivateKey{}, newErr(KindUnsupportedAlgorithm)
	}

	var protBegin, protEnd int
	for i, pname := range algo.parmlist {
		subStart := c.Pos()
		if err := c.Open(); err != nil {
			return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
		}
		matched, err := c.ExpectAtom(pname)
		if err != nil {
			return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
		}
		if !matched {
			return parsedPrivateKey{}, newErr(KindUnknownSexp)
		}
		if err := c.SkipValue(); err != nil {
			return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
		}
		if err := c.Close(); err != nil {
			return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
		}
		subEnd := c.Pos()
		if i == algo.protFrom {
			protBegin = subStart
		}
		if i == algo.protTo {
			protEnd = subEnd
		}
	}
	if err := c.Close(); err != nil { // close of (ALGO ...)
		return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
	}
	innerListEnd := c.Pos()
	if err := c.Close(); err != nil { // close of (private-key ...)
		return parsedPrivateKey{}, wrapErr(KindInvalidSexp, err)
	}

	return parsedPrivateKey{
		algo:         algo,
		bodyStart:    bodyStart,
		protBegin:    protBegin,
		protEnd:      protEnd,
		innerListEnd: innerListEnd,
	}, nil
}

// Protect derives a symmetric key from passphrase via the OpenPGP S2K
// mode-3 transform, encrypts the protected parameter range of plaintext
// under AES-128-CBC, and returns a freshly allocated
// "(protected-private-key ...)" canonical buffer. plaintext must be a
// "(private-key (ALGO ...))" canonical buffer for a table-known algorithm.
func Protect(plaintext []byte, passphrase string) ([]byte, error) {
	parsed, err := parsePrivateKeyForProtect(plaintext)
	if err != nil {
		return nil, err
	}

	mic, err := computeMIC(plaintext)
	if err != nil {
		return nil, err
	}

	protectedRegion := plaintext[parsed.protBegin:parsed.protEnd]

	var inner []byte
	inner = append(inner, '(', '(')
	inner = append(inner, protectedRegion...)
	inner = append(inner, ')', '(')
	inner = append(inner, atom("hash")...)
	inner = append(inner, atom("sha1")...)
	inner = append(inner, atomBytes(mic)...)
	inner = append(inner, ')', ')')

	randBuf := make([]byte, 2*aesBlockSize+kdf.SaltLen)
	if _, err := rand.Read(randBuf); err != nil {
		return nil, wrapErr(KindCryptoBackend, err)
	}
	iv := randBuf[:aesBlockSize]
	padPool := randBuf[aesBlockSize : 2*aesBlockSize]
	salt := randBuf[2*aesBlockSize:]

	// Pad inner up to the next full block with random bytes; the decoder
	// recovers the true length by re-parsing and never trusts padding as
	// data. A buffer that already lands on a block boundary gets no pad.
	padLen := (aesBlockSize - len(inner)%aesBlockSize) % aesBlockSize
	encLen := len(inner) + padLen

	workspace, err := securemem.New(encLen)
	if err != nil {
		return nil, wrapErr(KindOutOfCore, err)
	}
	defer workspace.Destroy()
	n := copy(workspace.Bytes(), inner)
	copy(workspace.Bytes()[n:], padPool[:padLen])

	key, err := securemem.New(aesKeyLen)
	if err != nil {
		return nil, wrapErr(KindOutOfCore, err)
	}
	defer key.Destroy()
	if err := kdf.DeriveKey(key.Bytes(), []byte(passphrase), kdf.ModeIterated, salt, kdfCountOctet); err != nil {
		return nil, wrapErr(KindInvalidValue, err)
	}

	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, wrapErr(KindCryptoBackend, err)
	}
	ciphertext := make([]byte, encLen)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, workspace.Bytes())

	var protectedList []byte
	protectedList = append(protectedList, '(')
	protectedList = append(protectedList, atom("protected")...)
	protectedList = append(protectedList, atom(modeString)...)
	protectedList = append(protectedList, '(', '(')
	protectedList = append(protectedList, atom("sha1")...)
	protectedList = append(protectedList, atomBytes(salt)...)
	protectedList = append(protectedList, atom(strconv.Itoa(int(kdfCountOctet)))...)
	protectedList = append(protectedList, ')')
	protectedList = append(protectedList, atomBytes(iv)...)
	protectedList = append(protectedList, ')')
	protectedList = append(protectedList, atomBytes(ciphertext)...)
	protectedList = append(protectedList, ')')

	out := make([]byte, 0, 10+parsed.protBegin+len(protectedList)+(len(plaintext)-parsed.protEnd))
	out = append(out, '(')
	out = append(out, atom("protected-private-key")...)
	out = append(out, plaintext[parsed.bodyStart:parsed.protBegin]...)
	out = append(out, protectedList...)
	out = append(out, plaintext[parsed.protEnd:]...)
	return out, nil
}
