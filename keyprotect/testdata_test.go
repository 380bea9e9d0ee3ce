package keyprotect

// buildRSAPrivateKey assembles a canonical "(private-key (rsa (n V)(e V)(d
// V)(p V)(q V)(u V)))" buffer from raw parameter values, mirroring the shape
// algoTable's rsa entry describes.
func buildRSAPrivateKey(n, e, d, p, q, u []byte) []byte {
	var buf []byte
	buf = append(buf, '(')
	buf = append(buf, atom("private-key")...)
	buf = append(buf, '(')
	buf = append(buf, atom("rsa")...)
	for _, pair := range []struct {
		name string
		val  []byte
	}{
		{"n", n}, {"e", e}, {"d", d}, {"p", p}, {"q", q}, {"u", u},
	} {
		buf = append(buf, '(')
		buf = append(buf, atom(pair.name)...)
		buf = append(buf, atomBytes(pair.val)...)
		buf = append(buf, ')')
	}
	buf = append(buf, ')', ')')
	return buf
}

func buildRSAPublicKey(n, e []byte) []byte {
	var buf []byte
	buf = append(buf, '(')
	buf = append(buf, atom("public-key")...)
	buf = append(buf, '(')
	buf = append(buf, atom("rsa")...)
	for _, pair := range []struct {
		name string
		val  []byte
	}{
		{"n", n}, {"e", e},
	} {
		buf = append(buf, '(')
		buf = append(buf, atom(pair.name)...)
		buf = append(buf, atomBytes(pair.val)...)
		buf = append(buf, ')')
	}
	buf = append(buf, ')', ')')
	return buf
}

func sampleKeyBuf() []byte {
	return buildRSAPrivateKey(
		[]byte("modulus-bytes-000"),
		[]byte("\x01\x00\x01"),
		[]byte("private-exponent-d"),
		[]byte("prime-p"),
		[]byte("prime-q"),
		[]byte("crt-coefficient-u"),
	)
}
