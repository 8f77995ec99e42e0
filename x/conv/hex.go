package conv

const hexd = "0123456789ABCDEF"

// U32Hex writes 8-digit uppercase hex without 0x, zero-padded.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	i := len(buf)
	for j := 0; j < 8; j++ {
		i--
		buf[i] = hexd[n&0xF]
		n >>= 4
	}
	return buf[i:]
}

// AppendU32Hex appends n as 8 uppercase hex digits.
func AppendU32Hex(dst []byte, n uint32) []byte {
	var tmp [8]byte
	return append(dst, U32Hex(tmp[:], n)...)
}

// AppendU8Hex appends b as 2 uppercase hex digits.
func AppendU8Hex(dst []byte, b byte) []byte {
	return append(dst, hexd[b>>4], hexd[b&0xF])
}

// AppendHexBytes appends p as space-separated 2-digit uppercase hex pairs.
// No leading or trailing separator is written.
func AppendHexBytes(dst, p []byte) []byte {
	for i, b := range p {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = AppendU8Hex(dst, b)
	}
	return dst
}
