package guest

// EncodeULEB128 encodes an unsigned value in LEB128 format.
func EncodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}

// EncodeSLEB128 encodes a signed value in LEB128 format.
func EncodeSLEB128(v int32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			result = append(result, b)
			break
		}
		result = append(result, b|0x80)
	}
	return result
}

func Call(fn uint32) []byte {
	return append([]byte{0x10}, EncodeULEB128(fn)...)
}

func LocalGet(i uint32) []byte {
	return append([]byte{0x20}, EncodeULEB128(i)...)
}

func LocalSet(i uint32) []byte {
	return append([]byte{0x21}, EncodeULEB128(i)...)
}

func LocalTee(i uint32) []byte {
	return append([]byte{0x22}, EncodeULEB128(i)...)
}

func I32Const(v int32) []byte {
	return append([]byte{0x41}, EncodeSLEB128(v)...)
}

func Drop() []byte {
	return []byte{0x1a}
}

// Loop opens a loop block with an empty block type. Close it with End.
func Loop() []byte {
	return []byte{0x03, 0x40}
}

// Br branches to the enclosing block at depth; for a loop that restarts it.
func Br(depth uint32) []byte {
	return append([]byte{0x0c}, EncodeULEB128(depth)...)
}

func End() []byte {
	return []byte{0x0b}
}
