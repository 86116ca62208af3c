package http2

// Bit manipulation on 32-bit wire words. Used for the reserved bit of
// stream identifiers, the exclusive bit of priority dependencies and
// window overflow detection.

func TestBit(v uint32, i uint) bool {
	return v&(1<<i) != 0
}

func SetBit(v uint32, i uint) uint32 {
	return v | 1<<i
}

func ClearBit(v uint32, i uint) uint32 {
	return v &^ (1 << i)
}
