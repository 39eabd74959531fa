package batch

// Validity bitmaps mark which rows of a column hold a present value:
// bit i set means row i is non-null. Bits are packed LSB-first into bytes,
// the same layout used for Boolean value buffers on the wire.

// BitmapLen returns the number of bytes needed to hold n bits.
func BitmapLen(n int) int {
	return (n + 7) / 8
}

// Bit reports whether bit i of the bitmap is set.
func Bit(bm []byte, i int) bool {
	return bm[i/8]&(1<<(uint(i)%8)) != 0
}

// SetBit sets bit i of the bitmap.
func SetBit(bm []byte, i int) {
	bm[i/8] |= 1 << (uint(i) % 8)
}
