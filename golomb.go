package jpegls

// maxKValue bounds the linear search for a Golomb parameter; exceeding it
// is a corrupt-stream condition (spec §4.2).
const maxKValue = 16

// mapErrorValue implements ISO/IEC 14495-1 A.5.2 Code Segment A.11: map a
// signed prediction error to the unsigned alphabet used by Golomb coding.
// Grounded on original_source/src/jpegls_algorithm.h (map_error_value).
func mapErrorValue(errorValue int32) int32 {
	return (errorValue >> 30) ^ (2 * errorValue)
}

// unmapErrorValue is the inverse of mapErrorValue.
func unmapErrorValue(mappedError int32) int32 {
	sign := int32(uint32(mappedError) << 31)
	sign >>= 31
	return sign ^ (mappedError >> 1)
}

// applySign returns (sign ^ i) - sign, i.e. i negated when sign == -1 and
// unchanged when sign == 0.
func applySign(i, sign int32) int32 {
	return (sign ^ i) - sign
}

// signOf returns -1 or 1, never 0 (ISO/IEC 14495-1's two-valued sign used
// for gradient-triplet negation).
func signOf(n int32) int32 {
	return (n >> 31) | 1
}

// golombLUTEntry is a precomputed (value, bit length) pair for a Golomb(k)
// code that fits within the first 8 bits of the input. A zero length
// means "no full code in 8 bits; fall back to the slow decoder".
type golombLUTEntry struct {
	value  int32
	length int8
}

// buildGolombLUT precomputes, for the given Golomb parameter k, the decode
// result for every possible leading byte. Grounded on spec §4.2 "Golomb
// lookup table"; shape adapted from the teacher's Huffman LUT construction
// in writer.go (a table indexed by peeked input bits).
func buildGolombLUT(k int32) [256]golombLUTEntry {
	var lut [256]golombLUTEntry
	for b := 0; b < 256; b++ {
		byteVal := uint32(b)
		// Decode a unary prefix (count of leading 0 bits) out of the byte,
		// as if it were followed by an infinite tail of zero bits, then
		// the k low bits immediately after the terminating 1 — mirrors
		// appendBits(1, highBits+1)'s wire format in scan_encoder.go.
		var zeros int
		for zeros = 0; zeros < 8 && byteVal&(0x80>>uint(zeros)) == 0; zeros++ {
		}
		if zeros >= 8 {
			continue // unary prefix doesn't terminate within the byte
		}
		totalBits := zeros + 1 + int(k)
		if totalBits > 8 {
			continue // terminating bit present but k low bits don't fit
		}
		var low uint32
		if k > 0 {
			shift := 8 - totalBits
			mask := uint32(1)<<uint(k) - 1
			low = (byteVal >> uint(shift)) & mask
		}
		mapped := int32(zeros)<<uint(k) | int32(low)
		lut[b] = golombLUTEntry{value: mapped, length: int8(totalBits)}
	}
	return lut
}

// golombLUTs holds one precomputed table per Golomb parameter k in
// [0, maxKValue).
type golombLUTs struct {
	tables [maxKValue][256]golombLUTEntry
}

func newGolombLUTs() *golombLUTs {
	g := &golombLUTs{}
	for k := int32(0); k < maxKValue; k++ {
		g.tables[k] = buildGolombLUT(k)
	}
	return g
}

// quantizeGradient maps a gradient difference into {-4..4} using the
// threshold ladder of spec §4.2. Grounded on
// original_source/src/jpegls_algorithm.h (quantize_gradient_org).
func quantizeGradient(di, t1, t2, t3, near int32) int32 {
	switch {
	case di <= -t3:
		return -4
	case di <= -t2:
		return -3
	case di <= -t1:
		return -2
	case di < -near:
		return -1
	case di <= near:
		return 0
	case di < t1:
		return 1
	case di < t2:
		return 2
	case di < t3:
		return 3
	default:
		return 4
	}
}

// quantizationLUT precomputes quantizeGradient over the full range of
// gradients a scan can produce, indexed with an offset so negative
// gradients map to valid slice indices.
type quantizationLUT struct {
	table  []int8
	offset int32
}

func newQuantizationLUT(rang, t1, t2, t3, near int32) *quantizationLUT {
	size := 2 * rang
	offset := rang
	table := make([]int8, size)
	for i := int32(0); i < size; i++ {
		di := i - offset
		table[i] = int8(quantizeGradient(di, t1, t2, t3, near))
	}
	return &quantizationLUT{table: table, offset: offset}
}

func (q *quantizationLUT) quantize(di int32) int32 {
	idx := di + q.offset
	if idx < 0 {
		idx = 0
	} else if int(idx) >= len(q.table) {
		idx = int32(len(q.table) - 1)
	}
	return int32(q.table[idx])
}
