package jpegls

// regularContext is one of the 365 per-scan statistical bins selected by
// quantized gradient triplet. Grounded on original_source/src/context.h.
type regularContext struct {
	a int32 // accumulator of absolute errors
	b int32 // bias accumulator
	c int32 // bias correction, clamped to [-128,127]
	n int32 // occurrence count, always >= 1
}

func newRegularContext(initialA int32) regularContext {
	return regularContext{a: initialA, b: 0, c: 0, n: 1}
}

// contextInitialA implements CharLS's max(2, (RANGE+32)/64) initial A
// value shared by all regular and run-mode contexts at scan start.
func contextInitialA(rang int32) int32 {
	return maxInt32(2, (rang+32)/64)
}

// contextOverflowLimit bounds |A| and |B|; exceeding it marks the stream
// invalid (spec §3 RegularContext invariant).
const contextOverflowLimit = 65536 * 256

// golombK returns the Golomb coding parameter for this context: the
// smallest non-negative k such that N*2^k >= A, capped at kMax.
func (ctx *regularContext) golombK(kMax int32) (int32, error) {
	var k int32
	for k = 0; k < kMax; k++ {
		if ctx.n<<uint(k) >= ctx.a {
			return k, nil
		}
	}
	return 0, ErrInvalidEncodedData
}

// getErrorCorrection returns the bit-wise-sign of (2B+N-1): 0 or -1. It is
// XORed into the error value (before mapping) only when k==0 (callers pass k|NEAR so
// a nonzero NEAR also disables the correction, per CharLS). Being 0 or -1,
// XOR with -1 is a bitwise NOT — the compact bias-correction trick of
// ISO/IEC 14495-1 A.6, not an additive +1/-1 offset.
func (ctx *regularContext) getErrorCorrection(k int32) int32 {
	if k != 0 {
		return 0
	}
	return bitWiseSign(2*ctx.b + ctx.n - 1)
}

func bitWiseSign(i int32) int32 {
	return i >> 31
}

// update applies the post-coding variable update of spec §4.2.
func (ctx *regularContext) update(errorValue, nearLossless int32, resetThreshold int32) error {
	ctx.a += absInt32(errorValue)
	ctx.b += errorValue * (2*nearLossless + 1)

	if ctx.a >= contextOverflowLimit || ctx.b >= contextOverflowLimit || ctx.b <= -contextOverflowLimit {
		return ErrInvalidEncodedData
	}

	if ctx.n == resetThreshold {
		ctx.a >>= 1
		ctx.b >>= 1
		ctx.n >>= 1
	}
	ctx.n++

	if ctx.b+ctx.n <= 0 {
		ctx.b += ctx.n
		if ctx.b <= -ctx.n {
			ctx.b = -ctx.n + 1
		}
		if ctx.c > -128 {
			ctx.c--
		}
	} else if ctx.b > 0 {
		ctx.b -= ctx.n
		if ctx.b < 0 {
			ctx.b = 0
		}
		if ctx.c < 127 {
			ctx.c++
		}
	}
	return nil
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// runContext is one of the two dedicated run-interruption contexts.
// Grounded on original_source/src/context_run_mode.h.
type runContext struct {
	a                   int32
	n                   int32
	nn                  int32 // negative-error occurrence count
	runInterruptionType int32 // 0 or 1, identifies which of the two contexts this is
}

func newRunContext(runInterruptionType int32) runContext {
	return runContext{a: 0, n: 1, nn: 0, runInterruptionType: runInterruptionType}
}

// golombK returns the run-interruption Golomb parameter: smallest k with
// N*2^k >= A + (N>>1)*runInterruptionType.
func (rc *runContext) golombK(kMax int32) (int32, error) {
	var k int32
	for k = 0; k < kMax; k++ {
		if rc.n<<uint(k) >= rc.a+(rc.n>>1)*rc.runInterruptionType {
			return k, nil
		}
	}
	return 0, ErrInvalidEncodedData
}

// update applies the run-interruption context update of spec §4.3.
func (rc *runContext) update(errorValue, mappedError int32, resetThreshold int32) {
	if errorValue < 0 {
		rc.nn++
	}
	rc.a += (mappedError + 1 - rc.runInterruptionType) >> 1
	if rc.n == resetThreshold {
		rc.a >>= 1
		rc.n >>= 1
		rc.nn >>= 1
	}
	rc.n++
}

// computeMapBit implements the run-interruption e_mapped sign-selection
// rule of spec §4.3.
func (rc *runContext) computeMapBit(k, errorValue int32) int32 {
	if k == 0 && errorValue > 0 && 2*rc.nn < rc.n {
		return 1
	}
	if errorValue < 0 && 2*rc.nn >= rc.n {
		return 1
	}
	if errorValue < 0 && k != 0 {
		return 1
	}
	return 0
}

// computeErrorValue is the decode-side inverse of computeMapBit/the
// 2*|e|-RIType-mapBit packing done before encodeMappedValue: temp is the
// decoded magnitude-coded value plus runInterruptionType. For k!=0 the
// parity of temp alone gives the sign (even -> positive); for k==0 the
// sign additionally flips on whether 2*NN >= N, mirroring the encoder's
// extra case split on k==0.
func (rc *runContext) computeErrorValue(temp, k int32) int32 {
	even := temp%2 == 0
	var magnitude int32
	if even {
		magnitude = temp / 2
	} else {
		magnitude = (temp + 1) / 2
	}

	cond := 2*rc.nn >= rc.n
	var positive bool
	if k == 0 {
		positive = cond == even
	} else {
		positive = even
	}
	if positive {
		return magnitude
	}
	return -magnitude
}
