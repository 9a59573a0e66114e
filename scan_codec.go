package jpegls

// scanCodec holds everything shared between the encode and decode
// directions of one scan: the resolved traits, the per-scan lookup
// tables, the 365 regular contexts, the 2 run-interruption contexts, and
// the run_index scan-state variable. Grounded on
// original_source/src/scan_codec.h; Go shape (one struct, two thin
// direction-specific drivers) adapted per spec §9's "no virtual dispatch
// inside the inner loop" design note.
//
// A pixel with componentsPerPixel (cpp) channels is stored as cpp
// consecutive int32 values in a line buffer; cpp==1 is a plain sample
// scan, cpp==3 a triplet scan, cpp==4 a quad scan. This generalizes
// CharLS's three template specializations (decode_sample_line /
// decode_triplet_line / decode_quad_line) into one implementation.
type scanCodec struct {
	traits traits
	quant  *quantizationLUT
	golomb *golombLUTs

	contexts    [regularContextCount]regularContext
	runContexts [runContextCount]runContext
	runIndex    int32

	t1, t2, t3 int32
	cpp        int // components per pixel: 1, 3, or 4
}

func newScanCodec(t traits, preset PresetCodingParameters, cpp int) *scanCodec {
	sc := &scanCodec{
		traits: t,
		quant:  newQuantizationLUT(t.rang, int32(preset.Threshold1), int32(preset.Threshold2), int32(preset.Threshold3), t.near),
		golomb: newGolombLUTs(),
		t1:     int32(preset.Threshold1),
		t2:     int32(preset.Threshold2),
		t3:     int32(preset.Threshold3),
		cpp:    cpp,
	}
	sc.resetParameters()
	return sc
}

// resetParameters (re-)initializes contexts and run_index at scan start
// and after every restart marker. Grounded on scan.h's InitParams /
// jpegstreamreader.cpp's usage of traits.RANGE.
func (sc *scanCodec) resetParameters() {
	initialA := contextInitialA(sc.traits.rang)
	for i := range sc.contexts {
		sc.contexts[i] = newRegularContext(initialA)
	}
	sc.runContexts[0] = newRunContext(0)
	sc.runContexts[0].a = initialA
	sc.runContexts[1] = newRunContext(1)
	sc.runContexts[1].a = initialA
	sc.runIndex = 0
}

func (sc *scanCodec) incrementRunIndex() {
	if sc.runIndex < 31 {
		sc.runIndex++
	}
}

func (sc *scanCodec) decrementRunIndex() {
	if sc.runIndex > 0 {
		sc.runIndex--
	}
}

// lineBuffers holds the two alternating scan-line arrays ("current" and
// "previous") used while walking one component (or, in sample-interleave
// mode, one interleaved pixel line). Each buffer has a one-pixel sentinel
// on each side (index -1 and index width map to buf[0] and
// buf[(width+1)*cpp]).
type lineBuffers struct {
	cpp    int
	width  int
	stride int // pixel_stride including the 2 sentinel pixels: width+2
	a, b   []int32
}

func newLineBuffers(width, cpp int) *lineBuffers {
	stride := width + 2
	return &lineBuffers{
		cpp:    cpp,
		width:  width,
		stride: stride,
		a:      make([]int32, stride*cpp),
		b:      make([]int32, stride*cpp),
	}
}

// pixel returns the cpp-element slice for line buffer index i in [-1,width].
func (lb *lineBuffers) pixel(buf []int32, i int) []int32 {
	off := (i + 1) * lb.cpp
	return buf[off : off+lb.cpp]
}

// swap exchanges the roles of the two buffers, mirroring the parity-based
// swap CharLS performs per output line.
func (lb *lineBuffers) swap() {
	lb.a, lb.b = lb.b, lb.a
}

// primeEdges re-establishes the boundary sentinels before coding a line:
// previous[width] = previous[width-1], current[-1] = previous[0].
func (lb *lineBuffers) primeEdges(previous, current []int32) {
	copy(lb.pixel(previous, lb.width), lb.pixel(previous, lb.width-1))
	copy(lb.pixel(current, -1), lb.pixel(previous, 0))
}

func (lb *lineBuffers) clear() {
	for i := range lb.a {
		lb.a[i] = 0
	}
	for i := range lb.b {
		lb.b[i] = 0
	}
}

// contextIDAndSign computes (q1*9+q2)*9+q3 from the signed quantized gradients
// and its bit_wise_sign; callers pass the sign to apply_sign so that both
// the context array index and the values derived from it are negated
// together when the first nonzero gradient was negative.
func contextIDAndSign(q1, q2, q3 int32) (id, sign int32) {
	id = (q1*9 + q2) * 9 + q3
	sign = bitWiseSign(id)
	return id, sign
}

// getPredictedValue is the median-edge-detector predictor of ISO/IEC
// 14495-1 A.3.2, via the sign-trick optimization used by CharLS.
// Grounded on original_source/src/jpegls_algorithm.h.
func getPredictedValue(ra, rb, rc int32) int32 {
	sign := bitWiseSign(rb - ra)
	if (sign ^ (rc - ra)) < 0 {
		return rb
	}
	if (sign ^ (rb - rc)) < 0 {
		return ra
	}
	return ra + rb - rc
}
