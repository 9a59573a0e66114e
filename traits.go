package jpegls

// traits carries the scan-wide constants derived from MAXVAL and NEAR.
// Computed once per scan at construction time and never mutated; see
// spec §3 "Traits (derived, immutable per scan)".
type traits struct {
	maxval int32
	near   int32
	rang   int32 // RANGE
	bpp    int32
	qbpp   int32
	limit  int32
	reset  int32
}

func log2ceil(n int32) int32 {
	var k int32
	for (int32(1) << uint(k)) < n {
		k++
	}
	return k
}

func newTraits(maxval, near int32, reset int32) traits {
	rang := (maxval+2*near)/(2*near+1) + 1
	bpp := log2ceil(maxval) // CharLS computes bpp from MAXVAL, not MAXVAL+1
	if bpp < 2 {
		bpp = 2
	}
	qbpp := log2ceil(rang)
	limit := 2 * (bpp + maxInt32(8, bpp))
	if reset == 0 {
		reset = basicReset
	}
	return traits{
		maxval: maxval,
		near:   near,
		rang:   rang,
		bpp:    bpp,
		qbpp:   qbpp,
		limit:  limit,
		reset:  reset,
	}
}

// correctPrediction mirrors CharLS's CorrectPrediction: clamp a predicted
// value into [0, MAXVAL], for any MAXVAL.
func (t traits) correctPrediction(pxc int32) int32 {
	return clamp32(pxc, 0, t.maxval)
}

// quantize implements the private DefaultTraits::Quantize.
func (t traits) quantize(errorValue int32) int32 {
	if errorValue > 0 {
		return (errorValue + t.near) / (2*t.near + 1)
	}
	return -(t.near - errorValue) / (2*t.near + 1)
}

func (t traits) dequantize(errorValue int32) int32 {
	return errorValue * (2*t.near + 1)
}

// moduloRange implements ITU-T.87 A.4.5 code segment A.9.
func (t traits) moduloRange(errorValue int32) int32 {
	if errorValue < 0 {
		errorValue += t.rang
	}
	if errorValue >= (t.rang+1)/2 {
		errorValue -= t.rang
	}
	return errorValue
}

// computeErrVal composes quantize+moduloRange, used on the encode path.
func (t traits) computeErrVal(e int32) int32 {
	return t.moduloRange(t.quantize(e))
}

func (t traits) fixReconstructedValue(value int32) int32 {
	if value < -t.near {
		value += t.rang * (2*t.near + 1)
	} else if value > t.maxval+t.near {
		value -= t.rang * (2*t.near + 1)
	}
	return t.correctPrediction(value)
}

// computeReconstructedSample composes dequantize+fixReconstructedValue,
// used by both encode (to mirror the decoder's output) and decode.
func (t traits) computeReconstructedSample(px, errVal int32) int32 {
	return t.fixReconstructedValue(px + t.dequantize(errVal))
}

// isNear reports whether |lhs-rhs| <= NEAR.
func (t traits) isNear(lhs, rhs int32) bool {
	d := lhs - rhs
	if d < 0 {
		d = -d
	}
	return d <= t.near
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// computeDefaultPreset implements ISO/IEC 14495-1 Annex A.8: the default
// threshold derivation from MAXVAL and NEAR.
func computeDefaultPreset(maxval, near int32) PresetCodingParameters {
	factor := (minInt32(maxval, 4095) + 128) / 256

	t1 := clampI(factor*(basicT1-2)+2+3*near, near+1, maxval)
	t2 := clampI(factor*(basicT2-3)+3+5*near, t1, maxval)
	t3 := clampI(factor*(basicT3-4)+4+7*near, t2, maxval)

	return PresetCodingParameters{
		MaximumSampleValue: int(maxval),
		Threshold1:         int(t1),
		Threshold2:         int(t2),
		Threshold3:         int(t3),
		ResetValue:         basicReset,
	}
}

// clampI mirrors CharLS's CLAMP(i, j, MAXVAL): values above MAXVAL or
// below j fall back to j.
func clampI(i, j, maxval int32) int32 {
	if i > maxval || i < j {
		return j
	}
	return i
}

// resolvePreset fills in zero fields of p with the Annex A.8 defaults for
// the given MAXVAL and NEAR, and returns the traits derived from the
// result.
func resolvePreset(p PresetCodingParameters, bitsPerSample int, near int32) (PresetCodingParameters, traits) {
	maxval := int32(p.MaximumSampleValue)
	if maxval == 0 {
		maxval = int32(1<<uint(bitsPerSample)) - 1
	}
	def := computeDefaultPreset(maxval, near)
	if p.Threshold1 == 0 {
		p.Threshold1 = def.Threshold1
	}
	if p.Threshold2 == 0 {
		p.Threshold2 = def.Threshold2
	}
	if p.Threshold3 == 0 {
		p.Threshold3 = def.Threshold3
	}
	if p.ResetValue == 0 {
		p.ResetValue = def.ResetValue
	}
	p.MaximumSampleValue = int(maxval)
	t := newTraits(maxval, near, int32(p.ResetValue))
	return p, t
}
