package jpegls

// scanEncoder drives the encode direction of one scan: it owns the
// scanCodec state and a bitWriter, and walks lines produced by a
// lineProcessor. Grounded on original_source/src/scan_encoder_impl.h;
// Go control flow adapted from the teacher's struct-with-sticky-err
// encoder in writer.go.
type scanEncoder struct {
	*scanCodec
	w *bitWriter
}

func newScanEncoder(codec *scanCodec, dst []byte) *scanEncoder {
	return &scanEncoder{scanCodec: codec, w: newBitWriter(dst)}
}

// encodeLine codes one interleaved line of width pixels, each with cpp
// channels, from the "current" buffer, given "previous" as the row above.
func (e *scanEncoder) encodeLine(previous, current []int32, width int) {
	cpp := e.cpp
	lb := lineAccessor{cpp: cpp}
	index := 0
	for index < width {
		ra := lb.at(current, index-1)
		rc := lb.at(previous, index-1)
		rb := lb.at(previous, index)
		rd := lb.at(previous, index+1)

		allZero := true
		qs := make([]int32, cpp)
		signs := make([]int32, cpp)
		for c := 0; c < cpp; c++ {
			q := e.quant.quantize(rd[c] - rb[c])
			q2 := e.quant.quantize(rb[c] - rc[c])
			q3 := e.quant.quantize(rc[c] - ra[c])
			id, sign := contextIDAndSign(q, q2, q3)
			qs[c] = id
			signs[c] = sign
			if id != 0 {
				allZero = false
			}
		}

		if allZero {
			consumed := e.encodeRunMode(previous, current, index, width)
			index += consumed
			continue
		}

		rx := lb.at(current, index)
		for c := 0; c < cpp; c++ {
			predicted := getPredictedValue(ra[c], rb[c], rc[c])
			rx[c] = e.encodeRegular(qs[c], signs[c], rx[c], predicted)
		}
		index++
	}
}

// encodeRegular codes one sample/channel value x in regular mode for
// context id qs (already signed) and predictor "predicted"; returns the
// reconstructed sample to store back into the line buffer.
func (e *scanEncoder) encodeRegular(qs, sign, x, predicted int32) int32 {
	ctx := &e.contexts[applySign(qs, sign)]
	k, err := ctx.golombK(maxKValue)
	if err != nil {
		e.w.err = err
		return x
	}
	predictedValue := e.traits.correctPrediction(predicted + applySign(ctx.c, sign))
	errorValue := e.traits.computeErrVal(applySign(x-predictedValue, sign))

	correction := ctx.getErrorCorrection(k | e.traits.near)
	mapped := mapErrorValue(correction ^ errorValue)
	e.encodeMappedValue(k, mapped, e.traits.limit)

	if err := ctx.update(errorValue, e.traits.near, e.traits.reset); err != nil {
		e.w.err = err
	}

	recon := e.traits.computeReconstructedSample(predictedValue, applySign(errorValue, sign))
	return recon
}

// encodeMappedValue implements the Golomb(k) code with overflow escape of
// spec §4.3 / original_source/src/scan_encoder_impl.h. Mirrored exactly,
// including the high_bits+1>31 half-split, per spec §9's Open Question 2.
func (e *scanEncoder) encodeMappedValue(k, mappedError, limit int32) {
	qbpp := e.traits.qbpp
	highBits := mappedError >> uint(k)
	if highBits < limit-qbpp-1 {
		if highBits+1 > 31 {
			e.w.appendBits(0, highBits/2)
			highBits -= highBits / 2
		}
		e.w.appendBits(1, highBits+1)
		e.w.appendBits(uint32(mappedError)&((1<<uint(k))-1), k)
		return
	}

	if limit-qbpp > 31 {
		e.w.appendBits(0, 31)
		e.w.appendBits(1, limit-qbpp-31)
	} else {
		e.w.appendBits(1, limit-qbpp)
	}
	e.w.appendBits(uint32(mappedError-1)&((1<<uint(qbpp))-1), qbpp)
}

// encodeRunMode codes a run starting at index and returns the number of
// pixels consumed (the run length, plus 1 if interrupted).
func (e *scanEncoder) encodeRunMode(previous, current []int32, index, width int) int {
	cpp := e.cpp
	lb := lineAccessor{cpp: cpp}
	ra := append([]int32(nil), lb.at(current, index-1)...)

	countRemain := width - index
	runLength := 0
	for runLength < countRemain && e.isNearPixel(lb.at(current, index+runLength), ra) {
		copy(lb.at(current, index+runLength), ra)
		runLength++
	}

	e.encodeRunPixels(int32(runLength), runLength == countRemain)

	if runLength == countRemain {
		return runLength
	}

	rb := lb.at(previous, index+runLength)
	px := lb.at(current, index+runLength)
	e.encodeRunInterruptionPixel(px, ra, rb)
	e.decrementRunIndex()
	return runLength + 1
}

func (e *scanEncoder) isNearPixel(x, ra []int32) bool {
	for c := range x {
		if !e.traits.isNear(x[c], ra[c]) {
			return false
		}
	}
	return true
}

func (e *scanEncoder) encodeRunPixels(runLength int32, endOfLine bool) {
	for runLength >= 1<<uint(runModeJ[e.runIndex]) {
		e.w.appendOnes(1)
		runLength -= 1 << uint(runModeJ[e.runIndex])
		e.incrementRunIndex()
	}
	if endOfLine {
		if runLength != 0 {
			e.w.appendOnes(1)
		}
		return
	}
	e.w.appendBits(uint32(runLength), int32(runModeJ[e.runIndex])+1)
}

// encodeRunInterruptionPixel codes the sample/pixel that broke a run.
func (e *scanEncoder) encodeRunInterruptionPixel(x, ra, rb []int32) {
	if e.cpp == 1 {
		if e.traits.isNear(ra[0], rb[0]) {
			errorValue := e.traits.computeErrVal(x[0] - ra[0])
			e.encodeRunInterruptionError(&e.runContexts[1], errorValue)
			x[0] = e.traits.computeReconstructedSample(ra[0], errorValue)
			return
		}
		sign := signOf(rb[0] - ra[0])
		errorValue := e.traits.computeErrVal((x[0] - rb[0]) * sign)
		e.encodeRunInterruptionError(&e.runContexts[0], errorValue)
		x[0] = e.traits.computeReconstructedSample(rb[0], errorValue*sign)
		return
	}
	for c := 0; c < e.cpp; c++ {
		sign := signOf(rb[c] - ra[c])
		errorValue := e.traits.computeErrVal(sign * (x[c] - rb[c]))
		e.encodeRunInterruptionError(&e.runContexts[0], errorValue)
		x[c] = e.traits.computeReconstructedSample(rb[c], errorValue*sign)
	}
}

func (e *scanEncoder) encodeRunInterruptionError(ctx *runContext, errorValue int32) {
	k, err := ctx.golombK(maxKValue)
	if err != nil {
		e.w.err = err
		return
	}
	mapBit := ctx.computeMapBit(k, errorValue)
	mappedError := 2*absInt32(errorValue) - ctx.runInterruptionType - mapBit
	e.encodeMappedValue(k, mappedError, e.traits.limit-int32(runModeJ[e.runIndex])-1)
	ctx.update(errorValue, mappedError, e.traits.reset)
}

// lineAccessor is a thin helper bundling the components-per-pixel stride
// used to slice a flat line buffer into per-position pixel views.
type lineAccessor struct {
	cpp int
}

func (a lineAccessor) at(buf []int32, i int) []int32 {
	off := (i + 1) * a.cpp
	return buf[off : off+a.cpp]
}
