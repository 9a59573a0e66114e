package jpegls

// scanDecoder is the decode-direction counterpart of scanEncoder.
// Grounded on original_source/src/scan_decoder_impl.h.
type scanDecoder struct {
	*scanCodec
	r *bitReader
}

func newScanDecoder(codec *scanCodec, src []byte) *scanDecoder {
	return &scanDecoder{scanCodec: codec, r: newBitReader(src)}
}

func (d *scanDecoder) decodeLine(previous, current []int32, width int) error {
	cpp := d.cpp
	lb := lineAccessor{cpp: cpp}
	index := 0
	for index < width {
		if d.r.err != nil {
			return d.r.err
		}
		ra := lb.at(current, index-1)
		rc := lb.at(previous, index-1)
		rb := lb.at(previous, index)
		rd := lb.at(previous, index+1)

		allZero := true
		qs := make([]int32, cpp)
		signs := make([]int32, cpp)
		for c := 0; c < cpp; c++ {
			q := d.quant.quantize(rd[c] - rb[c])
			q2 := d.quant.quantize(rb[c] - rc[c])
			q3 := d.quant.quantize(rc[c] - ra[c])
			id, sign := contextIDAndSign(q, q2, q3)
			qs[c] = id
			signs[c] = sign
			if id != 0 {
				allZero = false
			}
		}

		if allZero {
			consumed, err := d.decodeRunMode(previous, current, index, width)
			if err != nil {
				return err
			}
			index += consumed
			continue
		}

		rx := lb.at(current, index)
		for c := 0; c < cpp; c++ {
			predicted := getPredictedValue(ra[c], rb[c], rc[c])
			v, err := d.decodeRegular(qs[c], signs[c], predicted)
			if err != nil {
				return err
			}
			rx[c] = v
		}
		index++
	}
	return d.r.err
}

func (d *scanDecoder) decodeRegular(qs, sign, predicted int32) (int32, error) {
	ctx := &d.contexts[applySign(qs, sign)]
	k, err := ctx.golombK(maxKValue)
	if err != nil {
		return 0, err
	}
	predictedValue := d.traits.correctPrediction(predicted + applySign(ctx.c, sign))

	var errorValue int32
	lut := &d.golomb.tables[k]
	peek := d.r.peekByte()
	entry := lut[peek&0xFF]
	if entry.length != 0 {
		d.r.skip(int32(entry.length))
		errorValue = unmapErrorValue(entry.value)
	} else {
		errorValue = unmapErrorValue(d.decodeValue(k, d.traits.limit, d.traits.qbpp))
	}
	if k == 0 {
		errorValue ^= ctx.getErrorCorrection(d.traits.near)
	}
	if err := ctx.update(errorValue, d.traits.near, d.traits.reset); err != nil {
		return 0, err
	}
	errorValue = applySign(errorValue, sign)
	return d.traits.computeReconstructedSample(predictedValue, errorValue), nil
}

// decodeValue reads a Golomb(k) code via the slow path: a unary prefix
// via readHighBits, then either k low bits or, past the overflow
// threshold, a qbpp-bit escape value (spec §9 Open Question 2, mirrored
// from original_source/src/scan_decoder.h's decode_value).
func (d *scanDecoder) decodeValue(k, limit, qbpp int32) int32 {
	highBits := d.r.readHighBits()
	if highBits >= limit-(qbpp+1) {
		return d.r.readValue(qbpp) + 1
	}
	if k == 0 {
		return highBits
	}
	return (highBits << uint(k)) + d.r.readValue(k)
}

func (d *scanDecoder) decodeRunMode(previous, current []int32, startIndex, width int) (int, error) {
	cpp := d.cpp
	lb := lineAccessor{cpp: cpp}
	ra := append([]int32(nil), lb.at(current, startIndex-1)...)

	runLength, err := d.decodeRunPixels(ra, current, startIndex, width-startIndex)
	if err != nil {
		return 0, err
	}
	endIndex := startIndex + runLength
	if endIndex == width {
		return endIndex - startIndex, nil
	}

	rb := lb.at(previous, endIndex)
	px := lb.at(current, endIndex)
	if err := d.decodeRunInterruptionPixel(px, ra, rb); err != nil {
		return 0, err
	}
	d.decrementRunIndex()
	return endIndex - startIndex + 1, nil
}

func (d *scanDecoder) decodeRunPixels(ra []int32, current []int32, startIndex, pixelCount int) (int, error) {
	lb := lineAccessor{cpp: d.cpp}
	index := 0
	for d.r.readBit() {
		count := 1 << uint(runModeJ[d.runIndex])
		if count > pixelCount-index {
			count = pixelCount - index
		}
		index += count
		if count == 1<<uint(runModeJ[d.runIndex]) {
			d.incrementRunIndex()
		}
		if index == pixelCount {
			break
		}
	}
	if index != pixelCount {
		if runModeJ[d.runIndex] > 0 {
			index += int(d.r.readValue(int32(runModeJ[d.runIndex])))
		}
	}
	if index > pixelCount {
		return 0, ErrInvalidEncodedData
	}
	for i := 0; i < index; i++ {
		copy(lb.at(current, startIndex+i), ra)
	}
	return index, nil
}

func (d *scanDecoder) decodeRunInterruptionPixel(x, ra, rb []int32) error {
	if d.cpp == 1 {
		if d.traits.isNear(ra[0], rb[0]) {
			errorValue, err := d.decodeRunInterruptionError(&d.runContexts[1])
			if err != nil {
				return err
			}
			x[0] = d.traits.computeReconstructedSample(ra[0], errorValue)
			return nil
		}
		errorValue, err := d.decodeRunInterruptionError(&d.runContexts[0])
		if err != nil {
			return err
		}
		sign := signOf(rb[0] - ra[0])
		x[0] = d.traits.computeReconstructedSample(rb[0], errorValue*sign)
		return nil
	}
	for c := 0; c < d.cpp; c++ {
		errorValue, err := d.decodeRunInterruptionError(&d.runContexts[0])
		if err != nil {
			return err
		}
		sign := signOf(rb[c] - ra[c])
		x[c] = d.traits.computeReconstructedSample(rb[c], errorValue*sign)
	}
	return nil
}

func (d *scanDecoder) decodeRunInterruptionError(ctx *runContext) (int32, error) {
	k, err := ctx.golombK(maxKValue)
	if err != nil {
		return 0, err
	}
	eMapped := d.decodeValue(k, d.traits.limit-int32(runModeJ[d.runIndex])-1, d.traits.qbpp)
	errorValue := ctx.computeErrorValue(eMapped+ctx.runInterruptionType, k)
	ctx.update(errorValue, eMapped, d.traits.reset)
	return errorValue, nil
}
