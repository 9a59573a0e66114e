package jpegls

// Decode parses a complete JPEG-LS byte stream and reconstructs the pixel
// buffer, reporting the frame geometry and coding parameters that were
// used. dstStride, if nonzero, overrides the tightest-packing stride for
// the returned buffer. Grounded on the teacher's top-level Decode() shape
// in writer.go (there: read markers then IDCT each block); here: read
// markers then run the predictive scan decoder once per scan.
func Decode(src []byte, dstStride int) (FrameInfo, CodingParameters, []byte, error) {
	return DecodeWithCallbacks(src, dstStride, nil)
}

// DecodeWithCallbacks is Decode, additionally invoking callbacks registered
// in registry for every APPn/COM segment the core doesn't itself interpret.
func DecodeWithCallbacks(src []byte, dstStride int, registry *CallbackRegistry) (FrameInfo, CodingParameters, []byte, error) {
	fw := newFrameWalkerReader(src)

	header, coding, _, err := readHeader(fw, registry)
	if err != nil {
		return FrameInfo{}, CodingParameters{}, nil, err
	}
	frame := header.frame
	if err := frame.validate(); err != nil {
		return frame, coding, nil, err
	}
	if err := coding.validate(frame); err != nil {
		return frame, coding, nil, err
	}

	preset, traits := resolvePreset(coding.Preset, frame.BitsPerSample, int32(coding.NearLossless))
	coding.Preset = preset

	switch coding.InterleaveMode {
	case InterleaveNone:
		layout := newLineLayout(frame, InterleaveNone, dstStride)
		planeSize := layout.stride * layout.height
		out := make([]byte, planeSize*frame.ComponentCount)

		plane := out[0:planeSize]
		if err := decodeScan(fw, src, plane, layout, InterleaveNone, colorTransformer{kind: ColorTransformNone}, traits, preset, 1, coding, header.tableSelectors, header.tables); err != nil {
			return frame, coding, nil, err
		}

		for c := 1; c < frame.ComponentCount; c++ {
			marker, err := fw.nextMarker()
			if err != nil {
				return frame, coding, nil, err
			}
			if marker != markerSOS {
				return frame, coding, nil, ErrMissingSOF
			}
			payload, err := fw.readSegment()
			if err != nil {
				return frame, coding, nil, err
			}
			_, selectors, _, _, err := parseSOSPayload(payload)
			if err != nil {
				return frame, coding, nil, err
			}
			plane = out[c*planeSize : (c+1)*planeSize]
			if err := decodeScan(fw, src, plane, layout, InterleaveNone, colorTransformer{kind: ColorTransformNone}, traits, preset, 1, coding, selectors, header.tables); err != nil {
				return frame, coding, nil, err
			}
		}
		return frame, coding, out, finishDecode(fw)

	default:
		layout := newLineLayout(frame, coding.InterleaveMode, dstStride)
		ct := newColorTransformer(coding.ColorTransformation, frame.BitsPerSample)
		out := make([]byte, layout.stride*layout.height)
		if err := decodeScan(fw, src, out, layout, coding.InterleaveMode, ct, traits, preset, frame.ComponentCount, coding, header.tableSelectors, header.tables); err != nil {
			return frame, coding, nil, err
		}
		return frame, coding, out, finishDecode(fw)
	}
}

// finishDecode expects exactly the EOI marker to remain in the stream.
func finishDecode(fw *frameWalkerReader) error {
	marker, err := fw.nextMarker()
	if err != nil {
		return err
	}
	if marker != markerEOI {
		return ErrUnexpectedEOI
	}
	return nil
}

// decodeScan runs the scan codec over one scan's compressed bytes (which
// start right after fw's current position, already past the SOS segment)
// and writes the reconstructed samples into buf via the line processor.
// selectors is the per-component mapping table selector list for this
// scan's components; a component with a nonzero selector has its decoded
// palette indices expanded to sample values via tables before delivery.
func decodeScan(fw *frameWalkerReader, src []byte, buf []byte, layout lineLayout, interleave InterleaveMode, ct colorTransformer, t traits, preset PresetCodingParameters, cpp int, coding CodingParameters, selectors []int, tables *mappingTableSet) error {
	codec := newScanCodec(t, preset, cpp)
	dec := newScanDecoder(codec, src[fw.pos:])

	lb := newLineBuffers(layout.width, cpp)
	current, previous := lb.a, lb.b

	restartID := uint32(0)
	for y := 0; y < layout.height; y++ {
		lb.primeEdges(previous, current)

		if err := dec.decodeLine(previous, current, layout.width); err != nil {
			return err
		}

		dst := make([]int32, layout.width*cpp)
		for x := 0; x < layout.width; x++ {
			copy(dst[x*cpp:(x+1)*cpp], lb.pixel(current, x))
		}
		expandIndicesToSamples(dst, cpp, selectors, tables)
		if interleave == InterleaveNone {
			deliverPlaneLine(buf, layout, y, dst)
		} else {
			deliverInterleavedLine(buf, layout, interleave, ct, y, dst)
		}

		previous, current = current, previous

		if coding.RestartInterval > 0 && (y+1)%coding.RestartInterval == 0 && y+1 != layout.height {
			if err := dec.r.readRestartMarker(restartID % 8); err != nil {
				return err
			}
			restartID++
			codec.resetParameters()
		}
	}

	if err := dec.r.endScan(); err != nil {
		return err
	}
	fw.pos += dec.r.curBytePos()
	return nil
}
