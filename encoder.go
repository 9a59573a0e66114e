package jpegls

// Encode compresses pixels (laid out per frame/coding, see spec §6) into a
// complete JPEG-LS byte stream. stride is the byte pitch of one row; 0
// means the tightest packing for the given layout. Grounded on the
// teacher's top-level Encode() entry point in writer.go, generalized from
// a fixed 8x8-block DCT walk to the marker-framed predictive scan walk of
// original_source/src/jpegstreamwriter.cpp's WriteHeader/EncodeScan.
func Encode(pixels []byte, stride int, frame FrameInfo, coding CodingParameters) ([]byte, error) {
	if err := frame.validate(); err != nil {
		return nil, err
	}
	if err := coding.validate(frame); err != nil {
		return nil, err
	}
	if pixels == nil {
		return nil, newErr(ErrKindArgument, "source pixel buffer is unset")
	}

	preset, traits := resolvePreset(coding.Preset, frame.BitsPerSample, int32(coding.NearLossless))
	defaultPreset, _ := resolvePreset(PresetCodingParameters{}, frame.BitsPerSample, int32(coding.NearLossless))
	coding.Preset = preset

	out := make([]byte, 0, len(pixels)/2+64)
	out = writeMarker(out, markerSOI)

	if coding.ColorTransformation != ColorTransformNone {
		out = writeSegment(out, markerAPP8, encodeAPP8MrfxPayload(coding.ColorTransformation))
	}
	if coding.IncludePresetSegment || preset != defaultPreset {
		out = writeSegment(out, markerLSE, encodeLSEPayload(preset))
	}
	for _, table := range coding.MappingTables {
		for _, seg := range encodeMappingTableSegments(table) {
			out = writeSegment(out, markerLSE, seg)
		}
	}
	out = writeSegment(out, markerSOF55, encodeSOF55Payload(frame))

	tables := newMappingTableSet()
	for i := range coding.MappingTables {
		tables.tables[coding.MappingTables[i].ID] = &coding.MappingTables[i]
	}

	switch coding.InterleaveMode {
	case InterleaveNone:
		layout := newLineLayout(frame, InterleaveNone, stride)
		planeSize := layout.stride * layout.height
		for c := 0; c < frame.ComponentCount; c++ {
			plane := pixels[c*planeSize : (c+1)*planeSize]
			selector := 0
			if c < len(coding.ComponentMappingTableSelectors) {
				selector = coding.ComponentMappingTableSelectors[c]
			}
			var err error
			out, err = encodeScan(out, plane, layout, InterleaveNone, colorTransformer{kind: ColorTransformNone}, traits, preset, 1, coding, []int{c + 1}, []int{selector}, tables)
			if err != nil {
				return nil, err
			}
		}

	default:
		layout := newLineLayout(frame, coding.InterleaveMode, stride)
		ct := newColorTransformer(coding.ColorTransformation, frame.BitsPerSample)
		ids := make([]int, frame.ComponentCount)
		for i := range ids {
			ids[i] = i + 1
		}
		var err error
		out, err = encodeScan(out, pixels, layout, coding.InterleaveMode, ct, traits, preset, frame.ComponentCount, coding, ids, coding.ComponentMappingTableSelectors, tables)
		if err != nil {
			return nil, err
		}
	}

	out = writeMarker(out, markerEOI)
	return out, nil
}

// encodeScan codes one full scan (all the rows of either one plane, in
// InterleaveNone mode, or the whole interleaved image otherwise) and
// appends SOS header + compressed bytes to out. selectors is the
// per-component mapping table selector list for this scan's components
// (same order as componentIDs); a component with a nonzero selector is
// collapsed from sample values to palette indices before scan coding.
func encodeScan(out []byte, buf []byte, layout lineLayout, interleave InterleaveMode, ct colorTransformer, t traits, preset PresetCodingParameters, cpp int, coding CodingParameters, componentIDs []int, selectors []int, tables *mappingTableSet) ([]byte, error) {
	out = writeSegment(out, markerSOS, encodeSOSPayload(componentIDs, selectors, coding.NearLossless, interleave))

	codec := newScanCodec(t, preset, cpp)
	enc := newScanEncoder(codec, make([]byte, 0, layout.width*layout.height*cpp))

	lb := newLineBuffers(layout.width, cpp)
	current, previous := lb.a, lb.b

	restartID := uint32(0)
	for y := 0; y < layout.height; y++ {
		lb.primeEdges(previous, current)

		dst := make([]int32, layout.width*cpp)
		if interleave == InterleaveNone {
			requestPlaneLine(buf, layout, y, dst)
		} else {
			requestInterleavedLine(buf, layout, interleave, ct, y, dst)
		}
		if err := collapseSamplesToIndices(dst, cpp, selectors, tables); err != nil {
			return nil, err
		}
		for x := 0; x < layout.width; x++ {
			copy(lb.pixel(current, x), dst[x*cpp:(x+1)*cpp])
		}

		enc.encodeLine(previous, current, layout.width)
		if enc.w.err != nil {
			return nil, enc.w.err
		}

		previous, current = current, previous

		if coding.RestartInterval > 0 && (y+1)%coding.RestartInterval == 0 && y+1 != layout.height {
			enc.w.writeRestartMarker(restartID % 8)
			restartID++
			codec.resetParameters()
		}
	}

	enc.w.endScan()
	if enc.w.err != nil {
		return nil, enc.w.err
	}
	out = append(out, enc.w.bytes()...)
	return out, nil
}
