package jpegls

import "encoding/binary"

// lineprocessor.go adapts between the caller's raw pixel buffer (planar,
// line-interleaved, or sample-interleaved, per spec §6) and the flat
// []int32 line buffers the scan codec operates on. Grounded on
// ISO/IEC 14495-1's process_line helpers (process_decoded_line.h /
// process_encoded_line.h in original_source); split here into the same
// three cases spec §4.5 names: single component, masked single component,
// and interleaved-with-transform.
//
// Multi-byte in-memory samples (bits_per_sample > 8) are read/written
// little-endian; this is a deliberate choice (the format itself only
// mandates big-endian header fields) matching the common in-memory pixel
// convention, not a requirement mirrored from the original implementation.

func bytesPerSample(bitsPerSample int) int {
	if bitsPerSample <= 8 {
		return 1
	}
	return 2
}

func readSample(row []byte, offset, bitsPerSample int) int32 {
	if bitsPerSample <= 8 {
		return int32(row[offset])
	}
	return int32(binary.LittleEndian.Uint16(row[offset*2:]))
}

func writeSample(row []byte, offset, bitsPerSample int, v int32) {
	if bitsPerSample <= 8 {
		row[offset] = byte(v)
		return
	}
	binary.LittleEndian.PutUint16(row[offset*2:], uint16(v))
}

// lineLayout describes one image's raster geometry, shared by every line
// processor variant.
type lineLayout struct {
	width, height  int
	bitsPerSample  int
	componentCount int
	stride         int // bytes per row of a single plane/interleaved row
}

func newLineLayout(frame FrameInfo, interleave InterleaveMode, stride int) lineLayout {
	bps := bytesPerSample(frame.BitsPerSample)
	componentsPerRow := 1
	if interleave != InterleaveNone {
		componentsPerRow = frame.ComponentCount
	}
	if stride == 0 {
		stride = frame.Width * bps * componentsPerRow
	}
	return lineLayout{
		width:          frame.Width,
		height:         frame.Height,
		bitsPerSample:  frame.BitsPerSample,
		componentCount: frame.ComponentCount,
		stride:         stride,
	}
}

// requestPlaneLine copies row y of a single-component plane into dst (one
// int32 per pixel), masking high bits when bits_per_sample isn't byte
// aligned (the "masked single component" case of spec §4.5).
func requestPlaneLine(plane []byte, layout lineLayout, y int, dst []int32) {
	mask := int32(1)<<uint(layout.bitsPerSample) - 1
	bps := bytesPerSample(layout.bitsPerSample)
	row := plane[y*layout.stride:]
	masked := layout.bitsPerSample%8 != 0
	for x := 0; x < layout.width; x++ {
		v := readSample(row, x, layout.bitsPerSample)
		if masked {
			v &= mask
		}
		dst[x] = v
	}
	_ = bps
}

func deliverPlaneLine(plane []byte, layout lineLayout, y int, src []int32) {
	row := plane[y*layout.stride:]
	for x := 0; x < layout.width; x++ {
		writeSample(row, x, layout.bitsPerSample, src[x])
	}
}

// requestInterleavedLine reads one row of an interleaved (Line or Sample)
// buffer into a cpp-wide []int32 line (cpp == componentCount), applying the
// forward color transform when one is configured.
func requestInterleavedLine(buf []byte, layout lineLayout, interleave InterleaveMode, ct colorTransformer, y int, dst []int32) {
	cpp := layout.componentCount
	switch interleave {
	case InterleaveSample:
		row := buf[y*layout.stride:]
		for x := 0; x < layout.width; x++ {
			base := x * cpp
			if cpp == 3 {
				r := readSample(row, base, layout.bitsPerSample)
				g := readSample(row, base+1, layout.bitsPerSample)
				b := readSample(row, base+2, layout.bitsPerSample)
				v1, v2, v3 := ct.forward(r, g, b)
				dst[base], dst[base+1], dst[base+2] = v1, v2, v3
				continue
			}
			for c := 0; c < cpp; c++ {
				dst[base+c] = readSample(row, base+c, layout.bitsPerSample)
			}
		}
	case InterleaveLine:
		planeStride := layout.width * bytesPerSample(layout.bitsPerSample)
		rowBase := buf[y*layout.stride:]
		if cpp == 3 {
			for x := 0; x < layout.width; x++ {
				r := readSample(rowBase[0*planeStride:], x, layout.bitsPerSample)
				g := readSample(rowBase[1*planeStride:], x, layout.bitsPerSample)
				b := readSample(rowBase[2*planeStride:], x, layout.bitsPerSample)
				v1, v2, v3 := ct.forward(r, g, b)
				base := x * cpp
				dst[base], dst[base+1], dst[base+2] = v1, v2, v3
			}
			return
		}
		for c := 0; c < cpp; c++ {
			for x := 0; x < layout.width; x++ {
				dst[x*cpp+c] = readSample(rowBase[c*planeStride:], x, layout.bitsPerSample)
			}
		}
	}
}

func deliverInterleavedLine(buf []byte, layout lineLayout, interleave InterleaveMode, ct colorTransformer, y int, src []int32) {
	cpp := layout.componentCount
	switch interleave {
	case InterleaveSample:
		row := buf[y*layout.stride:]
		for x := 0; x < layout.width; x++ {
			base := x * cpp
			if cpp == 3 {
				r, g, b := ct.inverse(src[base], src[base+1], src[base+2])
				writeSample(row, base, layout.bitsPerSample, r)
				writeSample(row, base+1, layout.bitsPerSample, g)
				writeSample(row, base+2, layout.bitsPerSample, b)
				continue
			}
			for c := 0; c < cpp; c++ {
				writeSample(row, base+c, layout.bitsPerSample, src[base+c])
			}
		}
	case InterleaveLine:
		planeStride := layout.width * bytesPerSample(layout.bitsPerSample)
		rowBase := buf[y*layout.stride:]
		if cpp == 3 {
			for x := 0; x < layout.width; x++ {
				base := x * cpp
				r, g, b := ct.inverse(src[base], src[base+1], src[base+2])
				writeSample(rowBase[0*planeStride:], x, layout.bitsPerSample, r)
				writeSample(rowBase[1*planeStride:], x, layout.bitsPerSample, g)
				writeSample(rowBase[2*planeStride:], x, layout.bitsPerSample, b)
			}
			return
		}
		for c := 0; c < cpp; c++ {
			for x := 0; x < layout.width; x++ {
				writeSample(rowBase[c*planeStride:], x, layout.bitsPerSample, src[x*cpp+c])
			}
		}
	}
}
