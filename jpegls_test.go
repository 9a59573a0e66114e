package jpegls

import (
	"bytes"
	"math/rand"
	"testing"
)

// annexH3Vector is the ISO/IEC 14495-1 Annex H.3 4x4 8-bit conformance
// stream for the input pixels below.
var annexH3Vector = []byte{
	0xFF, 0xD8, 0xFF, 0xF7, 0x00, 0x0B, 0x08, 0x00, 0x04, 0x00, 0x04, 0x01, 0x01, 0x11, 0x00,
	0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x6C, 0x80, 0x20, 0x8E, 0x01, 0xC0, 0x00, 0x00, 0x57, 0x40, 0x00, 0x00,
	0x6E, 0xE6, 0x00, 0x00, 0x01, 0xBC, 0x18, 0x00, 0x00, 0x05, 0xD8, 0x00, 0x00, 0x91, 0x60,
	0xFF, 0xD9,
}

var annexH3Pixels = []byte{
	0, 0, 90, 74,
	68, 50, 43, 205,
	64, 145, 145, 145,
	100, 145, 145, 145,
}

func TestAnnexH3Encode(t *testing.T) {
	frame := FrameInfo{Width: 4, Height: 4, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone}

	got, err := Encode(annexH3Pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, annexH3Vector) {
		t.Fatalf("Encode mismatch:\n got  % X\n want % X", got, annexH3Vector)
	}
}

func TestAnnexH3Decode(t *testing.T) {
	frame, coding, pixels, err := Decode(annexH3Vector, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.Width != 4 || frame.Height != 4 || frame.BitsPerSample != 8 || frame.ComponentCount != 1 {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if coding.NearLossless != 0 {
		t.Fatalf("expected lossless, got near=%d", coding.NearLossless)
	}
	if !bytes.Equal(pixels, annexH3Pixels) {
		t.Fatalf("Decode mismatch:\n got  % X\n want % X", pixels, annexH3Pixels)
	}
}

func randomGrayscale(width, height int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	pixels := make([]byte, width*height)
	r.Read(pixels)
	return pixels
}

func TestLosslessRoundTripGrayscale(t *testing.T) {
	cases := []struct{ w, h int }{
		{1, 1}, {1, 8}, {8, 1}, {17, 5}, {64, 64}, {256, 256},
	}
	for _, c := range cases {
		pixels := randomGrayscale(c.w, c.h, int64(c.w*1000+c.h))
		frame := FrameInfo{Width: c.w, Height: c.h, BitsPerSample: 8, ComponentCount: 1}
		coding := CodingParameters{InterleaveMode: InterleaveNone}

		encoded, err := Encode(pixels, 0, frame, coding)
		if err != nil {
			t.Fatalf("%dx%d Encode: %v", c.w, c.h, err)
		}
		_, _, decoded, err := Decode(encoded, 0)
		if err != nil {
			t.Fatalf("%dx%d Decode: %v", c.w, c.h, err)
		}
		if !bytes.Equal(decoded, pixels) {
			t.Fatalf("%dx%d round trip mismatch", c.w, c.h)
		}
	}
}

func TestNearLosslessRoundTripBound(t *testing.T) {
	const near = 3
	pixels := randomGrayscale(64, 48, 42)
	frame := FrameInfo{Width: 64, Height: 48, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone, NearLossless: near}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, decoded, err := Decode(encoded, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range pixels {
		diff := int(pixels[i]) - int(decoded[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > near {
			t.Fatalf("sample %d: |%d-%d| = %d exceeds NEAR=%d", i, pixels[i], decoded[i], diff, near)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	pixels := randomGrayscale(37, 29, 7)
	frame := FrameInfo{Width: 37, Height: 29, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone}

	a, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("encoding the same input twice produced different bytes")
	}
}

func TestRoundTripTripletInterleaveModes(t *testing.T) {
	width, height := 20, 14
	pixels := make([]byte, width*height*3)
	r := rand.New(rand.NewSource(99))
	r.Read(pixels)

	frame := FrameInfo{Width: width, Height: height, BitsPerSample: 8, ComponentCount: 3}
	for _, ilv := range []InterleaveMode{InterleaveNone, InterleaveLine, InterleaveSample} {
		coding := CodingParameters{InterleaveMode: ilv}
		encoded, err := Encode(pixels, 0, frame, coding)
		if err != nil {
			t.Fatalf("ilv=%d Encode: %v", ilv, err)
		}
		_, _, decoded, err := Decode(encoded, 0)
		if err != nil {
			t.Fatalf("ilv=%d Decode: %v", ilv, err)
		}
		if !bytes.Equal(decoded, pixels) {
			t.Fatalf("ilv=%d round trip mismatch", ilv)
		}
	}
}

func TestRoundTripWithColorTransform(t *testing.T) {
	width, height := 18, 10
	pixels := make([]byte, width*height*3)
	r := rand.New(rand.NewSource(123))
	r.Read(pixels)

	frame := FrameInfo{Width: width, Height: height, BitsPerSample: 8, ComponentCount: 3}
	for _, ct := range []ColorTransform{ColorTransformHP1, ColorTransformHP2, ColorTransformHP3} {
		coding := CodingParameters{InterleaveMode: InterleaveSample, ColorTransformation: ct}
		encoded, err := Encode(pixels, 0, frame, coding)
		if err != nil {
			t.Fatalf("ct=%d Encode: %v", ct, err)
		}
		_, _, decoded, err := Decode(encoded, 0)
		if err != nil {
			t.Fatalf("ct=%d Decode: %v", ct, err)
		}
		if !bytes.Equal(decoded, pixels) {
			t.Fatalf("ct=%d round trip mismatch", ct)
		}
	}
}

func TestRoundTripWithRestartInterval(t *testing.T) {
	pixels := randomGrayscale(40, 30, 55)
	frame := FrameInfo{Width: 40, Height: 30, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone, RestartInterval: 4}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, decoded, err := Decode(encoded, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, pixels) {
		t.Fatal("round trip mismatch with restart intervals")
	}
}

func TestRoundTrip16Bit(t *testing.T) {
	width, height := 32, 24
	pixels := make([]byte, width*height*2)
	r := rand.New(rand.NewSource(321))
	for i := 0; i < width*height; i++ {
		v := uint16(r.Intn(1 << 12))
		pixels[2*i] = byte(v)
		pixels[2*i+1] = byte(v >> 8)
	}

	frame := FrameInfo{Width: width, Height: height, BitsPerSample: 12, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, decoded, err := Decode(encoded, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, pixels) {
		t.Fatal("16-bit round trip mismatch")
	}
}

func TestDefaultPresetTableC3(t *testing.T) {
	p := computeDefaultPreset(255, 0)
	if p.Threshold1 != 3 || p.Threshold2 != 7 || p.Threshold3 != 21 || p.ResetValue != 64 {
		t.Fatalf("default preset for MAXVAL=255,NEAR=0 = %+v, want T1=3,T2=7,T3=21,RESET=64", p)
	}
}

func TestMapUnmapErrorValueInverse(t *testing.T) {
	for _, e := range []int32{0, 1, -1, 2, -2, 100, -100, 1 << 20, -(1 << 20)} {
		mapped := mapErrorValue(e)
		if mapped < 0 {
			t.Fatalf("mapErrorValue(%d) = %d, want non-negative", e, mapped)
		}
		back := unmapErrorValue(mapped)
		if back != e {
			t.Fatalf("unmapErrorValue(mapErrorValue(%d)) = %d, want %d", e, back, e)
		}
	}
}

func TestGolombLUTConsistentWithSlowDecoder(t *testing.T) {
	luts := newGolombLUTs()
	for k := int32(0); k < maxKValue; k++ {
		for b := 0; b < 256; b++ {
			entry := luts.tables[k][b]
			if entry.length == 0 {
				continue
			}
			w := newBitWriter(make([]byte, 0, 4))
			mapped := entry.value
			highBits := mapped >> uint(k)
			w.appendBits(1, highBits+1)
			if k > 0 {
				w.appendBits(uint32(mapped)&((1<<uint(k))-1), k)
			}
			w.endScan()

			r := newBitReader(append(w.bytes(), 0xFF, 0xD9))
			got := decodeSlowGolomb(r, k)
			if got != mapped {
				t.Fatalf("k=%d byte=%02X: LUT says %d, slow decode says %d", k, b, mapped, got)
			}
			_ = b
		}
	}
}

// decodeSlowGolomb mirrors scanDecoder.decodeValue's unary+k-bit path without
// the overflow escape, for LUT cross-checking within the 8-bit fast range.
func decodeSlowGolomb(r *bitReader, k int32) int32 {
	highBits := r.readHighBits()
	if k == 0 {
		return highBits
	}
	return (highBits << uint(k)) + r.readValue(k)
}

func TestBoundaryBitsPerSample(t *testing.T) {
	for _, bps := range []int{2, 8, 12, 16} {
		width, height := 9, 7
		bytesPerPx := 1
		if bps > 8 {
			bytesPerPx = 2
		}
		pixels := make([]byte, width*height*bytesPerPx)
		r := rand.New(rand.NewSource(int64(bps)))
		maxVal := int32(1)<<uint(bps) - 1
		for i := 0; i < width*height; i++ {
			v := int32(r.Int31n(maxVal + 1))
			if bytesPerPx == 1 {
				pixels[i] = byte(v)
			} else {
				pixels[2*i] = byte(v)
				pixels[2*i+1] = byte(v >> 8)
			}
		}
		frame := FrameInfo{Width: width, Height: height, BitsPerSample: bps, ComponentCount: 1}
		coding := CodingParameters{InterleaveMode: InterleaveNone}

		encoded, err := Encode(pixels, 0, frame, coding)
		if err != nil {
			t.Fatalf("bps=%d Encode: %v", bps, err)
		}
		_, _, decoded, err := Decode(encoded, 0)
		if err != nil {
			t.Fatalf("bps=%d Decode: %v", bps, err)
		}
		if !bytes.Equal(decoded, pixels) {
			t.Fatalf("bps=%d round trip mismatch", bps)
		}
	}
}

func TestCustomResetValue(t *testing.T) {
	for _, reset := range []int{3, 63, 255} {
		pixels := randomGrayscale(30, 20, int64(reset))
		frame := FrameInfo{Width: 30, Height: 20, BitsPerSample: 8, ComponentCount: 1}
		coding := CodingParameters{
			InterleaveMode: InterleaveNone,
			Preset:         PresetCodingParameters{ResetValue: reset},
		}
		encoded, err := Encode(pixels, 0, frame, coding)
		if err != nil {
			t.Fatalf("reset=%d Encode: %v", reset, err)
		}
		_, _, decoded, err := Decode(encoded, 0)
		if err != nil {
			t.Fatalf("reset=%d Decode: %v", reset, err)
		}
		if !bytes.Equal(decoded, pixels) {
			t.Fatalf("reset=%d round trip mismatch", reset)
		}
	}
}

func TestFullLineRun(t *testing.T) {
	width, height := 50, 6
	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = byte(y * 10)
		}
	}
	frame := FrameInfo{Width: width, Height: height, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, decoded, err := Decode(encoded, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, pixels) {
		t.Fatal("full-line-run round trip mismatch")
	}
}

func TestRunInterruptedAtLastSample(t *testing.T) {
	width, height := 16, 3
	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = 5
		}
		pixels[y*width+width-1] = 200 // breaks the run at the very last sample
	}
	frame := FrameInfo{Width: width, Height: height, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, decoded, err := Decode(encoded, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, pixels) {
		t.Fatal("run-interrupted-at-last-sample round trip mismatch")
	}
}

func TestStuffingRuleNoUnescapedFFWithHighBit(t *testing.T) {
	pixels := randomGrayscale(80, 60, 777)
	frame := FrameInfo{Width: 80, Height: 60, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{InterleaveMode: InterleaveNone}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Scan the entropy-coded body only (between the SOS segment and EOI).
	sosIdx := bytes.Index(encoded, []byte{0xFF, 0xDA})
	if sosIdx < 0 {
		t.Fatal("no SOS marker found")
	}
	bodyStart := sosIdx + 2 + int(encoded[sosIdx+2])<<8 + int(encoded[sosIdx+3])
	eoiIdx := len(encoded) - 2
	body := encoded[bodyStart:eoiIdx]
	for i := 0; i+1 < len(body); i++ {
		if body[i] == 0xFF && body[i+1]&0x80 != 0 {
			t.Fatalf("byte %d is 0xFF followed by a high-bit-set byte %02X inside the entropy segment", i, body[i+1])
		}
	}
}

// annexH45Indices is the decoded index stream spec.md's Annex H.4/H.5
// palettized-sample scenario requires: {0,0,1,1,1,2,2,2,3,3,3,3} for the
// component that selects table id 5 ("Tm1 = 5").
var annexH45Indices = []int32{0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3, 3}

func TestAnnexH45MappingTableIndexExpansion(t *testing.T) {
	table := MappingTable{ID: 5, EntrySize: 1, Entries: []byte{7, 40, 90, 200}}
	set := newMappingTableSet()
	set.tables[table.ID] = &table

	expanded := append([]int32(nil), annexH45Indices...)
	expandIndicesToSamples(expanded, 1, []int{5}, set)
	want := []int32{7, 7, 40, 40, 40, 90, 90, 90, 200, 200, 200, 200}
	for i := range want {
		if expanded[i] != want[i] {
			t.Fatalf("expandIndicesToSamples = %v, want %v", expanded, want)
		}
	}

	collapsed := append([]int32(nil), want...)
	if err := collapseSamplesToIndices(collapsed, 1, []int{5}, set); err != nil {
		t.Fatalf("collapseSamplesToIndices: %v", err)
	}
	for i := range annexH45Indices {
		if collapsed[i] != annexH45Indices[i] {
			t.Fatalf("collapseSamplesToIndices = %v, want %v", collapsed, annexH45Indices)
		}
	}
}

func TestAnnexH45MappingTableSegmentRoundTrip(t *testing.T) {
	table := MappingTable{ID: 5, EntrySize: 1, Entries: []byte{7, 40, 90, 200}}
	segs := encodeMappingTableSegments(table)
	if len(segs) != 1 {
		t.Fatalf("expected a single specification segment for a 4-byte table, got %d", len(segs))
	}

	set := newMappingTableSet()
	if err := decodeMappingTableSegment(set, segs[0]); err != nil {
		t.Fatalf("decodeMappingTableSegment: %v", err)
	}
	got, ok := set.get(table.ID)
	if !ok {
		t.Fatal("table not present after decode")
	}
	if got.EntrySize != table.EntrySize || !bytes.Equal(got.Entries, table.Entries) {
		t.Fatalf("round-tripped table = %+v, want %+v", got, table)
	}
}

// TestAnnexH45PalettizedImageRoundTrip exercises the full encode/decode
// path for a component that selects a mapping table: the source sample
// values are the palette entries table id 5 maps indices {0,1,2,3} to, so
// encoding collapses them to annexH45Indices before scan coding and
// decoding must expand back to the original sample values.
func TestAnnexH45PalettizedImageRoundTrip(t *testing.T) {
	width, height := 4, 3
	pixels := []byte{7, 7, 40, 40, 40, 90, 90, 90, 200, 200, 200, 200}

	frame := FrameInfo{Width: width, Height: height, BitsPerSample: 8, ComponentCount: 1}
	coding := CodingParameters{
		InterleaveMode:                 InterleaveNone,
		MappingTables:                  []MappingTable{{ID: 5, EntrySize: 1, Entries: []byte{7, 40, 90, 200}}},
		ComponentMappingTableSelectors: []int{5},
	}

	encoded, err := Encode(pixels, 0, frame, coding)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, _, decoded, err := Decode(encoded, 0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, pixels) {
		t.Fatalf("palettized round trip mismatch: got % X want % X", decoded, pixels)
	}
}
