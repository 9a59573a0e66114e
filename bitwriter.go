package jpegls

// bitWriter accumulates bits MSB-first into a byte buffer, transparently
// applying the JPEG-LS marker-detect stuffing rule: after any 0xFF byte is
// flushed, the next flushed byte consumes only 7 bits from the buffer and
// has its top bit forced to 0 (ISO/IEC 14495-1, A.1).
//
// Grounded on original_source/src/scan_encoder.h (append_to_bit_stream,
// flush, end_scan); the accumulator-plus-free-bit-count shape is adapted
// from the teacher's emit() in writer.go, but the stuffing rule itself is
// NOT the teacher's FF-00 rule — it is the distinct JPEG-LS 7-bit rule.
type bitWriter struct {
	dst         []byte
	buffer      uint32
	freeBits    int32 // bits of headroom left in buffer, may go negative transiently
	ffWritten   bool
	bytesWritten int
	err         error
}

func newBitWriter(dst []byte) *bitWriter {
	return &bitWriter{dst: dst[:0], buffer: 0, freeBits: 32}
}

// appendBits appends the low n bits of value (0 <= n < 32, high bits of
// value must already be zero).
func (w *bitWriter) appendBits(value uint32, n int32) {
	if w.err != nil || n == 0 {
		return
	}
	w.freeBits -= n
	if w.freeBits >= 0 {
		w.buffer |= value << uint(w.freeBits)
		return
	}
	w.buffer |= value >> uint(-w.freeBits)
	w.flush()
	if w.freeBits < 0 {
		w.buffer |= value >> uint(-w.freeBits)
		w.flush()
	}
	if w.err != nil {
		return
	}
	w.buffer |= value << uint(w.freeBits)
}

// appendOnes appends n one-bits; used by run-mode block coding.
func (w *bitWriter) appendOnes(n int32) {
	w.appendBits((uint32(1)<<uint(n))-1, n)
}

func (w *bitWriter) flush() {
	if w.err != nil {
		return
	}
	for i := 0; i < 4; i++ {
		if w.freeBits >= 32 {
			w.freeBits = 32
			break
		}
		var b byte
		if w.ffWritten {
			b = byte(w.buffer >> 25)
			w.buffer <<= 7
			w.freeBits += 7
		} else {
			b = byte(w.buffer >> 24)
			w.buffer <<= 8
			w.freeBits += 8
		}
		w.dst = append(w.dst, b)
		w.ffWritten = b == markerStartByte
		w.bytesWritten++
	}
}

// endScan flushes any remaining bits, padding to a byte boundary, with the
// extra alignment bit JPEG-LS requires when the final byte was stuffed.
func (w *bitWriter) endScan() {
	w.flush()
	if w.ffWritten {
		w.appendBits(0, (w.freeBits-1)%8)
	}
	w.flush()
}

// bytes returns the bytes written so far.
func (w *bitWriter) bytes() []byte {
	return w.dst
}

// writeRestartMarker byte-aligns the stream (as endScan does) and appends a
// literal FF Dn restart marker, then resets the stuffing state so the next
// appended byte is not treated as following an 0xFF data byte.
func (w *bitWriter) writeRestartMarker(id uint32) {
	w.endScan()
	if w.err != nil {
		return
	}
	w.dst = append(w.dst, markerStartByte, markerRST0+byte(id))
	w.bytesWritten += 2
	w.ffWritten = false
}
