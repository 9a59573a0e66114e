package jpegls

// JPEG marker byte values relevant to framing a single JPEG-LS scan.
// Grounded on ISO/IEC 10918-1 and ISO/IEC 14495-1 Annex C marker tables.
const (
	markerStartByte byte = 0xFF

	markerSOI  byte = 0xD8 // Start of image.
	markerEOI  byte = 0xD9 // End of image.
	markerSOS  byte = 0xDA // Start of scan.
	markerCOM  byte = 0xFE // Comment.
	markerSOF0 byte = 0xC0
	markerSOF1 byte = 0xC1
	markerSOF2 byte = 0xC2
	markerSOF3 byte = 0xC3
	markerSOF5 byte = 0xC5
	markerSOF6 byte = 0xC6
	markerSOF7 byte = 0xC7
	markerSOF9 byte = 0xC9
	markerSOF10 byte = 0xCA
	markerSOF11 byte = 0xCB

	markerSOF55         byte = 0xF7 // JPEG-LS start of frame.
	markerLSE           byte = 0xF8 // JPEG-LS preset coding parameters.
	markerSOF57Extended byte = 0xF9 // JPEG-LS extended (Part 2), unsupported.

	markerAPP0 byte = 0xE0
	markerAPP7 byte = 0xE7
	markerAPP8 byte = 0xE8 // Carries the "mrfx" HP color-transform tag.
	markerAPP15 byte = 0xEF

	markerRST0 byte = 0xD0 // First of the 8 cyclic restart markers D0-D7.
	markerRST7 byte = 0xD7
)

// LSE subtypes this codec handles: 1 (preset coding parameters) and 2/3
// (mapping-table specification and continuation, see mappingtable.go).
// Any other subtype is rejected.
const (
	lseSubtypePresetCodingParameters byte = 0x01
	lseSubtypeMappingTableSpec       byte = 0x02
	lseSubtypeMappingTableCont       byte = 0x03
)

// runModeJ is the fixed run-length block-size table from ISO/IEC 14495-1
// Annex A, indexed by run_index in [0,31].
var runModeJ = [32]uint32{
	0, 0, 0, 0, 1, 1, 1, 1,
	2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// regularContextCount is the number of regular-mode statistical contexts:
// the 729 signed (q1,q2,q3) triplets in [-4,4]^3, with each triplet and its
// negation sharing one context, folded per ISO/IEC 14495-1 into [0,364].
const regularContextCount = 365

// runContextCount is the number of dedicated run-interruption contexts.
const runContextCount = 2

const basicReset = 64
const basicT1 = 3
const basicT2 = 7
const basicT3 = 21
