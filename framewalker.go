package jpegls

import (
	"encoding/binary"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// framewalker.go implements the marker-segment read/write loop around the
// scan codec: SOI / SOF55 / LSE / APP8 "mrfx" / SOS / restart markers / EOI.
// Grounded on original_source/src/jpegstreamreader.cpp (marker read loop,
// ComputeDefault, CheckParameterCoherent) and the teacher's marker-writing
// helpers in writer.go, generalized from baseline-JPEG's fixed marker set
// to the small JPEG-LS marker set.

const mrfxTag = "mrfx"

// AppCallback receives the payload of an APPn or COM segment the core
// doesn't otherwise interpret (spec §4.4). Returning an error aborts the
// parse with ErrCallbackFailed.
type AppCallback func(marker byte, payload []byte) error

type callbackRegistration struct {
	id     uuid.UUID
	marker byte
	fn     AppCallback
}

// CallbackRegistry lets a host register interest in specific APPn/COM
// markers before a decode; each registration is tagged with a uuid so it
// can be individually unregistered, useful when a host composes several
// independent diagnostic listeners on one decoder.
type CallbackRegistry struct {
	regs []callbackRegistration
}

func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{}
}

func (r *CallbackRegistry) Register(marker byte, fn AppCallback) uuid.UUID {
	id := uuid.New()
	r.regs = append(r.regs, callbackRegistration{id: id, marker: marker, fn: fn})
	return id
}

func (r *CallbackRegistry) Unregister(id uuid.UUID) {
	r.regs = slices.DeleteFunc(r.regs, func(c callbackRegistration) bool { return c.id == id })
}

// markers returns the distinct marker bytes with at least one registration,
// sorted for deterministic diagnostics output.
func (r *CallbackRegistry) markers() []byte {
	set := map[byte]struct{}{}
	for _, c := range r.regs {
		set[c.marker] = struct{}{}
	}
	ms := maps.Keys(set)
	slices.Sort(ms)
	return ms
}

func (r *CallbackRegistry) invoke(marker byte, payload []byte) error {
	for _, c := range r.regs {
		if c.marker != marker {
			continue
		}
		if err := c.fn(marker, payload); err != nil {
			return ErrCallbackFailed
		}
	}
	return nil
}

func appendUint16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

func writeMarker(dst []byte, marker byte) []byte {
	return append(dst, markerStartByte, marker)
}

func writeSegment(dst []byte, marker byte, payload []byte) []byte {
	dst = writeMarker(dst, marker)
	dst = appendUint16(dst, uint16(len(payload)+2))
	return append(dst, payload...)
}

// encodeSOF55Payload lays out width/height/bit depth/component table as in
// jpegstreamwriter.cpp's WriteStartOfFrameSegment.
func encodeSOF55Payload(frame FrameInfo) []byte {
	buf := make([]byte, 0, 6+frame.ComponentCount*3)
	buf = append(buf, byte(frame.BitsPerSample))
	buf = appendUint16(buf, uint16(frame.Height))
	buf = appendUint16(buf, uint16(frame.Width))
	buf = append(buf, byte(frame.ComponentCount))
	for i := 0; i < frame.ComponentCount; i++ {
		buf = append(buf, byte(i+1), 0x11, 0)
	}
	return buf
}

// encodeLSEPayload lays out a type-1 preset-coding-parameters segment.
func encodeLSEPayload(p PresetCodingParameters) []byte {
	buf := make([]byte, 0, 11)
	buf = append(buf, lseSubtypePresetCodingParameters)
	buf = appendUint16(buf, uint16(p.MaximumSampleValue))
	buf = appendUint16(buf, uint16(p.Threshold1))
	buf = appendUint16(buf, uint16(p.Threshold2))
	buf = appendUint16(buf, uint16(p.Threshold3))
	buf = appendUint16(buf, uint16(p.ResetValue))
	return buf
}

// encodeSOSPayload lays out one scan header covering componentIDs (1 for a
// non-interleaved per-component scan, all of them for a line/sample
// interleaved scan). tableSelectors, if non-nil, supplies the per-component
// mapping table selector byte (ISO/IEC 14495-1 C.2.3); nil means "no table"
// for every component.
func encodeSOSPayload(componentIDs []int, tableSelectors []int, near int, ilv InterleaveMode) []byte {
	buf := make([]byte, 0, 4+2*len(componentIDs))
	buf = append(buf, byte(len(componentIDs)))
	for i, id := range componentIDs {
		sel := 0
		if i < len(tableSelectors) {
			sel = tableSelectors[i]
		}
		buf = append(buf, byte(id), byte(sel))
	}
	buf = append(buf, byte(near), byte(ilv), 0)
	return buf
}

// parseSOSPayload decodes one SOS segment's component list (id + mapping
// table selector pairs), near-lossless parameter, and interleave mode.
func parseSOSPayload(payload []byte) (componentIDs []int, tableSelectors []int, near int, ilv InterleaveMode, err error) {
	if len(payload) < 4 {
		return nil, nil, 0, 0, ErrInvalidSegmentSize
	}
	ns := int(payload[0])
	if len(payload) != 1+2*ns+3 {
		return nil, nil, 0, 0, ErrInvalidSegmentSize
	}
	componentIDs = make([]int, ns)
	tableSelectors = make([]int, ns)
	for i := 0; i < ns; i++ {
		componentIDs[i] = int(payload[1+2*i])
		tableSelectors[i] = int(payload[2+2*i])
	}
	off := 1 + 2*ns
	near = int(payload[off])
	ilv = InterleaveMode(payload[off+1])
	return componentIDs, tableSelectors, near, ilv, nil
}

// encodeAPP8MrfxPayload tags the stream with the non-standard "mrfx" marker
// this codec uses to record which HP color transform was applied, since
// ISO/IEC 14495-1 itself defines no such field (spec §9 Open Question 3 /
// §4.6).
func encodeAPP8MrfxPayload(ct ColorTransform) []byte {
	buf := make([]byte, 0, 5)
	buf = append(buf, mrfxTag...)
	buf = append(buf, byte(ct))
	return buf
}

type markerHeader struct {
	marker byte
	body   []byte // payload after the 2-byte length field, empty for marker-only
}

// frameWalkerReader sequentially pulls markers out of a JPEG-LS byte stream.
type frameWalkerReader struct {
	src []byte
	pos int
}

func newFrameWalkerReader(src []byte) *frameWalkerReader {
	return &frameWalkerReader{src: src}
}

func (fw *frameWalkerReader) readByte() (byte, error) {
	if fw.pos >= len(fw.src) {
		return 0, ErrSourceTooSmall
	}
	b := fw.src[fw.pos]
	fw.pos++
	return b, nil
}

// nextMarker scans for the next 0xFF-prefixed marker code, skipping any
// fill bytes (extra 0xFF padding) between markers.
func (fw *frameWalkerReader) nextMarker() (byte, error) {
	b, err := fw.readByte()
	if err != nil {
		return 0, err
	}
	if b != markerStartByte {
		return 0, ErrUnknownMarker
	}
	for {
		b, err = fw.readByte()
		if err != nil {
			return 0, err
		}
		if b != markerStartByte {
			return b, nil
		}
	}
}

// readSegment reads the 2-byte big-endian length (inclusive of itself) and
// returns the payload after it.
func (fw *frameWalkerReader) readSegment() ([]byte, error) {
	if fw.pos+2 > len(fw.src) {
		return nil, ErrSourceTooSmall
	}
	length := int(binary.BigEndian.Uint16(fw.src[fw.pos : fw.pos+2]))
	if length < 2 {
		return nil, ErrInvalidSegmentSize
	}
	end := fw.pos + length
	if end > len(fw.src) || end < fw.pos+2 {
		return nil, ErrInvalidSegmentSize
	}
	payload := fw.src[fw.pos+2 : end]
	fw.pos = end
	return payload, nil
}

// decodedHeader is everything needed to drive the scan codec, parsed out of
// the marker segments preceding the first SOS.
type decodedHeader struct {
	frame          FrameInfo
	preset         PresetCodingParameters
	colorTransform ColorTransform
	sawLSE         bool
	// tables accumulates every LSE subtype 2/3 segment seen before the
	// first SOS; mapping tables must be declared up front, not
	// interspersed between per-component scans.
	tables *mappingTableSet
	// tableSelectors holds the first SOS's per-component mapping table
	// selector (0 = none), same order as that SOS's component list.
	tableSelectors []int
}

// readHeader parses SOI .. through the first SOS segment, payload included;
// it leaves fw positioned right after the SOS segment, ready for scan bit
// data. Grounded on jpegstreamreader.cpp's ReadHeader loop.
func readHeader(fw *frameWalkerReader, callbacks *CallbackRegistry) (decodedHeader, CodingParameters, []int, error) {
	var h decodedHeader
	h.tables = newMappingTableSet()
	var coding CodingParameters
	var componentIDs []int
	sawSOI := false
	sawSOF := false
	seenIDs := map[int]bool{}

	for {
		marker, err := fw.nextMarker()
		if err != nil {
			return h, coding, nil, err
		}

		switch marker {
		case markerSOI:
			if sawSOI {
				return h, coding, nil, ErrDuplicateSOI
			}
			sawSOI = true
			continue
		case markerEOI:
			return h, coding, nil, ErrUnexpectedEOI
		}

		if !sawSOI {
			return h, coding, nil, ErrMissingSOF
		}

		payload, err := fw.readSegment()
		if err != nil {
			return h, coding, nil, err
		}

		switch marker {
		case markerSOF55:
			if sawSOF {
				return h, coding, nil, ErrInvalidSegmentSize
			}
			if len(payload) < 6 {
				return h, coding, nil, ErrInvalidSegmentSize
			}
			h.frame.BitsPerSample = int(payload[0])
			h.frame.Height = int(binary.BigEndian.Uint16(payload[1:3]))
			h.frame.Width = int(binary.BigEndian.Uint16(payload[3:5]))
			h.frame.ComponentCount = int(payload[5])
			if len(payload) < 6+3*h.frame.ComponentCount {
				return h, coding, nil, ErrInvalidSegmentSize
			}
			for i := 0; i < h.frame.ComponentCount; i++ {
				id := int(payload[6+3*i])
				if seenIDs[id] {
					return h, coding, nil, ErrDuplicateComponentID
				}
				seenIDs[id] = true
			}
			if err := h.frame.validate(); err != nil {
				return h, coding, nil, err
			}
			sawSOF = true

		case markerSOF57Extended:
			return h, coding, nil, ErrEncodingNotSupported

		case markerSOF0, markerSOF1, markerSOF2, markerSOF3,
			markerSOF5, markerSOF6, markerSOF7, markerSOF9, markerSOF10, markerSOF11:
			return h, coding, nil, newErr(ErrKindStreamContent, "not a JPEG-LS stream (found baseline/progressive SOF marker)")

		case markerLSE:
			if len(payload) < 1 {
				return h, coding, nil, ErrInvalidSegmentSize
			}
			switch payload[0] {
			case lseSubtypePresetCodingParameters:
				if len(payload) != 11 {
					return h, coding, nil, ErrInvalidSegmentSize
				}
				h.preset = PresetCodingParameters{
					MaximumSampleValue: int(binary.BigEndian.Uint16(payload[1:3])),
					Threshold1:         int(binary.BigEndian.Uint16(payload[3:5])),
					Threshold2:         int(binary.BigEndian.Uint16(payload[5:7])),
					Threshold3:         int(binary.BigEndian.Uint16(payload[7:9])),
					ResetValue:         int(binary.BigEndian.Uint16(payload[9:11])),
				}
				h.sawLSE = true
			case lseSubtypeMappingTableSpec, lseSubtypeMappingTableCont:
				if err := decodeMappingTableSegment(h.tables, payload); err != nil {
					return h, coding, nil, err
				}
			default:
				return h, coding, nil, ErrPresetExtendedNotSupp
			}

		case markerAPP8:
			if len(payload) >= 5 && string(payload[0:4]) == mrfxTag {
				h.colorTransform = ColorTransform(payload[4])
			} else if callbacks != nil {
				if err := callbacks.invoke(marker, payload); err != nil {
					return h, coding, nil, err
				}
			}

		case markerSOS:
			if !sawSOF {
				return h, coding, nil, ErrMissingSOF
			}
			ids, selectors, near, ilv, err := parseSOSPayload(payload)
			if err != nil {
				return h, coding, nil, err
			}
			componentIDs = ids
			h.tableSelectors = selectors
			coding.NearLossless = near
			coding.InterleaveMode = ilv
			coding.Preset = h.preset
			coding.ColorTransformation = h.colorTransform
			// Only surface selectors on CodingParameters when this one SOS
			// covers every component (interleaved scans); InterleaveNone's
			// per-component scans each carry just their own single selector,
			// which decoder.go tracks scan-by-scan instead (validate()
			// requires this slice be either empty or frame.ComponentCount
			// long).
			if len(selectors) == h.frame.ComponentCount {
				coding.ComponentMappingTableSelectors = selectors
			}
			if len(h.tables.tables) > 0 {
				tableIDs := maps.Keys(h.tables.tables)
				slices.Sort(tableIDs)
				tables := make([]MappingTable, len(tableIDs))
				for i, id := range tableIDs {
					tables[i] = *h.tables.tables[id]
				}
				coding.MappingTables = tables
			}
			return h, coding, componentIDs, nil

		default:
			// APPn/COM segments we don't otherwise act on are handed to any
			// registered callback and skipped; spec §4.4.
			if callbacks != nil {
				if err := callbacks.invoke(marker, payload); err != nil {
					return h, coding, nil, err
				}
			}
		}
	}
}
