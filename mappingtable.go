package jpegls

// mappingtable.go implements LSE subtype 2/3 (mapping table specification /
// continuation) segments and the index<->sample expansion they drive, per
// ISO/IEC 14495-1 C.2.4.1.4. Grounded on jpegstreamreader.cpp's mapping
// table handling; exercised by the Annex H.4/H.5 palettized-sample
// conformance scenario (spec §8 scenario 8): a component that selects a
// mapping table is coded as palette indices, not raw sample values, and
// the frame walker expands indices to entries (decode) or collapses
// entries to indices (encode) around the scan codec.

// MappingTable is a palette: index i (0-based) maps to the big-endian
// integer formed by Entries[i*EntrySize : (i+1)*EntrySize].
type MappingTable struct {
	ID        int
	EntrySize int
	Entries   []byte
}

func (t MappingTable) entryCount() int {
	if t.EntrySize == 0 {
		return 0
	}
	return len(t.Entries) / t.EntrySize
}

// valueAt decodes the entry at index as a big-endian unsigned integer.
func (t MappingTable) valueAt(index int32) int32 {
	off := int(index) * t.EntrySize
	var v int32
	for i := 0; i < t.EntrySize; i++ {
		v = v<<8 | int32(t.Entries[off+i])
	}
	return v
}

// indexOf is the reverse lookup the encoder needs: the first table index
// whose entry equals value, or -1 if no entry matches.
func (t MappingTable) indexOf(value int32) int32 {
	for i := 0; i < t.entryCount(); i++ {
		if t.valueAt(int32(i)) == value {
			return int32(i)
		}
	}
	return -1
}

// mappingTableSet collects every table segment seen for the current
// stream, keyed by table id so continuation segments (subtype 3) can
// append to an earlier specification segment (subtype 2).
type mappingTableSet struct {
	tables map[int]*MappingTable
}

func newMappingTableSet() *mappingTableSet {
	return &mappingTableSet{tables: map[int]*MappingTable{}}
}

func (s *mappingTableSet) get(id int) (MappingTable, bool) {
	t, ok := s.tables[id]
	if !ok {
		return MappingTable{}, false
	}
	return *t, true
}

// decodeMappingTableSegment applies one LSE subtype 2 (specification) or
// subtype 3 (continuation) segment to set.
func decodeMappingTableSegment(set *mappingTableSet, payload []byte) error {
	if len(payload) < 2 {
		return ErrInvalidSegmentSize
	}
	id := int(payload[1])
	switch payload[0] {
	case lseSubtypeMappingTableSpec:
		if len(payload) < 3 {
			return ErrInvalidSegmentSize
		}
		entrySize := int(payload[2])
		if entrySize < 1 {
			return ErrInvalidSegmentSize
		}
		set.tables[id] = &MappingTable{
			ID:        id,
			EntrySize: entrySize,
			Entries:   append([]byte(nil), payload[3:]...),
		}
	case lseSubtypeMappingTableCont:
		t, ok := set.tables[id]
		if !ok {
			return newErr(ErrKindStreamStructure, "mapping table continuation for unknown table id %d", id)
		}
		t.Entries = append(t.Entries, payload[2:]...)
	default:
		return ErrPresetExtendedNotSupp
	}
	return nil
}

// encodeMappingTableSegments splits a table's raw bytes into one
// specification segment (subtype 2) followed by as many continuation
// segments (subtype 3) as needed to respect the 65535-byte marker-segment
// limit, per ISO/IEC 14495-1 C.2.4.1.4.
func encodeMappingTableSegments(t MappingTable) [][]byte {
	const maxPayload = 65530
	var segments [][]byte

	first := make([]byte, 0, 3+len(t.Entries))
	first = append(first, lseSubtypeMappingTableSpec, byte(t.ID), byte(t.EntrySize))
	remaining := t.Entries
	take := maxPayload - 3
	if take > len(remaining) {
		take = len(remaining)
	}
	first = append(first, remaining[:take]...)
	segments = append(segments, first)
	remaining = remaining[take:]

	for len(remaining) > 0 {
		take := maxPayload - 2
		if take > len(remaining) {
			take = len(remaining)
		}
		seg := make([]byte, 0, 2+take)
		seg = append(seg, lseSubtypeMappingTableCont, byte(t.ID))
		seg = append(seg, remaining[:take]...)
		segments = append(segments, seg)
		remaining = remaining[take:]
	}
	return segments
}

// expandIndicesToSamples replaces, in place, every sample in dst whose
// channel (x mod cpp) selects a mapping table with that table's entry
// value at the decoded index. Channels with a zero or unresolvable
// selector are left untouched. Used on decode.
func expandIndicesToSamples(dst []int32, cpp int, selectors []int, tables *mappingTableSet) {
	for ch := 0; ch < cpp; ch++ {
		if ch >= len(selectors) || selectors[ch] == 0 {
			continue
		}
		t, ok := tables.get(selectors[ch])
		if !ok {
			continue
		}
		for x := ch; x < len(dst); x += cpp {
			dst[x] = t.valueAt(dst[x])
		}
	}
}

// collapseSamplesToIndices is the encode-side inverse of
// expandIndicesToSamples: every sample on a table-selecting channel is
// replaced by its index in the table. Fails if a sample value has no
// matching entry.
func collapseSamplesToIndices(dst []int32, cpp int, selectors []int, tables *mappingTableSet) error {
	for ch := 0; ch < cpp; ch++ {
		if ch >= len(selectors) || selectors[ch] == 0 {
			continue
		}
		t, ok := tables.get(selectors[ch])
		if !ok {
			return newErr(ErrKindConfiguration, "no mapping table with id %d", selectors[ch])
		}
		for x := ch; x < len(dst); x += cpp {
			idx := t.indexOf(dst[x])
			if idx < 0 {
				return newErr(ErrKindConfiguration, "sample value %d has no entry in mapping table %d", dst[x], selectors[ch])
			}
			dst[x] = idx
		}
	}
	return nil
}
