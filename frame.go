package jpegls

// InterleaveMode selects how multi-component pixel data is laid out in the
// raster buffer and in the scan itself.
type InterleaveMode int

const (
	// InterleaveNone lays out each component as a separate contiguous plane;
	// one scan codec invocation runs per component.
	InterleaveNone InterleaveMode = iota
	// InterleaveLine cycles whole component rows: c0 row y, c1 row y, ...
	// A single scan codec invocation walks all components.
	InterleaveLine
	// InterleaveSample cycles components per pixel: c0,c1,...,cN,c0,c1,...
	InterleaveSample
)

// ColorTransform selects one of the HP lossless reversible color
// transforms applied between RGB-like triplets and the coded planes.
type ColorTransform int

const (
	ColorTransformNone ColorTransform = iota
	ColorTransformHP1
	ColorTransformHP2
	ColorTransformHP3
)

// FrameInfo describes the pixel geometry of one image.
type FrameInfo struct {
	Width          int // [1, 65535]
	Height         int // [1, 65535]
	BitsPerSample  int // [2, 16]
	ComponentCount int // [1, 255]
}

func (f FrameInfo) validate() error {
	if f.Width < 1 || f.Width > 65535 {
		return newErr(ErrKindArgument, "width %d out of range [1,65535]", f.Width)
	}
	if f.Height < 1 || f.Height > 65535 {
		return newErr(ErrKindArgument, "height %d out of range [1,65535]", f.Height)
	}
	if f.BitsPerSample < 2 || f.BitsPerSample > 16 {
		return newErr(ErrKindArgument, "bits per sample %d out of range [2,16]", f.BitsPerSample)
	}
	if f.ComponentCount < 1 || f.ComponentCount > 255 {
		return newErr(ErrKindArgument, "component count %d out of range [1,255]", f.ComponentCount)
	}
	return nil
}

// PresetCodingParameters holds ISO/IEC 14495-1 C.2.4.1.1 preset coding
// parameters. A zero value for any field means "use the standard default
// derived from MAXVAL and NEAR" (see computeDefaultPreset).
type PresetCodingParameters struct {
	MaximumSampleValue int
	Threshold1         int
	Threshold2         int
	Threshold3         int
	ResetValue         int
}

func (p PresetCodingParameters) isDefault() bool {
	return p.MaximumSampleValue == 0 && p.Threshold1 == 0 && p.Threshold2 == 0 &&
		p.Threshold3 == 0 && p.ResetValue == 0
}

// CodingParameters describes how a scan is coded.
type CodingParameters struct {
	NearLossless         int // 0 = lossless
	InterleaveMode       InterleaveMode
	ColorTransformation  ColorTransform
	RestartInterval      int // lines between restart markers; 0 disables
	Preset               PresetCodingParameters
	IncludePresetSegment bool // force emitting LSE even if Preset equals the default

	// MappingTables lists palette tables to emit as LSE subtype-2/3
	// segments (ISO/IEC 14495-1 C.2.4.1.4), before the first scan that
	// references one of them.
	MappingTables []MappingTable
	// ComponentMappingTableSelectors, if non-nil, must have one entry per
	// component (same 1..N order as SOF55); a nonzero entry names the ID
	// of the MappingTables entry used to map that component's coded
	// sample values to/from palette indices. 0 means no table.
	ComponentMappingTableSelectors []int
}

func (c CodingParameters) validate(frame FrameInfo) error {
	maxNear := ((1 << uint(frame.BitsPerSample)) - 1) / 2
	if c.NearLossless < 0 || c.NearLossless > maxNear {
		return newErr(ErrKindArgument, "near_lossless %d out of range [0,%d]", c.NearLossless, maxNear)
	}
	if c.RestartInterval < 0 {
		return newErr(ErrKindArgument, "restart interval must be >= 0")
	}
	if c.ComponentMappingTableSelectors != nil && len(c.ComponentMappingTableSelectors) != frame.ComponentCount {
		return newErr(ErrKindArgument, "component mapping table selectors length %d != component count %d",
			len(c.ComponentMappingTableSelectors), frame.ComponentCount)
	}
	for _, sel := range c.ComponentMappingTableSelectors {
		if sel == 0 {
			continue
		}
		found := false
		for _, t := range c.MappingTables {
			if t.ID == sel {
				found = true
				break
			}
		}
		if !found {
			return newErr(ErrKindConfiguration, "component selects mapping table id %d, not present in MappingTables", sel)
		}
	}
	switch frame.ComponentCount {
	case 1:
		if c.InterleaveMode != InterleaveNone {
			return newErr(ErrKindConfiguration, "single-component frame requires interleave=None")
		}
	case 3:
		// any interleave mode permitted
	case 4:
		if c.InterleaveMode == InterleaveSample {
			return newErr(ErrKindConfiguration, "4-component frame does not support sample interleave")
		}
	default:
		if c.InterleaveMode != InterleaveNone {
			return newErr(ErrKindConfiguration, "interleave mode not supported for %d components", frame.ComponentCount)
		}
	}
	if c.ColorTransformation != ColorTransformNone && frame.ComponentCount != 3 {
		return newErr(ErrKindConfiguration, "color transform requires 3 components, got %d", frame.ComponentCount)
	}
	return nil
}
