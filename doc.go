// Package jpegls implements ISO/IEC 14495-1 (JPEG-LS): a predictive,
// context-modeling lossless and near-lossless image compression engine
// for gray-scale and color images up to 16 bits per sample.
//
// Encode and Decode drive the full marker-framed stream: SOI, an optional
// APP8 "mrfx" segment for the HP1/HP2/HP3 lossless color transforms, an
// optional LSE preset-parameters (or mapping-table) segment, SOF55, one or
// more SOS scans in planar, line-interleaved, or sample-interleaved order,
// optional restart markers, and EOI. DecodeWithCallbacks additionally
// surfaces any APPn/COM segments the core doesn't itself interpret to
// caller-registered callbacks.
//
// It does not implement SPIFF headers, JFIF/EXIF segments, or arithmetic
// coding (JPEG-LS Part 2, SOF57).
package jpegls
