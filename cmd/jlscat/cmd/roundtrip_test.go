package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rawPath := filepath.Join(dir, "in.raw")
	jlsPath := filepath.Join(dir, "out.jls")
	outPath := filepath.Join(dir, "out.raw")

	width, height := 16, 12
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte(i * 7 % 251)
	}
	require.NoError(t, os.WriteFile(rawPath, pixels, 0o644))

	encodeCmd := DefineEncodeCommand()
	encodeCmd.SetArgs([]string{
		"--in", rawPath,
		"--out", jlsPath,
		"--width", "16",
		"--height", "12",
		"--bits", "8",
		"--components", "1",
	})
	require.NoError(t, encodeCmd.Execute())

	decodeCmd := DefineDecodeCommand()
	decodeCmd.SetArgs([]string{"--in", jlsPath, "--out", outPath})
	require.NoError(t, decodeCmd.Execute())

	decoded, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, pixels, decoded)
}

func TestInfoOnConformanceVector(t *testing.T) {
	dir := t.TempDir()
	jlsPath := filepath.Join(dir, "h3.jls")
	require.NoError(t, os.WriteFile(jlsPath, annexH3Vector, 0o644))

	infoCmd := DefineInfoCommand()
	infoCmd.SetArgs([]string{jlsPath})
	require.NoError(t, infoCmd.Execute())
}

// annexH3Vector is the ISO/IEC 14495-1 Annex H.3 4x4 8-bit conformance
// stream, used here only to exercise the info command against a known-good
// file rather than a freshly produced one.
var annexH3Vector = []byte{
	0xFF, 0xD8, 0xFF, 0xF7, 0x00, 0x0B, 0x08, 0x00, 0x04, 0x00, 0x04, 0x01, 0x01, 0x11, 0x00,
	0xFF, 0xDA, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x6C, 0x80, 0x20, 0x8E, 0x01, 0xC0, 0x00, 0x00, 0x57, 0x40, 0x00, 0x00,
	0x6E, 0xE6, 0x00, 0x00, 0x01, 0xBC, 0x18, 0x00, 0x00, 0x05, 0xD8, 0x00, 0x00, 0x91, 0x60,
	0xFF, 0xD9,
}
