package jpegls_test

import (
	"fmt"

	"github.com/dlecorfec/jpegls"
)

// Example demonstrates a lossless round trip of an 8-bit grayscale image.
func Example() {
	width, height := 4, 4
	pixels := []byte{
		0, 0, 90, 74,
		68, 50, 43, 205,
		64, 145, 145, 145,
		100, 145, 145, 145,
	}

	frame := jpegls.FrameInfo{Width: width, Height: height, BitsPerSample: 8, ComponentCount: 1}
	coding := jpegls.CodingParameters{InterleaveMode: jpegls.InterleaveNone}

	encoded, err := jpegls.Encode(pixels, 0, frame, coding)
	if err != nil {
		fmt.Println("encode error:", err)
		return
	}

	_, _, decoded, err := jpegls.Decode(encoded, 0)
	if err != nil {
		fmt.Println("decode error:", err)
		return
	}

	match := true
	for i := range pixels {
		if pixels[i] != decoded[i] {
			match = false
			break
		}
	}
	fmt.Println(match)
	// Output: true
}
