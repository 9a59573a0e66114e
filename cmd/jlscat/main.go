// Command jlscat encodes and decodes raw pixel buffers as JPEG-LS streams,
// and reports header information about an existing stream.
package main

import (
	"fmt"
	"os"

	"github.com/dlecorfec/jpegls/cmd/jlscat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
