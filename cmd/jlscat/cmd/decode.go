package cmd

import (
	"fmt"
	"os"

	"github.com/dlecorfec/jpegls"
	"github.com/spf13/cobra"
)

func DefineDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "decode",
		Short:        "Decompress a JPEG-LS stream into a raw pixel file",
		SilenceUsage: true,
		RunE:         runDecode,
	}

	cmd.Flags().StringP("in", "i", "", "input .jls file (required)")
	cmd.Flags().StringP("out", "o", "", "output raw pixel file (required)")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")

	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	frame, coding, pixels, err := jpegls.Decode(src, 0)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if err := os.WriteFile(out, pixels, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%dx%d, %d bps, %d components, near=%d, interleave=%d -> %s (%d bytes)\n",
		frame.Width, frame.Height, frame.BitsPerSample, frame.ComponentCount,
		coding.NearLossless, coding.InterleaveMode, out, len(pixels))
	return nil
}
