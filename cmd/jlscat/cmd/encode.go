package cmd

import (
	"fmt"
	"os"

	"github.com/dlecorfec/jpegls"
	"github.com/spf13/cobra"
)

func DefineEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "encode",
		Short:        "Compress a raw pixel file into a JPEG-LS stream",
		SilenceUsage: true,
		RunE:         runEncode,
	}

	cmd.Flags().StringP("in", "i", "", "input raw pixel file (required)")
	cmd.Flags().StringP("out", "o", "", "output .jls file (required)")
	cmd.Flags().Int("width", 0, "image width in pixels (required)")
	cmd.Flags().Int("height", 0, "image height in pixels (required)")
	cmd.Flags().Int("bits", 8, "bits per sample")
	cmd.Flags().Int("components", 1, "component count")
	cmd.Flags().Int("near", 0, "near-lossless parameter (0 = lossless)")
	cmd.Flags().String("interleave", "none", "none|line|sample")
	cmd.Flags().String("color-transform", "none", "none|hp1|hp2|hp3")
	cmd.Flags().Int("restart", 0, "restart interval in lines (0 disables)")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("height")

	return cmd
}

func parseInterleave(s string) (jpegls.InterleaveMode, error) {
	switch s {
	case "none":
		return jpegls.InterleaveNone, nil
	case "line":
		return jpegls.InterleaveLine, nil
	case "sample":
		return jpegls.InterleaveSample, nil
	default:
		return 0, fmt.Errorf("unknown interleave mode %q", s)
	}
}

func parseColorTransform(s string) (jpegls.ColorTransform, error) {
	switch s {
	case "none":
		return jpegls.ColorTransformNone, nil
	case "hp1":
		return jpegls.ColorTransformHP1, nil
	case "hp2":
		return jpegls.ColorTransformHP2, nil
	case "hp3":
		return jpegls.ColorTransformHP3, nil
	default:
		return 0, fmt.Errorf("unknown color transform %q", s)
	}
}

func runEncode(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	bits, _ := cmd.Flags().GetInt("bits")
	components, _ := cmd.Flags().GetInt("components")
	near, _ := cmd.Flags().GetInt("near")
	interleaveStr, _ := cmd.Flags().GetString("interleave")
	ctStr, _ := cmd.Flags().GetString("color-transform")
	restart, _ := cmd.Flags().GetInt("restart")

	interleave, err := parseInterleave(interleaveStr)
	if err != nil {
		return err
	}
	ct, err := parseColorTransform(ctStr)
	if err != nil {
		return err
	}

	pixels, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	frame := jpegls.FrameInfo{
		Width:          width,
		Height:         height,
		BitsPerSample:  bits,
		ComponentCount: components,
	}
	coding := jpegls.CodingParameters{
		NearLossless:        near,
		InterleaveMode:      interleave,
		ColorTransformation: ct,
		RestartInterval:     restart,
	}

	encoded, err := jpegls.Encode(pixels, 0, frame, coding)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := os.WriteFile(out, encoded, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s (%d -> %d)\n", len(encoded), out, len(pixels), len(encoded))
	return nil
}
