package cmd

import (
	"fmt"
	"os"

	"github.com/dlecorfec/jpegls"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

func DefineInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "info <file.jls>",
		Short:        "Print header geometry and host filesystem block size for a JPEG-LS file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runInfo,
	}
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var stat unix.Stat_t
	blockSize := int64(-1)
	if err := unix.Fstat(int(file.Fd()), &stat); err == nil {
		blockSize = int64(stat.Blksize)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	frame, coding, pixels, err := jpegls.Decode(src, 0)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "file: %s (%d bytes, host fs block size %d bytes)\n", path, len(src), blockSize)
	fmt.Fprintf(cmd.OutOrStdout(), "frame: %dx%d, %d bits/sample, %d components\n", frame.Width, frame.Height, frame.BitsPerSample, frame.ComponentCount)
	fmt.Fprintf(cmd.OutOrStdout(), "coding: near=%d interleave=%d color-transform=%d restart-interval=%d\n",
		coding.NearLossless, coding.InterleaveMode, coding.ColorTransformation, coding.RestartInterval)
	fmt.Fprintf(cmd.OutOrStdout(), "decoded pixel bytes: %d\n", len(pixels))
	return nil
}
