package cmd

import (
	"github.com/spf13/cobra"
)

const AppName = "jlscat"

func Execute() error {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: AppName + " - JPEG-LS (ISO/IEC 14495-1) encode/decode tool",
	}

	rootCmd.AddCommand(DefineEncodeCommand())
	rootCmd.AddCommand(DefineDecodeCommand())
	rootCmd.AddCommand(DefineInfoCommand())

	return rootCmd.Execute()
}
