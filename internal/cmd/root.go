package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "venuepulse",
	Short: "Batch analytics for restaurant order data",
	Long: `venuepulse runs batch analytics over restaurant transaction data:
adaptive order-duration thresholds per order type, and per-concept peak
operating hours identified by three independent clustering methods.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
}
