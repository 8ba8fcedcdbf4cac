package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/receipt-ingestion/internal/gates"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff FILE",
	Short: "Print the media type detected from a file's signature",
	Args:  cobra.ExactArgs(1),
	RunE:  runSniff,
}

func init() {
	rootCmd.AddCommand(sniffCmd)
}

func runSniff(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	mt := gates.Classify(data)
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"file":       args[0],
		"size_bytes": len(data),
		"media_type": mt,
		"mime":       mt.MIME(),
		"image":      mt.IsImage(),
	})
}
