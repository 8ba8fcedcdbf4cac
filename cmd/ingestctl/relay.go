package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	relayBucket string
	relayName   string
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Send a storage notification for an object that has already landed",
	RunE:  runRelay,
}

func init() {
	relayCmd.Flags().StringVar(&relayBucket, "bucket", "", "Bucket holding the object (required)")
	relayCmd.Flags().StringVar(&relayName, "name", "", "Object name (required)")
	relayCmd.MarkFlagRequired("bucket")
	relayCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(relayCmd)
}

func runRelay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp, err := newClient().Relay(ctx, relayBucket, relayName)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
