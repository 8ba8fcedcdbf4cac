package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var submitOwner string

var submitCmd = &cobra.Command{
	Use:   "submit FILE",
	Short: "Upload a receipt file as a direct submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitOwner, "owner", "", "Owner user ID (required)")
	submitCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	resp, err := newClient().Submit(ctx, submitOwner, data)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
