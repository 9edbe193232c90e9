package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/printbed/klippctl/internal/messages"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.VersionUse,
		Short: messages.VersionShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.VersionOutputFmt, Version, Commit, BuildDate)
			return nil
		},
	}
}
