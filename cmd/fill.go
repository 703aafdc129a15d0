package main

import (
	"fmt"

	"github.com/latestcomment/influence-scoring/internal/terminal"
	"github.com/spf13/cobra"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Score samples interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		sink, closeSink, err := newSink(cfg, logger)
		if err != nil {
			return err
		}
		defer closeSink()

		service := newSessionService(cfg, sink, logger)
		prompter := terminal.NewHuhPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), len(cfg.Accounts) > 0)

		submitted, err := terminal.NewRunner(service, prompter, logger).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Submitted %d sample(s). Goodbye.\n", submitted)
		return nil
	},
}
