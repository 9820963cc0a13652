package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/mdcrawler/internal/crawler"
)

func newConvertCmd(a *app) *cobra.Command {
	var flags convertFlags
	cmd := &cobra.Command{
		Use:   "convert <url>",
		Short: "Fetch one page and print it as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), a.cfg.RequestTimeout())
			defer cancel()

			res, err := a.orchestrator().Convert(ctx, crawler.ConvertRequest{
				URL:    args[0],
				Config: flags.apply(cmd, a.cfg.Convert),
			})
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Markdown)
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
