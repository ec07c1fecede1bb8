package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"runout/internal/scan"
)

func newPriceCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "price <release-id>",
		Short: "Show marketplace price statistics for a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid release id %q: %w", args[0], err)
			}
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				stats, err := scanner.Price(cctx, releaseID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Release %d: %d copies for sale\n", releaseID, stats.NumForSale)
				if stats.Lowest != nil {
					fmt.Fprintf(out, "  Lowest:  %.2f %s\n", stats.Lowest.Value, stats.Lowest.Currency)
				}
				if stats.Median != nil {
					fmt.Fprintf(out, "  Median:  %.2f %s\n", stats.Median.Value, stats.Median.Currency)
				}
				if stats.Highest != nil {
					fmt.Fprintf(out, "  Highest: %.2f %s\n", stats.Highest.Value, stats.Highest.Currency)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the statistics as JSON")
	return cmd
}
