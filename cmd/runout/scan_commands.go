package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"runout/internal/match"
	"runout/internal/ocr"
	"runout/internal/scan"
	"runout/internal/store"
)

func newNewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "new <vinyl|cd>",
		Short: "Start a new scan session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaType, err := ocr.ParseMediaType(args[0])
			if err != nil {
				return err
			}
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				created, err := scanner.Start(cctx, mediaType)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started %s scan %s\n", created.MediaType, created.ScanID)
				return nil
			})
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		catno     string
		barcode   string
		matrix    string
		artist    string
		title     string
		societies []string
		assembled string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "search <scan-id>",
		Short: "Search the catalog with the scan's identifiers",
		Long: `Search the release catalog using whatever identifiers the photographs
yielded. Catalog number, barcode, and matrix number all contribute to
confidence scoring; rights society abbreviations read off the pressing
are used to rule out same-titled releases from other territories.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := scan.Request{
				Signals: match.Signals{
					CatalogNumber:     catno,
					Barcode:           barcode,
					MatrixNumber:      matrix,
					DeclaredSocieties: societies,
				},
				Artist:    artist,
				Title:     title,
				Assembled: assembled,
			}
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				result, err := scanner.Search(cctx, args[0], request)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, result)
				}
				renderResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&catno, "catno", "", "Catalog number from the sleeve or label")
	cmd.Flags().StringVar(&barcode, "barcode", "", "Barcode from the sleeve")
	cmd.Flags().StringVar(&matrix, "matrix", "", "Matrix or runout number from the dead wax")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist name for fuzzy search")
	cmd.Flags().StringVar(&title, "title", "", "Release title for fuzzy search")
	cmd.Flags().StringSliceVar(&societies, "society", nil, "Rights society printed on the pressing (repeatable)")
	cmd.Flags().StringVar(&assembled, "runout", "", "Raw runout string as read from the photographs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the match result as JSON")
	return cmd
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <scan-id> <release-id>",
		Short: "Pick one of the suggested candidates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			releaseID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid release id %q: %w", args[1], err)
			}
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				if err := scanner.Select(cctx, args[0], releaseID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected release %d for scan %s\n", releaseID, args[0])
				return nil
			})
		},
	}
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <scan-id>",
		Short: "Reject the current match and reset the scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				if err := scanner.Reject(cctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rejected match; scan %s is pending again\n", args[0])
				return nil
			})
		},
	}
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		runoutText string
		fixes      []string
	)

	cmd := &cobra.Command{
		Use:   "verify <scan-id>",
		Short: "Confirm the chosen release and finish the scan",
		Long: `Confirm that the chosen release is correct. Optionally supply the raw
runout string together with character corrections made while comparing
it against the catalog entry; both are saved with the verified scan.

A correction takes the form position=character, counted from zero:

  runout verify 4f2c --runout "XEX 5791" --fix "4=S"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				session, err := buildSession(cctx, scanner, args[0], runoutText, fixes)
				if err != nil {
					return err
				}
				if err := scanner.Verify(cctx, args[0], session); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scan %s verified\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&runoutText, "runout", "", "Raw runout string as read from the photographs")
	cmd.Flags().StringSliceVar(&fixes, "fix", nil, "Character correction as position=character (repeatable)")
	return cmd
}

// buildSession turns the --runout and --fix flags into a verification
// session, or returns nil when neither was given.
func buildSession(ctx context.Context, scanner *scan.Scanner, scanID, runoutText string, fixes []string) (*ocr.Session, error) {
	if strings.TrimSpace(runoutText) == "" {
		if len(fixes) > 0 {
			return nil, fmt.Errorf("--fix requires --runout")
		}
		return nil, nil
	}

	persisted, err := scanner.Get(ctx, scanID)
	if err != nil {
		return nil, err
	}
	mediaType, err := ocr.ParseMediaType(persisted.MediaType)
	if err != nil {
		return nil, err
	}

	session, err := scanner.NewVerification(mediaType, runoutText)
	if err != nil {
		return nil, err
	}
	for _, fix := range fixes {
		position, character, err := parseFix(fix)
		if err != nil {
			return nil, err
		}
		if err := session.ApplyCorrection(position, character); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func parseFix(value string) (int, rune, error) {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid correction %q: expected position=character", value)
	}
	position, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid correction position %q: %w", parts[0], err)
	}
	runes := []rune(parts[1])
	if len(runes) != 1 {
		return 0, 0, fmt.Errorf("invalid correction %q: exactly one replacement character expected", value)
	}
	return position, runes[0], nil
}

func newAbandonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <scan-id>",
		Short: "Delete a scan session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				if err := scanner.Abandon(cctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Abandoned scan %s\n", args[0])
				return nil
			})
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show one scan in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				persisted, err := scanner.Get(cctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, persisted)
				}
				renderScan(cmd.OutOrStdout(), persisted)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the scan as JSON")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusNames []string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scan sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]store.Status, 0, len(statusNames))
			for _, name := range statusNames {
				status, ok := store.ParseStatus(name)
				if !ok {
					return fmt.Errorf("unknown status %q", name)
				}
				statuses = append(statuses, status)
			}
			return ctx.withScanner(cmd, func(cctx context.Context, scanner *scan.Scanner) error {
				scans, err := scanner.List(cctx, statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, scans)
				}
				renderScanList(cmd.OutOrStdout(), scans)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusNames, "status", nil, "Only show scans in these statuses (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the scans as JSON")
	return cmd
}
