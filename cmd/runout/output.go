package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"runout/internal/match"
	"runout/internal/store"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func renderResult(w io.Writer, result *match.Result) {
	colorize := shouldColorize(w)

	switch result.Status {
	case match.StatusSingleMatch:
		fmt.Fprintf(w, "%s (confidence %.2f)\n",
			paint("Single match", ansiGreen, colorize), result.ConfidenceScore)
		if result.Chosen != nil {
			fmt.Fprintln(w, renderCandidateTable([]match.ScoredCandidate{
				{Candidate: *result.Chosen, Score: result.ConfidenceScore},
			}))
		}
	case match.StatusMultipleCandidates:
		fmt.Fprintf(w, "%s: %d candidate(s), pick one with `runout select`\n",
			paint("Multiple candidates", ansiYellow, colorize), len(result.Suggestions))
		fmt.Fprintln(w, renderCandidateTable(result.Suggestions))
	case match.StatusNoMatch:
		fmt.Fprintln(w, paint("No match", ansiRed, colorize))
	default:
		fmt.Fprintln(w, string(result.Status))
	}

	for _, exclusion := range result.Exclusions {
		fmt.Fprintf(w, "excluded: %s\n", exclusion)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "%s %s\n", paint("warning:", ansiYellow, colorize), warning)
	}
}

func renderCandidateTable(candidates []match.ScoredCandidate) string {
	rows := make([][]string, 0, len(candidates))
	for _, scored := range candidates {
		candidate := scored.Candidate
		year := ""
		if candidate.Year > 0 {
			year = strconv.Itoa(candidate.Year)
		}
		rows = append(rows, []string{
			strconv.FormatInt(candidate.ReleaseID, 10),
			candidate.Artist,
			candidate.Title,
			candidate.Label,
			candidate.CatalogNumber,
			candidate.Country,
			year,
			fmt.Sprintf("%.2f", scored.Score),
		})
	}
	return renderTable(
		[]string{"Release", "Artist", "Title", "Label", "Cat#", "Country", "Year", "Score"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func renderScan(w io.Writer, scan *store.Scan) {
	colorize := shouldColorize(w)

	fmt.Fprintf(w, "Scan %s (%s)\n", scan.ScanID, scan.MediaType)
	fmt.Fprintf(w, "  Status:   %s\n", paint(string(scan.Status), statusColor(scan.Status), colorize))
	if scan.AssembledString != "" {
		fmt.Fprintf(w, "  Runout:   %s\n", scan.AssembledString)
	}
	for _, correction := range scan.Corrections {
		fmt.Fprintf(w, "  Fixed:    position %d %s -> %s\n",
			correction.Position, correction.Original, correction.Corrected)
	}
	if scan.CatalogNumber != "" {
		fmt.Fprintf(w, "  Cat#:     %s\n", scan.CatalogNumber)
	}
	if scan.Barcode != "" {
		fmt.Fprintf(w, "  Barcode:  %s\n", scan.Barcode)
	}
	if scan.MatrixNumber != "" {
		fmt.Fprintf(w, "  Matrix:   %s\n", scan.MatrixNumber)
	}
	if len(scan.RightsSocieties) > 0 {
		fmt.Fprintf(w, "  Societies: %s\n", strings.Join(scan.RightsSocieties, ", "))
	}
	if scan.ChosenReleaseID != 0 {
		fmt.Fprintf(w, "  Release:  %d\n", scan.ChosenReleaseID)
	}
	if scan.ConfidenceScore > 0 {
		fmt.Fprintf(w, "  Score:    %.2f\n", scan.ConfidenceScore)
	}
	if scan.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:    %s\n", paint(scan.ErrorMessage, ansiRed, colorize))
	}
	fmt.Fprintf(w, "  Updated:  %s\n", scan.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func renderScanList(w io.Writer, scans []*store.Scan) {
	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans")
		return
	}

	rows := make([][]string, 0, len(scans))
	for _, scan := range scans {
		release := ""
		if scan.ChosenReleaseID != 0 {
			release = strconv.FormatInt(scan.ChosenReleaseID, 10)
		}
		rows = append(rows, []string{
			scan.ScanID,
			scan.MediaType,
			string(scan.Status),
			scan.AssembledString,
			release,
			scan.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Scan", "Media", "Status", "Runout", "Release", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func statusColor(status store.Status) string {
	switch status {
	case store.StatusVerified, store.StatusSingleMatch:
		return ansiGreen
	case store.StatusMultipleCandidates, store.StatusManualMatch:
		return ansiYellow
	case store.StatusNoMatch, store.StatusFailed:
		return ansiRed
	default:
		return ansiBlue
	}
}

func paint(value, color string, colorize bool) string {
	if !colorize || color == "" {
		return value
	}
	return color + value + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
