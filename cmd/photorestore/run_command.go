package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"photorestore/internal/reconcile"
	"photorestore/internal/report"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noProgress bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the subject folder against the reference library",
		Long: "Scan both folders, hash and match every subject file, copy missing\n" +
			"(and optionally uncertain) files into the output folder, and write report.json.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			progress := newProgressPrinter(cmd.ErrOrStderr(), !noProgress)
			runner := reconcile.New(cfg, reconcile.Options{
				Logger:   logger,
				Progress: progress.Update,
			})
			summary, err := runner.Run(cmd.Context())
			progress.Done()
			if err != nil {
				return err
			}
			printRunSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the interactive progress display")
	return cmd
}

func printRunSummary(out io.Writer, summary *reconcile.Summary) {
	stats := summary.Report.Summary
	count := func(n int) string { return humanize.Comma(int64(n)) }
	rows := [][]string{
		{"Subject files", count(stats.SubjectFiles)},
		{"Reference files", count(stats.ReferenceFiles)},
		{"Exact matches", count(stats.Exact)},
		{"Perceptual matches", count(stats.Perceptual)},
		{"Metadata matches", count(stats.Metadata)},
		{"Uncertain", count(stats.Uncertain)},
		{"Missing", count(stats.Missing)},
		{"Live Photos", count(stats.LivePhotos)},
		{"Errors", count(stats.Errors)},
	}
	stagedLabel := "Copied to output"
	if summary.Report.DryRun {
		stagedLabel = "Would copy (dry run)"
	}
	rows = append(rows,
		[]string{stagedLabel, count(stats.Staged)},
		[]string{"Cache hits", count(summary.CacheHits)},
		[]string{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
	)
	fmt.Fprintln(out, renderPairs("Reconciliation "+shortID(summary.RunID), rows))
	printMissing(out, summary.Report)
	fmt.Fprintf(out, "Report: %s\n", summary.ReportPath)
}

const missingPreview = 10

func printMissing(out io.Writer, r report.Report) {
	var paths []string
	for _, e := range r.Missing {
		paths = append(paths, e.Path)
	}
	for _, p := range r.LivePhotoMissing {
		paths = append(paths, p.ImagePath)
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No missing files")
		return
	}
	fmt.Fprintln(out, "Missing files:")
	for i, p := range paths {
		if i == missingPreview {
			fmt.Fprintf(out, "  ... and %s more (see report)\n", humanize.Comma(int64(len(paths)-missingPreview)))
			break
		}
		fmt.Fprintf(out, "  - %s\n", p)
	}
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
