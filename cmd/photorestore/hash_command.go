package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"photorestore/internal/config"
	"photorestore/internal/reconcile"
)

func newHashCommand(ctx *commandContext) *cobra.Command {
	var perceptual bool

	cmd := &cobra.Command{
		Use:   "hash [folder]",
		Short: "Hash every media file in a folder",
		Long:  "Hash every media file in a folder (the subject folder by default) through the hash cache.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir := cfg.Paths.SubjectDir
			if len(args) == 1 {
				dir = args[0]
			}
			if strings.TrimSpace(dir) == "" {
				return errors.New("folder is required (pass it as an argument or set paths.subject_dir)")
			}
			if dir, err = config.ExpandPath(dir); err != nil {
				return err
			}

			runner := reconcile.New(cfg, reconcile.Options{Logger: logger})
			assets, err := runner.HashFolder(cmd.Context(), dir, perceptual)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(assets))
			for _, a := range assets {
				rows = append(rows, []string{relTo(dir, a.Path()), humanize.IBytes(uint64(a.Size)), shortHash(a.ContentHash), dash(a.PerceptualHash)})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No media files found")
				return nil
			}
			fmt.Fprintln(out, renderTable("", []string{"File", "Size", "SHA-256", "pHash"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&perceptual, "perceptual", true, "Also compute perceptual hashes for images")
	return cmd
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return dash(h)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
